// Package worldcities reads the world cities list (city, lat, lng, country,
// iso2) that seeds the current-weather scraper.
package worldcities

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

var requiredColumns = []string{"city", "lat", "lng", "country", "iso2"}

// Reader loads the cities CSV from disk on every call, so an updated file is
// picked up without a restart.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the CSV at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Cities returns every city with a usable coordinate, in file order.
func (r *Reader) Cities(ctx context.Context) ([]domain.City, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open cities %s: %w", r.path, err)
	}
	defer f.Close()

	cities, skipped, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read cities %s: %w", r.path, err)
	}
	if skipped > 0 {
		r.logger.Warn("cities without a coordinate skipped", "path", r.path, "skipped", skipped)
	}
	r.logger.Debug("cities loaded", "path", r.path, "count", len(cities))
	return cities, nil
}

// Parse reads a cities CSV. Columns are located by header name, so extra
// columns and any column order are accepted. It returns the number of rows
// dropped for an unparsable lat or lng.
func Parse(ctx context.Context, r io.Reader) ([]domain.City, int, error) {
	br := bufio.NewReader(r)
	// A leading byte order mark would make the first quoted header a bare quote.
	if b, _ := br.Peek(len(bom)); bytes.Equal(b, bom) {
		_, _ = br.Discard(len(bom))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, errors.New("empty file")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndexes(header)
	if err != nil {
		return nil, 0, err
	}

	var (
		cities  []domain.City
		skipped int
	)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}

		cell := func(name string) string {
			if i := idx[name]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		lat, latErr := strconv.ParseFloat(cell("lat"), 64)
		lng, lngErr := strconv.ParseFloat(cell("lng"), 64)
		if latErr != nil || lngErr != nil {
			skipped++
			continue
		}
		cities = append(cities, domain.City{
			Name:       cell("city"),
			Country:    cell("country"),
			ISO2:       cell("iso2"),
			Coordinate: domain.Coordinate{Lat: lat, Lon: lng},
		})
	}
	return cities, skipped, nil
}

func columnIndexes(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}
