// Command validate checks an enriched CSV export against the workbook it was
// produced from. It verifies the header, row parity, source-column projection
// and the consistency of the station and observation columns.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input assets/usa.xlsx \
//	  -output assets/usa_with_weather_data.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/xlsx"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", "", "source workbook")
	output := flag.String("output", "", "enriched CSV export")
	sheet := flag.String("sheet", "", "worksheet name (default first sheet)")
	flag.Parse()

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*input, *sheet, *output, os.Stdout))
}

func run(inputPath, sheet, outputPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== Enrichment Export Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	table, err := xlsx.NewReader(inputPath, sheet, logger).ReadTable(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load workbook: %v\n", err)
		return 1
	}
	eligible := domain.FilterEligible(table.Records)

	header, rows, err := loadCSV(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load export: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateHeader(header),
		validateRowParity(rows, eligible),
		validateProjection(rows, eligible),
		validateEnrichment(rows, eligible),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d workbook rows, %d with coordinates, %d exported, %d with weather data\n",
		len(table.Records), len(eligible), len(rows), countObservations(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// csvRow is a parsed export row with field values keyed by header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadCSV(path string) ([]string, []csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty file %s", path)
	}

	header := all[0]
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[h] = row[j]
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return header, rows, nil
}

func countObservations(rows []csvRow) int {
	var n int
	for _, r := range rows {
		if r.fields[domain.ColumnObservation] != "" {
			n++
		}
	}
	return n
}

// ── Phases ──

func validateHeader(header []string) *phase {
	p := &phase{name: "Phase 1: Export header"}
	if len(header) != len(domain.ExportColumns) {
		p.errorf("header has %d columns, want %d (%s)", len(header), len(domain.ExportColumns), strings.Join(domain.ExportColumns, ", "))
		return p
	}
	for i, col := range domain.ExportColumns {
		if header[i] != col {
			p.errorf("column %d: got %q, want %q", i+1, header[i], col)
		}
	}
	return p
}

func validateRowParity(rows []csvRow, eligible []domain.Record) *phase {
	p := &phase{name: "Phase 2: Row parity with workbook"}
	if len(rows) != len(eligible) {
		p.errorf("export has %d rows, workbook has %d rows with coordinates", len(rows), len(eligible))
	}
	for i := range min(len(rows), len(eligible)) {
		got := rows[i].fields[domain.ColumnID]
		want := eligible[i].Cell(domain.ColumnID)
		if got != want {
			p.errorf("line %d: %s %q, want %q (workbook row %d)", rows[i].lineNum, domain.ColumnID, got, want, eligible[i].Row)
		}
	}
	return p
}

var sourceColumns = []string{
	domain.ColumnID,
	domain.ColumnEventName,
	domain.ColumnLocation,
	domain.ColumnStartYear,
	domain.ColumnStartMonth,
	domain.ColumnStartDay,
}

func validateProjection(rows []csvRow, eligible []domain.Record) *phase {
	p := &phase{name: "Phase 3: Source column projection"}
	for i := range min(len(rows), len(eligible)) {
		for _, col := range sourceColumns {
			got := rows[i].fields[col]
			want := eligible[i].Cell(col)
			if got != want {
				p.errorf("line %d: %s = %q, workbook row %d has %q", rows[i].lineNum, col, got, eligible[i].Row, want)
			}
		}
	}
	return p
}

func validateEnrichment(rows []csvRow, eligible []domain.Record) *phase {
	p := &phase{name: "Phase 4: Station and observation consistency"}
	for i, row := range rows {
		station := row.fields[domain.ColumnStation]
		data := row.fields[domain.ColumnObservation]

		if station != "" && domain.StationRef(station).ID() == "" {
			p.errorf("line %d: station %q has no identifier", row.lineNum, station)
		}
		if data == "" {
			continue
		}
		if station == "" {
			p.errorf("line %d: weather data present without a station", row.lineNum)
		}
		v, err := domain.ParseValue([]byte(data))
		if err != nil {
			p.errorf("line %d: weather data is not valid JSON: %v", row.lineNum, err)
			continue
		}
		if v.Kind() != domain.KindObject {
			p.errorf("line %d: weather data is a %s, want an object", row.lineNum, v.Kind())
		}
		if i < len(eligible) {
			if _, err := eligible[i].ObservationDate(); err != nil {
				p.errorf("line %d: weather data present for a row with %v", row.lineNum, err)
			}
		}
	}
	return p
}
