// Package xlsx reads disaster records from Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Reader loads one worksheet of a workbook as a domain.Table.
type Reader struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewReader creates a Reader for the given workbook. An empty sheet selects
// the first worksheet.
func NewReader(path, sheet string, logger *slog.Logger) *Reader {
	return &Reader{path: path, sheet: sheet, logger: logger}
}

// ReadTable reads the header row and every non-blank data row. Cells are kept
// as their raw stored text; rows shorter than the header are padded with
// empty cells.
func (r *Reader) ReadTable(ctx context.Context) (domain.Table, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.Table{}, fmt.Errorf("workbook %s has no sheets", r.path)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var (
		table  domain.Table
		rowNum int
	)
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return domain.Table{}, err
		}
		rowNum++

		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return domain.Table{}, fmt.Errorf("read row %d: %w", rowNum, err)
		}

		if table.Columns == nil {
			table.Columns = header(cells)
			continue
		}
		if blank(cells) {
			continue
		}
		table.Records = append(table.Records, record(rowNum, table.Columns, cells))
	}
	if err := rows.Error(); err != nil {
		return domain.Table{}, fmt.Errorf("iterate sheet %q: %w", sheet, err)
	}

	r.logger.Info("workbook loaded",
		"path", r.path,
		"sheet", sheet,
		"columns", len(table.Columns),
		"rows", len(table.Records),
	)
	return table, nil
}

func header(cells []string) []string {
	columns := make([]string, len(cells))
	for i, c := range cells {
		columns[i] = strings.TrimSpace(c)
	}
	return columns
}

func record(rowNum int, columns, cells []string) domain.Record {
	values := make(map[string]string, len(columns))
	for i, name := range columns {
		if name == "" {
			continue
		}
		if i < len(cells) {
			values[name] = cells[i]
		} else {
			values[name] = ""
		}
	}
	return domain.Record{Row: rowNum, Cells: values}
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
