// Command genmock turns an EM-DAT CSV export into the workbook fixture read by
// cmd/enrich. It runs the rows through the same domain helpers the pipeline
// uses so the printed stats match what an enrichment run will see.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv emdat_public_2024.csv \
//	  -country "United States of America" \
//	  -xlsx-out assets/usa.xlsx \
//	  -json-out data/mock/usa_eligible.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "EM-DAT Data"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "EM-DAT CSV export")
	country := flag.String("country", "", "keep only rows whose Country matches (empty keeps all)")
	xlsxOut := flag.String("xlsx-out", "", "output path for the workbook fixture")
	jsonOut := flag.String("json-out", "", "optional output path for the eligible rows as JSON")
	flag.Parse()

	if *csvPath == "" || *xlsxOut == "" {
		flag.Usage()
		return errors.New("missing required flags: -csv, -xlsx-out")
	}

	header, rows, err := readCSV(*csvPath, *country)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("read %d rows", len(rows))

	if err := writeWorkbook(*xlsxOut, header, rows); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	log.Printf("wrote workbook: %s", *xlsxOut)

	records := toRecords(header, rows)
	eligible := domain.FilterEligible(records)

	if *jsonOut != "" {
		projected := make([]domain.ExportRow, len(eligible))
		for i, rec := range eligible {
			projected[i] = rec.Project()
		}
		if err := writeJSON(*jsonOut, projected); err != nil {
			return fmt.Errorf("writing JSON fixture: %w", err)
		}
		log.Printf("wrote JSON fixture: %s", *jsonOut)
	}

	printStats(records, eligible)
	return nil
}

func readCSV(path, country string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) < 2 {
		return nil, nil, errors.New("no data rows")
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	countryIdx := indexOf(header, "Country")

	rows := make([][]string, 0, len(all)-1)
	for _, row := range all[1:] {
		if country != "" && (countryIdx < 0 || countryIdx >= len(row) || strings.TrimSpace(row[countryIdx]) != country) {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func writeWorkbook(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", toCells(header)); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(row)); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

func toRecords(header []string, rows [][]string) []domain.Record {
	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		cells := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				cells[h] = strings.TrimSpace(row[j])
			} else {
				cells[h] = ""
			}
		}
		records = append(records, domain.Record{Row: i + 2, Cells: cells})
	}
	return records
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	typeCounts   map[string]int
	yearCounts   map[string]int
	completeDate int
}

func collectStats(eligible []domain.Record) statsResult {
	s := statsResult{
		typeCounts: map[string]int{},
		yearCounts: map[string]int{},
	}
	for _, rec := range eligible {
		s.typeCounts[rec.Cell("Disaster Type")]++
		s.yearCounts[rec.Cell(domain.ColumnStartYear)]++
		if _, err := rec.ObservationDate(); err == nil {
			s.completeDate++
		}
	}
	return s
}

type keyCount struct {
	key   string
	count int
}

func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func printStats(records, eligible []domain.Record) {
	stats := collectStats(eligible)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total rows: %d\n", len(records))
	fmt.Printf("With coordinates: %d\n", len(eligible))
	fmt.Printf("With complete start date: %d\n", stats.completeDate)

	fmt.Printf("By disaster type:")
	for _, kc := range sortedCounts(stats.typeCounts) {
		fmt.Printf(" %s=%d", orUnknown(kc.key), kc.count)
	}
	fmt.Println()

	years := sortedCounts(stats.yearCounts)
	fmt.Printf("Top years:")
	for _, kc := range years[:min(10, len(years))] {
		fmt.Printf(" %s=%d", orUnknown(kc.key), kc.count)
	}
	fmt.Println()

	if len(eligible) > 0 {
		first := eligible[0]
		coord, _ := first.Coordinate()
		fmt.Printf("\nFirst eligible record:\n")
		fmt.Printf("  ID: %s (row %d)\n", first.ID(), first.Row)
		fmt.Printf("  Event: %s\n", orUnknown(first.Cell(domain.ColumnEventName)))
		fmt.Printf("  Location: %s\n", first.Cell(domain.ColumnLocation))
		fmt.Printf("  Coordinate: %s\n", coord)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "(blank)"
	}
	return s
}
