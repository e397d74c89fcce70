package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet column names used by the enrichment pipeline. The first group is
// read from the source workbook, the last two are added by enrichment.
const (
	ColumnID         = "DisNo."
	ColumnEventName  = "Event Name"
	ColumnLocation   = "Location"
	ColumnStartYear  = "Start Year"
	ColumnStartMonth = "Start Month"
	ColumnStartDay   = "Start Day"
	ColumnLatitude   = "Latitude"
	ColumnLongitude  = "Longitude"

	ColumnStation     = "Weather Station"
	ColumnObservation = "Weather Data"
)

// ExportColumns is the fixed, ordered projection written by every exporter.
var ExportColumns = []string{
	ColumnID,
	ColumnEventName,
	ColumnLocation,
	ColumnStartYear,
	ColumnStartMonth,
	ColumnStartDay,
	ColumnStation,
	ColumnObservation,
}

var (
	// ErrIncompleteDate is returned when a record lacks a usable start date.
	ErrIncompleteDate = errors.New("incomplete start date")
	// ErrRecordNotFound is returned by record stores for unknown ids.
	ErrRecordNotFound = errors.New("record not found")
)

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// StationRef identifies an observation station as returned by the NWS API,
// usually a URI such as "https://api.weather.gov/stations/KAUS". The empty
// StationRef means no station was found.
type StationRef string

// ID returns the trailing path segment of the reference ("KAUS" for the URI
// above), or the reference itself when it has no slashes.
func (s StationRef) ID() string {
	ref := strings.TrimRight(string(s), "/")
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Found reports whether the reference names a station.
func (s StationRef) Found() bool { return s != "" }

// Record is one disaster row. Cells holds every source column by header name;
// Station and Observation are filled in by enrichment.
type Record struct {
	Row         int
	Cells       map[string]string
	Station     StationRef
	Observation Value
	EnrichedAt  time.Time
}

// Cell returns the trimmed value of a column, or "" when absent.
func (r Record) Cell(column string) string {
	return strings.TrimSpace(r.Cells[column])
}

// ID returns the disaster identifier, falling back to the row number so every
// record has a stable key downstream.
func (r Record) ID() string {
	if id := r.Cell(ColumnID); id != "" {
		return id
	}
	return "row-" + strconv.Itoa(r.Row)
}

// Coordinate returns the record's coordinate when both cells hold numbers.
func (r Record) Coordinate() (Coordinate, bool) {
	lat, okLat := parseCellFloat(r.Cell(ColumnLatitude))
	lon, okLon := parseCellFloat(r.Cell(ColumnLongitude))
	if !okLat || !okLon {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lon: lon}, true
}

// ObservationDate composes the record's start date as YYYY-MM-DD.
func (r Record) ObservationDate() (string, error) {
	year, okY := parseCellInt(r.Cell(ColumnStartYear))
	month, okM := parseCellInt(r.Cell(ColumnStartMonth))
	day, okD := parseCellInt(r.Cell(ColumnStartDay))
	if !okY || !okM || !okD {
		return "", fmt.Errorf("%w: year=%q month=%q day=%q", ErrIncompleteDate,
			r.Cell(ColumnStartYear), r.Cell(ColumnStartMonth), r.Cell(ColumnStartDay))
	}
	return FormatDate(year, month, day), nil
}

// FormatDate renders a calendar date as zero-padded YYYY-MM-DD.
func FormatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// DayWindow returns the inclusive UTC bounds of a YYYY-MM-DD date:
// 00:00:00 through 23:59:59.
func DayWindow(date string) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return start, start.Add(24*time.Hour - time.Second), nil
}

// Table is a parsed spreadsheet: the header row and every data row in order.
type Table struct {
	Columns []string
	Records []Record
}

// HasColumns reports whether every named column is present in the header.
func (t Table) HasColumns(columns ...string) bool {
	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}
	for _, c := range columns {
		if !present[c] {
			return false
		}
	}
	return true
}

// FilterEligible returns the records that have both coordinates, preserving order.
func FilterEligible(records []Record) []Record {
	eligible := make([]Record, 0, len(records))
	for _, r := range records {
		if _, ok := r.Coordinate(); ok {
			eligible = append(eligible, r)
		}
	}
	return eligible
}

// ExportRow is the projection of a Record shared by every sink.
type ExportRow struct {
	ID          string     `json:"id"`
	EventName   string     `json:"event_name"`
	Location    string     `json:"location"`
	StartYear   string     `json:"start_year"`
	StartMonth  string     `json:"start_month"`
	StartDay    string     `json:"start_day"`
	Station     StationRef `json:"station,omitempty"`
	Observation Value      `json:"observation"`
	EnrichedAt  time.Time  `json:"enriched_at"`
}

// Project selects the exported columns of a record.
func (r Record) Project() ExportRow {
	return ExportRow{
		ID:          r.Cell(ColumnID),
		EventName:   r.Cell(ColumnEventName),
		Location:    r.Cell(ColumnLocation),
		StartYear:   r.Cell(ColumnStartYear),
		StartMonth:  r.Cell(ColumnStartMonth),
		StartDay:    r.Cell(ColumnStartDay),
		Station:     r.Station,
		Observation: r.Observation,
		EnrichedAt:  r.EnrichedAt,
	}
}

// Fields returns the row's cells in ExportColumns order. A missing station or
// observation becomes an empty cell; observations are compact JSON.
func (e ExportRow) Fields() []string {
	observation := ""
	if !e.Observation.IsNull() {
		b, _ := e.Observation.MarshalJSON()
		observation = string(b)
	}
	return []string{
		e.ID,
		e.EventName,
		e.Location,
		e.StartYear,
		e.StartMonth,
		e.StartDay,
		string(e.Station),
		observation,
	}
}

// parseCellFloat parses a spreadsheet cell as a number. Empty and NaN cells
// count as missing.
func parseCellFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// parseCellInt accepts integral cells written as floats ("3.0"), as workbooks
// often store them.
func parseCellInt(s string) (int, bool) {
	v, ok := parseCellFloat(s)
	if !ok || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}
