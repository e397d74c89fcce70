package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day int
		expected         string
	}{
		{"single digit month and day", 2020, 3, 7, "2020-03-07"},
		{"double digit month and day", 2021, 11, 28, "2021-11-28"},
		{"single digit day", 1999, 12, 1, "1999-12-01"},
		{"single digit month", 2005, 8, 29, "2005-08-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDate(tt.year, tt.month, tt.day))
		})
	}
}

func TestRecord_ObservationDate(t *testing.T) {
	tests := []struct {
		name     string
		year     string
		month    string
		day      string
		expected string
		wantErr  bool
	}{
		{"integers", "2020", "3", "7", "2020-03-07", false},
		{"float cells", "2020.0", "3.0", "7.0", "2020-03-07", false},
		{"padded cells", " 2017 ", "08", "25", "2017-08-25", false},
		{"missing day", "2020", "3", "", "", true},
		{"missing month", "2020", "", "7", "", true},
		{"fractional day", "2020", "3", "7.5", "", true},
		{"not a number", "2020", "March", "7", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{Cells: map[string]string{
				ColumnStartYear:  tt.year,
				ColumnStartMonth: tt.month,
				ColumnStartDay:   tt.day,
			}}
			date, err := rec.ObservationDate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIncompleteDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, date)
		})
	}
}

func TestDayWindow(t *testing.T) {
	start, end, err := DayWindow("2020-03-07")
	require.NoError(t, err)

	assert.Equal(t, "2020-03-07T00:00:00Z", start.Format(time.RFC3339))
	assert.Equal(t, "2020-03-07T23:59:59Z", end.Format(time.RFC3339))

	_, _, err = DayWindow("2020-3-7")
	assert.Error(t, err)
}

func TestRecord_Coordinate(t *testing.T) {
	tests := []struct {
		name   string
		lat    string
		lon    string
		wantOK bool
	}{
		{"both present", "29.76", "-95.37", true},
		{"zero is a valid coordinate", "0", "0", true},
		{"missing latitude", "", "-95.37", false},
		{"missing longitude", "29.76", "", false},
		{"NaN cell", "NaN", "-95.37", false},
		{"text cell", "n/a", "-95.37", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{Cells: map[string]string{ColumnLatitude: tt.lat, ColumnLongitude: tt.lon}}
			_, ok := rec.Coordinate()
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFilterEligible_DropsRowsMissingCoordinates(t *testing.T) {
	records := []Record{
		{Row: 2, Cells: map[string]string{ColumnLatitude: "29.76", ColumnLongitude: "-95.37"}},
		{Row: 3, Cells: map[string]string{ColumnLatitude: "", ColumnLongitude: "-95.37"}},
		{Row: 4, Cells: map[string]string{ColumnLatitude: "30.27"}},
		{Row: 5, Cells: map[string]string{ColumnLatitude: "35.47", ColumnLongitude: "-97.52"}},
	}

	eligible := FilterEligible(records)

	require.Len(t, eligible, 2)
	assert.Equal(t, 2, eligible[0].Row)
	assert.Equal(t, 5, eligible[1].Row)
}

func TestStationRef_ID(t *testing.T) {
	assert.Equal(t, "KAUS", StationRef("https://api.weather.gov/stations/KAUS").ID())
	assert.Equal(t, "KAUS", StationRef("https://api.weather.gov/stations/KAUS/").ID())
	assert.Equal(t, "KAUS", StationRef("KAUS").ID())
	assert.False(t, StationRef("").Found())
}

func TestRecord_IDFallsBackToRow(t *testing.T) {
	assert.Equal(t, "2020-0123-USA", Record{Row: 2, Cells: map[string]string{ColumnID: "2020-0123-USA"}}.ID())
	assert.Equal(t, "row-9", Record{Row: 9}.ID())
}

func TestTable_HasColumns(t *testing.T) {
	table := Table{Columns: []string{ColumnID, ColumnLatitude, ColumnLongitude}}
	assert.True(t, table.HasColumns(ColumnLatitude, ColumnLongitude))
	assert.False(t, table.HasColumns(ColumnLatitude, ColumnStartYear))
}

func TestExportRow_Fields(t *testing.T) {
	rec := Record{
		Cells: map[string]string{
			ColumnID:         "2020-0123-USA",
			ColumnEventName:  "",
			ColumnLocation:   "Houston",
			ColumnStartYear:  "2020",
			ColumnStartMonth: "3",
			ColumnStartDay:   "7",
			ColumnLatitude:   "29.76",
			"Country":        "United States of America",
		},
		Station:     "https://api.weather.gov/stations/KHOU",
		Observation: Object(Member{Key: "temperature", Value: Object(Member{Key: "value", Value: Number("21.1")})}),
	}

	fields := rec.Project().Fields()

	assert.Len(t, fields, len(ExportColumns))
	assert.Equal(t, []string{
		"2020-0123-USA", "", "Houston", "2020", "3", "7",
		"https://api.weather.gov/stations/KHOU",
		`{"temperature":{"value":21.1}}`,
	}, fields)
}

func TestExportRow_FieldsWithoutEnrichment(t *testing.T) {
	fields := Record{Cells: map[string]string{ColumnID: "x"}}.Project().Fields()
	assert.Equal(t, "", fields[6])
	assert.Equal(t, "", fields[7])
}
