// Package domain models historical disaster records and the weather data used
// to enrich and narrate them.
//
// # Disaster Records
//
// Records come from an EM-DAT style workbook, one disaster per row. The
// columns the pipeline reads are:
//
//	DisNo.       disaster identifier, e.g. "2020-0123-USA"
//	Event Name   free text, often empty
//	Location     free text place description
//	Start Year   integer, e.g. 2020
//	Start Month  integer 1-12, may be empty
//	Start Day    integer 1-31, may be empty
//	Latitude     decimal degrees, may be empty
//	Longitude    decimal degrees, may be empty
//
// Workbooks often store integers as floats ("3.0"); both forms are accepted.
// Rows without both coordinates are not enrichable and are dropped by
// [FilterEligible].
//
// # Station Lookup
//
// The National Weather Service API maps a coordinate to a list of nearby
// observation stations:
//
//	GET /points/{lat},{lon}  →  properties.observationStations[0]
//
// Station references are URIs ("https://api.weather.gov/stations/KAUS");
// [StationRef.ID] extracts the station identifier for the observation query.
//
// # Observations
//
// Observations for the disaster's start date are queried over the whole UTC
// day, see [DayWindow]:
//
//	GET /stations/{id}/observations?start=2020-03-07T00:00:00Z&end=2020-03-07T23:59:59Z
//
// The first feature's properties are kept verbatim as a [Value]. NWS does not
// guarantee the ordering of the returned features.
//
// # Risk Narration
//
// A [WeatherSnapshot] carries ten required fields (city, temperature,
// feels_like, pressure, humidity, weather, wind_speed, wind_deg, visibility,
// clouds) in OpenWeather units: °C, hPa, %, m/s, degrees, meters.
// [RenderPrompt] turns it into the text sent to the chat model.
package domain
