package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrCityNotFound is returned by snapshot stores when no city matches.
var ErrCityNotFound = errors.New("city not found")

// AllCountries selects every city regardless of country.
const AllCountries = "ALL"

// City is one row of the world cities list.
type City struct {
	Name    string
	Country string
	ISO2    string
	Coordinate
}

// CityMarker is the map pin returned for a country's stored snapshots.
type CityMarker struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// FilterCities keeps the cities whose country name or ISO2 code equals filter,
// ignoring case. AllCountries keeps every city. A positive limit caps the
// result to the first limit matches in list order.
func FilterCities(cities []City, filter string, limit int) []City {
	var out []City
	for _, c := range cities {
		if limit > 0 && len(out) == limit {
			break
		}
		if strings.EqualFold(filter, AllCountries) ||
			strings.EqualFold(c.Country, filter) ||
			strings.EqualFold(c.ISO2, filter) {
			out = append(out, c)
		}
	}
	return out
}

// CityWeather is a stored current-conditions snapshot for one city. Its
// Snapshot carries exactly the fields the narrator accepts.
type CityWeather struct {
	City      City
	Snapshot  WeatherSnapshot
	FetchedAt time.Time
}

// MarshalJSON emits the snapshot keys followed by the city's location and the
// fetch time, so the body can be posted to the analyze endpoint unchanged.
func (w CityWeather) MarshalJSON() ([]byte, error) {
	members := make([]Member, 0, len(snapshotFields)+5)
	for _, f := range snapshotFields {
		members = append(members, Member{Key: f.key, Value: *f.dst(&w.Snapshot)})
	}
	members = append(members,
		Member{Key: "country", Value: String(w.City.Country)},
		Member{Key: "iso2", Value: String(w.City.ISO2)},
		Member{Key: "lat", Value: Float(w.City.Lat)},
		Member{Key: "lng", Value: Float(w.City.Lon)},
		Member{Key: "fetched_at", Value: String(w.FetchedAt.UTC().Format(time.RFC3339))},
	)
	return Object(members...).MarshalJSON()
}
