package domain

import "context"

// StationResolver finds the observation station nearest a coordinate.
type StationResolver interface {
	// ResolveStation returns the first candidate station, or the empty
	// StationRef when the lookup succeeds with no candidates.
	ResolveStation(ctx context.Context, coord Coordinate) (StationRef, error)
}

// ObservationFetcher reads recorded observations for a station.
type ObservationFetcher interface {
	// FetchObservation returns the properties of the first observation recorded
	// on a YYYY-MM-DD date (UTC), or a null Value when there is none.
	FetchObservation(ctx context.Context, station StationRef, date string) (Value, error)
}

// CurrentWeatherFetcher reads present conditions for a city.
type CurrentWeatherFetcher interface {
	// FetchCurrent returns the city's conditions as a narrator snapshot.
	FetchCurrent(ctx context.Context, city City) (WeatherSnapshot, error)
}
