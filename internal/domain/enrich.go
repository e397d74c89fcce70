package domain

import (
	"context"
	"log/slog"
)

// EnrichRecord resolves the station nearest a record and, when one is found,
// fetches the first observation recorded there on the record's start date.
// Lookup failures are logged and leave the corresponding field empty so the
// caller can move on to the next row (graceful degradation).
//
// The record is returned unchanged when it has no coordinate.
func EnrichRecord(ctx context.Context, rec Record, resolver StationResolver, fetcher ObservationFetcher, logger *slog.Logger) Record {
	coord, ok := rec.Coordinate()
	if !ok {
		return rec
	}
	rec.EnrichedAt = clock.Now().UTC()
	rec.Station = ""
	rec.Observation = Null()

	station, err := resolver.ResolveStation(ctx, coord)
	if err != nil {
		logger.Warn("station lookup failed",
			"row", rec.Row,
			"id", rec.ID(),
			"lat", coord.Lat,
			"lon", coord.Lon,
			"error", err,
		)
		return rec
	}
	if !station.Found() {
		logger.Info("no weather station found", "row", rec.Row, "lat", coord.Lat, "lon", coord.Lon)
		return rec
	}
	rec.Station = station

	date, err := rec.ObservationDate()
	if err != nil {
		logger.Warn("skipping observation lookup", "row", rec.Row, "id", rec.ID(), "error", err)
		return rec
	}

	observation, err := fetcher.FetchObservation(ctx, station, date)
	if err != nil {
		logger.Warn("observation lookup failed",
			"row", rec.Row,
			"id", rec.ID(),
			"station", string(station),
			"date", date,
			"error", err,
		)
		return rec
	}
	rec.Observation = observation
	return rec
}
