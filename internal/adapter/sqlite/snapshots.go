package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
)

// ReplaceSnapshots swaps the stored snapshot set for snapshots in one
// transaction. It implements pipeline.SnapshotLoader.
func (s *Store) ReplaceSnapshots(ctx context.Context, snapshots []domain.CityWeather) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM weather_snapshots`); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO weather_snapshots (city, country, iso2, lat, lng, snapshot, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range snapshots {
		body, err := w.Snapshot.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode snapshot of %s: %w", w.City.Name, err)
		}
		if _, err := stmt.ExecContext(ctx,
			w.City.Name,
			w.City.Country,
			w.City.ISO2,
			w.City.Lat,
			w.City.Lon,
			string(body),
			w.FetchedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert snapshot of %s: %w", w.City.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("snapshots stored", "count", len(snapshots))
	return nil
}

// SnapshotByCity returns the stored snapshot for the exact city name, or
// domain.ErrCityNotFound.
func (s *Store) SnapshotByCity(ctx context.Context, city string) (domain.CityWeather, error) {
	var (
		w         domain.CityWeather
		body      string
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT city, country, iso2, lat, lng, snapshot, fetched_at
		FROM weather_snapshots WHERE city = ? ORDER BY seq LIMIT 1`, city,
	).Scan(&w.City.Name, &w.City.Country, &w.City.ISO2, &w.City.Lat, &w.City.Lon, &body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CityWeather{}, fmt.Errorf("%w: %s", domain.ErrCityNotFound, city)
	}
	if err != nil {
		return domain.CityWeather{}, fmt.Errorf("query snapshot: %w", err)
	}

	if w.Snapshot, err = domain.ParseSnapshot([]byte(body)); err != nil {
		return domain.CityWeather{}, fmt.Errorf("decode snapshot of %s: %w", city, err)
	}
	if w.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return domain.CityWeather{}, fmt.Errorf("parse fetched_at of %s: %w", city, err)
	}
	return w, nil
}

// CityMarkers returns the location of every stored snapshot whose country
// name contains country or whose ISO2 code equals it, ignoring ASCII case.
func (s *Store) CityMarkers(ctx context.Context, country string) ([]domain.CityMarker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT city, lat, lng FROM weather_snapshots
		WHERE instr(lower(country), lower(?)) > 0 OR lower(iso2) = lower(?)
		ORDER BY seq`, country, country)
	if err != nil {
		return nil, fmt.Errorf("query markers: %w", err)
	}
	defer rows.Close()

	markers := []domain.CityMarker{}
	for rows.Next() {
		var m domain.CityMarker
		if err := rows.Scan(&m.City, &m.Lat, &m.Lng); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markers: %w", err)
	}
	return markers, nil
}
