// Package sqlite persists enriched disaster records and scraped city weather
// snapshots in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	_ "modernc.org/sqlite"
)

// Store keeps the latest export row of every disaster, keyed by DisNo.
// It implements pipeline.BatchLoader.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS enriched_records (
			id          TEXT PRIMARY KEY,
			row_num     INTEGER NOT NULL,
			event_name  TEXT NOT NULL,
			location    TEXT NOT NULL,
			start_year  TEXT NOT NULL,
			start_month TEXT NOT NULL,
			start_day   TEXT NOT NULL,
			station     TEXT NOT NULL,
			observation TEXT,
			enriched_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_enriched_records_row ON enriched_records(row_num);

		CREATE TABLE IF NOT EXISTS weather_snapshots (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			city       TEXT NOT NULL,
			country    TEXT NOT NULL,
			iso2       TEXT NOT NULL,
			lat        REAL NOT NULL,
			lng        REAL NOT NULL,
			snapshot   TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_weather_snapshots_city ON weather_snapshots(city);
	`)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadBatch upserts every record in one transaction.
func (s *Store) LoadBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO enriched_records
			(id, row_num, event_name, location, start_year, start_month, start_day, station, observation, enriched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			row_num     = excluded.row_num,
			event_name  = excluded.event_name,
			location    = excluded.location,
			start_year  = excluded.start_year,
			start_month = excluded.start_month,
			start_day   = excluded.start_day,
			station     = excluded.station,
			observation = excluded.observation,
			enriched_at = excluded.enriched_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		row := rec.Project()

		var observation sql.NullString
		if !row.Observation.IsNull() {
			observation = sql.NullString{String: row.Observation.Text(), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			rec.ID(),
			rec.Row,
			row.EventName,
			row.Location,
			row.StartYear,
			row.StartMonth,
			row.StartDay,
			string(row.Station),
			observation,
			row.EnrichedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("upsert record %s: %w", rec.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("records stored", "count", len(records))
	return nil
}

const selectColumns = `id, event_name, location, start_year, start_month, start_day, station, observation, enriched_at`

// List returns stored rows in spreadsheet order.
func (s *Store) List(ctx context.Context, limit, offset int) ([]domain.ExportRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM enriched_records ORDER BY row_num, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	result := []domain.ExportRow{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return result, nil
}

// Get returns the stored row for id, or domain.ErrRecordNotFound.
func (s *Store) Get(ctx context.Context, id string) (domain.ExportRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM enriched_records WHERE id = ?`, id)
	result, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExportRow{}, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}
	return result, err
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (domain.ExportRow, error) {
	var (
		row         domain.ExportRow
		station     string
		observation sql.NullString
		enrichedAt  string
	)
	if err := sc.Scan(
		&row.ID,
		&row.EventName,
		&row.Location,
		&row.StartYear,
		&row.StartMonth,
		&row.StartDay,
		&station,
		&observation,
		&enrichedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ExportRow{}, err
		}
		return domain.ExportRow{}, fmt.Errorf("scan record: %w", err)
	}

	row.Station = domain.StationRef(station)
	if observation.Valid {
		v, err := domain.ParseValue([]byte(observation.String))
		if err != nil {
			return domain.ExportRow{}, fmt.Errorf("decode observation of %s: %w", row.ID, err)
		}
		row.Observation = v
	}
	t, err := time.Parse(time.RFC3339Nano, enrichedAt)
	if err != nil {
		return domain.ExportRow{}, fmt.Errorf("parse enriched_at of %s: %w", row.ID, err)
	}
	row.EnrichedAt = t
	return row, nil
}
