// Package postgis stores traverses in a PostGIS database.
package postgis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kass/go-bearings/pkg/models"
	"github.com/kass/go-bearings/pkg/output"
)

const srid = 4326

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis;`,

	`CREATE TABLE IF NOT EXISTS traverses (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		path       GEOMETRY(LINESTRING, 4326)
	);`,

	`CREATE TABLE IF NOT EXISTS traverse_vertices (
		traverse_id BIGINT NOT NULL REFERENCES traverses(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		location    GEOMETRY(POINT, 4326) NOT NULL,
		PRIMARY KEY (traverse_id, seq)
	);`,

	`CREATE INDEX IF NOT EXISTS idx_traverse_vertices_location ON traverse_vertices USING GIST(location);`,
}

// Store writes traverses to PostGIS.
type Store struct {
	db *sql.DB
}

// NewStore opens and pings the database at dsn.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

// InitSchema creates the traverse tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, query := range schema {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// SaveTraverse stores points as one LINESTRING row plus a row per vertex, in
// a single transaction, and returns the new traverse id.
func (s *Store) SaveTraverse(ctx context.Context, name string, points []models.Location) (int64, error) {
	wkt, err := LineStringWKT(points)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO traverses (name, path) VALUES ($1, ST_GeomFromText($2, $3)) RETURNING id`,
		name, wkt, srid,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert traverse: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO traverse_vertices (traverse_id, seq, location)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326))
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.ExecContext(ctx, id, i, p.Lon, p.Lat); err != nil {
			return 0, fmt.Errorf("failed to insert vertex %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit traverse: %w", err)
	}
	return id, nil
}

// Count returns the number of stored traverses.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM traverses").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count traverses: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LineStringWKT renders points as a WKT LINESTRING in lon/lat order. A
// traverse of a single point is doubled so the geometry stays valid.
func LineStringWKT(points []models.Location) (string, error) {
	if len(points) == 0 {
		return "", errors.New("cannot store an empty traverse")
	}
	if len(points) == 1 {
		points = []models.Location{points[0], points[0]}
	}

	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = output.FormatCoordinate(p.Lon) + " " + output.FormatCoordinate(p.Lat)
	}
	return "LINESTRING(" + strings.Join(parts, ", ") + ")", nil
}
