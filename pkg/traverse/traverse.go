// Package traverse turns an ordered list of bearing and distance records
// into the chain of coordinates they describe.
package traverse

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/kass/go-bearings/pkg/bearing"
	"github.com/kass/go-bearings/pkg/models"
	"github.com/kass/go-bearings/pkg/units"
)

// Geodesic solves the direct geodesic problem.
type Geodesic interface {
	Destination(start models.Location, azimuth, distanceFeet float64) (models.Location, error)
}

// Config describes one traverse run.
type Config struct {
	// Origin is the known starting point of the first leg.
	Origin models.Location
	// Units is the unit every record distance is written in.
	Units units.Unit
}

// Leg is one resolved record: where it starts, where it ends and how it got
// there.
type Leg struct {
	Record  models.Record
	Azimuth float64
	Feet    float64
	From    models.Location
	To      models.Location
}

// RecordError ties a failure to the record that caused it.
type RecordError struct {
	Row     int
	Bearing string
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("row %d (bearing %q): %v", e.Row, e.Bearing, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Builder walks records from a fixed origin.
type Builder struct {
	cfg    Config
	geo    Geodesic
	logger *slog.Logger
}

// NewBuilder creates a builder. A nil logger discards log output.
func NewBuilder(cfg Config, geo Geodesic, logger *slog.Logger) *Builder {
	if cfg.Units == "" {
		cfg.Units = units.Feet
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{cfg: cfg, geo: geo, logger: logger}
}

// Origin returns the first point of every traverse this builder produces.
func (b *Builder) Origin() models.Location {
	return b.cfg.Origin
}

// Walk resolves records in order, calling fn with each leg as soon as it is
// known. Each leg starts where the previous one ended. The first failure,
// from parsing, the geodesic or fn itself, stops the walk; legs already
// passed to fn stay delivered.
func (b *Builder) Walk(records []models.Record, fn func(Leg) error) error {
	current := b.cfg.Origin
	for _, rec := range records {
		leg, err := b.resolve(current, rec)
		if err != nil {
			return err
		}
		b.logger.Debug("leg resolved",
			"row", rec.Row,
			"bearing", rec.Bearing,
			"azimuth", leg.Azimuth,
			"feet", leg.Feet,
		)
		if err := fn(leg); err != nil {
			return err
		}
		current = leg.To
	}
	return nil
}

// Build returns the full traverse: the origin followed by one point per
// record.
func (b *Builder) Build(records []models.Record) ([]models.Location, error) {
	points := make([]models.Location, 0, len(records)+1)
	points = append(points, b.cfg.Origin)
	err := b.Walk(records, func(leg Leg) error {
		points = append(points, leg.To)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (b *Builder) resolve(from models.Location, rec models.Record) (Leg, error) {
	wrap := func(err error) error {
		return &RecordError{Row: rec.Row, Bearing: rec.Bearing, Err: err}
	}

	if math.IsNaN(rec.Distance) || math.IsInf(rec.Distance, 0) || rec.Distance < 0 {
		return Leg{}, wrap(fmt.Errorf("invalid distance %v", rec.Distance))
	}
	feet := b.cfg.Units.ToFeet(rec.Distance)

	azimuth, err := bearing.Parse(rec.Bearing)
	if err != nil {
		return Leg{}, wrap(err)
	}

	to, err := b.geo.Destination(from, azimuth, feet)
	if err != nil {
		return Leg{}, wrap(fmt.Errorf("geodesic destination: %w", err))
	}

	return Leg{Record: rec, Azimuth: azimuth, Feet: feet, From: from, To: to}, nil
}
