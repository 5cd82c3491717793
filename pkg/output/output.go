// Package output renders a traverse for mapping tools.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kass/go-bearings/pkg/models"
)

const (
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatCSV, FormatGeoJSON}
}

// Writer receives traverse points in order. Close finishes the output and
// must be called once all points are written.
type Writer interface {
	WritePoint(loc models.Location) error
	Close() error
}

// New returns a Writer for format.
func New(format string, w io.Writer, name string) (Writer, error) {
	switch strings.ToLower(format) {
	case "", FormatCSV:
		return NewCSVWriter(w), nil
	case FormatGeoJSON:
		return NewGeoJSONWriter(w, name), nil
	default:
		return nil, fmt.Errorf("unknown output format %q, expected one of %s", format, strings.Join(Formats(), ", "))
	}
}

// CSVWriter streams "lon,lat,zero" rows, flushing each point as it is
// written so a later failure leaves earlier rows in place.
type CSVWriter struct {
	w      *csv.Writer
	header bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) WritePoint(loc models.Location) error {
	if !c.header {
		if err := c.w.Write([]string{"lon", "lat", "zero"}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		c.header = true
	}
	if err := c.w.Write([]string{FormatCoordinate(loc.Lon), FormatCoordinate(loc.Lat), "0"}); err != nil {
		return fmt.Errorf("write point: %w", err)
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

// FormatCoordinate prints a coordinate with the fewest digits that
// round-trip.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Feature is a GeoJSON feature holding the traverse as a LineString.
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   LineString     `json:"geometry"`
}

// LineString is a GeoJSON LineString geometry; positions are [lon, lat].
type LineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// GeoJSONWriter collects points and writes a single Feature on Close.
type GeoJSONWriter struct {
	w      io.Writer
	name   string
	coords [][2]float64
}

func NewGeoJSONWriter(w io.Writer, name string) *GeoJSONWriter {
	return &GeoJSONWriter{w: w, name: name}
}

func (g *GeoJSONWriter) WritePoint(loc models.Location) error {
	g.coords = append(g.coords, [2]float64{loc.Lon, loc.Lat})
	return nil
}

func (g *GeoJSONWriter) Close() error {
	props := map[string]any{"points": len(g.coords)}
	if g.name != "" {
		props["name"] = g.name
	}
	coords := g.coords
	if coords == nil {
		coords = [][2]float64{}
	}
	feature := Feature{
		Type:       "Feature",
		Properties: props,
		Geometry:   LineString{Type: "LineString", Coordinates: coords},
	}

	encoder := json.NewEncoder(g.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(feature); err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	return nil
}
