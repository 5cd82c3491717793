// Package geodesy solves the direct and inverse geodesic problems on the
// WGS-84 ellipsoid.
package geodesy

import (
	"fmt"
	"math"

	"github.com/tidwall/geodesic"

	"github.com/kass/go-bearings/pkg/models"
	"github.com/kass/go-bearings/pkg/units"
)

// WGS84 computes geodesics on the WGS-84 ellipsoid. The zero value is ready
// to use.
type WGS84 struct{}

// Destination returns the point reached by travelling distanceFeet from
// start along azimuth, in degrees clockwise from north.
func (WGS84) Destination(start models.Location, azimuth, distanceFeet float64) (models.Location, error) {
	if err := validate(start); err != nil {
		return models.Location{}, err
	}
	if math.IsNaN(azimuth) || math.IsInf(azimuth, 0) {
		return models.Location{}, fmt.Errorf("invalid azimuth %v", azimuth)
	}
	if math.IsNaN(distanceFeet) || math.IsInf(distanceFeet, 0) {
		return models.Location{}, fmt.Errorf("invalid distance %v", distanceFeet)
	}
	if distanceFeet == 0 {
		return start, nil
	}

	var lat2, lon2 float64
	geodesic.WGS84.Direct(start.Lat, start.Lon, azimuth, distanceFeet*units.FeetToMeters, &lat2, &lon2, nil)
	return models.Location{Lat: lat2, Lon: lon2}, nil
}

// Distance returns the geodesic distance between a and b in meters.
func Distance(a, b models.Location) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &s12, nil, nil)
	return s12
}

// PathLength returns the summed geodesic length of consecutive points, in meters.
func PathLength(points []models.Location) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

func validate(loc models.Location) error {
	if math.IsNaN(loc.Lat) || loc.Lat < -90 || loc.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", loc.Lat)
	}
	if math.IsNaN(loc.Lon) || math.IsInf(loc.Lon, 0) {
		return fmt.Errorf("invalid longitude %v", loc.Lon)
	}
	return nil
}
