package main

import (
	"fmt"
	"log"

	"github.com/kass/go-bearings/pkg/bearing"
	"github.com/kass/go-bearings/pkg/geodesy"
	"github.com/kass/go-bearings/pkg/index"
	"github.com/kass/go-bearings/pkg/models"
	"github.com/kass/go-bearings/pkg/traverse"
	"github.com/kass/go-bearings/pkg/units"
)

func main() {
	// Bearings as they appear on a plat
	for _, text := range []string{"N 22.1d E", "S 46° 59' 26\" E", "north 77 15 00 west", "W"} {
		azimuth, err := bearing.Parse(text)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-22s -> %9.4f°\n", text, azimuth)
	}

	// A closed lot boundary measured in rods
	records := []models.Record{
		{Row: 1, Bearing: "N 10 E", Distance: 20},
		{Row: 2, Bearing: "S 80 E", Distance: 15},
		{Row: 3, Bearing: "S 10 W", Distance: 20},
		{Row: 4, Bearing: "N 80 W", Distance: 15},
	}
	start := models.Location{Lat: 35.2271, Lon: -80.8431}

	builder := traverse.NewBuilder(traverse.Config{Origin: start, Units: units.Rods}, geodesy.WGS84{}, nil)
	points, err := builder.Build(records)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("\n=== Lot corners ===")
	for i, p := range points {
		fmt.Printf("  %d: (%.7f, %.7f)\n", i, p.Lat, p.Lon)
	}
	fmt.Printf("Perimeter: %.2f m, closure error: %.3f m\n",
		geodesy.PathLength(points), geodesy.Distance(points[0], points[len(points)-1]))

	// Corners closest to a fence post
	fmt.Println("\n=== 2 corners nearest the fence post ===")
	idx := index.NewVertexIndex(points)
	post := models.Location{Lat: 35.2280, Lon: -80.8425}
	for _, n := range idx.Nearest(post, 2) {
		fmt.Printf("  corner %d: %.1f ft away\n", n.Seq, n.Meters/units.FeetToMeters)
	}
}
