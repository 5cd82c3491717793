// Package units converts survey distances to feet.
package units

import (
	"fmt"
	"strings"
)

// Unit is a length unit a survey table may be written in.
type Unit string

const (
	Feet  Unit = "feet"
	Poles Unit = "poles"
	Rods  Unit = "rods"
)

// FeetToMeters is the international foot.
const FeetToMeters = 0.3048

// feetPer holds the length of one unit in feet. Poles and rods are the same
// 16.5 ft measure.
var feetPer = map[Unit]float64{
	Feet:  1,
	Poles: 16.5,
	Rods:  16.5,
}

// Names lists the accepted unit names in display order.
func Names() []string {
	return []string{string(Feet), string(Poles), string(Rods)}
}

// ParseUnit maps a unit name to a Unit. Matching ignores case and
// surrounding whitespace; an empty name means feet.
func ParseUnit(name string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(name)))
	if u == "" {
		return Feet, nil
	}
	if _, ok := feetPer[u]; !ok {
		return "", fmt.Errorf("unknown distance unit %q, expected one of %s", name, strings.Join(Names(), ", "))
	}
	return u, nil
}

// ToFeet converts d, measured in u, to feet.
func (u Unit) ToFeet(d float64) float64 {
	factor, ok := feetPer[u]
	if !ok {
		factor = 1
	}
	return d * factor
}
