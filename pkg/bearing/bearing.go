// Package bearing parses surveyor-style bearings such as
// "S 46° 59' 26\" E" or "north 77 15 00 east" into an azimuth in degrees
// clockwise from north.
//
// A bearing is read in three zones. The leading run of compass letters names
// the reference direction, the text that follows holds up to three numbers
// (degrees, minutes, seconds, strictly in that order) and the next run of
// compass letters names the direction the angle swings toward. Only the first
// letter of each word matters, so "S", "So" and "south" are equivalent.
package bearing

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Direction is a cardinal compass direction.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func (d Direction) meridian() bool {
	return d == North || d == South
}

// compassLetters are the letters that make up the words north, south, east
// and west. Runs of them delimit the zones of a bearing.
const compassLetters = "NORTHSUEAWnorthsueaw"

const maxComponents = 3

// ParseError reports a bearing that does not follow the grammar.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid bearing %q: %s", e.Input, e.Reason)
}

// Parse converts text into an azimuth in degrees clockwise from north. The
// result lies in [0, 360].
func Parse(text string) (float64, error) {
	s := strings.TrimSpace(text)
	fail := func(format string, args ...any) (float64, error) {
		return 0, &ParseError{Input: text, Reason: fmt.Sprintf(format, args...)}
	}

	z := split(s)
	if hasWordText(z.trailing) {
		return fail("unexpected text %q after swing direction %q", strings.TrimSpace(z.trailing), z.suffix)
	}

	ref, azimuth := reference(z.prefix)

	// A bare east/west reference ("E", "W 10") has no swing word and turns
	// clockwise.
	sign := 1.0
	if z.suffix != "" || ref.meridian() {
		swing := swingOf(z.suffix)
		switch swing {
		case South:
			if ref == West {
				sign = -1
			}
		case North:
			if ref == East {
				azimuth = 360
				sign = -1
			}
		case West:
			if ref == North {
				sign = -1
			}
		default:
			if ref == South {
				sign = -1
			}
		}
		if ref.meridian() == swing.meridian() {
			return fail("initial and swing directions cannot be the same axis (%s, %s)", ref, swing)
		}
	}

	runs := numericRuns(z.middle)
	if len(runs) > maxComponents {
		return fail("expected at most %d angle components (degrees, minutes, seconds), found %d", maxComponents, len(runs))
	}
	divisors := [maxComponents]float64{1, 60, 3600}
	for i, run := range runs {
		v, err := strconv.ParseFloat(run, 64)
		if err != nil {
			return fail("could not parse angle component %q in %q", run, z.middle)
		}
		if i > 0 && (v < 0 || v > 60) {
			return fail("%s must be between 0 and 60, got %s", componentNames[i], run)
		}
		azimuth += sign * v / divisors[i]
	}

	if azimuth < 0 {
		azimuth += 360
	}
	if azimuth < 0 || azimuth > 360 {
		return fail("azimuth %v is outside [0, 360]", azimuth)
	}
	return azimuth, nil
}

var componentNames = [maxComponents]string{"degrees", "minutes", "seconds"}

// reference decodes the leading compass word. A word starting with W keeps
// the east label while using 270 degrees; swing handling depends on that.
func reference(prefix string) (Direction, float64) {
	switch firstLower(prefix) {
	case 'e':
		return East, 90
	case 's':
		return South, 180
	case 'w':
		return East, 270
	default:
		return North, 0
	}
}

func swingOf(suffix string) Direction {
	switch firstLower(suffix) {
	case 's':
		return South
	case 'n':
		return North
	case 'w':
		return West
	default:
		return East
	}
}

func firstLower(s string) byte {
	if s == "" {
		return 0
	}
	c := s[0]
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c
}

type zones struct {
	prefix   string
	middle   string
	suffix   string
	trailing string
}

func isCompassLetter(c byte) bool {
	return strings.IndexByte(compassLetters, c) >= 0
}

// split cuts s into a leading compass run, the angle text, a trailing compass
// run and whatever is left over. Compass letters are ASCII so scanning bytes
// never splits a multi-byte rune such as the degree sign.
func split(s string) zones {
	i := 0
	for i < len(s) && isCompassLetter(s[i]) {
		i++
	}
	j := i
	for j < len(s) && !isCompassLetter(s[j]) {
		j++
	}
	k := j
	for k < len(s) && isCompassLetter(s[k]) {
		k++
	}
	return zones{
		prefix:   s[:i],
		middle:   strings.TrimSpace(s[i:j]),
		suffix:   s[j:k],
		trailing: s[k:],
	}
}

func hasWordText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func isNumeric(c byte) bool {
	return c == '+' || c == '-' || c == '.' || ('0' <= c && c <= '9')
}

// numericRuns returns the maximal runs of sign, dot and digit characters in
// s, left to right. Everything else separates components.
func numericRuns(s string) []string {
	var runs []string
	for i := 0; i < len(s); {
		if !isNumeric(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isNumeric(s[j]) {
			j++
		}
		runs = append(runs, s[i:j])
		i = j
	}
	return runs
}
