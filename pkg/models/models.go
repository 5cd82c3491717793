package models

// Location represents a geographic location with latitude and longitude
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Record is one row of a survey table: a bearing, a distance in the table's
// unit and an optional free-text comment.
type Record struct {
	Row      int     `json:"row" yaml:"row"`
	Bearing  string  `json:"bearing" yaml:"bearing"`
	Distance float64 `json:"distance" yaml:"distance"`
	Comment  string  `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Location
	TopRight   Location
}

// Contains reports whether loc lies inside the box, edges included.
func (b BoundingBox) Contains(loc Location) bool {
	return loc.Lat >= b.BottomLeft.Lat && loc.Lat <= b.TopRight.Lat &&
		loc.Lon >= b.BottomLeft.Lon && loc.Lon <= b.TopRight.Lon
}
