// Package index provides an R-Tree over the vertices of a traverse for
// nearest-vertex and bounding-box lookups.
package index

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-bearings/pkg/geodesy"
	"github.com/kass/go-bearings/pkg/models"
)

const (
	tolerance   = 1e-9
	minChildren = 4
	maxChildren = 16
	dimensions  = 2

	// rtreego ranks candidates by planar degree distance; fetch extra and
	// re-rank them geodesically.
	candidateFactor = 4
	minCandidates   = 32
)

// Vertex is one point of a traverse. Seq 0 is the origin, Seq n the end of
// the nth leg.
type Vertex struct {
	Seq      int             `json:"seq"`
	Location models.Location `json:"location"`
}

// Neighbor is a vertex together with its geodesic distance from a query point.
type Neighbor struct {
	Vertex
	Meters float64 `json:"meters"`
}

type vertexItem struct {
	Vertex
	rect *rtreego.Rect
}

func (v *vertexItem) Bounds() *rtreego.Rect {
	return v.rect
}

// VertexIndex is a thread-safe R-Tree of traverse vertices.
type VertexIndex struct {
	tree  *rtreego.Rtree
	mu    sync.RWMutex
	count atomic.Int64
}

// NewVertexIndex indexes points as vertices numbered from 0.
func NewVertexIndex(points []models.Location) *VertexIndex {
	x := &VertexIndex{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for i, p := range points {
		x.Insert(Vertex{Seq: i, Location: p})
	}
	return x
}

// Insert adds a single vertex.
func (x *VertexIndex) Insert(v Vertex) {
	p := rtreego.Point{v.Location.Lat, v.Location.Lon}
	item := &vertexItem{Vertex: v, rect: p.ToRect(tolerance)}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.tree.Insert(item)
	x.count.Add(1)
}

// Count returns the number of indexed vertices.
func (x *VertexIndex) Count() int64 {
	return x.count.Load()
}

// QueryBox returns the vertices inside box, edges included, ordered by Seq.
func (x *VertexIndex) QueryBox(box models.BoundingBox) ([]Vertex, error) {
	if box.TopRight.Lat < box.BottomLeft.Lat || box.TopRight.Lon < box.BottomLeft.Lon {
		return nil, fmt.Errorf("invalid bounding box: top right %v is below or left of bottom left %v",
			box.TopRight, box.BottomLeft)
	}

	bottomLeft := rtreego.Point{box.BottomLeft.Lat - tolerance, box.BottomLeft.Lon - tolerance}
	rectSize := []float64{
		box.TopRight.Lat - box.BottomLeft.Lat + 2*tolerance,
		box.TopRight.Lon - box.BottomLeft.Lon + 2*tolerance,
	}
	bounds, err := rtreego.NewRect(bottomLeft, rectSize)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	x.mu.RLock()
	results := x.tree.SearchIntersect(bounds)
	x.mu.RUnlock()

	vertices := make([]Vertex, 0, len(results))
	for _, result := range results {
		item, ok := result.(*vertexItem)
		if !ok || !box.Contains(item.Location) {
			continue
		}
		vertices = append(vertices, item.Vertex)
	}
	sort.Slice(vertices, func(i, j int) bool { return vertices[i].Seq < vertices[j].Seq })
	return vertices, nil
}

// Nearest returns up to k vertices closest to loc, nearest first. Ties keep
// traverse order.
func (x *VertexIndex) Nearest(loc models.Location, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	candidates := k * candidateFactor
	if candidates < minCandidates {
		candidates = minCandidates
	}

	x.mu.RLock()
	results := x.tree.NearestNeighbors(candidates, rtreego.Point{loc.Lat, loc.Lon})
	x.mu.RUnlock()

	neighbors := make([]Neighbor, 0, len(results))
	for _, result := range results {
		item, ok := result.(*vertexItem)
		if !ok {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Vertex: item.Vertex,
			Meters: geodesy.Distance(loc, item.Location),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Meters != neighbors[j].Meters {
			return neighbors[i].Meters < neighbors[j].Meters
		}
		return neighbors[i].Seq < neighbors[j].Seq
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}
