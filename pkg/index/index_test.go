package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/go-bearings/pkg/geodesy"
	"github.com/kass/go-bearings/pkg/models"
)

// square walks roughly 100 m per side around a block and closes on the origin.
var square = []models.Location{
	{Lat: 35.0, Lon: -80.0},
	{Lat: 35.0009, Lon: -80.0},
	{Lat: 35.0009, Lon: -79.9989},
	{Lat: 35.0, Lon: -79.9989},
	{Lat: 35.0, Lon: -80.0},
}

func TestNewVertexIndex(t *testing.T) {
	x := NewVertexIndex(square)
	assert.Equal(t, int64(len(square)), x.Count())

	empty := NewVertexIndex(nil)
	assert.Equal(t, int64(0), empty.Count())
	assert.Empty(t, empty.Nearest(square[0], 3))
}

func TestNearest(t *testing.T) {
	x := NewVertexIndex(square)

	near := x.Nearest(models.Location{Lat: 35.0008, Lon: -79.9990}, 2)
	require.Len(t, near, 2)
	assert.Equal(t, 2, near[0].Seq)
	assert.Equal(t, square[2], near[0].Location)
	assert.InDelta(t, geodesy.Distance(models.Location{Lat: 35.0008, Lon: -79.9990}, square[2]), near[0].Meters, 1e-9)
	assert.LessOrEqual(t, near[0].Meters, near[1].Meters)
}

func TestNearestTiesKeepTraverseOrder(t *testing.T) {
	x := NewVertexIndex(square)

	near := x.Nearest(square[0], 2)
	require.Len(t, near, 2)
	assert.Equal(t, 0, near[0].Seq)
	assert.Equal(t, 4, near[1].Seq, "closing vertex coincides with the origin")
	assert.Zero(t, near[1].Meters)
}

func TestNearestCapsAtCount(t *testing.T) {
	x := NewVertexIndex(square)
	assert.Len(t, x.Nearest(square[1], 50), len(square))
	assert.Nil(t, x.Nearest(square[1], 0))
}

func TestNearestRanksGeodesically(t *testing.T) {
	// At 60°N a degree of longitude is half a degree of latitude on the ground,
	// so planar degree distance would rank these the other way round.
	x := NewVertexIndex([]models.Location{
		{Lat: 60.0, Lon: 10.0015},
		{Lat: 60.001, Lon: 10.0},
	})

	near := x.Nearest(models.Location{Lat: 60.0, Lon: 10.0}, 1)
	require.Len(t, near, 1)
	assert.Equal(t, 0, near[0].Seq)
}

func TestQueryBox(t *testing.T) {
	x := NewVertexIndex(square)

	vertices, err := x.QueryBox(models.BoundingBox{
		BottomLeft: models.Location{Lat: 35.0005, Lon: -80.001},
		TopRight:   models.Location{Lat: 35.001, Lon: -79.9},
	})
	require.NoError(t, err)
	require.Len(t, vertices, 2)
	assert.Equal(t, 1, vertices[0].Seq)
	assert.Equal(t, 2, vertices[1].Seq)
}

func TestQueryBoxEdgesAndPoints(t *testing.T) {
	x := NewVertexIndex(square)

	vertices, err := x.QueryBox(models.BoundingBox{BottomLeft: square[0], TopRight: square[0]})
	require.NoError(t, err)
	require.Len(t, vertices, 2)
	assert.Equal(t, []int{0, 4}, []int{vertices[0].Seq, vertices[1].Seq})
}

func TestQueryBoxInvalid(t *testing.T) {
	x := NewVertexIndex(square)

	_, err := x.QueryBox(models.BoundingBox{
		BottomLeft: models.Location{Lat: 36, Lon: -80},
		TopRight:   models.Location{Lat: 35, Lon: -79},
	})
	assert.ErrorContains(t, err, "invalid bounding box")
}

func TestConcurrentInsertAndQuery(t *testing.T) {
	x := NewVertexIndex(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				seq := i*25 + j
				x.Insert(Vertex{Seq: seq, Location: models.Location{Lat: 35 + float64(seq)*1e-5, Lon: -80}})
				x.Nearest(models.Location{Lat: 35, Lon: -80}, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(200), x.Count())
	near := x.Nearest(models.Location{Lat: 35, Lon: -80}, 1)
	require.Len(t, near, 1)
	assert.Equal(t, 0, near[0].Seq, fmt.Sprintf("got %+v", near[0]))
}

func benchmarkTraverse(n int) []models.Location {
	points := make([]models.Location, n)
	for i := range points {
		points[i] = models.Location{Lat: 35 + float64(i%100)*1e-4, Lon: -80 + float64(i/100)*1e-4}
	}
	return points
}

func BenchmarkNewVertexIndex(b *testing.B) {
	points := benchmarkTraverse(10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewVertexIndex(points)
	}
}

func BenchmarkNearest(b *testing.B) {
	x := NewVertexIndex(benchmarkTraverse(10000))
	query := models.Location{Lat: 35.005, Lon: -79.995}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.Nearest(query, 5)
	}
}
