package traffic

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectorSet(bounds image.Rectangle, marker image.Point, dir Direction, g Geometry) map[image.Point]bool {
	set := make(map[image.Point]bool)
	for _, p := range SectorPixels(bounds, marker, dir, g) {
		set[p] = true
	}
	return set
}

func TestSectorNorthFacing(t *testing.T) {
	bounds := image.Rect(0, 0, 101, 101)
	marker := image.Pt(50, 50)
	set := sectorSet(bounds, marker, 0, DefaultGeometry())
	require.NotEmpty(t, set)

	// due north of the marker, inside the annulus
	assert.True(t, set[image.Pt(50, 20)])
	// due south is 180 degrees off a 45 degree half-width
	assert.False(t, set[image.Pt(50, 80)])
	// due east and west sit exactly on the boundary; 90 > 45
	assert.False(t, set[image.Pt(80, 50)])
	assert.False(t, set[image.Pt(20, 50)])
	// 45 degrees off heading is inclusive
	assert.True(t, set[image.Pt(70, 30)])
}

func TestSectorWraparound(t *testing.T) {
	bounds := image.Rect(0, 0, 101, 101)
	marker := image.Pt(50, 50)
	set := sectorSet(bounds, marker, 0, DefaultGeometry())

	// bearings just either side of due north must both be included even
	// though they sit on opposite sides of the 0/360 seam
	assert.True(t, set[image.Pt(53, 30)], "dx=3 dy=-20, bearing ~8.5 degrees")
	assert.True(t, set[image.Pt(47, 30)], "dx=-3 dy=-20, bearing ~351 degrees")
}

func TestSectorExclusionDisk(t *testing.T) {
	bounds := image.Rect(0, 0, 101, 101)
	marker := image.Pt(50, 50)
	g := DefaultGeometry()
	set := sectorSet(bounds, marker, 0, g)

	assert.False(t, set[marker])
	assert.False(t, set[image.Pt(50, 45)], "inside the pin exclusion disk")
	assert.True(t, set[image.Pt(50, 39)], "just outside the exclusion disk")
}

func TestSectorNoDirectionIsFullAnnulus(t *testing.T) {
	bounds := image.Rect(0, 0, 101, 101)
	marker := image.Pt(50, 50)
	set := sectorSet(bounds, marker, DirectionNone, DefaultGeometry())

	assert.True(t, set[image.Pt(50, 20)], "north")
	assert.True(t, set[image.Pt(80, 50)], "east")
	assert.True(t, set[image.Pt(50, 80)], "south")
	assert.True(t, set[image.Pt(20, 50)], "west")
	assert.False(t, set[marker])
}

func TestSectorOuterRadiusClampedToViewport(t *testing.T) {
	// 150m * 1.5 px/m = 225px, but a 60x60 capture only allows 30
	bounds := image.Rect(0, 0, 60, 60)
	marker := image.Pt(30, 30)
	pixels := SectorPixels(bounds, marker, DirectionNone, DefaultGeometry())
	require.NotEmpty(t, pixels)
	for _, p := range pixels {
		assert.True(t, p.In(bounds), "pixel %v escapes the capture", p)
	}
	assert.Contains(t, pixels, image.Pt(30, 0), "clamped outer radius boundary is inclusive")
	assert.NotContains(t, pixels, image.Pt(0, 0))
}

func TestSectorDegenerateGeometry(t *testing.T) {
	g := DefaultGeometry()
	// viewport so small the clamped outer radius sinks inside the
	// exclusion disk
	pixels := SectorPixels(image.Rect(0, 0, 16, 16), image.Pt(8, 8), DirectionNone, g)
	assert.Empty(t, pixels)
}

func TestBearing(t *testing.T) {
	assert.InDelta(t, 0, bearing(0, -10), 1e-9)
	assert.InDelta(t, 90, bearing(10, 0), 1e-9)
	assert.InDelta(t, 180, bearing(0, 10), 1e-9)
	assert.InDelta(t, 270, bearing(-10, 0), 1e-9)
	assert.InDelta(t, 45, bearing(10, -10), 1e-9)
}

func TestAngularDistance(t *testing.T) {
	assert.InDelta(t, 0, angularDistance(10, 10), 1e-9)
	assert.InDelta(t, 20, angularDistance(350, 10), 1e-9)
	assert.InDelta(t, 180, angularDistance(0, 180), 1e-9)
	assert.InDelta(t, 90, angularDistance(315, 45), 1e-9)
}
