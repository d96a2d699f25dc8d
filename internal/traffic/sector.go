package traffic

import (
	"image"
	"math"
)

// Geometry holds the calibration constants for sector extraction. The
// numeric values were tuned against zoom-18 captures where one meter is
// about 1.5 pixels.
type Geometry struct {
	HalfWidth       float64 // angular half-width of a storefront sector, degrees
	PixelsPerMeter  float64
	OuterMeters     float64 // analysis radius around the marker, meters
	ExclusionRadius int     // pixels around the marker skipped, covers the pin icon
}

func DefaultGeometry() Geometry {
	return Geometry{
		HalfWidth:       45,
		PixelsPerMeter:  1.5,
		OuterMeters:     150,
		ExclusionRadius: 10,
	}
}

func (g Geometry) outerRadius(bounds image.Rectangle) int {
	outer := int(g.OuterMeters * g.PixelsPerMeter)
	// keep the sector inside the capture even for small viewports
	if m := minInt(bounds.Dx(), bounds.Dy()) / 2; outer > m {
		outer = m
	}
	return outer
}

// SectorPixels lists the pixels belonging to the storefront sector: inside
// the outer radius, outside the exclusion disk, and (for a compass
// direction) within HalfWidth degrees of the heading, with wraparound at
// 0/360. DirectionNone selects the full annulus. Pure geometry, no image
// content involved.
func SectorPixels(bounds image.Rectangle, marker image.Point, dir Direction, g Geometry) []image.Point {
	outer := g.outerRadius(bounds)
	if outer <= g.ExclusionRadius {
		return nil
	}

	var pixels []image.Point
	for y := maxInt(bounds.Min.Y, marker.Y-outer); y <= minInt(bounds.Max.Y-1, marker.Y+outer); y++ {
		for x := maxInt(bounds.Min.X, marker.X-outer); x <= minInt(bounds.Max.X-1, marker.X+outer); x++ {
			dx := float64(x - marker.X)
			dy := float64(y - marker.Y)
			dist := math.Hypot(dx, dy)
			if dist <= float64(g.ExclusionRadius) || dist > float64(outer) {
				continue
			}
			if dir != DirectionNone && angularDistance(bearing(dx, dy), dir.Heading()) > g.HalfWidth {
				continue
			}
			pixels = append(pixels, image.Pt(x, y))
		}
	}
	return pixels
}

// bearing converts a marker-relative pixel offset to a compass bearing.
// Screen y grows downward, so due north (up) is -dy.
func bearing(dx, dy float64) float64 {
	deg := math.Atan2(dx, -dy) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// angularDistance returns the shortest angle between two bearings.
func angularDistance(a, b float64) float64 {
	return math.Abs(math.Mod(a-b+540, 360) - 180)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
