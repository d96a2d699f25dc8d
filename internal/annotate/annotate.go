// Package annotate draws verification overlays on captured map
// screenshots: a pin head at the marker and, when a storefront facing is
// known, a cone showing which sector was analyzed.
package annotate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"

	"gocv.io/x/gocv"
	xdraw "golang.org/x/image/draw"

	"gridsight/internal/traffic"
)

const (
	pinHeadRadius = 8
	coneLength    = 52
	coneHalfWidth = 25 // degrees
)

var (
	pinFill    = color.RGBA{128, 0, 128, 255}   // purple
	coneFill   = color.RGBA{255, 105, 180, 255} // hot pink
	outlineInk = color.RGBA{0, 0, 0, 255}
)

// PinMarker returns a copy of the PNG with the marker pin and direction
// cone drawn in. The input bytes are never modified.
func PinMarker(pngBytes []byte, marker image.Point, dir traffic.Direction) ([]byte, error) {
	mat, err := gocv.IMDecode(pngBytes, gocv.IMReadColor)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("screenshot decoded to an empty image")
	}

	if dir != traffic.DirectionNone {
		heading := dir.Heading()
		cone := []image.Point{
			marker,
			conePoint(marker, heading-coneHalfWidth),
			conePoint(marker, heading+coneHalfWidth),
		}
		pts := gocv.NewPointsVectorFromPoints([][]image.Point{cone})
		gocv.FillPoly(&mat, pts, coneFill)
		pts.Close()
	}

	gocv.Circle(&mat, marker, pinHeadRadius, pinFill, -1)
	gocv.Circle(&mat, marker, pinHeadRadius, outlineInk, 1)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// conePoint projects from the marker along a compass bearing; screen y
// grows downward so north is -cos.
func conePoint(marker image.Point, bearing float64) image.Point {
	rad := bearing * math.Pi / 180
	return image.Pt(
		marker.X+int(coneLength*math.Sin(rad)),
		marker.Y-int(coneLength*math.Cos(rad)),
	)
}

// Thumbnail downscales a PNG to the given width, keeping aspect ratio.
func Thumbnail(pngBytes []byte, width int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	if b.Dx() <= width {
		return pngBytes, nil
	}

	height := b.Dy() * width / b.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
