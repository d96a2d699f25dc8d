package traffic

import (
	"errors"
	"fmt"
)

// RGB is a pixel color in the 8-bit RGB space the bands are authored in.
type RGB struct {
	R, G, B uint8
}

// ColorBand maps a contiguous RGB box to one congestion category. Bands
// form an ordered list and the first matching band wins.
type ColorBand struct {
	Name     string
	Min, Max RGB
	Category CongestionCategory
}

func (b ColorBand) contains(p RGB) bool {
	return p.R >= b.Min.R && p.R <= b.Max.R &&
		p.G >= b.Min.G && p.G <= b.Max.G &&
		p.B >= b.Min.B && p.B <= b.Max.B
}

func (b ColorBand) overlaps(o ColorBand) bool {
	return b.Min.R <= o.Max.R && o.Min.R <= b.Max.R &&
		b.Min.G <= o.Max.G && o.Min.G <= b.Max.G &&
		b.Min.B <= o.Max.B && o.Min.B <= b.Max.B
}

// DefaultBands is the hand-tuned calibration for the map's traffic layer
// colors. Gray roads (no congestion data) deliberately match no band.
func DefaultBands() []ColorBand {
	return []ColorBand{
		{Name: "dark_red", Min: RGB{140, 0, 0}, Max: RGB{200, 70, 70}, Category: CategorySevere},
		{Name: "red", Min: RGB{220, 50, 40}, Max: RGB{255, 110, 90}, Category: CategoryHeavy},
		{Name: "yellow", Min: RGB{230, 170, 40}, Max: RGB{255, 230, 100}, Category: CategoryModerate},
		{Name: "green", Min: RGB{0, 180, 120}, Max: RGB{60, 255, 190}, Category: CategoryFreeFlow},
	}
}

// Classifier buckets raw pixel colors into congestion categories. It is
// immutable once constructed, so one instance is shared by all concurrent
// analyses.
type Classifier struct {
	bands []ColorBand
}

// NewClassifier validates the band table. An empty or contradictory table
// is a configuration error and should be fatal at process start.
func NewClassifier(bands []ColorBand) (*Classifier, error) {
	if len(bands) == 0 {
		return nil, errors.New("color band table is empty")
	}
	for i, b := range bands {
		if b.Name == "" {
			return nil, fmt.Errorf("band %d has no name", i)
		}
		if b.Category == CategoryUnknown {
			return nil, fmt.Errorf("band %q maps to unknown category", b.Name)
		}
		if b.Min.R > b.Max.R || b.Min.G > b.Max.G || b.Min.B > b.Max.B {
			return nil, fmt.Errorf("band %q has inverted bounds", b.Name)
		}
		for _, prev := range bands[:i] {
			if b.overlaps(prev) {
				return nil, fmt.Errorf("bands %q and %q overlap", prev.Name, b.Name)
			}
		}
	}
	owned := make([]ColorBand, len(bands))
	copy(owned, bands)
	return &Classifier{bands: owned}, nil
}

// Classify returns the category for a pixel color. The second return is
// false when no band matches; such pixels are excluded from the vote,
// they are not CategoryUnknown.
func (c *Classifier) Classify(p RGB) (CongestionCategory, bool) {
	for _, b := range c.bands {
		if b.contains(p) {
			return b.Category, true
		}
	}
	return CategoryUnknown, false
}
