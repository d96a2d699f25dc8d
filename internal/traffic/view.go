package traffic

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultZoom is the map zoom level the color calibration was tuned at
// (roughly a 20m scale bar).
const DefaultZoom = 18

// Slider positions, in percent of the track, for the typical-traffic
// time control. Clock strings not listed fall back to defaultTimePercent
// (about 9AM).
var timeSliderPercents = map[string]float64{
	"8:30AM": 16,
	"6PM":    75,
	"10PM":   99.9,
}

const defaultTimePercent = 19

// ViewParameters is the deterministic map view derived from a Location.
// Two locations with the same coordinates, zoom and day/time produce
// identical ViewParameters, so Key() is a valid cache key.
type ViewParameters struct {
	Lat         float64
	Lng         float64
	Zoom        int
	DayIndex    int     // typical-traffic day, sunday=0; -1 in live mode
	TimePercent float64 // typical-traffic slider position; -1 in live mode
}

// NewViewParameters derives the view for a location. A zoom <= 0 selects
// DefaultZoom.
func NewViewParameters(loc Location, zoom int) ViewParameters {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	v := ViewParameters{
		Lat:         loc.Lat,
		Lng:         loc.Lng,
		Zoom:        zoom,
		DayIndex:    -1,
		TimePercent: -1,
	}
	if !loc.Historical() {
		return v
	}

	v.DayIndex, _ = ParseDay(loc.Day)
	if v.DayIndex < 0 {
		v.DayIndex = 0
	}
	clock, _ := NormalizeClock(loc.Time)
	if p, ok := timeSliderPercents[clock]; ok {
		v.TimePercent = p
	} else {
		v.TimePercent = defaultTimePercent
	}
	return v
}

// Historical reports whether the view selects the typical-traffic layer.
func (v ViewParameters) Historical() bool {
	return v.DayIndex >= 0
}

// MapURL returns the map URL with the traffic layer enabled.
func (v ViewParameters) MapURL() string {
	return fmt.Sprintf("https://www.google.com/maps/@%s,%s,%dz/data=!5m1!1e1?hl=en&gl=us",
		formatCoord(v.Lat), formatCoord(v.Lng), v.Zoom)
}

// Key returns a deterministic, filename-safe encoding of the view.
func (v ViewParameters) Key() string {
	parts := []string{
		formatCoord(v.Lat),
		formatCoord(v.Lng),
		strconv.Itoa(v.Zoom),
	}
	if v.Historical() {
		parts = append(parts, strconv.Itoa(v.DayIndex),
			strings.ReplaceAll(strconv.FormatFloat(v.TimePercent, 'f', -1, 64), ".", "-"))
	} else {
		parts = append(parts, "live")
	}
	return strings.Join(parts, "_")
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
