package traffic

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidDirection  = errors.New("invalid storefront direction")
	ErrInvalidDay        = errors.New("invalid day of week")
	ErrInvalidTime       = errors.New("invalid time of day")
	ErrInvalidCoordinate = errors.New("coordinate out of range")
)

// Direction is a storefront facing expressed as a compass heading in
// degrees clockwise from north. DirectionNone means no facing was given
// and the whole area around the marker is analyzed.
type Direction int

const DirectionNone Direction = -1

var directionHeadings = map[string]Direction{
	"north":     0,
	"n":         0,
	"northeast": 45,
	"ne":        45,
	"east":      90,
	"e":         90,
	"southeast": 135,
	"se":        135,
	"south":     180,
	"s":         180,
	"southwest": 225,
	"sw":        225,
	"west":      270,
	"w":         270,
	"northwest": 315,
	"nw":        315,
}

// ParseDirection accepts the eight compass points in long or short form,
// case-insensitive. Empty string and "none" select DirectionNone.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return DirectionNone, nil
	}
	if d, ok := directionHeadings[s]; ok {
		return d, nil
	}
	return DirectionNone, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Heading returns the canonical heading in degrees.
func (d Direction) Heading() float64 {
	return float64(d)
}

func (d Direction) String() string {
	switch d {
	case 0:
		return "north"
	case 45:
		return "northeast"
	case 90:
		return "east"
	case 135:
		return "southeast"
	case 180:
		return "south"
	case 225:
		return "southwest"
	case 270:
		return "west"
	case 315:
		return "northwest"
	default:
		return "none"
	}
}

var dayIndexes = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// ParseDay maps a weekday name to the traffic layer's day index
// (sunday=0). Empty string and "today" return -1, meaning live mode.
func ParseDay(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "today" {
		return -1, nil
	}
	if idx, ok := dayIndexes[s]; ok {
		return idx, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

var (
	clock12Re = regexp.MustCompile(`^(1[0-2]|[1-9])(?::([0-5]\d))?([AP]M)$`)
	clock24Re = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

// NormalizeClock parses a wall-clock string, either 12-hour with AM/PM
// ("6PM", "8:30AM") or 24-hour ("18:00"), and returns the canonical
// 12-hour form with a zero-minute part dropped. Empty input stays empty
// (live mode).
func NormalizeClock(s string) (string, error) {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if s == "" {
		return "", nil
	}

	if m := clock24Re.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		meridiem := "AM"
		if hour >= 12 {
			meridiem = "PM"
		}
		hour12 := hour % 12
		if hour12 == 0 {
			hour12 = 12
		}
		s = fmt.Sprintf("%d:%s%s", hour12, m[2], meridiem)
	}

	m := clock12Re.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if m[2] == "" || m[2] == "00" {
		return m[1] + m[3], nil
	}
	return m[1] + ":" + m[2] + m[3], nil
}

// Location is one analysis request: a coordinate plus optional storefront
// facing and historical day/time selectors. Day and Time empty together
// mean live traffic.
type Location struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Direction Direction `json:"direction"`
	Day       string    `json:"day,omitempty"`
	Time      string    `json:"time,omitempty"`
}

// NewLocation parses and validates the raw request fields into a Location.
func NewLocation(lat, lng float64, direction, day, clock string) (Location, error) {
	loc := Location{Lat: lat, Lng: lng}

	if lat < -90 || lat > 90 {
		return loc, fmt.Errorf("%w: lat %v", ErrInvalidCoordinate, lat)
	}
	if lng < -180 || lng > 180 {
		return loc, fmt.Errorf("%w: lng %v", ErrInvalidCoordinate, lng)
	}

	dir, err := ParseDirection(direction)
	if err != nil {
		return loc, err
	}
	loc.Direction = dir

	if _, err := ParseDay(day); err != nil {
		return loc, err
	}
	if day != "" && strings.ToLower(strings.TrimSpace(day)) != "today" {
		loc.Day = strings.ToLower(strings.TrimSpace(day))
	}

	t, err := NormalizeClock(clock)
	if err != nil {
		return loc, err
	}
	loc.Time = t

	return loc, nil
}

// Validate rechecks a directly constructed Location.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: lat %v", ErrInvalidCoordinate, l.Lat)
	}
	if l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("%w: lng %v", ErrInvalidCoordinate, l.Lng)
	}
	if l.Direction != DirectionNone {
		if _, ok := directionHeadings[l.Direction.String()]; !ok {
			return fmt.Errorf("%w: heading %d", ErrInvalidDirection, int(l.Direction))
		}
	}
	if _, err := ParseDay(l.Day); err != nil {
		return err
	}
	if _, err := NormalizeClock(l.Time); err != nil {
		return err
	}
	return nil
}

// Historical reports whether the location asks for typical traffic at a
// specific day/time instead of live traffic.
func (l Location) Historical() bool {
	return l.Day != "" || l.Time != ""
}
