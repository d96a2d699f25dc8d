package dao

import (
	"time"

	"gridsight/internal/traffic"
)

// LocationSpec is accepted both as API JSON and from the analyze
// command's YAML locations file.
type LocationSpec struct {
	Lat                 float64 `json:"lat" yaml:"lat" binding:"required,gte=-90,lte=90"`
	Lng                 float64 `json:"lng" yaml:"lng" binding:"required,gte=-180,lte=180"`
	StorefrontDirection string  `json:"storefrontDirection,omitempty" yaml:"storefrontDirection" binding:"omitempty,compass"`
	Day                 string  `json:"day,omitempty" yaml:"day"`
	Time                string  `json:"time,omitempty" yaml:"time"`
}

// ToLocation parses the raw request fields; direction/day/time errors
// surface here, before any capture work is scheduled.
func (s *LocationSpec) ToLocation() (traffic.Location, error) {
	return traffic.NewLocation(s.Lat, s.Lng, s.StorefrontDirection, s.Day, s.Time)
}

type AnalyzeRequest struct {
	SaveToStatic bool         `json:"saveToStatic,omitempty"`
	SaveToDb     bool         `json:"saveToDb,omitempty"`
	Location     LocationSpec `json:"location" binding:"required"`
}

type BatchAnalyzeRequest struct {
	SaveToStatic bool           `json:"saveToStatic,omitempty"`
	SaveToDb     bool           `json:"saveToDb,omitempty"`
	Locations    []LocationSpec `json:"locations" binding:"required,min=1,max=20,dive"`
}

type ResultSpec struct {
	Lat            float64               `json:"lat"`
	Lng            float64               `json:"lng"`
	Direction      string                `json:"direction"`
	Day            string                `json:"day,omitempty"`
	Time           string                `json:"time,omitempty"`
	Category       string                `json:"category"`
	Confidence     float64               `json:"confidence"`
	Score          float64               `json:"score"`
	Votes          traffic.VoteBreakdown `json:"votes"`
	Status         string                `json:"status"`
	Timestamp      string                `json:"timestamp"`
	ScreenshotPath string                `json:"screenshotPath,omitempty"`
	Error          string                `json:"error,omitempty"`
}

func FromAnalysisResult(res *traffic.AnalysisResult) *ResultSpec {
	return &ResultSpec{
		Lat:            res.Location.Lat,
		Lng:            res.Location.Lng,
		Direction:      res.Location.Direction.String(),
		Day:            res.Location.Day,
		Time:           res.Location.Time,
		Category:       res.Category.String(),
		Confidence:     res.Confidence,
		Score:          res.Score,
		Votes:          res.Votes,
		Status:         string(res.Status),
		Timestamp:      res.Timestamp.Format(time.RFC3339),
		ScreenshotPath: res.ScreenshotPath,
		Error:          res.Error,
	}
}

type AnalyzeResponse struct {
	RequestId     string     `json:"requestId"`
	Result        ResultSpec `json:"result"`
	SavedToDb     bool       `json:"savedToDb"`
	SavedToStatic bool       `json:"savedToStatic"`
}

type BatchAnalyzeResponse struct {
	RequestId      string       `json:"requestId"`
	LocationsCount int          `json:"locationsCount"`
	Completed      int          `json:"completed"`
	Result         []ResultSpec `json:"result"`
	SavedToDb      bool         `json:"savedToDb"`
	SavedToStatic  bool         `json:"savedToStatic"`
	Error          string       `json:"error,omitempty"`
}
