package traffic

import (
	"fmt"
	"time"
)

// CongestionCategory orders congestion severity from free-flowing to
// jammed. CategoryUnknown means no classifiable traffic pixels were seen.
type CongestionCategory int

const (
	CategoryUnknown CongestionCategory = iota
	CategoryFreeFlow
	CategoryModerate
	CategoryHeavy
	CategorySevere
)

func (c CongestionCategory) String() string {
	switch c {
	case CategoryFreeFlow:
		return "free_flow"
	case CategoryModerate:
		return "moderate"
	case CategoryHeavy:
		return "heavy"
	case CategorySevere:
		return "severe"
	default:
		return "unknown"
	}
}

func ParseCategory(s string) (CongestionCategory, error) {
	switch s {
	case "free_flow":
		return CategoryFreeFlow, nil
	case "moderate":
		return CategoryModerate, nil
	case "heavy":
		return CategoryHeavy, nil
	case "severe":
		return CategorySevere, nil
	case "unknown":
		return CategoryUnknown, nil
	}
	return CategoryUnknown, fmt.Errorf("unknown congestion category: %q", s)
}

// Score is the 0-100 congestion weight of a single pixel vote in this
// category.
func (c CongestionCategory) Score() float64 {
	switch c {
	case CategoryFreeFlow:
		return 30
	case CategoryModerate:
		return 70
	case CategoryHeavy:
		return 100
	case CategorySevere:
		return 100
	default:
		return 0
	}
}

// ResultStatus tells a caller whether an analysis ran, and if not, which
// stage failed.
type ResultStatus string

const (
	StatusSuccess        ResultStatus = "success"
	StatusCaptureFailed  ResultStatus = "capture_failed"
	StatusClassifyFailed ResultStatus = "classify_failed"
	StatusCancelled      ResultStatus = "cancelled"
)

// VoteBreakdown counts classifiable sector pixels per category.
// Unclassified pixels are not represented anywhere in the breakdown.
type VoteBreakdown struct {
	FreeFlow int `json:"freeFlow"`
	Moderate int `json:"moderate"`
	Heavy    int `json:"heavy"`
	Severe   int `json:"severe"`
}

func (v *VoteBreakdown) add(c CongestionCategory) {
	switch c {
	case CategoryFreeFlow:
		v.FreeFlow++
	case CategoryModerate:
		v.Moderate++
	case CategoryHeavy:
		v.Heavy++
	case CategorySevere:
		v.Severe++
	}
}

func (v VoteBreakdown) Count(c CongestionCategory) int {
	switch c {
	case CategoryFreeFlow:
		return v.FreeFlow
	case CategoryModerate:
		return v.Moderate
	case CategoryHeavy:
		return v.Heavy
	case CategorySevere:
		return v.Severe
	default:
		return 0
	}
}

func (v VoteBreakdown) Total() int {
	return v.FreeFlow + v.Moderate + v.Heavy + v.Severe
}

// AnalysisResult is the verdict for one location. It is created once per
// analysis and never mutated after it is returned to the caller.
type AnalysisResult struct {
	Location       Location           `json:"location"`
	Category       CongestionCategory `json:"category"`
	Confidence     float64            `json:"confidence"`
	Score          float64            `json:"score"`
	Votes          VoteBreakdown      `json:"votes"`
	Timestamp      time.Time          `json:"timestamp"`
	Status         ResultStatus       `json:"status"`
	ScreenshotPath string             `json:"screenshotPath,omitempty"`
	Error          string             `json:"error,omitempty"`
}
