package traffic

import (
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"gridsight/pkg/log"
)

// CapturedImage is one rendered map view. The marker pixel is known from
// the view parameters (the renderer centers it), not detected by search.
// A CapturedImage belongs to exactly one analysis and is never shared.
type CapturedImage struct {
	Img    image.Image
	Raw    []byte // encoded PNG as captured, kept for artifact storage
	Marker image.Point
}

// Analyzer turns a captured image plus its location into a congestion
// verdict. Safe for concurrent use: the classifier and geometry are
// read-only.
type Analyzer struct {
	classifier *Classifier
	geo        Geometry
	logger     *logrus.Entry
}

func NewAnalyzer(classifier *Classifier, geo Geometry) *Analyzer {
	return &Analyzer{
		classifier: classifier,
		geo:        geo,
		logger:     log.WithComponent("analyzer"),
	}
}

// Analyze tallies classifiable sector pixels into category votes. The
// winner takes the category; ties prefer the more severe category so the
// verdict over-warns rather than under-warns. A malformed image yields a
// classify_failed result instead of an error, so one bad capture can
// never abort a batch.
func (a *Analyzer) Analyze(img *CapturedImage, loc Location) AnalysisResult {
	res := AnalysisResult{
		Location:  loc,
		Category:  CategoryUnknown,
		Timestamp: time.Now(),
		Status:    StatusSuccess,
	}

	if img == nil || img.Img == nil {
		res.Status = StatusClassifyFailed
		res.Error = "captured image is empty"
		return res
	}
	bounds := img.Img.Bounds()
	if bounds.Empty() || !img.Marker.In(bounds) {
		res.Status = StatusClassifyFailed
		res.Error = fmt.Sprintf("marker %v outside image bounds %v", img.Marker, bounds)
		return res
	}

	for _, pt := range SectorPixels(bounds, img.Marker, loc.Direction, a.geo) {
		r, g, b, _ := img.Img.At(pt.X, pt.Y).RGBA()
		cat, ok := a.classifier.Classify(RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
		if ok {
			res.Votes.add(cat)
		}
	}

	total := res.Votes.Total()
	if total == 0 {
		a.logger.Debugf("no classifiable traffic pixels at %v,%v", loc.Lat, loc.Lng)
		return res
	}

	// walk severity downward so a tie lands on the more severe category
	best := 0
	for cat := CategorySevere; cat >= CategoryFreeFlow; cat-- {
		if n := res.Votes.Count(cat); n > best {
			best = n
			res.Category = cat
		}
	}

	res.Confidence = float64(best) / float64(total)
	res.Score = a.score(res.Votes)
	return res
}

// score is the vote-weighted mean of the per-category congestion weights.
func (a *Analyzer) score(v VoteBreakdown) float64 {
	total := v.Total()
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, cat := range []CongestionCategory{CategoryFreeFlow, CategoryModerate, CategoryHeavy, CategorySevere} {
		sum += float64(v.Count(cat)) * cat.Score()
	}
	return sum / float64(total)
}
