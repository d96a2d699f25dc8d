package traffic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gridsight/pkg/log"
)

// DefaultConcurrency bounds how many capture pipelines run at once when
// the caller does not say otherwise.
const DefaultConcurrency = 5

// Capturer renders the traffic map view for a location and hands back the
// screenshot. Implementations live outside the core (internal/capture);
// the coordinator treats capture as an opaque, fallible call.
type Capturer interface {
	Capture(ctx context.Context, loc Location, view ViewParameters) (*CapturedImage, error)
}

// Sink receives each finalized result at most once. A sink failure is
// logged and never fails the analysis itself.
type Sink interface {
	Store(ctx context.Context, res *AnalysisResult) error
}

// Archiver persists the captured screenshot of a successful analysis and
// returns the stored artifact path.
type Archiver interface {
	Archive(ctx context.Context, loc Location, img *CapturedImage) (string, error)
}

// Coordinator runs capture+analyze pipelines over locations with bounded
// concurrency. Each location's pipeline is fully isolated: no shared
// mutable state beyond the read-only classifier configuration and the
// per-index output slots.
type Coordinator struct {
	capturer Capturer
	analyzer *Analyzer
	sink     Sink
	archiver Archiver
	zoom     int
	logger   *logrus.Entry
}

type CoordinatorOption func(*Coordinator)

func WithSink(s Sink) CoordinatorOption {
	return func(c *Coordinator) { c.sink = s }
}

func WithArchiver(a Archiver) CoordinatorOption {
	return func(c *Coordinator) { c.archiver = a }
}

func WithZoom(zoom int) CoordinatorOption {
	return func(c *Coordinator) { c.zoom = zoom }
}

func WithLogger(l *logrus.Entry) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

func NewCoordinator(capturer Capturer, analyzer *Analyzer, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		capturer: capturer,
		analyzer: analyzer,
		zoom:     DefaultZoom,
		logger:   log.WithComponent("coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeOne runs the pipeline for a single location. Malformed input is
// rejected here, before any capture work is spent on it.
func (c *Coordinator) AnalyzeOne(ctx context.Context, loc Location) (AnalysisResult, error) {
	if err := loc.Validate(); err != nil {
		return AnalysisResult{}, err
	}
	res := c.run(ctx, loc)
	if res.Status == StatusSuccess && c.sink != nil {
		c.store(ctx, &res)
	}
	return res, nil
}

// AnalyzeBatch fans the pipeline out over locations with at most limit
// running concurrently and returns one result per input, index-aligned.
// Locations are dispatched FIFO by index; a per-location failure lands in
// that index's result and never aborts siblings. All locations are
// validated before the first capture is attempted.
func (c *Coordinator) AnalyzeBatch(ctx context.Context, locs []Location, limit int) ([]AnalysisResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("concurrency limit must be positive, got %d", limit)
	}
	for i, loc := range locs {
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("location %d: %w", i, err)
		}
	}

	results := make([]AnalysisResult, len(locs))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

dispatch:
	for i := range locs {
		select {
		case <-ctx.Done():
			// keep the result sequence index-complete on cancellation
			for j := i; j < len(locs); j++ {
				results[j] = cancelledResult(locs[j])
			}
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, loc Location) {
			defer wg.Done()
			defer func() { <-sem }()

			res := c.run(ctx, loc)
			if res.Status == StatusSuccess && c.sink != nil {
				// store before the slot frees, so at most limit results
				// are ever pending storage
				c.store(ctx, &res)
			}
			results[i] = res
		}(i, locs[i])
	}

	wg.Wait()
	return results, nil
}

func (c *Coordinator) run(ctx context.Context, loc Location) AnalysisResult {
	view := NewViewParameters(loc, c.zoom)

	img, err := c.capturer.Capture(ctx, loc, view)
	if err != nil {
		status := StatusCaptureFailed
		if ctx.Err() != nil {
			status = StatusCancelled
		}
		c.logger.WithError(err).Warnf("capture failed for %v,%v", loc.Lat, loc.Lng)
		return AnalysisResult{
			Location:  loc,
			Category:  CategoryUnknown,
			Timestamp: time.Now(),
			Status:    status,
			Error:     err.Error(),
		}
	}

	res := c.analyzer.Analyze(img, loc)
	if res.Status == StatusSuccess && c.archiver != nil {
		path, err := c.archiver.Archive(ctx, loc, img)
		if err != nil {
			c.logger.WithError(err).Warnf("archive screenshot failed for %v,%v", loc.Lat, loc.Lng)
		} else {
			res.ScreenshotPath = path
		}
	}
	return res
}

func (c *Coordinator) store(ctx context.Context, res *AnalysisResult) {
	if err := c.sink.Store(ctx, res); err != nil {
		c.logger.WithError(err).Warnf("store result failed for %v,%v", res.Location.Lat, res.Location.Lng)
	}
}

func cancelledResult(loc Location) AnalysisResult {
	return AnalysisResult{
		Location:  loc,
		Category:  CategoryUnknown,
		Timestamp: time.Now(),
		Status:    StatusCancelled,
		Error:     context.Canceled.Error(),
	}
}
