package traffic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCapturer serves synthetic captures and records every call. failAt
// maps a latitude to the error its capture should return.
type stubCapturer struct {
	mu      sync.Mutex
	calls   int
	failAt  map[float64]error
	delay   time.Duration
	blockOn context.Context // when set, Capture waits for ctx cancellation

	inFlight    int32
	maxInFlight int32
}

func (s *stubCapturer) Capture(ctx context.Context, loc Location, view ViewParameters) (*CapturedImage, error) {
	cur := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		max := atomic.LoadInt32(&s.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt32(&s.maxInFlight, max, cur) {
			break
		}
	}

	s.mu.Lock()
	s.calls++
	err := s.failAt[loc.Lat]
	s.mu.Unlock()

	if s.blockOn != nil {
		<-s.blockOn.Done()
		return nil, s.blockOn.Err()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err != nil {
		return nil, err
	}
	return solidCapture(101, 101, freeFlowInk), nil
}

func (s *stubCapturer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingSink counts stores and remembers which locations arrived.
type recordingSink struct {
	mu     sync.Mutex
	stored []Location
	err    error
}

func (r *recordingSink) Store(ctx context.Context, res *AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, res.Location)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stored)
}

type stubArchiver struct {
	err error
}

func (s stubArchiver) Archive(ctx context.Context, loc Location, img *CapturedImage) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("/traffic/%v_%v.png", loc.Lat, loc.Lng), nil
}

func batchLocations(n int) []Location {
	locs := make([]Location, n)
	for i := range locs {
		locs[i] = Location{Lat: float64(i + 1), Lng: float64(-i - 1), Direction: 0}
	}
	return locs
}

func TestAnalyzeBatchOrderPreserved(t *testing.T) {
	capturer := &stubCapturer{delay: 2 * time.Millisecond}
	c := NewCoordinator(capturer, newTestAnalyzer(t))

	locs := batchLocations(8)
	results, err := c.AnalyzeBatch(context.Background(), locs, 3)
	require.NoError(t, err)
	require.Len(t, results, len(locs))

	for i, res := range results {
		assert.Equal(t, locs[i], res.Location, "result %d out of order", i)
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, CategoryFreeFlow, res.Category)
	}
	assert.Equal(t, len(locs), capturer.callCount())
}

func TestAnalyzeBatchPartialFailureIsolated(t *testing.T) {
	boom := errors.New("renderer exploded")
	capturer := &stubCapturer{failAt: map[float64]error{2: boom}}
	sink := &recordingSink{}
	c := NewCoordinator(capturer, newTestAnalyzer(t), WithSink(sink))

	locs := batchLocations(3)
	results, err := c.AnalyzeBatch(context.Background(), locs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusCaptureFailed, results[1].Status)
	assert.Equal(t, CategoryUnknown, results[1].Category)
	assert.Contains(t, results[1].Error, "renderer exploded")
	assert.Equal(t, StatusSuccess, results[2].Status)

	// only the two successes reach the sink
	assert.Equal(t, 2, sink.count())
}

func TestAnalyzeBatchValidatesBeforeCapture(t *testing.T) {
	capturer := &stubCapturer{}
	c := NewCoordinator(capturer, newTestAnalyzer(t))

	locs := batchLocations(3)
	locs[2].Direction = Direction(33)

	_, err := c.AnalyzeBatch(context.Background(), locs, 2)
	require.ErrorIs(t, err, ErrInvalidDirection)
	assert.ErrorContains(t, err, "location 2")
	assert.Equal(t, 0, capturer.callCount(), "no capture may start for a malformed batch")
}

func TestAnalyzeBatchRejectsBadLimit(t *testing.T) {
	c := NewCoordinator(&stubCapturer{}, newTestAnalyzer(t))
	_, err := c.AnalyzeBatch(context.Background(), batchLocations(1), 0)
	assert.Error(t, err)
	_, err = c.AnalyzeBatch(context.Background(), batchLocations(1), -5)
	assert.Error(t, err)
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	c := NewCoordinator(&stubCapturer{}, newTestAnalyzer(t))
	results, err := c.AnalyzeBatch(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAnalyzeBatchConcurrencyBounded(t *testing.T) {
	capturer := &stubCapturer{delay: 5 * time.Millisecond}
	c := NewCoordinator(capturer, newTestAnalyzer(t))

	_, err := c.AnalyzeBatch(context.Background(), batchLocations(12), 3)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&capturer.maxInFlight), int32(3))
}

func TestAnalyzeBatchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	capturer := &stubCapturer{blockOn: ctx}
	c := NewCoordinator(capturer, newTestAnalyzer(t))

	type outcome struct {
		results []AnalysisResult
		err     error
	}

	locs := batchLocations(4)
	done := make(chan outcome, 1)
	go func() {
		results, err := c.AnalyzeBatch(ctx, locs, 1)
		done <- outcome{results: results, err: err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case out := <-done:
		require.NoError(t, out.err)
		results := out.results
		require.Len(t, results, 4)
		for i, res := range results {
			assert.Equal(t, StatusCancelled, res.Status, "result %d", i)
			assert.Equal(t, locs[i], res.Location)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not unwind after cancellation")
	}
}

func TestAnalyzeOne(t *testing.T) {
	capturer := &stubCapturer{}
	sink := &recordingSink{}
	c := NewCoordinator(capturer, newTestAnalyzer(t), WithSink(sink), WithArchiver(stubArchiver{}))

	loc := Location{Lat: 40.7128, Lng: -74.006, Direction: 90}
	res, err := c.AnalyzeOne(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, CategoryFreeFlow, res.Category)
	assert.Equal(t, "/traffic/40.7128_-74.006.png", res.ScreenshotPath)
	assert.Equal(t, 1, sink.count())
}

func TestAnalyzeOneInvalidInput(t *testing.T) {
	capturer := &stubCapturer{}
	c := NewCoordinator(capturer, newTestAnalyzer(t))

	_, err := c.AnalyzeOne(context.Background(), Location{Lat: 200, Direction: DirectionNone})
	require.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.Equal(t, 0, capturer.callCount())
}

func TestAnalyzeOneSinkFailureDoesNotFailAnalysis(t *testing.T) {
	sink := &recordingSink{err: errors.New("db down")}
	c := NewCoordinator(&stubCapturer{}, newTestAnalyzer(t), WithSink(sink))

	res, err := c.AnalyzeOne(context.Background(), Location{Lat: 1, Lng: 2, Direction: 0})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, sink.count())
}

func TestAnalyzeOneArchiverFailureKeepsResult(t *testing.T) {
	c := NewCoordinator(&stubCapturer{}, newTestAnalyzer(t),
		WithArchiver(stubArchiver{err: errors.New("bucket gone")}))

	res, err := c.AnalyzeOne(context.Background(), Location{Lat: 1, Lng: 2, Direction: 0})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.ScreenshotPath)
}
