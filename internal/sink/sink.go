// Package sink holds the Result Sink implementations the coordinator can
// be wired with: database rows, NSQ fan-out and screenshot artifacts.
package sink

import (
	"context"

	"gridsight/internal/traffic"
)

// Multi fans a result out to several sinks. The first failure is
// returned, later sinks still run.
type Multi []traffic.Sink

func (m Multi) Store(ctx context.Context, res *traffic.AnalysisResult) error {
	var firstErr error
	for _, s := range m {
		if err := s.Store(ctx, res); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
