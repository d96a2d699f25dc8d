package dao

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridsight/internal/traffic"
)

func TestLocationSpecToLocation(t *testing.T) {
	spec := LocationSpec{
		Lat:                 40.7128,
		Lng:                 -74.006,
		StorefrontDirection: "NE",
		Day:                 "Monday",
		Time:                "18:00",
	}
	loc, err := spec.ToLocation()
	require.NoError(t, err)
	assert.Equal(t, traffic.Direction(45), loc.Direction)
	assert.Equal(t, "monday", loc.Day)
	assert.Equal(t, "6PM", loc.Time)

	spec.StorefrontDirection = "northeastish"
	_, err = spec.ToLocation()
	assert.ErrorIs(t, err, traffic.ErrInvalidDirection)
}

func TestFromAnalysisResult(t *testing.T) {
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	res := &traffic.AnalysisResult{
		Location:       traffic.Location{Lat: 1.5, Lng: -2.5, Direction: 180, Day: "friday", Time: "10PM"},
		Category:       traffic.CategoryHeavy,
		Confidence:     0.8,
		Score:          92.5,
		Votes:          traffic.VoteBreakdown{Heavy: 80, Severe: 20},
		Timestamp:      ts,
		Status:         traffic.StatusSuccess,
		ScreenshotPath: "/traffic/2026/08/30/x.png",
	}

	spec := FromAnalysisResult(res)
	assert.Equal(t, 1.5, spec.Lat)
	assert.Equal(t, "south", spec.Direction)
	assert.Equal(t, "heavy", spec.Category)
	assert.Equal(t, "success", spec.Status)
	assert.Equal(t, "2026-08-30T12:00:00Z", spec.Timestamp)
	assert.Equal(t, res.Votes, spec.Votes)
	assert.Equal(t, "/traffic/2026/08/30/x.png", spec.ScreenshotPath)
	assert.Empty(t, spec.Error)
}
