package dao

import (
	"encoding/json"
	"errors"
	"time"

	"gridsight/internal/model"
	"gridsight/internal/traffic"
)

type TrafficLogSpec struct {
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
	ScreenshotPath string                `json:"screenshotPath,omitempty"`
	CreateTime     string                `json:"createTime"`
}

func FromTrafficLogModel(l *model.TrafficLog) *TrafficLogSpec {
	spec := &TrafficLogSpec{
		Lat:            l.Lat,
		Lng:            l.Lng,
		Direction:      l.Direction,
		Day:            l.Day,
		Time:           l.TimeOfDay,
		Category:       l.Category,
		Confidence:     l.Confidence,
		Score:          l.Score,
		Status:         l.Status,
		ScreenshotPath: l.ScreenshotPath,
		CreateTime:     l.CreateTime.Format(time.RFC3339),
	}
	if l.VotesJson != "" {
		_ = json.Unmarshal([]byte(l.VotesJson), &spec.Votes)
	}
	return spec
}

type BatchJobSpec struct {
	Uuid           string           `json:"uuid"`
	LocationsCount int              `json:"locationsCount"`
	Completed      int              `json:"completed"`
	SavedToStatic  bool             `json:"savedToStatic"`
	CreateTime     string           `json:"createTime"`
	Logs           []TrafficLogSpec `json:"logs,omitempty"`
}

func FromBatchJobModel(job *model.BatchJob) (*BatchJobSpec, error) {
	if job == nil {
		return nil, errors.New("batch job is nil")
	}
	return &BatchJobSpec{
		Uuid:           job.Uuid,
		LocationsCount: job.LocationsCount,
		Completed:      job.Completed,
		SavedToStatic:  job.SavedToStatic,
		CreateTime:     job.CreateTime.Format(time.RFC3339),
	}, nil
}

type ListBatchJobsResponse struct {
	Total int64          `json:"total"`
	Items []BatchJobSpec `json:"items"`
}
