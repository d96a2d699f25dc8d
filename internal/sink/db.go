package sink

import (
	"context"
	"encoding/json"

	"gridsight/internal/model"
	"gridsight/internal/traffic"
)

// DBSink writes a traffic log row per result, linked to its batch job.
type DBSink struct {
	jobUuid string
}

func NewDBSink(jobUuid string) *DBSink {
	return &DBSink{jobUuid: jobUuid}
}

func (s *DBSink) Store(_ context.Context, res *traffic.AnalysisResult) error {
	votes, err := json.Marshal(res.Votes)
	if err != nil {
		return err
	}
	return model.AddTrafficLog(&model.TrafficLog{
		JobUuid:        s.jobUuid,
		Lat:            res.Location.Lat,
		Lng:            res.Location.Lng,
		Direction:      res.Location.Direction.String(),
		Day:            res.Location.Day,
		TimeOfDay:      res.Location.Time,
		Category:       res.Category.String(),
		Confidence:     res.Confidence,
		Score:          res.Score,
		VotesJson:      string(votes),
		Status:         string(res.Status),
		ScreenshotPath: res.ScreenshotPath,
	})
}
