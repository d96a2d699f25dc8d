package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// BatchJob records one analyze request, single or batch.
type BatchJob struct {
	Id             int       `json:"id" gorm:"primaryKey"`
	Uuid           string    `json:"uuid" gorm:"type:char(32);uniqueIndex"`
	UserId         int       `json:"user_id" gorm:"index"`
	LocationsCount int       `json:"locations_count" gorm:"NOT NULL"`
	Completed      int       `json:"completed" gorm:"default:0"`
	SavedToStatic  bool      `json:"saved_to_static" gorm:"default:false"`
	CreateTime     time.Time `json:"create_time" gorm:"datetime;autoCreateTime"`
}

func AddBatchJob(job *BatchJob) error {
	return DB.Create(job).Error
}

func UpdateBatchJob(job *BatchJob) error {
	return DB.Save(job).Error
}

func GetBatchJobByUuid(uuid string) (*BatchJob, error) {
	var job BatchJob
	if err := DB.Where("uuid = ?", uuid).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func ListBatchJobs(start, limit int) ([]BatchJob, int64, error) {
	var jobs []BatchJob
	var total int64
	if err := DB.Model(&BatchJob{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := DB.Model(&BatchJob{}).Order("id DESC").Offset(start).Limit(limit).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// TrafficLog is one location's verdict inside a batch job.
type TrafficLog struct {
	Id             int       `json:"id" gorm:"primaryKey"`
	JobUuid        string    `json:"job_uuid" gorm:"type:char(32);index"`
	Lat            float64   `json:"lat" gorm:"NOT NULL"`
	Lng            float64   `json:"lng" gorm:"NOT NULL"`
	Direction      string    `json:"direction" gorm:"type:char(16)"`
	Day            string    `json:"day" gorm:"type:char(16)"`
	TimeOfDay      string    `json:"time_of_day" gorm:"type:char(16)"`
	Category       string    `json:"category" gorm:"type:char(16);index"`
	Confidence     float64   `json:"confidence"`
	Score          float64   `json:"score"`
	VotesJson      string    `json:"votes_json" gorm:"type:text"`
	Status         string    `json:"status" gorm:"type:char(16)"`
	ScreenshotPath string    `json:"screenshot_path" gorm:"type:varchar(512)"`
	CreateTime     time.Time `json:"create_time" gorm:"datetime;autoCreateTime"`
}

func AddTrafficLog(log *TrafficLog) error {
	return DB.Create(log).Error
}

func ListTrafficLogsByJobUuid(jobUuid string) ([]TrafficLog, error) {
	var logs []TrafficLog
	if err := DB.Where("job_uuid = ?", jobUuid).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
