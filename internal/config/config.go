package config

import (
	"fmt"

	"gridsight/internal/cache"
	"gridsight/internal/capture"
	"gridsight/internal/model"
	"gridsight/internal/sink"
	"gridsight/internal/traffic"
)

// BandConfig overrides one calibrated color band from YAML.
type BandConfig struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Min      [3]uint8 `yaml:"min"`
	Max      [3]uint8 `yaml:"max"`
}

type AnalysisConfig struct {
	Zoom              int          `yaml:"zoom"`
	Concurrency       int          `yaml:"concurrency"`
	MaxBatchSize      int          `yaml:"maxBatchSize"`
	SectorHalfWidth   float64      `yaml:"sectorHalfWidthDeg"`
	PixelsPerMeter    float64      `yaml:"pixelsPerMeter"`
	OuterRadiusMeters float64      `yaml:"outerRadiusMeters"`
	ExclusionRadiusPx int          `yaml:"exclusionRadiusPx"`
	Bands             []BandConfig `yaml:"bands"`
}

func DefaultAnalysisConfig() AnalysisConfig {
	geo := traffic.DefaultGeometry()
	return AnalysisConfig{
		Zoom:              traffic.DefaultZoom,
		Concurrency:       traffic.DefaultConcurrency,
		MaxBatchSize:      20,
		SectorHalfWidth:   geo.HalfWidth,
		PixelsPerMeter:    geo.PixelsPerMeter,
		OuterRadiusMeters: geo.OuterMeters,
		ExclusionRadiusPx: geo.ExclusionRadius,
	}
}

// Geometry converts the calibration numbers into the core's form.
func (a AnalysisConfig) Geometry() traffic.Geometry {
	return traffic.Geometry{
		HalfWidth:       a.SectorHalfWidth,
		PixelsPerMeter:  a.PixelsPerMeter,
		OuterMeters:     a.OuterRadiusMeters,
		ExclusionRadius: a.ExclusionRadiusPx,
	}
}

// ColorBands returns the configured band table, or the built-in
// calibration when none is given.
func (a AnalysisConfig) ColorBands() ([]traffic.ColorBand, error) {
	if len(a.Bands) == 0 {
		return traffic.DefaultBands(), nil
	}
	bands := make([]traffic.ColorBand, 0, len(a.Bands))
	for _, b := range a.Bands {
		cat, err := traffic.ParseCategory(b.Category)
		if err != nil {
			return nil, fmt.Errorf("band %q: %w", b.Name, err)
		}
		bands = append(bands, traffic.ColorBand{
			Name:     b.Name,
			Min:      traffic.RGB{R: b.Min[0], G: b.Min[1], B: b.Min[2]},
			Max:      traffic.RGB{R: b.Max[0], G: b.Max[1], B: b.Max[2]},
			Category: cat,
		})
	}
	return bands, nil
}

type Config struct {
	Addr      string         `yaml:"addr"`
	SSLCert   string         `yaml:"sslCert"`
	SSLKey    string         `yaml:"sslKey"`
	JwtSecret string         `yaml:"jwtSecret"`
	DB        model.DBConfig `yaml:"db"`
	S3        sink.S3Config  `yaml:"s3"`
	NSQ       sink.NSQConfig `yaml:"nsq"`
	Capture   capture.Config `yaml:"capture"`
	Cache     cache.Config   `yaml:"cache"`
	Analysis  AnalysisConfig `yaml:"analysis"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:     "127.0.0.1:8081",
		DB:       *model.DefaultDBConfig(),
		S3:       sink.DefaultS3Config(),
		NSQ:      sink.NSQConfig{}, // publishing off unless an nsqd addr is set
		Capture:  capture.DefaultConfig(),
		Cache:    cache.DefaultConfig(),
		Analysis: DefaultAnalysisConfig(),
	}
}

// NewClassifier builds the classifier from the configured bands. A bad
// band table is a startup-fatal configuration error.
func (c *Config) NewClassifier() (*traffic.Classifier, error) {
	bands, err := c.Analysis.ColorBands()
	if err != nil {
		return nil, err
	}
	return traffic.NewClassifier(bands)
}
