package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// LoadYAMLConfig load config from filename in YAML format
func LoadYAMLConfig(filename string, cfg interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("ReadFile: %w", err)
	}
	return yaml.Unmarshal(data, cfg)
}

// InitConfig loads the YAML file over DefaultConfig and normalizes the
// analysis knobs so a partial file cannot zero them out.
func InitConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()

	if err := LoadYAMLConfig(configPath, conf); err != nil {
		return nil, err
	}

	if conf.Analysis.Concurrency <= 0 {
		conf.Analysis.Concurrency = DefaultAnalysisConfig().Concurrency
	}
	if conf.Analysis.MaxBatchSize <= 0 {
		conf.Analysis.MaxBatchSize = DefaultAnalysisConfig().MaxBatchSize
	}
	if conf.Analysis.Zoom <= 0 {
		conf.Analysis.Zoom = DefaultAnalysisConfig().Zoom
	}

	return conf, nil
}
