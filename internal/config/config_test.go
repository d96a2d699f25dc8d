package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridsight/internal/traffic"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitConfigOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
addr: 0.0.0.0:9000
jwtSecret: test-secret
capture:
  endpoint: http://render:8090
analysis:
  concurrency: 3
`)
	conf, err := InitConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", conf.Addr)
	assert.Equal(t, "test-secret", conf.JwtSecret)
	assert.Equal(t, "http://render:8090", conf.Capture.Endpoint)
	assert.Equal(t, 3, conf.Analysis.Concurrency)

	// values the file does not mention keep their defaults
	assert.Equal(t, 1200, conf.Capture.ViewportWidth)
	assert.Equal(t, 20, conf.Analysis.MaxBatchSize)
	assert.Equal(t, traffic.DefaultZoom, conf.Analysis.Zoom)
}

func TestInitConfigNormalizesAnalysis(t *testing.T) {
	path := writeConfigFile(t, `
analysis:
  concurrency: 0
  maxBatchSize: -1
`)
	conf, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, traffic.DefaultConcurrency, conf.Analysis.Concurrency)
	assert.Equal(t, 20, conf.Analysis.MaxBatchSize)
}

func TestInitConfigMissingFile(t *testing.T) {
	_, err := InitConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestAnalysisGeometry(t *testing.T) {
	a := DefaultAnalysisConfig()
	assert.Equal(t, traffic.DefaultGeometry(), a.Geometry())

	a.SectorHalfWidth = 60
	a.OuterRadiusMeters = 200
	geo := a.Geometry()
	assert.Equal(t, float64(60), geo.HalfWidth)
	assert.Equal(t, float64(200), geo.OuterMeters)
}

func TestColorBandsDefault(t *testing.T) {
	a := DefaultAnalysisConfig()
	bands, err := a.ColorBands()
	require.NoError(t, err)
	assert.Equal(t, traffic.DefaultBands(), bands)
}

func TestColorBandsOverride(t *testing.T) {
	a := DefaultAnalysisConfig()
	a.Bands = []BandConfig{
		{Name: "jam", Category: "severe", Min: [3]uint8{100, 0, 0}, Max: [3]uint8{150, 50, 50}},
		{Name: "clear", Category: "free_flow", Min: [3]uint8{0, 200, 0}, Max: [3]uint8{50, 255, 60}},
	}
	bands, err := a.ColorBands()
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, traffic.CategorySevere, bands[0].Category)
	assert.Equal(t, traffic.RGB{R: 100}, bands[0].Min)
	assert.Equal(t, traffic.CategoryFreeFlow, bands[1].Category)
}

func TestColorBandsBadCategory(t *testing.T) {
	a := DefaultAnalysisConfig()
	a.Bands = []BandConfig{{Name: "oops", Category: "gridlocked"}}
	_, err := a.ColorBands()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}

func TestNewClassifierFromConfig(t *testing.T) {
	conf := DefaultConfig()
	c, err := conf.NewClassifier()
	require.NoError(t, err)
	require.NotNil(t, c)

	// overlapping configured bands must fail classifier construction
	conf.Analysis.Bands = []BandConfig{
		{Name: "a", Category: "heavy", Min: [3]uint8{0, 0, 0}, Max: [3]uint8{100, 100, 100}},
		{Name: "b", Category: "severe", Min: [3]uint8{50, 50, 50}, Max: [3]uint8{200, 200, 200}},
	}
	_, err = conf.NewClassifier()
	assert.Error(t, err)
}
