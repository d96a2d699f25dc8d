package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"gridsight/internal/capture"
	"gridsight/internal/config"
	"gridsight/internal/dao"
	"gridsight/internal/traffic"
)

var (
	locationsFile string
	concurrency   int
)

// analyzeCommand runs a batch from a locations file without the HTTP
// server, printing results as JSON. Handy for calibration runs.
var analyzeCommand = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze locations from a file and print the verdicts",
	Run: func(cmd *cobra.Command, args []string) {
		runAnalyze()
	},
}

func init() {
	analyzeCommand.Flags().StringVarP(&locationsFile, "locations", "f", "", "YAML file with a list of locations")
	analyzeCommand.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "Concurrent capture pipelines (0 = config default)")
	analyzeCommand.MarkFlagRequired("locations")
}

func runAnalyze() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	data, err := os.ReadFile(locationsFile)
	if err != nil {
		logrus.Fatal("read locations file, ", err.Error())
	}
	var specs []dao.LocationSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		logrus.Fatal("parse locations file, ", err.Error())
	}

	locs := make([]traffic.Location, 0, len(specs))
	for i := range specs {
		loc, err := specs[i].ToLocation()
		if err != nil {
			logrus.Fatalf("location %d: %s", i, err.Error())
		}
		locs = append(locs, loc)
	}

	classifier, err := conf.NewClassifier()
	if err != nil {
		logrus.Fatal("color band configuration, ", err.Error())
	}
	analyzer := traffic.NewAnalyzer(classifier, conf.Analysis.Geometry())

	coord := traffic.NewCoordinator(
		capture.NewRenderer(conf.Capture),
		analyzer,
		traffic.WithZoom(conf.Analysis.Zoom),
	)

	limit := concurrency
	if limit <= 0 {
		limit = conf.Analysis.Concurrency
	}

	results, err := coord.AnalyzeBatch(context.Background(), locs, limit)
	if err != nil {
		logrus.Fatal("analyze batch, ", err.Error())
	}

	out := make([]dao.ResultSpec, 0, len(results))
	for i := range results {
		out = append(out, *dao.FromAnalysisResult(&results[i]))
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logrus.Fatal("encode results, ", err.Error())
	}
}
