package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"gridsight/internal/version"
	"gridsight/pkg/log"
)

var (
	logLevel   string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "gridsight",
	Short: "gridsight infers road congestion from map traffic imagery",
	Long: `Renders the traffic layer around a coordinate, classifies the colors
in the storefront-facing sector and reports a congestion verdict.
Version: ` + version.VERSION + `/` + version.COMMIT,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitLog(logLevel)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "etc/config.yaml", "Path to config file")

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(analyzeCommand)
	rootCmd.AddCommand(updateDBCommand)
}
