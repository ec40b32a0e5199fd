package main

import (
	"os"

	"github.com/spf13/cobra"

	"flockscope/internal/version"
	"flockscope/pkg/log"
)

var (
	logLevel   string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "flockscope",
	Short: "flockscope counts and sizes birds in CCTV video",
	Long: `flockscope detects, tracks and counts birds in CCTV video and
estimates a per-bird weight proxy from bounding box areas.
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
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "etc/flockscope.yaml", "Path to config file")

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(analyzeCommand)
	rootCmd.AddCommand(recordCommand)
	rootCmd.AddCommand(updateDBCommand)
	rootCmd.AddCommand(tokenCommand)
	rootCmd.AddCommand(schemaCommand)
}

func main() {
	Execute()
}
