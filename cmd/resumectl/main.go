package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fadilmartias/resume-analyzer/internal/config"
	"github.com/fadilmartias/resume-analyzer/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	noColor bool
	apiURL  string
)

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "Submit resumes for analysis and fetch the results",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if apiURL == "" {
			apiURL = config.LoadPollerConfig().APIURL
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (default $API_URL or http://localhost:8800)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(submitCmd, pollCmd, pdfCmd)
}

func main() {
	_ = godotenv.Load()

	logConfig := config.LoadLoggerConfig()
	logger.Init(logger.Config{
		Level:  logConfig.Level,
		Format: "pretty",
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v", err)
		stop()
		os.Exit(1)
	}
}
