// Package main is the careerflow command: the web dashboard, a terminal dashboard,
// the Gmail importer and the daily report.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/justsurfingit/careerflow-dashboard/internal/backend"
	"github.com/justsurfingit/careerflow-dashboard/internal/config"
	"github.com/justsurfingit/careerflow-dashboard/internal/services"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "careerflow",
	Short:         "CareerFlow AI dashboard client",
	Long:          "CareerFlow AI tracks job postings, stores resumes and shows AI match feedback from the CareerFlow gateway.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var apiURL string

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Gateway base URL (overrides CAREERFLOW_API_URL)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles what most commands need.
type app struct {
	cfg       *config.Config
	client    *backend.Client
	dashboard *services.DashboardService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.BackendURL = strings.TrimRight(apiURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	client := backend.NewClient(cfg.BackendURL, &backend.Options{
		JobsPath: cfg.JobsPath,
		Timeout:  cfg.HTTPTimeout,
	})
	dash := services.NewDashboardService(client, services.DashboardOptions{
		RequireJobURL:      cfg.RequireJobURL,
		HistoryConcurrency: cfg.HistoryConcurrency,
	})
	return &app{cfg: cfg, client: client, dashboard: dash}, nil
}
