package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/handlers"
	"github.com/justsurfingit/careerflow-dashboard/internal/services"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long:  "Serve the dashboard pages and JSON API. Optionally run the Gmail importer and the daily report in the same process.",
	RunE:  runServe,
}

var (
	servePort   int
	serveWatch  bool
	serveReport bool
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Also run the Gmail importer")
	serveCmd.Flags().BoolVar(&serveReport, "report", false, "Also send the daily report")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	port := a.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		importer, err := buildImporter(ctx, a, cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			log.Printf("⚠️ Gmail importer disabled: %v", err)
		} else {
			go importer.StartWatcher(ctx)
		}
	}
	if serveReport {
		reporter, err := buildReporter(a)
		if err != nil {
			return err
		}
		go reporter.Run(ctx)
	}

	h := handlers.NewHandler(a.dashboard, services.NewTrackerService(a.cfg.Location()), a.client, a.client)
	h.RequireJobURL = a.cfg.RequireJobURL

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("🚀 Server starting on port %d (gateway %s)...", port, a.client.BaseURL())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("Server stopped.")
	return nil
}
