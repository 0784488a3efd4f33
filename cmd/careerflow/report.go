package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/justsurfingit/careerflow-dashboard/internal/services"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Email today's application summary",
	Long:  "Build today's tracker summary and email it. With --daemon, send it every day at REPORT_TIME in REPORT_TIMEZONE.",
	RunE:  runReport,
}

var (
	reportDryRun bool
	reportDaemon bool
)

func init() {
	reportCmd.Flags().BoolVar(&reportDryRun, "dry-run", false, "Print the report instead of sending it")
	reportCmd.Flags().BoolVar(&reportDaemon, "daemon", false, "Keep running and send daily")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	reporter, err := buildReporter(a)
	if err != nil {
		return err
	}

	if reportDaemon {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		reporter.Run(ctx)
		return nil
	}

	out := cmd.OutOrStdout()
	if reportDryRun {
		report, err := reporter.Build(cmd.Context())
		if err != nil {
			return err
		}
		if report == nil {
			fmt.Fprintln(out, "No applications today.")
			return nil
		}
		fmt.Fprintf(out, "Subject: %s\n\n%s", report.Subject(), report.Body())
		return nil
	}

	report, err := reporter.SendNow(cmd.Context())
	if errors.Is(err, services.ErrNothingToReport) {
		fmt.Fprintln(out, "No applications today. Nothing sent.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sent %q to %s.\n", report.Subject(), a.cfg.Report.Recipient)
	return nil
}

func buildReporter(a *app) (*services.ReportService, error) {
	hour, minute, err := a.cfg.Report.Clock()
	if err != nil {
		return nil, err
	}
	var mailer services.Mailer
	if a.cfg.Report.MailEnabled() {
		r := a.cfg.Report
		mailer = services.NewSMTPMailer(r.SMTPAddr, r.User, r.Password, r.Recipient)
	}
	return services.NewReportService(a.client, mailer, a.cfg.Report.Location(), hour, minute), nil
}

