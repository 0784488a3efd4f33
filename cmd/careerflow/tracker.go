package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/services"
	"github.com/spf13/cobra"
)

var trackerCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Show application tracker stats and entries",
	RunE:  runTracker,
}

var trackerDate string

func init() {
	trackerCmd.Flags().StringVar(&trackerDate, "date", "", "Only entries applied on this date (YYYY-MM-DD)")
	rootCmd.AddCommand(trackerCmd)
}

func runTracker(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	entries, err := a.client.ListTracker(cmd.Context())
	if err != nil {
		return err
	}
	svc := services.NewTrackerService(a.cfg.Location())
	filtered, err := svc.FilterByDate(entries, trackerDate)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := svc.Stats(entries, time.Now())
	fmt.Fprintf(out, "Total %d | Applied %d | Interviewing %d | Rejected %d | Today %d\n\n",
		stats.Total, stats.Applied, stats.Interviewing, stats.Rejected, stats.Today)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY\tROLE\tAPPLIED\tSTATUS\tSKILLS")
	if len(filtered) == 0 {
		fmt.Fprintln(tw, services.NoRecordsMessage)
	}
	for _, e := range filtered {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Company, e.Role, svc.DateOf(e), e.Status, e.RequiredSkills)
	}
	return tw.Flush()
}
