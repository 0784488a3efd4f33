package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/justsurfingit/careerflow-dashboard/internal/services"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print jobs with their latest match result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.dashboard.Load(cmd.Context()); err != nil {
			return err
		}
		printSnapshot(cmd.OutOrStdout(), a.dashboard.Snapshot())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func printSnapshot(w io.Writer, snap services.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tTITLE\tSCORE\tMISSING SKILLS")
	for _, card := range snap.Jobs {
		score, missing := "-", ""
		if card.Feedback != nil {
			score = fmt.Sprintf("%.0f%%", card.Feedback.Score)
			missing = strings.Join(card.Feedback.MissingSkills, ", ")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", card.Job.ID, card.Job.Company, card.Job.Title, score, missing)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d jobs, %d resumes in the vault\n", len(snap.Jobs), len(snap.Resumes))
}

// printFeedback writes one normalized analysis result.
func printFeedback(w io.Writer, fb services.Feedback) {
	fmt.Fprintf(w, "Match score: %.0f%%\n", fb.Score)
	if !fb.Structured() {
		if fb.Text != "" {
			fmt.Fprintln(w, fb.Text)
		}
		return
	}
	if fb.Strength != "" {
		fmt.Fprintf(w, "Strongest match: %s\n", fb.Strength)
	}
	if len(fb.MissingSkills) > 0 {
		fmt.Fprintln(w, "Missing skills:")
		for _, s := range fb.MissingSkills {
			fmt.Fprintf(w, "  [ ] %s\n", s)
		}
	}
	if fb.ActionPlan != "" {
		fmt.Fprintf(w, "Action plan: %s\n", fb.ActionPlan)
	}
}
