package main

import (
	"fmt"
	"strconv"

	"github.com/justsurfingit/careerflow-dashboard/internal/services"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze JOB_ID RESUME_ID",
	Short: "Score a resume against a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID, resumeID, err := parseIDs(args[0], args[1])
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		a.dashboard.SelectResume(jobID, resumeID)
		fmt.Fprintln(cmd.ErrOrStderr(), "Analyzing...")
		res, err := a.dashboard.Analyze(cmd.Context(), jobID)
		if err != nil {
			return err
		}
		printFeedback(cmd.OutOrStdout(), services.NormalizeFeedback(res))
		return nil
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results JOB_ID",
	Short: "Show the latest analysis for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		res, err := a.client.LatestResult(cmd.Context(), jobID)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "No analysis yet for job %d.\n", jobID)
			return nil
		}
		printFeedback(cmd.OutOrStdout(), services.NormalizeFeedback(res))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd, resultsCmd)
}

func parseIDs(job, resume string) (int, int, error) {
	jobID, err := strconv.Atoi(job)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid job id %q", job)
	}
	resumeID, err := strconv.Atoi(resume)
	if err != nil || resumeID <= 0 {
		return 0, 0, fmt.Errorf("invalid resume id %q", resume)
	}
	return jobID, resumeID, nil
}
