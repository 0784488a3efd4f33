package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/services"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List, add and delete tracked jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		jobs, err := a.client.ListJobs(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCOMPANY\tTITLE\tURL")
		for _, j := range jobs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", j.ID, j.Company, j.Title, j.URL)
		}
		return tw.Flush()
	},
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job posting",
	RunE:  runJobsAdd,
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete JOB_ID",
	Short: "Delete a job and its analysis history",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDelete,
}

var (
	jobForm       dtos.JobForm
	jobsDeleteYes bool
)

func init() {
	jobsAddCmd.Flags().StringVar(&jobForm.Company, "company", "", "Company name (required)")
	jobsAddCmd.Flags().StringVar(&jobForm.Title, "title", "", "Job title (required)")
	jobsAddCmd.Flags().StringVar(&jobForm.URL, "url", "", "Listing URL")
	jobsAddCmd.Flags().StringVar(&jobForm.Description, "description", "", "Job description")
	jobsDeleteCmd.Flags().BoolVarP(&jobsDeleteYes, "yes", "y", false, "Skip the confirmation prompt")

	jobsCmd.AddCommand(jobsListCmd, jobsAddCmd, jobsDeleteCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsAdd(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	job, err := a.dashboard.AddJob(cmd.Context(), &jobForm)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved job %d: %s at %s\n", job.ID, job.Title, job.Company)
	return nil
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	jobID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid job id %q", args[0])
	}
	a, err := newApp()
	if err != nil {
		return err
	}

	var confirm services.Confirmer = &promptConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
	if jobsDeleteYes {
		confirm = services.ConfirmFunc(func(string) bool { return true })
	}
	deleted, err := a.dashboard.DeleteJob(cmd.Context(), jobID, confirm)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %d.\n", jobID)
	return nil
}

// promptConfirmer asks on the terminal. Anything but y or yes declines.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p *promptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(p.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
