package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/spf13/cobra"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "Manage the Resume Vault",
}

var resumesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded resumes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		resumes, err := a.client.ListResumes(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tFILE")
		for _, r := range resumes {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, a.client.FileURL(r))
		}
		return tw.Flush()
	},
}

var resumesUploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a resume file under a label",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumesUpload,
}

var resumesOpenCmd = &cobra.Command{
	Use:   "open [RESUME_ID]",
	Short: "Print the link to a resume file (default: the first one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResumesOpen,
}

var resumeName string

func init() {
	resumesUploadCmd.Flags().StringVar(&resumeName, "name", "", "Resume label (required)")

	resumesCmd.AddCommand(resumesListCmd, resumesUploadCmd, resumesOpenCmd)
	rootCmd.AddCommand(resumesCmd)
}

func runResumesUpload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	form := &dtos.ResumeForm{Name: resumeName, FileName: filepath.Base(args[0]), File: f}
	if err := a.dashboard.UploadResume(cmd.Context(), form); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to the vault.\n", filepath.Base(args[0]))
	return nil
}

func runResumesOpen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	resumes, err := a.client.ListResumes(cmd.Context())
	if err != nil {
		return err
	}
	if len(resumes) == 0 {
		return fmt.Errorf("the vault is empty")
	}

	selected := resumes[0]
	if len(args) == 1 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid resume id %q", args[0])
		}
		found := false
		for _, r := range resumes {
			if r.ID == id {
				selected, found = r, true
			}
		}
		if !found {
			return fmt.Errorf("resume %d not found", id)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", selected.Name, a.client.FileURL(selected))
	return nil
}
