package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/justsurfingit/careerflow-dashboard/internal/auth"
	"github.com/justsurfingit/careerflow-dashboard/internal/database"
	"github.com/justsurfingit/careerflow-dashboard/internal/services"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Import application emails from Gmail into the tracker",
	RunE:  runWatch,
}

var watchOnce bool

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single sync cycle and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	importer, err := buildImporter(ctx, a, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if !watchOnce {
		importer.StartWatcher(ctx)
		return nil
	}

	res, err := importer.SyncEmails(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d candidates: %d imported, %d already seen, %d failed\n",
		res.Candidates, res.Imported, res.Skipped, res.Failed)
	return nil
}

// buildImporter wires Gmail, the extractor, the gateway and the Postgres state store.
func buildImporter(ctx context.Context, a *app, in io.Reader, prompt io.Writer) (*services.EmailService, error) {
	db, err := database.Connect(a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	log.Println("Initializing Gmail Client...")
	flow := &auth.Flow{
		CredentialsFile: a.cfg.Gmail.CredentialsFile,
		TokenFile:       a.cfg.Gmail.TokenFile,
		Prompt:          prompt,
		Input:           in,
	}
	gmailService, err := flow.GmailService(ctx)
	if err != nil {
		return nil, err
	}
	log.Println("✅ Gmail Service connected successfully.")

	var extractor services.Extractor = services.KeywordExtractor{}
	if a.cfg.LLM.APIKey != "" {
		llm, err := services.NewLLMService(ctx, a.cfg.LLM.APIKey, a.cfg.LLM.Model)
		if err != nil {
			log.Printf("⚠️ %v. Falling back to keyword extraction.", err)
		} else {
			extractor = llm
		}
	}

	importer := services.NewEmailService(
		services.NewGmailSource(gmailService),
		extractor,
		services.NewMatcherService(),
		a.client,
		a.client,
		services.NewSyncStore(db),
	)
	importer.Interval = a.cfg.Gmail.PollInterval
	return importer, nil
}
