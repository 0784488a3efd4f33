package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// ApplicationQuery selects the mails worth looking at during a full sync.
const ApplicationQuery = `subject:("application" OR "received" OR "update" OR "interview" OR "unfortunately")`

// MailMessage is the part of a mail the importer reads.
type MailMessage struct {
	ID      string
	Subject string
	From    string
	Snippet string
}

// MailSource lists candidate mails. Both syncs return the new history cursor.
type MailSource interface {
	FullSync(ctx context.Context) ([]MailMessage, uint64, error)
	IncrementalSync(ctx context.Context, startID uint64) ([]MailMessage, uint64, error)
}

// TrackerSink receives imported applications.
type TrackerSink interface {
	CreateTrackerEntry(ctx context.Context, req *dtos.TrackerEntryRequest) error
}

// JobLister supplies the tracked jobs used to resolve unknown companies.
type JobLister interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
}

// StateStore remembers the history cursor and which mails were already imported.
type StateStore interface {
	LastHistoryID(ctx context.Context) (uint64, error)
	SaveHistoryID(ctx context.Context, id uint64) error
	IsProcessed(ctx context.Context, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, messageID string) error
}

// SyncResult counts what one cycle did.
type SyncResult struct {
	Candidates int
	Imported   int
	Skipped    int
	Failed     int
}

type EmailService struct {
	Source         MailSource
	Extractor      Extractor
	MatcherService *MatcherService
	Jobs           JobLister
	Sink           TrackerSink
	Store          StateStore
	Interval       time.Duration
}

func NewEmailService(source MailSource, extractor Extractor, matcher *MatcherService, jobs JobLister, sink TrackerSink, store StateStore) *EmailService {
	if extractor == nil {
		extractor = KeywordExtractor{}
	}
	if matcher == nil {
		matcher = NewMatcherService()
	}
	return &EmailService{
		Source:         source,
		Extractor:      extractor,
		MatcherService: matcher,
		Jobs:           jobs,
		Sink:           sink,
		Store:          store,
		Interval:       15 * time.Minute,
	}
}

// StartWatcher syncs once immediately and then on every tick until ctx is done.
// It blocks; run it in its own goroutine when the caller has other work.
func (s *EmailService) StartWatcher(ctx context.Context) {
	if s.Source == nil {
		log.Println("⚠️ Gmail Watcher disabled (no client). Check credentials.")
		return
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("📧 Email Watcher: stopped.")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *EmailService) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if _, err := s.SyncEmails(cycleCtx); err != nil {
		log.Printf("❌ Sync failed: %v", err)
	}
}

// SyncEmails runs one import cycle.
func (s *EmailService) SyncEmails(ctx context.Context) (SyncResult, error) {
	var result SyncResult
	log.Println("📧 Email Watcher: Starting Sync Cycle...")

	lastID, err := s.Store.LastHistoryID(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read history cursor: %w", err)
	}

	var messages []MailMessage
	var newHistoryID uint64

	if lastID == 0 {
		log.Println("🆕 First run detected. Running Full Bootstrap Sync...")
		messages, newHistoryID, err = s.Source.FullSync(ctx)
	} else {
		messages, newHistoryID, err = s.Source.IncrementalSync(ctx, lastID)
		if err != nil && isHistoryExpiredError(err) {
			log.Println("⚠️ History ID expired (too old). Falling back to Full Sync.")
			messages, newHistoryID, err = s.Source.FullSync(ctx)
		}
	}
	if err != nil {
		return result, err
	}

	result.Candidates = len(messages)
	if len(messages) == 0 {
		log.Println("✅ No new relevant emails found.")
	} else {
		log.Printf("📥 Processing %d candidate emails...", len(messages))
	}

	var jobs []models.Job
	jobsLoaded := false
	lookupJobs := func() []models.Job {
		if jobsLoaded || s.Jobs == nil {
			return jobs
		}
		jobsLoaded = true
		list, err := s.Jobs.ListJobs(ctx)
		if err != nil {
			log.Printf("⚠️ Could not load jobs for company matching: %v", err)
			return nil
		}
		jobs = list
		return jobs
	}

	for _, msg := range messages {
		done, err := s.Store.IsProcessed(ctx, msg.ID)
		if err != nil {
			log.Printf("⚠️ Dedup lookup failed for %s: %v", msg.ID, err)
			result.Failed++
			continue
		}
		if done {
			result.Skipped++
			continue
		}

		if err := s.processSingleEmail(ctx, msg, lookupJobs); err != nil {
			result.Failed++
			continue
		}
		if err := s.Store.MarkProcessed(ctx, msg.ID); err != nil {
			log.Printf("⚠️ Could not mark %s as processed: %v", msg.ID, err)
		}
		result.Imported++
	}

	if newHistoryID > lastID {
		if err := s.Store.SaveHistoryID(ctx, newHistoryID); err != nil {
			return result, fmt.Errorf("failed to save history cursor: %w", err)
		}
		log.Printf("🔖 History updated to %d", newHistoryID)
	}
	return result, nil
}

// processSingleEmail extracts one application and hands it to the gateway.
func (s *EmailService) processSingleEmail(ctx context.Context, msg MailMessage, lookupJobs func() []models.Job) error {
	logPrefix := fmt.Sprintf("[Email: %s]", shortSubject(msg.Subject))
	log.Printf("%s 📥 START processing from: %s", logPrefix, msg.From)

	ext, err := s.Extractor.ExtractApplication(ctx, msg.Subject, msg.Snippet)
	if err != nil {
		log.Printf("%s ⚠️ Extractor failed (%v). Using keyword rules.", logPrefix, err)
		ext, _ = KeywordExtractor{}.ExtractApplication(ctx, msg.Subject, msg.Snippet)
	}

	if ext.Company == "Unknown" {
		if job := s.MatcherService.FindJobFromEmail(lookupJobs(), msg.Subject, msg.From); job != nil {
			ext.Company = job.Company
			if ext.Role == "Unknown" && job.Title != "" {
				ext.Role = job.Title
			}
			log.Printf("%s ✅ MATCHED Company: %s", logPrefix, job.Company)
		}
	}

	req := &dtos.TrackerEntryRequest{
		GmailID:        msg.ID,
		Company:        ext.Company,
		Role:           ext.Role,
		Status:         ext.Status,
		RequiredSkills: ext.Skills,
	}
	if err := req.Validate(); err != nil {
		log.Printf("%s ❌ SKIPPED: %v", logPrefix, err)
		return err
	}

	if err := s.Sink.CreateTrackerEntry(ctx, req); err != nil {
		log.Printf("%s ❌ Gateway rejected entry: %v", logPrefix, err)
		return err
	}
	log.Printf("%s ✅ Tracked: %s | %s | %s", logPrefix, req.Company, req.Role, req.Status)
	return nil
}

// shortSubject trims a subject for log prefixes without splitting a character.
func shortSubject(subject string) string {
	r := []rune(subject)
	if len(r) <= 20 {
		return subject
	}
	return string(r[:20]) + "..."
}

// GmailSource reads the signed-in user's mailbox.
type GmailSource struct {
	Client     *gmail.Service
	Query      string
	MaxResults int64
}

func NewGmailSource(client *gmail.Service) *GmailSource {
	return &GmailSource{Client: client, Query: ApplicationQuery, MaxResults: 10}
}

// FullSync lists recent matching mails and anchors on the current profile history id.
func (g *GmailSource) FullSync(ctx context.Context) ([]MailMessage, uint64, error) {
	var resp *gmail.ListMessagesResponse

	err := retry(ctx, 3, 1*time.Second, func() error {
		var e error
		resp, e = g.Client.Users.Messages.List("me").Q(g.Query).MaxResults(g.MaxResults).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}

	profile, err := g.Client.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, 0, err
	}

	return g.expandMessages(ctx, resp.Messages), profile.HistoryId, nil
}

// IncrementalSync asks only for messages added since startID.
func (g *GmailSource) IncrementalSync(ctx context.Context, startID uint64) ([]MailMessage, uint64, error) {
	var resp *gmail.ListHistoryResponse

	err := retry(ctx, 3, 1*time.Second, func() error {
		var e error
		call := g.Client.Users.History.List("me").StartHistoryId(startID)
		call.HistoryTypes("messageAdded")
		resp, e = call.Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}

	var msgHeaders []*gmail.Message
	for _, h := range resp.History {
		for _, added := range h.MessagesAdded {
			if added.Message != nil {
				msgHeaders = append(msgHeaders, added.Message)
			}
		}
	}

	return g.expandMessages(ctx, msgHeaders), resp.HistoryId, nil
}

func (g *GmailSource) expandMessages(ctx context.Context, headers []*gmail.Message) []MailMessage {
	var out []MailMessage
	for _, h := range headers {
		_ = retry(ctx, 2, 500*time.Millisecond, func() error {
			msg, err := g.Client.Users.Messages.Get("me", h.Id).Context(ctx).Do()
			if err == nil {
				out = append(out, toMailMessage(msg))
			}
			return err
		})
	}
	return out
}

func toMailMessage(msg *gmail.Message) MailMessage {
	headers := parseHeaders(msg)
	snippet := msg.Snippet
	if snippet == "" {
		snippet = getEmailBody(msg)
	}
	return MailMessage{
		ID:      msg.Id,
		Subject: headers["Subject"],
		From:    headers["From"],
		Snippet: snippet,
	}
}

// retry executes a function with exponential backoff.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		// 404 means the history cursor expired; fail fast so the caller can full sync.
		if isHistoryExpiredError(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		log.Printf("⚠️ API Error: %v. Retrying in %v...", err, sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isHistoryExpiredError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == 404
	}
	return false
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		d, _ := base64.URLEncoding.DecodeString(msg.Payload.Body.Data)
		return string(d)
	}
	for _, mime := range []string{"text/plain", "text/html"} {
		for _, part := range msg.Payload.Parts {
			if part.MimeType == mime && part.Body != nil && part.Body.Data != "" {
				d, _ := base64.URLEncoding.DecodeString(part.Body.Data)
				return string(d)
			}
		}
	}
	return ""
}
