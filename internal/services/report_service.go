package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/models"
)

// Mailer delivers a plain-text message.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// TrackerLister supplies the entries a report is built from.
type TrackerLister interface {
	ListTracker(ctx context.Context) ([]models.TrackerEntry, error)
}

// SMTPMailer sends through an authenticated STARTTLS relay such as smtp.gmail.com:587.
type SMTPMailer struct {
	Addr     string
	User     string
	Password string
	To       string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(addr, user, password, to string) *SMTPMailer {
	return &SMTPMailer{Addr: addr, User: user, Password: password, To: to, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	host := m.Addr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	auth := smtp.PlainAuth("", m.User, m.Password, host)
	return m.send(m.Addr, auth, m.User, []string{m.To}, m.message(subject, body))
}

func (m *SMTPMailer) message(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.User)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// ErrNothingToReport is returned by SendNow when no applications were made today.
var ErrNothingToReport = errors.New("no applications today")

type ReportService struct {
	Tracker  TrackerLister
	Stats    *TrackerService
	Mailer   Mailer
	Location *time.Location
	Hour     int
	Minute   int

	now func() time.Time
}

func NewReportService(tracker TrackerLister, mailer Mailer, loc *time.Location, hour, minute int) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		Tracker:  tracker,
		Stats:    NewTrackerService(loc),
		Mailer:   mailer,
		Location: loc,
		Hour:     hour,
		Minute:   minute,
		now:      time.Now,
	}
}

// Build fetches the tracker and assembles today's report. It returns nil when there
// is nothing to report.
func (s *ReportService) Build(ctx context.Context) (*DailyReport, error) {
	entries, err := s.Tracker.ListTracker(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracker: %w", err)
	}
	return s.Stats.DailyReport(entries, s.now().In(s.Location)), nil
}

// SendNow builds and mails today's report once.
func (s *ReportService) SendNow(ctx context.Context) (*DailyReport, error) {
	report, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNothingToReport
	}
	if s.Mailer == nil {
		return report, errors.New("mailer not configured")
	}
	if err := s.Mailer.Send(ctx, report.Subject(), report.Body()); err != nil {
		return report, fmt.Errorf("failed to send report: %w", err)
	}
	return report, nil
}

// NextRun is the first scheduled time strictly after t.
func (s *ReportService) NextRun(t time.Time) time.Time {
	t = t.In(s.Location)
	next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, s.Location)
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month(), t.Day()+1, s.Hour, s.Minute, 0, 0, s.Location)
	}
	return next
}

// Run sends the report every day at the configured time until ctx is done.
// Failures are logged and the loop carries on.
func (s *ReportService) Run(ctx context.Context) {
	for {
		next := s.NextRun(s.now())
		log.Printf("[Report] ⏰ Next summary at %s", next.Format(time.RFC1123))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("[Report] stopped.")
			return
		case <-timer.C:
		}

		report, err := s.SendNow(ctx)
		switch {
		case errors.Is(err, ErrNothingToReport):
			log.Println("[Report] No applications today. Skipping email.")
		case err != nil:
			log.Printf("[Report] ❌ %v", err)
		default:
			log.Printf("[Report] ✅ Sent summary of %d applications.", report.Total)
		}
	}
}
