package models

import (
	"encoding/json"
	"log"
	"strings"
	"time"
)

// Tracker statuses the dashboard counts. Any other status is passed through untouched.
const (
	StatusApplied      = "Applied"
	StatusInterviewing = "Interviewing"
	StatusRejected     = "Rejected"
)

type Job struct {
	ID          int       `json:"id"`
	Company     string    `json:"company"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	GmailID     string    `json:"gmail_id,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

// Imported reports whether the job came from the Gmail tracker rather than the add-job form.
func (j Job) Imported() bool {
	return j.GmailID != ""
}

type Resume struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	FileURL string `json:"file_url,omitempty"`
}

// AnalysisResult is one AI match for a (job, resume) pair.
// Summary is kept raw: the AI engine has returned both plain strings and objects with
// shifting key names, so it is normalized on read (see services.NormalizeFeedback).
type AnalysisResult struct {
	ID         int             `json:"id,omitempty"`
	JobID      int             `json:"job_id,omitempty"`
	MatchScore Score           `json:"match_score"`
	Summary    json.RawMessage `json:"summary,omitempty"`
}

type AnalyzeResponse struct {
	AIResponse *AnalysisResult `json:"ai_response"`
}

type TrackerEntry struct {
	ID             int       `json:"id,omitempty"`
	GmailID        string    `json:"gmail_id,omitempty"`
	Company        string    `json:"company"`
	Role           string    `json:"role"`
	AppliedAt      Timestamp `json:"applied_at"`
	Status         string    `json:"status"`
	RequiredSkills string    `json:"required_skills,omitempty"`
}

// Importer bookkeeping. These are the only rows this repo persists.

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

type SyncState struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Mailbox       string    `gorm:"uniqueIndex;not null" json:"mailbox"`
	LastHistoryID uint64    `json:"last_history_id"`
}

// Score is a match percentage. The AI engine sends a number, older rows a numeric string.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*s = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	raw = strings.TrimSuffix(raw, "%")
	var f float64
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		// Unreadable scores decode as 0 so the rest of the list still loads.
		log.Printf("[Models] ⚠️ Unreadable match_score %s, using 0", data)
		*s = 0
		return nil
	}
	*s = Score(f)
	return nil
}

// Timestamp accepts the layouts the gateway emits: RFC3339, naive ISO timestamps
// (Postgres "timestamp without time zone"), and bare dates.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil || raw == "" {
		// null or a non-string: leave zero
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		log.Printf("[Models] ⚠️ Unreadable timestamp %q, leaving it empty", raw)
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// ParseTimestamp parses s with the first matching gateway layout. Zone-less values are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
