package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Extraction is what the importer learns from one application email.
type Extraction struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Status  string `json:"status"`
	Skills  string `json:"skills"`
}

// Extractor turns an email into tracker fields.
type Extractor interface {
	ExtractApplication(ctx context.Context, subject, snippet string) (*Extraction, error)
}

type LLMService struct {
	Client llms.Model
}

// NewLLMService connects to Gemini through langchaingo.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

const applicationExtractionPrompt = `
You are a job application tracking assistant. Read the email below and extract the application it refers to.

### OUTPUT SCHEMA:
{
    "company": "Company the candidate applied to, or 'Unknown'",
    "role": "Job title, or 'Unknown'",
    "status": "One of: Applied, Interviewing, Rejected, Offer",
    "skills": "Comma separated skills the email mentions, or 'N/A'"
}

### CONSTRAINT:
Output valid JSON only, without markdown code fences. Do not guess: use 'Unknown' when the email does not say.

### SUBJECT:
%s

### EMAIL:
%s
`

// ExtractApplication asks the model for the tracker fields of one email.
func (s *LLMService) ExtractApplication(ctx context.Context, subject, snippet string) (*Extraction, error) {
	if len(snippet) > 8000 {
		snippet = snippet[:8000]
	}
	prompt := fmt.Sprintf(applicationExtractionPrompt, subject, snippet)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt, llms.WithTemperature(0))
	if err != nil {
		return nil, err
	}

	var out Extraction
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}
	out.fillDefaults()
	return &out, nil
}

// KeywordExtractor is the offline fallback used when no LLM key is configured.
// It only classifies status; company and role are left for the matcher.
type KeywordExtractor struct{}

var (
	rejectionPhrases = []string{"unfortunately", "regret", "not moving forward", "not be moving forward", "other candidates"}
	interviewPhrases = []string{"interview", "schedule a call", "next steps", "phone screen"}
)

func (KeywordExtractor) ExtractApplication(_ context.Context, subject, snippet string) (*Extraction, error) {
	text := strings.ToLower(subject + " " + snippet)
	out := &Extraction{Status: models.StatusApplied}
	switch {
	case containsAny(text, rejectionPhrases):
		out.Status = models.StatusRejected
	case containsAny(text, interviewPhrases):
		out.Status = models.StatusInterviewing
	}
	out.fillDefaults()
	return out, nil
}

func (e *Extraction) fillDefaults() {
	e.Company = strings.TrimSpace(e.Company)
	e.Role = strings.TrimSpace(e.Role)
	e.Status = normalizeStatus(e.Status)
	e.Skills = strings.TrimSpace(e.Skills)
	if e.Company == "" {
		e.Company = "Unknown"
	}
	if e.Role == "" {
		e.Role = "Unknown"
	}
	if e.Skills == "" {
		e.Skills = "N/A"
	}
}

// normalizeStatus maps model spellings onto the tracker's statuses. Unknown values pass through.
func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "applied", "received", "submitted":
		return models.StatusApplied
	case "interview", "interviewing":
		return models.StatusInterviewing
	case "rejected", "rejection", "declined":
		return models.StatusRejected
	default:
		return strings.TrimSpace(s)
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
