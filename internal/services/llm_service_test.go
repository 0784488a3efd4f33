package services

import (
	"context"
	"errors"
	"testing"

	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompt += text.Text
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLLMService_ExtractApplication(t *testing.T) {
	model := &fakeModel{reply: "```json\n{\"company\":\"Stripe\",\"role\":\"Backend Engineer\",\"status\":\"interview\",\"skills\":\"Go, Kafka\"}\n```"}
	svc := &LLMService{Client: model}

	ext, err := svc.ExtractApplication(context.Background(), "Interview invitation", "We'd like to talk")
	require.NoError(t, err)

	assert.Equal(t, &Extraction{Company: "Stripe", Role: "Backend Engineer", Status: models.StatusInterviewing, Skills: "Go, Kafka"}, ext)
	assert.Contains(t, model.prompt, "Interview invitation")
	assert.Contains(t, model.prompt, "We'd like to talk")
}

func TestLLMService_ExtractApplication_Defaults(t *testing.T) {
	svc := &LLMService{Client: &fakeModel{reply: `{"company":"","status":""}`}}

	ext, err := svc.ExtractApplication(context.Background(), "Thanks", "")
	require.NoError(t, err)
	assert.Equal(t, &Extraction{Company: "Unknown", Role: "Unknown", Status: models.StatusApplied, Skills: "N/A"}, ext)
}

func TestLLMService_ExtractApplication_Errors(t *testing.T) {
	_, err := (&LLMService{Client: &fakeModel{reply: "not json"}}).ExtractApplication(context.Background(), "s", "b")
	assert.ErrorContains(t, err, "failed to parse extraction JSON")

	boom := errors.New("quota exceeded")
	_, err = (&LLMService{Client: &fakeModel{err: boom}}).ExtractApplication(context.Background(), "s", "b")
	assert.ErrorIs(t, err, boom)
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(context.Background(), "", "gemini-2.5-flash")
	assert.Error(t, err)
}

func TestKeywordExtractor(t *testing.T) {
	cases := []struct {
		subject, snippet, want string
	}{
		{"Your application was received", "Thanks for applying", models.StatusApplied},
		{"Interview with Acme", "Pick a slot", models.StatusInterviewing},
		{"Update on your application", "Unfortunately we have decided...", models.StatusRejected},
		{"Application update", "We regret to inform you", models.StatusRejected},
		{"Next round", "we will not be moving forward after the interview", models.StatusRejected},
	}
	for _, tc := range cases {
		t.Run(tc.subject, func(t *testing.T) {
			ext, err := KeywordExtractor{}.ExtractApplication(context.Background(), tc.subject, tc.snippet)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ext.Status)
			assert.Equal(t, "Unknown", ext.Company)
			assert.Equal(t, "N/A", ext.Skills)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}
