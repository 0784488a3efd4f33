package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/justsurfingit/careerflow-dashboard/internal/models"
)

// MissingSkillKeys lists the summary keys that have carried the missing-skills list,
// newest spelling first. The first key with a non-empty value wins.
var MissingSkillKeys = []string{
	"top_3_missing_keywords/skills",
	"top_3_missing_keywords",
	"skill_gaps",
}

var (
	strengthKeys = []string{"strongest_match_point", "strength"}
	actionKeys   = []string{"action_plan", "action"}
)

// Feedback is an AnalysisResult flattened for display.
type Feedback struct {
	Score         float64  `json:"match_score"`
	Text          string   `json:"text,omitempty"`
	Strength      string   `json:"strength,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`
	ActionPlan    string   `json:"action_plan,omitempty"`
}

// Structured reports whether any of the checklist sections were found.
func (f Feedback) Structured() bool {
	return f.Strength != "" || len(f.MissingSkills) > 0 || f.ActionPlan != ""
}

// NormalizeFeedback accepts both summary shapes the AI engine has produced: a plain
// string (possibly in the gateway's "STRENGTH/GAPS/ACTION" layout) or an object.
func NormalizeFeedback(res *models.AnalysisResult) Feedback {
	if res == nil {
		return Feedback{}
	}
	fb := Feedback{Score: float64(res.MatchScore)}

	raw := bytes.TrimSpace(res.Summary)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fb
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		fb.Text = text
		parseStoredSummary(text, &fb)
		return fb
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		fb.Strength = firstString(obj, strengthKeys)
		fb.MissingSkills = lookupList(obj, MissingSkillKeys)
		fb.ActionPlan = firstString(obj, actionKeys)
		if !fb.Structured() {
			fb.Text = compactJSON(raw)
		}
		return fb
	}

	fb.Text = compactJSON(raw)
	return fb
}

// lookupList walks keys in priority order and returns the first non-empty list.
func lookupList(obj map[string]any, keys []string) []string {
	for _, key := range keys {
		if list := toStringList(obj[key]); len(list) > 0 {
			return list
		}
	}
	return nil
}

// toStringList coerces a scalar into a one-item list and a list into its string forms.
func toStringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(val); s != "" && !isNA(s) {
			return []string{s}
		}
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, toStringList(item)...)
		}
		return out
	case float64:
		return []string{fmt.Sprintf("%g", val)}
	case bool:
		return []string{fmt.Sprintf("%t", val)}
	default:
		return nil
	}
}

func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if list := toStringList(obj[key]); len(list) > 0 {
			return strings.Join(list, " ")
		}
	}
	return ""
}

// parseStoredSummary reads "STRENGTH: ..\n\nGAPS: a, b\n\nACTION: .." as written by
// the gateway when it flattens an object summary into its history table.
func parseStoredSummary(text string, fb *Feedback) {
	if !strings.Contains(text, "STRENGTH:") && !strings.Contains(text, "GAPS:") && !strings.Contains(text, "ACTION:") {
		return
	}
	for _, block := range strings.Split(text, "\n\n") {
		label, value, ok := strings.Cut(strings.TrimSpace(block), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if isNA(value) {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(label)) {
		case "STRENGTH":
			fb.Strength = value
		case "GAPS":
			for _, gap := range strings.Split(value, ",") {
				if gap = strings.TrimSpace(gap); gap != "" {
					fb.MissingSkills = append(fb.MissingSkills, gap)
				}
			}
		case "ACTION":
			fb.ActionPlan = value
		}
	}
}

func isNA(s string) bool {
	return strings.EqualFold(s, "n/a")
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
