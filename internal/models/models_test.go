package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_AcceptsNumberAndString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Score
	}{
		{"integer", `{"match_score": 85}`, 85},
		{"float", `{"match_score": 72.5}`, 72.5},
		{"string", `{"match_score": "60"}`, 60},
		{"percent string", `{"match_score": "91%"}`, 91},
		{"null", `{"match_score": null}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res AnalysisResult
			require.NoError(t, json.Unmarshal([]byte(tt.in), &res))
			assert.Equal(t, tt.want, res.MatchScore)
		})
	}
}

func TestTimestamp_GatewayLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2025-03-04T10:11:12Z"`, time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC)},
		{`"2025-03-04T10:11:12.123456"`, time.Date(2025, 3, 4, 10, 11, 12, 123456000, time.UTC)},
		{`"2025-03-04 10:11:12"`, time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC)},
		{`"2025-03-04"`, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(tt.in), &ts), tt.in)
		assert.True(t, tt.want.Equal(ts.Time), "%s parsed as %v", tt.in, ts.Time)
	}
}

func TestTimestamp_NullIsZero(t *testing.T) {
	var entry TrackerEntry
	require.NoError(t, json.Unmarshal([]byte(`{"company":"Acme","applied_at":null}`), &entry))
	assert.True(t, entry.AppliedAt.IsZero())
}

func TestTimestamp_UnreadableIsZero(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"last tuesday"`), &ts))
	assert.True(t, ts.IsZero())

	_, err := ParseTimestamp("last tuesday")
	assert.Error(t, err)
}

func TestTrackerList_OddRowKeepsOthers(t *testing.T) {
	data := `[
		{"company":"Acme","role":"SRE","status":"Applied","applied_at":"2025-05-20T10:00:00"},
		{"company":"Initech","role":"SWE","status":"Applied","applied_at":"20/05/2025 10h"},
		{"company":"Globex","role":"Dev","status":"Rejected","applied_at":"2025-05-20T10:00"}
	]`
	var entries []TrackerEntry
	require.NoError(t, json.Unmarshal([]byte(data), &entries))

	require.Len(t, entries, 3)
	assert.False(t, entries[0].AppliedAt.IsZero())
	assert.True(t, entries[1].AppliedAt.IsZero())
	assert.True(t, time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC).Equal(entries[2].AppliedAt.Time))
}

func TestResultHistory_UnreadableScoreKeepsNewest(t *testing.T) {
	var history []AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(`[{"match_score":60},{"match_score":"N/A"},{"match_score":85}]`), &history))

	require.Len(t, history, 3)
	assert.Equal(t, Score(0), history[1].MatchScore)
	assert.Equal(t, Score(85), history[2].MatchScore)
}

func TestJob_Imported(t *testing.T) {
	var jobs []Job
	data := `[{"id":1,"company":"Acme","title":"SRE","gmail_id":null},{"id":2,"company":"Initech","title":"Dev","gmail_id":"18c2"}]`
	require.NoError(t, json.Unmarshal([]byte(data), &jobs))

	assert.False(t, jobs[0].Imported())
	assert.True(t, jobs[1].Imported())
}
