package services

import (
	"testing"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(company, role, status string, at time.Time) models.TrackerEntry {
	return models.TrackerEntry{Company: company, Role: role, Status: status, AppliedAt: models.Timestamp{Time: at}}
}

func sampleEntries(now time.Time) []models.TrackerEntry {
	yesterday := now.Add(-24 * time.Hour)
	return []models.TrackerEntry{
		entry("Acme", "SRE", models.StatusApplied, now),
		entry("Initech", "Backend Engineer", models.StatusInterviewing, now.Add(-time.Hour)),
		entry("Globex", "SRE", models.StatusRejected, now),
		entry("Hooli", "Data Engineer", "Offer", yesterday),
		entry("Umbrella", "SRE", models.StatusApplied, yesterday),
	}
}

func TestTrackerStats(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	svc := NewTrackerService(time.UTC)

	stats := svc.Stats(sampleEntries(now), now)

	assert.Equal(t, TrackerStats{Total: 5, Applied: 2, Interviewing: 1, Rejected: 1, Today: 3}, stats)
}

func TestTrackerStats_TodayUsesLocation(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 02:00 UTC on the 21st is still the 20th in Chicago.
	applied := time.Date(2025, 5, 21, 2, 0, 0, 0, time.UTC)
	now := time.Date(2025, 5, 20, 22, 0, 0, 0, chicago)
	entries := []models.TrackerEntry{entry("Acme", "SRE", models.StatusApplied, applied)}

	assert.Equal(t, 1, NewTrackerService(chicago).Stats(entries, now).Today)
	assert.Equal(t, 0, NewTrackerService(time.UTC).Stats(entries, now.AddDate(0, 0, -1)).Today)
}

func TestFilterByDate(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	svc := NewTrackerService(time.UTC)
	entries := sampleEntries(now)

	all, err := svc.FilterByDate(entries, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	yesterday, err := svc.FilterByDate(entries, "2025-05-19")
	require.NoError(t, err)
	require.Len(t, yesterday, 2)
	assert.Equal(t, "Hooli", yesterday[0].Company)

	none, err := svc.FilterByDate(entries, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFilterByDate_Invalid(t *testing.T) {
	_, err := NewTrackerService(nil).FilterByDate(nil, "05/20/2025")
	require.Error(t, err)
	assert.True(t, dtos.IsValidation(err))
}

func TestDailyReport(t *testing.T) {
	now := time.Date(2025, 5, 20, 20, 50, 0, 0, time.UTC)
	svc := NewTrackerService(time.UTC)

	report := svc.DailyReport(sampleEntries(now), now)
	require.NotNil(t, report)

	assert.Equal(t, "CareerFlow Daily Summary - 2025-05-20", report.Subject())
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Rejections)
	assert.Equal(t, []RoleCount{{"Backend Engineer", 1}, {"SRE", 2}}, report.Roles)

	body := report.Body()
	assert.Contains(t, body, "Total Applications Today: 3")
	assert.Contains(t, body, "Total Rejections Today: 1")
	assert.Contains(t, body, "- Backend Engineer: 1 role")
	assert.Contains(t, body, "- SRE: 2 roles")
}

func TestDailyReport_NothingToday(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 50, 0, 0, time.UTC)
	assert.Nil(t, NewTrackerService(time.UTC).DailyReport(sampleEntries(now.AddDate(0, 0, -3)), now))
}
