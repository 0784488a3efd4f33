package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/justsurfingit/careerflow-dashboard/internal/dtos"
	"github.com/justsurfingit/careerflow-dashboard/internal/models"
)

// DateLayout is the tracker filter format (the value of an HTML date input).
const DateLayout = "2006-01-02"

// NoRecordsMessage is the placeholder row shown when a tracker view is empty.
const NoRecordsMessage = "No records found for this view."

type TrackerStats struct {
	Total        int `json:"total"`
	Applied      int `json:"applied"`
	Interviewing int `json:"interviewing"`
	Rejected     int `json:"rejected"`
	Today        int `json:"today"`
}

// TrackerService aggregates tracker entries. Calendar dates are taken in Location.
type TrackerService struct {
	Location *time.Location
}

func NewTrackerService(loc *time.Location) *TrackerService {
	if loc == nil {
		loc = time.UTC
	}
	return &TrackerService{Location: loc}
}

// DateOf returns the applied date of an entry as YYYY-MM-DD, or "" when unknown.
func (s *TrackerService) DateOf(e models.TrackerEntry) string {
	if e.AppliedAt.IsZero() {
		return ""
	}
	return e.AppliedAt.In(s.Location).Format(DateLayout)
}

func (s *TrackerService) Stats(entries []models.TrackerEntry, now time.Time) TrackerStats {
	today := now.In(s.Location).Format(DateLayout)
	stats := TrackerStats{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case models.StatusApplied:
			stats.Applied++
		case models.StatusInterviewing:
			stats.Interviewing++
		case models.StatusRejected:
			stats.Rejected++
		}
		if s.DateOf(e) == today {
			stats.Today++
		}
	}
	return stats
}

// FilterByDate keeps entries applied on date. An empty date keeps everything.
func (s *TrackerService) FilterByDate(entries []models.TrackerEntry, date string) ([]models.TrackerEntry, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return entries, nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, &dtos.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	filtered := make([]models.TrackerEntry, 0, len(entries))
	for _, e := range entries {
		if s.DateOf(e) == date {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// RoleCount is one line of the daily report breakdown.
type RoleCount struct {
	Role  string
	Count int
}

// DailyReport summarises one day of applications.
type DailyReport struct {
	Date       string
	Total      int
	Rejections int
	Roles      []RoleCount
}

func (r *DailyReport) Subject() string {
	return "CareerFlow Daily Summary - " + r.Date
}

func (r *DailyReport) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily Application Summary: %s\n", r.Date)
	b.WriteString("----------------------------------\n")
	fmt.Fprintf(&b, "Total Applications Today: %d\n", r.Total)
	fmt.Fprintf(&b, "Total Rejections Today: %d\n", r.Rejections)
	b.WriteString("\nBreakdown by Position:")
	for _, rc := range r.Roles {
		noun := "roles"
		if rc.Count == 1 {
			noun = "role"
		}
		fmt.Fprintf(&b, "\n- %s: %d %s", rc.Role, rc.Count, noun)
	}
	return b.String()
}

// DailyReport builds the summary for now's date, or nil when nothing was applied today.
func (s *TrackerService) DailyReport(entries []models.TrackerEntry, now time.Time) *DailyReport {
	today := now.In(s.Location).Format(DateLayout)
	todays, _ := s.FilterByDate(entries, today)
	if len(todays) == 0 {
		return nil
	}

	report := &DailyReport{Date: today, Total: len(todays)}
	counts := make(map[string]int)
	for _, e := range todays {
		role := strings.TrimSpace(e.Role)
		if role == "" {
			role = "Unknown"
		}
		counts[role]++
		if e.Status == models.StatusRejected {
			report.Rejections++
		}
	}
	for role, n := range counts {
		report.Roles = append(report.Roles, RoleCount{Role: role, Count: n})
	}
	sort.Slice(report.Roles, func(i, j int) bool {
		return report.Roles[i].Role < report.Roles[j].Role
	})
	return report
}
