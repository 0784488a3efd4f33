package services

import (
	"net/mail"
	"strings"

	"github.com/justsurfingit/careerflow-dashboard/internal/models"
)

type MatcherService struct{}

func NewMatcherService() *MatcherService {
	return &MatcherService{}
}

// FindJobFromEmail tries to match an email to one of the tracked jobs by company name.
func (s *MatcherService) FindJobFromEmail(jobs []models.Job, subject, rawSender string) *models.Job {
	// "Stripe Recruiting <jobs@stripe.com>" -> name="stripe recruiting", addr="jobs@stripe.com"
	parsedAddr, err := mail.ParseAddress(rawSender)
	senderName := ""
	senderAddr := ""
	if err == nil {
		senderName = strings.ToLower(parsedAddr.Name)
		senderAddr = strings.ToLower(parsedAddr.Address)
	} else {
		senderAddr = strings.ToLower(rawSender)
	}

	subjectLower := strings.ToLower(subject)

	domain := ""
	if parts := strings.Split(senderAddr, "@"); len(parts) == 2 {
		domain = parts[1]
	}

	for i := range jobs {
		companyName := strings.ToLower(strings.TrimSpace(jobs[i].Company))
		// Short names like "X" or "Go" match everything.
		if len(companyName) < 3 {
			continue
		}

		if strings.Contains(subjectLower, companyName) {
			return &jobs[i]
		}
		if senderName != "" && strings.Contains(senderName, companyName) {
			return &jobs[i]
		}
		// Only the part after '@'; "stripe.com" contains "stripe".
		compact := strings.ReplaceAll(companyName, " ", "")
		if domain != "" && strings.Contains(domain, compact) {
			return &jobs[i]
		}
	}

	return nil
}
