package decision

import (
	"context"
	"fmt"
	"strings"
)

const RuleScoreThreshold = "score_threshold"

const maxScore = 100

// ScoreThresholdRule scores a contact from its email domain, company,
// recent activity, and title, and accepts contacts at or above the
// configured threshold.
//
// Config keys: score_threshold, email_score_bonus, company_size_bonus,
// activity_bonus, title_bonus, premium_domains, executive_titles.
type ScoreThresholdRule struct{}

func NewScoreThresholdRule() *ScoreThresholdRule {
	return &ScoreThresholdRule{}
}

func (r *ScoreThresholdRule) Name() string { return RuleScoreThreshold }

func (r *ScoreThresholdRule) Validate(settings Settings) error {
	threshold := settings.Config().Int("score_threshold", 50)
	if threshold < 0 || threshold > maxScore {
		return fmt.Errorf("score_threshold must be between 0 and %d", maxScore)
	}
	return nil
}

func (r *ScoreThresholdRule) Evaluate(ctx context.Context, contact Contact, settings Settings) (Outcome, error) {
	config := settings.Config()
	threshold := config.Int("score_threshold", 50)

	if r.score(contact, config) >= threshold {
		return OutcomeYes, nil
	}
	return OutcomeNo, nil
}

func (r *ScoreThresholdRule) score(contact Contact, config Settings) int {
	score := 0

	email := strings.ToLower(contact.Field("EmailAddress"))
	premiumDomains := config.StringSlice("premium_domains")
	if len(premiumDomains) == 0 {
		premiumDomains = []string{"gmail.com", "company.com"}
	}
	for _, domain := range premiumDomains {
		if strings.Contains(email, strings.ToLower(domain)) {
			score += config.Int("email_score_bonus", 20)
			break
		}
	}

	if len(contact.Field("Company")) > 10 {
		score += config.Int("company_size_bonus", 15)
	}

	if contact.Field("LastActivityDate") != "" {
		score += config.Int("activity_bonus", 25)
	}

	title := strings.ToLower(contact.Field("Title"))
	executiveTitles := config.StringSlice("executive_titles")
	if len(executiveTitles) == 0 {
		executiveTitles = []string{"ceo", "cto", "manager", "director"}
	}
	for _, keyword := range executiveTitles {
		if keyword != "" && strings.Contains(title, strings.ToLower(keyword)) {
			score += config.Int("title_bonus", 30)
			break
		}
	}

	if score > maxScore {
		return maxScore
	}
	return score
}

func (r *ScoreThresholdRule) RecordDefinition(settings Settings) map[string]string {
	return map[string]string{
		"ContactID":        "{{Contact.Id}}",
		"EmailAddress":     "{{Contact.Field(C_EmailAddress)}}",
		"Company":          "{{Contact.Field(C_Company)}}",
		"Title":            "{{Contact.Field(C_Title)}}",
		"LastActivityDate": "{{Contact.Field(C_DateModified)}}",
	}
}
