package decision

import (
	"context"
	"strings"
)

const RuleEmailDomain = "email_domain"

// EmailDomainRule accepts contacts whose email address parses and is
// not on the configured blocked-domain list.
//
// Config keys: require_domain (bool), blocked_domains ([]string).
type EmailDomainRule struct{}

func NewEmailDomainRule() *EmailDomainRule {
	return &EmailDomainRule{}
}

func (r *EmailDomainRule) Name() string { return RuleEmailDomain }

func (r *EmailDomainRule) Validate(settings Settings) error {
	return nil
}

func (r *EmailDomainRule) Evaluate(ctx context.Context, contact Contact, settings Settings) (Outcome, error) {
	email := contact.Field("EmailAddress", "emailAddress")
	_, domain, found := strings.Cut(email, "@")
	if email == "" || !found {
		return OutcomeNo, nil
	}

	config := settings.Config()
	if config.Bool("require_domain") && !strings.Contains(domain, ".") {
		return OutcomeNo, nil
	}

	domain = strings.ToLower(domain)
	for _, blocked := range config.StringSlice("blocked_domains") {
		if strings.ToLower(blocked) == domain {
			return OutcomeNo, nil
		}
	}
	return OutcomeYes, nil
}

func (r *EmailDomainRule) RecordDefinition(settings Settings) map[string]string {
	return map[string]string{
		"ContactID":    "{{Contact.Id}}",
		"EmailAddress": "{{Contact.Field(C_EmailAddress)}}",
	}
}
