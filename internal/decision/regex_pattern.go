package decision

import (
	"context"
	"fmt"
	"regexp"
)

const RuleRegexPattern = "regex_pattern"

// RegexPatternRule matches contact fields against a set of regex
// patterns. With match_mode "any" one matching pattern is enough;
// with "all" every pattern must match.
//
// Config keys: patterns ([]{field, pattern, eloqua_field}), match_mode.
type RegexPatternRule struct{}

func NewRegexPatternRule() *RegexPatternRule {
	return &RegexPatternRule{}
}

func (r *RegexPatternRule) Name() string { return RuleRegexPattern }

func (r *RegexPatternRule) Validate(settings Settings) error {
	for _, pattern := range settings.Config().MapSlice("patterns") {
		raw := pattern.String("pattern")
		if raw == "" {
			continue
		}
		if _, err := regexp.Compile("(?i)" + raw); err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", raw, err)
		}
	}
	return nil
}

func (r *RegexPatternRule) Evaluate(ctx context.Context, contact Contact, settings Settings) (Outcome, error) {
	config := settings.Config()

	var matches []bool
	for _, pattern := range config.MapSlice("patterns") {
		field := pattern.String("field")
		raw := pattern.String("pattern")
		if field == "" || raw == "" {
			continue
		}

		matched, err := regexp.MatchString("(?i)"+raw, contact.Text(field))
		matches = append(matches, err == nil && matched)
	}

	if len(matches) == 0 {
		return OutcomeNo, nil
	}

	if config.String("match_mode") == "all" {
		for _, matched := range matches {
			if !matched {
				return OutcomeNo, nil
			}
		}
		return OutcomeYes, nil
	}
	for _, matched := range matches {
		if matched {
			return OutcomeYes, nil
		}
	}
	return OutcomeNo, nil
}

func (r *RegexPatternRule) RecordDefinition(settings Settings) map[string]string {
	recordDef := map[string]string{"ContactID": "{{Contact.Id}}"}

	for _, pattern := range settings.Config().MapSlice("patterns") {
		field := pattern.String("field")
		eloquaField := pattern.String("eloqua_field")
		if field != "" && eloquaField != "" {
			recordDef[field] = eloquaField
		}
	}

	if len(recordDef) == 1 {
		recordDef["EmailAddress"] = "{{Contact.Field(C_EmailAddress)}}"
		recordDef["Company"] = "{{Contact.Field(C_Company)}}"
		recordDef["Title"] = "{{Contact.Field(C_Title)}}"
	}
	return recordDef
}
