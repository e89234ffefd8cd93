package decision

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const RuleCondition = "condition"

// ConditionRule walks an ordered list of field conditions and returns
// the result of the first one that matches the contact.
//
// Config keys: conditions ([]{field, operator, value, result}),
// default_result.
type ConditionRule struct{}

func NewConditionRule() *ConditionRule {
	return &ConditionRule{}
}

func (r *ConditionRule) Name() string { return RuleCondition }

func (r *ConditionRule) Validate(settings Settings) error {
	for _, condition := range settings.Config().MapSlice("conditions") {
		if condition.String("operator") == "regex" {
			if _, err := regexp.Compile("(?i)" + condition.String("value")); err != nil {
				return fmt.Errorf("invalid regex pattern %q: %w", condition.String("value"), err)
			}
		}
	}
	return nil
}

func (r *ConditionRule) Evaluate(ctx context.Context, contact Contact, settings Settings) (Outcome, error) {
	config := settings.Config()

	for _, condition := range config.MapSlice("conditions") {
		if r.matches(contact, condition) {
			return parseOutcome(condition.String("result")), nil
		}
	}

	if result := config.String("default_result"); result != "" {
		return parseOutcome(result), nil
	}
	return OutcomeNo, nil
}

func (r *ConditionRule) matches(contact Contact, condition Settings) bool {
	field := condition.String("field")
	operator := condition.String("operator")
	rawValue, hasValue := condition["value"]
	if field == "" || operator == "" || !hasValue || rawValue == nil {
		return false
	}

	// Absent contact fields never match, but present empty or numeric
	// values still take part in the comparison.
	rawContact, ok := contact[field]
	if !ok || rawContact == nil {
		return false
	}
	contactValue := strings.ToLower(fmt.Sprint(rawContact))
	value := strings.ToLower(fmt.Sprint(rawValue))

	switch operator {
	case "equals":
		return contactValue == value
	case "contains":
		return strings.Contains(contactValue, value)
	case "starts_with":
		return strings.HasPrefix(contactValue, value)
	case "ends_with":
		return strings.HasSuffix(contactValue, value)
	case "not_equals":
		return contactValue != value
	case "not_contains":
		return !strings.Contains(contactValue, value)
	case "regex":
		matched, err := regexp.MatchString("(?i)"+value, contactValue)
		return err == nil && matched
	}
	return false
}

func (r *ConditionRule) RecordDefinition(settings Settings) map[string]string {
	recordDef := map[string]string{"ContactID": "{{Contact.Id}}"}

	for _, condition := range settings.Config().MapSlice("conditions") {
		field := condition.String("field")
		eloquaField := condition.String("eloqua_field")
		if field != "" && eloquaField != "" {
			recordDef[field] = eloquaField
		}
	}

	if len(recordDef) == 1 {
		recordDef["EmailAddress"] = "{{Contact.Field(C_EmailAddress)}}"
	}
	return recordDef
}

func parseOutcome(raw string) Outcome {
	switch Outcome(strings.ToLower(raw)) {
	case OutcomeYes:
		return OutcomeYes
	case OutcomeErrored:
		return OutcomeErrored
	default:
		return OutcomeNo
	}
}
