// Package decision evaluates contacts against the rule configured on
// a service instance and classifies each one as yes, no, or errored.
package decision

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Outcome is the decision reported back to Eloqua for a contact.
type Outcome string

const (
	OutcomeYes     Outcome = "yes"
	OutcomeNo      Outcome = "no"
	OutcomeErrored Outcome = "errored"
)

// Contact is one record from an Eloqua notification, keyed by the
// field names of the instance's record definition.
type Contact map[string]any

// Field returns the named contact field as a string. Missing and
// non-string values come back empty.
func (c Contact) Field(names ...string) string {
	for _, name := range names {
		if value, ok := c[name].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

// Text returns the named field converted to a string, so numeric
// Eloqua fields can take part in comparisons. Absent and null fields
// come back empty.
func (c Contact) Text(name string) string {
	value, ok := c[name]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// Result pairs a contact with its evaluated outcome.
type Result struct {
	Contact Contact
	Outcome Outcome
}

// Rule is one decision strategy. Settings come from the instance
// configuration saved on the configure page.
type Rule interface {
	Name() string
	// Validate rejects settings the rule cannot evaluate.
	Validate(settings Settings) error
	Evaluate(ctx context.Context, contact Contact, settings Settings) (Outcome, error)
	// RecordDefinition lists the Eloqua field expressions this rule
	// needs per contact.
	RecordDefinition(settings Settings) map[string]string
}

// Registry resolves the rule named in instance settings.
type Registry struct {
	rules map[string]Rule
}

func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{rules: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		r.rules[rule.Name()] = rule
	}
	return r
}

// Rule returns the rule selected by the settings, defaulting to the
// email domain rule when none is named.
func (r *Registry) Rule(settings Settings) (Rule, error) {
	name := settings.String("rule")
	if name == "" {
		name = RuleEmailDomain
	}
	rule, ok := r.rules[name]
	if !ok {
		return nil, fmt.Errorf("unknown decision rule: %s", name)
	}
	return rule, nil
}

// Names lists the registered rule names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	return names
}

// EvaluateBatch runs the rule over every contact. A rule error never
// fails the batch; the contact is marked errored and evaluation moves
// on.
func EvaluateBatch(ctx context.Context, rule Rule, contacts []Contact, settings Settings) []Result {
	results := make([]Result, 0, len(contacts))
	for _, contact := range contacts {
		outcome, err := rule.Evaluate(ctx, contact, settings)
		if err != nil {
			logrus.WithError(err).WithField("contact", contact.Field("ContactID")).
				Error("decision evaluation failed")
			outcome = OutcomeErrored
		}
		results = append(results, Result{Contact: contact, Outcome: outcome})
	}
	return results
}
