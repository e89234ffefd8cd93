package decision

import (
	"context"
	"errors"
	"fmt"

	"github.com/appcloud-project/decision-service/internal/store"
)

const RuleCountryLookup = "country_lookup"

// matchRule is the lookup-table value that routes a contact down the
// yes path.
const matchRule = "SpecificRule"

// CountryLookupRule accepts contacts whose country has a matching row
// in the country rule table.
type CountryLookupRule struct {
	rules store.CountryRule
}

func NewCountryLookupRule(rules store.CountryRule) *CountryLookupRule {
	return &CountryLookupRule{rules: rules}
}

func (r *CountryLookupRule) Name() string { return RuleCountryLookup }

func (r *CountryLookupRule) Validate(settings Settings) error {
	return nil
}

func (r *CountryLookupRule) Evaluate(ctx context.Context, contact Contact, settings Settings) (Outcome, error) {
	country := contact.Field("Country", "country")
	if country == "" {
		return OutcomeNo, nil
	}

	rule, err := r.rules.GetByCountry(ctx, country)
	if err != nil {
		if errors.Is(err, store.ErrCountryRuleNotFound) {
			return OutcomeNo, nil
		}
		return OutcomeErrored, fmt.Errorf("country lookup: %w", err)
	}

	if rule.Rule == matchRule {
		return OutcomeYes, nil
	}
	return OutcomeNo, nil
}

func (r *CountryLookupRule) RecordDefinition(settings Settings) map[string]string {
	return map[string]string{
		"ContactID":    "{{Contact.Id}}",
		"EmailAddress": "{{Contact.Field(C_EmailAddress)}}",
		"Country":      "{{Contact.Field(C_Country)}}",
	}
}
