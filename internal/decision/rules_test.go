package decision_test

import (
	"context"

	"github.com/appcloud-project/decision-service/internal/decision"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EmailDomainRule", func() {
	var (
		rule *decision.EmailDomainRule
		ctx  context.Context
	)

	BeforeEach(func() {
		rule = decision.NewEmailDomainRule()
		ctx = context.Background()
	})

	It("accepts a plain valid email", func() {
		contact := decision.Contact{"EmailAddress": "jo@example.com"}

		outcome, err := rule.Evaluate(ctx, contact, decision.Settings{})

		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("rejects a missing email", func() {
		outcome, err := rule.Evaluate(ctx, decision.Contact{}, decision.Settings{})

		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("rejects an email without an @", func() {
		contact := decision.Contact{"EmailAddress": "not-an-email"}

		outcome, _ := rule.Evaluate(ctx, contact, decision.Settings{})

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("rejects a dotless domain when require_domain is set", func() {
		contact := decision.Contact{"EmailAddress": "jo@localhost"}
		settings := decision.Settings{"config": map[string]any{"require_domain": true}}

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("rejects blocked domains regardless of case", func() {
		contact := decision.Contact{"EmailAddress": "jo@SPAM.com"}
		settings := decision.Settings{"config": map[string]any{
			"blocked_domains": []any{"spam.com"},
		}}

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("reads the lower-camel email field Eloqua sometimes sends", func() {
		contact := decision.Contact{"emailAddress": "jo@example.com"}

		outcome, _ := rule.Evaluate(ctx, contact, decision.Settings{})

		Expect(outcome).To(Equal(decision.OutcomeYes))
	})
})

var _ = Describe("ScoreThresholdRule", func() {
	var (
		rule *decision.ScoreThresholdRule
		ctx  context.Context
	)

	BeforeEach(func() {
		rule = decision.NewScoreThresholdRule()
		ctx = context.Background()
	})

	It("accepts a contact scoring past the threshold", func() {
		contact := decision.Contact{
			"EmailAddress":     "jo@gmail.com",
			"Title":            "Engineering Director",
			"LastActivityDate": "2026-08-01",
		}
		settings := decision.Settings{"config": map[string]any{"score_threshold": float64(70)}}

		outcome, err := rule.Evaluate(ctx, contact, settings)

		Expect(err).NotTo(HaveOccurred())
		// 20 (premium domain) + 25 (activity) + 30 (title) = 75
		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("rejects a contact below the threshold", func() {
		contact := decision.Contact{"EmailAddress": "jo@nowhere.example"}
		settings := decision.Settings{"config": map[string]any{"score_threshold": float64(50)}}

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("rejects thresholds outside 0-100 during validation", func() {
		settings := decision.Settings{"config": map[string]any{"score_threshold": float64(250)}}

		Expect(rule.Validate(settings)).To(HaveOccurred())
	})
})

var _ = Describe("ConditionRule", func() {
	var (
		rule *decision.ConditionRule
		ctx  context.Context
	)

	BeforeEach(func() {
		rule = decision.NewConditionRule()
		ctx = context.Background()
	})

	settingsWith := func(conditions []any, defaultResult string) decision.Settings {
		config := map[string]any{"conditions": conditions}
		if defaultResult != "" {
			config["default_result"] = defaultResult
		}
		return decision.Settings{"config": config}
	}

	It("returns the result of the first matching condition", func() {
		contact := decision.Contact{"Title": "VP of Sales"}
		settings := settingsWith([]any{
			map[string]any{"field": "Title", "operator": "contains", "value": "sales", "result": "yes"},
		}, "")

		outcome, err := rule.Evaluate(ctx, contact, settings)

		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("falls back to the default result", func() {
		contact := decision.Contact{"Title": "Intern"}
		settings := settingsWith([]any{
			map[string]any{"field": "Title", "operator": "equals", "value": "ceo", "result": "yes"},
		}, "errored")

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeErrored))
	})

	It("matches regex operators case-insensitively", func() {
		contact := decision.Contact{"EmailAddress": "Jo@Corp.Example"}
		settings := settingsWith([]any{
			map[string]any{"field": "EmailAddress", "operator": "regex", "value": `@corp\.`, "result": "yes"},
		}, "")

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("rejects invalid regex patterns during validation", func() {
		settings := settingsWith([]any{
			map[string]any{"field": "Title", "operator": "regex", "value": "([", "result": "yes"},
		}, "")

		Expect(rule.Validate(settings)).To(HaveOccurred())
	})

	It("compares numeric contact fields as text", func() {
		contact := decision.Contact{"LeadScore": float64(42)}
		settings := settingsWith([]any{
			map[string]any{"field": "LeadScore", "operator": "equals", "value": "42", "result": "yes"},
		}, "")

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("matches not_equals against an empty condition value", func() {
		contact := decision.Contact{"Company": "Acme"}
		settings := settingsWith([]any{
			map[string]any{"field": "Company", "operator": "not_equals", "value": "", "result": "yes"},
		}, "no")

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("never matches a condition on an absent contact field", func() {
		settings := settingsWith([]any{
			map[string]any{"field": "Company", "operator": "not_equals", "value": "acme", "result": "yes"},
		}, "no")

		outcome, _ := rule.Evaluate(ctx, decision.Contact{}, settings)

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("builds the record definition from configured conditions", func() {
		settings := settingsWith([]any{
			map[string]any{"field": "Company", "operator": "contains", "value": "inc",
				"eloqua_field": "{{Contact.Field(C_Company)}}", "result": "yes"},
		}, "")

		recordDef := rule.RecordDefinition(settings)

		Expect(recordDef).To(HaveKeyWithValue("Company", "{{Contact.Field(C_Company)}}"))
		Expect(recordDef).To(HaveKey("ContactID"))
	})
})

var _ = Describe("RegexPatternRule", func() {
	var (
		rule *decision.RegexPatternRule
		ctx  context.Context
	)

	BeforeEach(func() {
		rule = decision.NewRegexPatternRule()
		ctx = context.Background()
	})

	settingsWith := func(patterns []any, matchMode string) decision.Settings {
		config := map[string]any{"patterns": patterns}
		if matchMode != "" {
			config["match_mode"] = matchMode
		}
		return decision.Settings{"config": config}
	}

	It("accepts when any pattern matches by default", func() {
		contact := decision.Contact{"EmailAddress": "jo@corp.example", "Title": "Intern"}
		settings := settingsWith([]any{
			map[string]any{"field": "EmailAddress", "pattern": `@corp\.`},
			map[string]any{"field": "Title", "pattern": "director"},
		}, "")

		outcome, err := rule.Evaluate(ctx, contact, settings)

		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("requires every pattern in all mode", func() {
		contact := decision.Contact{"EmailAddress": "jo@corp.example", "Title": "Intern"}
		settings := settingsWith([]any{
			map[string]any{"field": "EmailAddress", "pattern": `@corp\.`},
			map[string]any{"field": "Title", "pattern": "director"},
		}, "all")

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("accepts in all mode once every pattern matches", func() {
		contact := decision.Contact{"EmailAddress": "jo@corp.example", "Title": "Sales Director"}
		settings := settingsWith([]any{
			map[string]any{"field": "EmailAddress", "pattern": `@corp\.`},
			map[string]any{"field": "Title", "pattern": "director"},
		}, "all")

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("matches case-insensitively against numeric fields", func() {
		contact := decision.Contact{"LeadScore": float64(87)}
		settings := settingsWith([]any{
			map[string]any{"field": "LeadScore", "pattern": `^8\d$`},
		}, "")

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("rejects a contact when no usable pattern is configured", func() {
		contact := decision.Contact{"EmailAddress": "jo@corp.example"}
		settings := settingsWith([]any{
			map[string]any{"field": "EmailAddress"},
		}, "")

		outcome, _ := rule.Evaluate(ctx, contact, settings)

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("rejects invalid regex patterns during validation", func() {
		settings := settingsWith([]any{
			map[string]any{"field": "Title", "pattern": "(["},
		}, "")

		Expect(rule.Validate(settings)).To(HaveOccurred())
	})

	It("builds the record definition from configured patterns", func() {
		settings := settingsWith([]any{
			map[string]any{"field": "Company", "pattern": "inc",
				"eloqua_field": "{{Contact.Field(C_Company)}}"},
		}, "")

		recordDef := rule.RecordDefinition(settings)

		Expect(recordDef).To(HaveKeyWithValue("Company", "{{Contact.Field(C_Company)}}"))
		Expect(recordDef).To(HaveKey("ContactID"))
	})

	It("falls back to the default record definition without patterns", func() {
		recordDef := rule.RecordDefinition(decision.Settings{})

		Expect(recordDef).To(HaveKey("EmailAddress"))
		Expect(recordDef).To(HaveKey("Company"))
		Expect(recordDef).To(HaveKey("Title"))
	})
})

var _ = Describe("Registry", func() {
	It("defaults to the email domain rule", func() {
		registry := decision.NewRegistry(decision.NewEmailDomainRule(), decision.NewConditionRule())

		rule, err := registry.Rule(decision.Settings{})

		Expect(err).NotTo(HaveOccurred())
		Expect(rule.Name()).To(Equal(decision.RuleEmailDomain))
	})

	It("rejects unknown rule names", func() {
		registry := decision.NewRegistry(decision.NewEmailDomainRule())

		_, err := registry.Rule(decision.Settings{"rule": "astrology"})

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("EvaluateBatch", func() {
	It("classifies every contact and never drops one", func() {
		rule := decision.NewEmailDomainRule()
		contacts := []decision.Contact{
			{"EmailAddress": "jo@example.com"},
			{"EmailAddress": "bad-address"},
		}

		results := decision.EvaluateBatch(context.Background(), rule, contacts, decision.Settings{})

		Expect(results).To(HaveLen(2))
		Expect(results[0].Outcome).To(Equal(decision.OutcomeYes))
		Expect(results[1].Outcome).To(Equal(decision.OutcomeNo))
	})
})
