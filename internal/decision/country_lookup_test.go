package decision_test

import (
	"context"

	"github.com/appcloud-project/decision-service/internal/decision"
	"github.com/appcloud-project/decision-service/internal/store"
	"github.com/appcloud-project/decision-service/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("CountryLookupRule", func() {
	var (
		db   *gorm.DB
		rule *decision.CountryLookupRule
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&model.CountryRule{})).To(Succeed())

		ruleStore := store.NewCountryRule(db)
		ctx = context.Background()

		_, err = ruleStore.Upsert(ctx, model.CountryRule{Country: "Germany", Rule: "SpecificRule"})
		Expect(err).NotTo(HaveOccurred())
		_, err = ruleStore.Upsert(ctx, model.CountryRule{Country: "France", Rule: "OtherRule"})
		Expect(err).NotTo(HaveOccurred())

		rule = decision.NewCountryLookupRule(ruleStore)
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	It("accepts a contact whose country carries the matching rule", func() {
		contact := decision.Contact{"Country": "Germany"}

		outcome, err := rule.Evaluate(ctx, contact, decision.Settings{})

		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(decision.OutcomeYes))
	})

	It("rejects a contact whose country carries a different rule", func() {
		contact := decision.Contact{"Country": "France"}

		outcome, _ := rule.Evaluate(ctx, contact, decision.Settings{})

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("rejects a contact with no table entry", func() {
		contact := decision.Contact{"Country": "Atlantis"}

		outcome, err := rule.Evaluate(ctx, contact, decision.Settings{})

		Expect(err).NotTo(HaveOccurred())
		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("rejects a contact without a country", func() {
		outcome, _ := rule.Evaluate(ctx, decision.Contact{}, decision.Settings{})

		Expect(outcome).To(Equal(decision.OutcomeNo))
	})

	It("requests the country field in its record definition", func() {
		recordDef := rule.RecordDefinition(decision.Settings{})

		Expect(recordDef).To(HaveKeyWithValue("Country", "{{Contact.Field(C_Country)}}"))
	})
})
