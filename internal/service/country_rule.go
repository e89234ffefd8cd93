package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/appcloud-project/decision-service/internal/store"
	"github.com/appcloud-project/decision-service/internal/store/model"
	"github.com/sirupsen/logrus"
)

// CountryRule is the API shape of one lookup-table row.
type CountryRule struct {
	Country string `json:"country"`
	Rule    string `json:"rule"`
}

// CountryRuleService manages the lookup table the country_lookup
// decision rule reads.
type CountryRuleService struct {
	store store.Store
}

func NewCountryRuleService(dataStore store.Store) *CountryRuleService {
	return &CountryRuleService{store: dataStore}
}

func (s *CountryRuleService) List(ctx context.Context) ([]CountryRule, error) {
	rules, err := s.store.CountryRule().List(ctx, nil)
	if err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to list country rules: %v", err))
	}

	result := make([]CountryRule, len(rules))
	for i, rule := range rules {
		result[i] = CountryRule{Country: rule.Country, Rule: rule.Rule}
	}
	return result, nil
}

func (s *CountryRuleService) Upsert(ctx context.Context, rule CountryRule) (*CountryRule, error) {
	if rule.Country == "" || rule.Rule == "" {
		return nil, NewValidationError("country and rule are required")
	}

	saved, err := s.store.CountryRule().Upsert(ctx, model.CountryRule{
		Country: rule.Country,
		Rule:    rule.Rule,
	})
	if err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to save country rule: %v", err))
	}

	logrus.WithField("country", saved.Country).Info("Saved country rule")
	return &CountryRule{Country: saved.Country, Rule: saved.Rule}, nil
}

func (s *CountryRuleService) Delete(ctx context.Context, country string) error {
	if err := s.store.CountryRule().Delete(ctx, country); err != nil {
		if errors.Is(err, store.ErrCountryRuleNotFound) {
			return NewNotFoundError(fmt.Sprintf("country rule for %s not found", country))
		}
		return NewInternalError(fmt.Sprintf("failed to delete country rule: %v", err))
	}

	logrus.WithField("country", country).Info("Deleted country rule")
	return nil
}
