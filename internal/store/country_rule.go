package store

import (
	"context"
	"errors"

	"github.com/appcloud-project/decision-service/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCountryRuleNotFound = errors.New("country rule not found")
)

type CountryRule interface {
	List(ctx context.Context, pagination *Pagination) (model.CountryRuleList, error)
	GetByCountry(ctx context.Context, country string) (*model.CountryRule, error)
	Upsert(ctx context.Context, rule model.CountryRule) (*model.CountryRule, error)
	Delete(ctx context.Context, country string) error
}

type CountryRuleStore struct {
	db *gorm.DB
}

var _ CountryRule = (*CountryRuleStore)(nil)

func NewCountryRule(db *gorm.DB) CountryRule {
	return &CountryRuleStore{db: db}
}

func (s *CountryRuleStore) List(ctx context.Context, pagination *Pagination) (model.CountryRuleList, error) {
	var rules model.CountryRuleList
	query := s.db.WithContext(ctx).Order("country ASC")

	if pagination != nil {
		query = query.Limit(pagination.Limit).Offset(pagination.Offset)
	}

	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (s *CountryRuleStore) GetByCountry(ctx context.Context, country string) (*model.CountryRule, error) {
	var rule model.CountryRule
	if err := s.db.WithContext(ctx).Where(&model.CountryRule{Country: country}).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCountryRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (s *CountryRuleStore) Upsert(ctx context.Context, rule model.CountryRule) (*model.CountryRule, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "country"}},
		DoUpdates: clause.AssignmentColumns([]string{"rule", "update_time"}),
	}).Create(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *CountryRuleStore) Delete(ctx context.Context, country string) error {
	result := s.db.WithContext(ctx).Where(&model.CountryRule{Country: country}).Delete(&model.CountryRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCountryRuleNotFound
	}
	return nil
}
