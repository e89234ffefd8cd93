package store

import "gorm.io/gorm"

type Store interface {
	Close() error
	ServiceInstance() ServiceInstance
	CountryRule() CountryRule
}

type DataStore struct {
	db          *gorm.DB
	instance    ServiceInstance
	countryRule CountryRule
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:          db,
		instance:    NewServiceInstance(db),
		countryRule: NewCountryRule(db),
	}
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *DataStore) ServiceInstance() ServiceInstance {
	return s.instance
}

func (s *DataStore) CountryRule() CountryRule {
	return s.countryRule
}
