package model

import "time"

// CountryRule maps a contact country onto the rule name the country
// lookup decision should apply.
type CountryRule struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	Country    string    `gorm:"uniqueIndex;not null"`
	Rule       string    `gorm:"column:rule;not null"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime"`
}

type CountryRuleList []CountryRule
