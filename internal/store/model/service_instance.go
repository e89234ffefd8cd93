package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ServiceInstance is one installation of the decision service on an
// Eloqua campaign canvas. Settings holds the rule configuration saved
// from the configure page.
type ServiceInstance struct {
	ID               uuid.UUID      `gorm:"primaryKey;type:uuid"`
	InstallID        string         `gorm:"column:install_id;not null"`
	AssetName        string         `gorm:"column:asset_name"`
	Configured       bool           `gorm:"column:configured;not null"`
	RecordDefinition datatypes.JSON `gorm:"column:record_definition"`
	Settings         datatypes.JSON `gorm:"column:settings"`
	CreateTime       time.Time      `gorm:"column:create_time;autoCreateTime"`
	UpdateTime       time.Time      `gorm:"column:update_time;autoUpdateTime"`
}

type ServiceInstanceList []ServiceInstance
