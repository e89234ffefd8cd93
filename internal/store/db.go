package store

import (
	"fmt"

	"github.com/appcloud-project/decision-service/internal/config"
	"github.com/appcloud-project/decision-service/internal/store/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the configured database and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Type {
	case "pgsql":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
			cfg.Database.Hostname, cfg.Database.Port, cfg.Database.User,
			cfg.Database.Password, cfg.Database.Name)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Name + ".db")
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&model.ServiceInstance{}, &model.CountryRule{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
