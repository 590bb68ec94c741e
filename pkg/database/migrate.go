package database

import (
	"gorm.io/gorm"

	"rotation-server/internal/models"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
