package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every persisted entity.
type Base struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists the models for AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Group{},
		&Member{},
		&Topic{},
		&Rotation{},
		&Article{},
		&Quiz{},
		&QuizAttempt{},
	}
}
