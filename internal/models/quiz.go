package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoreUnattempted marks a quiz nobody has taken yet.
const ScoreUnattempted = -1

type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type Quiz struct {
	Base
	ArticleID uuid.UUID                         `json:"article_id" gorm:"type:uuid;uniqueIndex;not null"`
	Questions datatypes.JSONSlice[QuizQuestion] `json:"questions"`
	QuizScore int                               `json:"quiz_score" gorm:"not null;default:-1"`
}

func (q *Quiz) Attempted() bool {
	return q.QuizScore != ScoreUnattempted
}

type QuizAttempt struct {
	ID          uuid.UUID                `json:"id" gorm:"type:uuid;primaryKey"`
	QuizID      uuid.UUID                `json:"quiz_id" gorm:"type:uuid;index;not null"`
	MemberID    uuid.UUID                `json:"member_id" gorm:"type:uuid;index;not null"`
	Answers     datatypes.JSONSlice[int] `json:"answers"`
	Score       int                      `json:"score"`
	AttemptedAt time.Time                `json:"attempted_at" gorm:"autoCreateTime"`
	Member      *Member                  `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	Quiz        *Quiz                    `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
