package models

import (
	"strings"

	"github.com/google/uuid"
)

type Article struct {
	Base
	GroupID        uuid.UUID `json:"group_id" gorm:"type:uuid;index;not null"`
	MemberID       uuid.UUID `json:"member_id" gorm:"type:uuid;index;not null"`
	RotationNumber int       `json:"rotation_number"`
	Content        string    `json:"content" gorm:"not null"`
	WordCount      int       `json:"word_count"`
	ArticleRead    bool      `json:"article_read" gorm:"not null;default:false"`
	Author         *Member   `json:"author,omitempty" gorm:"foreignKey:MemberID"`
}

// WordCount counts whitespace-separated words; surrounding whitespace yields no empty tokens.
func WordCount(content string) int {
	return len(strings.Fields(content))
}
