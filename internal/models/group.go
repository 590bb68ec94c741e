package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Group struct {
	Base
	InviteCode        string `json:"invite_code" gorm:"uniqueIndex;size:16;not null"`
	RotationPeriod    int    `json:"rotation_period"`
	MaxWordCount      int    `json:"max_word_count"`
	QuizzesEnabled    bool   `json:"quizzes_enabled"`
	ArchiveEnabled    bool   `json:"archive_enabled"`
	ArchiveTimePeriod *int   `json:"archive_time_period"`
	Anonymous         bool   `json:"anonymous"`
	DemoTimeOffset    int64  `json:"demo_time_offset" gorm:"not null;default:0"`
}

// GroupSettings is the client-supplied part of a Group.
type GroupSettings struct {
	RotationPeriod    int  `json:"rotation_period"`
	MaxWordCount      int  `json:"max_word_count"`
	QuizzesEnabled    bool `json:"quizzes_enabled"`
	ArchiveEnabled    bool `json:"archive_enabled"`
	ArchiveTimePeriod *int `json:"archive_time_period"`
	Anonymous         bool `json:"anonymous"`
}

// DefaultGroupSettings are used when a group is created implicitly.
func DefaultGroupSettings() GroupSettings {
	return GroupSettings{
		RotationPeriod: 7,
		MaxWordCount:   1000,
		QuizzesEnabled: true,
	}
}

type Member struct {
	Base
	GroupID uuid.UUID `json:"group_id" gorm:"type:uuid;index;not null"`
	Name    string    `json:"name" gorm:"not null"`
}

func (Member) TableName() string {
	return "group_members"
}

type Topic struct {
	Base
	GroupID       uuid.UUID `json:"group_id" gorm:"type:uuid;index;not null"`
	MemberID      uuid.UUID `json:"member_id" gorm:"type:uuid;index;not null"`
	TopicText     string    `json:"topic_text" gorm:"not null"`
	RotationCycle int       `json:"rotation_cycle"`
}

type Rotation struct {
	Base
	GroupID        uuid.UUID         `json:"group_id" gorm:"type:uuid;index;not null"`
	RotationNumber int               `json:"rotation_number"`
	Assignments    datatypes.JSONMap `json:"assignments"`
}

// LandingPage aggregates everything the group landing page shows.
type LandingPage struct {
	Group     *Group     `json:"group"`
	Members   []Member   `json:"members"`
	Topics    []Topic    `json:"topics"`
	Rotations []Rotation `json:"rotations"`
}

// JoinResult is returned when a member joins a group.
type JoinResult struct {
	Group  *Group  `json:"group"`
	Member *Member `json:"member"`
}
