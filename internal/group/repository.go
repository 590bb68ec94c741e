package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rotation-server/internal/lookup"
	"rotation-server/internal/models"
	"rotation-server/pkg/logger"
)

var ErrGroupNotFound = errors.New("group not found")

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log.With("repo", "GroupRepository")}
}

func (r *Repository) CreateGroup(ctx context.Context, settings models.GroupSettings) (*models.Group, error) {
	group := &models.Group{
		InviteCode:        NewInviteCode(),
		RotationPeriod:    settings.RotationPeriod,
		MaxWordCount:      settings.MaxWordCount,
		QuizzesEnabled:    settings.QuizzesEnabled,
		ArchiveEnabled:    settings.ArchiveEnabled,
		ArchiveTimePeriod: settings.ArchiveTimePeriod,
		Anonymous:         settings.Anonymous,
	}
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		r.log.Error("create group failed", "error", err)
		return nil, err
	}
	r.log.Info("created group", "group_id", group.ID, "invite_code", group.InviteCode)
	return group, nil
}

func (r *Repository) JoinGroup(ctx context.Context, inviteCode, name string) (*models.JoinResult, error) {
	var group models.Group
	err := r.db.WithContext(ctx).Where("invite_code = ?", inviteCode).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	member := &models.Member{GroupID: group.ID, Name: name}
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		r.log.Error("add member failed", "group_id", group.ID, "error", err)
		return nil, err
	}
	return &models.JoinResult{Group: &group, Member: member}, nil
}

// AddMember inserts a member into a known group.
func (r *Repository) AddMember(ctx context.Context, groupID uuid.UUID, name string) (*models.Member, error) {
	member := &models.Member{GroupID: groupID, Name: name}
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (r *Repository) SubmitTopic(ctx context.Context, groupID, memberID uuid.UUID, text string, rotationCycle int) (*models.Topic, error) {
	topic := &models.Topic{
		GroupID:       groupID,
		MemberID:      memberID,
		TopicText:     text,
		RotationCycle: rotationCycle,
	}
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		return nil, err
	}
	return topic, nil
}

func (r *Repository) SaveRotation(ctx context.Context, groupID uuid.UUID, rotationNumber int, assignments map[string]interface{}) (*models.Rotation, error) {
	rotation := &models.Rotation{
		GroupID:        groupID,
		RotationNumber: rotationNumber,
		Assignments:    datatypes.JSONMap(assignments),
	}
	if err := r.db.WithContext(ctx).Create(rotation).Error; err != nil {
		return nil, err
	}
	return rotation, nil
}

func (r *Repository) GetGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetLandingPageData runs four independent reads; any failure aborts.
func (r *Repository) GetLandingPageData(ctx context.Context, groupID uuid.UUID) (*models.LandingPage, error) {
	group, err := r.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	page := &models.LandingPage{
		Group:     group,
		Members:   []models.Member{},
		Topics:    []models.Topic{},
		Rotations: []models.Rotation{},
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("group_id = ?", groupID).Order("created_at asc").Find(&page.Members).Error; err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}
	if err := db.Where("group_id = ?", groupID).Order("created_at asc").Find(&page.Topics).Error; err != nil {
		return nil, fmt.Errorf("topics: %w", err)
	}
	if err := db.Where("group_id = ?", groupID).Order("rotation_number asc").Find(&page.Rotations).Error; err != nil {
		return nil, fmt.Errorf("rotations: %w", err)
	}
	return page, nil
}

func (r *Repository) GetLatestGroup(ctx context.Context) lookup.Result[models.Group] {
	return r.firstGroup(ctx, r.db.WithContext(ctx).Order("created_at desc"))
}

func (r *Repository) GetEarliestGroup(ctx context.Context) lookup.Result[models.Group] {
	return r.firstGroup(ctx, r.db.WithContext(ctx).Order("created_at asc"))
}

func (r *Repository) GetGroupByInvite(ctx context.Context, inviteCode string) lookup.Result[models.Group] {
	return r.firstGroup(ctx, r.db.WithContext(ctx).Where("invite_code = ?", inviteCode))
}

func (r *Repository) firstGroup(ctx context.Context, q *gorm.DB) lookup.Result[models.Group] {
	var group models.Group
	err := q.Limit(1).Take(&group).Error
	switch {
	case err == nil:
		return lookup.Hit(&group)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return lookup.Miss[models.Group]()
	default:
		r.log.Warn("group lookup failed", "error", err)
		return lookup.Fail[models.Group](err)
	}
}

func (r *Repository) GetTimeOffset(ctx context.Context, groupID uuid.UUID) (int64, error) {
	group, err := r.GetGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}
	return group.DemoTimeOffset, nil
}

func (r *Repository) SetTimeOffset(ctx context.Context, groupID uuid.UUID, offsetMs int64) (*models.Group, error) {
	return r.updateOffset(ctx, groupID, offsetMs)
}

// SkipTime adds deltaMs to the stored offset in a single UPDATE so concurrent
// skips cannot lose each other's increments.
func (r *Repository) SkipTime(ctx context.Context, groupID uuid.UUID, deltaMs int64) (*models.Group, error) {
	return r.updateOffset(ctx, groupID, gorm.Expr("demo_time_offset + ?", deltaMs))
}

func (r *Repository) ResetTimeOffset(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	return r.updateOffset(ctx, groupID, int64(0))
}

func (r *Repository) updateOffset(ctx context.Context, groupID uuid.UUID, value interface{}) (*models.Group, error) {
	res := r.db.WithContext(ctx).Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("demo_time_offset", value)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrGroupNotFound
	}
	return r.GetGroup(ctx, groupID)
}
