package group

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"rotation-server/internal/apierr"
	"rotation-server/internal/events"
	"rotation-server/internal/httpx"
	"rotation-server/internal/lookup"
	"rotation-server/internal/models"
	"rotation-server/pkg/logger"
)

const (
	msPerHour = int64(60 * 60 * 1000)
	msPerDay  = 24 * msPerHour
)

var testNames = []string{"TestUser", "Alice", "Bob", "Charlie", "Diana", "Eve", "Frank"}

type Service struct {
	repo   *Repository
	notify events.Notifier
	log    *logger.Logger
}

func NewService(repo *Repository, notify events.Notifier, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		notify: events.OrNop(notify),
		log:    log.With("service", "GroupService"),
	}
}

func (s *Service) CreateGroup(ctx context.Context, settings models.GroupSettings) (*models.Group, error) {
	if settings.RotationPeriod < 0 || settings.MaxWordCount < 0 {
		return nil, apierr.BadRequest("rotation_period and max_word_count must not be negative")
	}
	if settings.ArchiveTimePeriod != nil && *settings.ArchiveTimePeriod < 0 {
		return nil, apierr.BadRequest("archive_time_period must not be negative")
	}
	return s.repo.CreateGroup(ctx, settings)
}

// JoinGroup adds a member. A non-empty topic is submitted for rotation cycle 1;
// failing to save it does not fail the join.
func (s *Service) JoinGroup(ctx context.Context, req models.JoinGroupRequest) (*models.JoinResult, error) {
	inviteCode := strings.TrimSpace(req.InviteCode)
	name := strings.TrimSpace(req.Name)
	if inviteCode == "" {
		return nil, apierr.BadRequest("invite_code is required")
	}
	if name == "" {
		return nil, apierr.BadRequest("name is required")
	}

	result, err := s.repo.JoinGroup(ctx, inviteCode, name)
	if err != nil {
		return nil, err
	}

	if topic := strings.TrimSpace(req.Topic); topic != "" {
		if _, err := s.repo.SubmitTopic(ctx, result.Group.ID, result.Member.ID, topic, 1); err != nil {
			s.log.Warn("failed to create topic on join", "group_id", result.Group.ID, "member_id", result.Member.ID, "error", err)
		}
	}

	s.notify.BroadcastMessage(result.Group.ID.String(), events.MemberJoined, result.Member)
	return result, nil
}

// TestJoin joins the earliest group (creating one with default settings if
// none exists) under a random test name.
func (s *Service) TestJoin(ctx context.Context) (*models.JoinResult, error) {
	var group *models.Group
	res := s.repo.GetEarliestGroup(ctx)
	switch res.Outcome {
	case lookup.Found:
		group = res.Value
	default:
		if res.Outcome == lookup.Failed {
			s.log.Warn("earliest group lookup failed, creating a new group", "error", res.Err)
		}
		created, err := s.repo.CreateGroup(ctx, models.DefaultGroupSettings())
		if err != nil {
			return nil, err
		}
		group = created
	}

	name := testNames[rand.IntN(len(testNames))] + "_" + NewInviteCode()[:4]
	member, err := s.repo.AddMember(ctx, group.ID, name)
	if err != nil {
		return nil, err
	}
	s.notify.BroadcastMessage(group.ID.String(), events.MemberJoined, member)
	return &models.JoinResult{Group: group, Member: member}, nil
}

func (s *Service) SubmitTopic(ctx context.Context, req models.SubmitTopicRequest) (*models.Topic, error) {
	groupID, err := httpx.ParseID("group_id", req.GroupID)
	if err != nil {
		return nil, err
	}
	memberID, err := httpx.ParseID("member_id", req.MemberID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.TopicText)
	if text == "" {
		return nil, apierr.BadRequest("topic_text is required")
	}

	topic, err := s.repo.SubmitTopic(ctx, groupID, memberID, text, req.RotationCycle)
	if err != nil {
		return nil, err
	}
	s.notify.BroadcastMessage(groupID.String(), events.TopicSubmitted, topic)
	return topic, nil
}

func (s *Service) SaveRotation(ctx context.Context, req models.SaveRotationRequest) (*models.Rotation, error) {
	groupID, err := httpx.ParseID("group_id", req.GroupID)
	if err != nil {
		return nil, err
	}
	if req.Assignments == nil {
		return nil, apierr.BadRequest("assignments is required")
	}

	rotation, err := s.repo.SaveRotation(ctx, groupID, req.RotationNumber, req.Assignments)
	if err != nil {
		return nil, err
	}
	s.notify.BroadcastMessage(groupID.String(), events.RotationSaved, rotation)
	return rotation, nil
}

func (s *Service) GetLandingPageData(ctx context.Context, groupID uuid.UUID) (*models.LandingPage, error) {
	return s.repo.GetLandingPageData(ctx, groupID)
}

func (s *Service) GetGroupByInvite(ctx context.Context, inviteCode string) lookup.Result[models.Group] {
	return s.repo.GetGroupByInvite(ctx, inviteCode)
}

func (s *Service) GetLatestGroup(ctx context.Context) lookup.Result[models.Group] {
	return s.repo.GetLatestGroup(ctx)
}

func (s *Service) GetTimeOffset(ctx context.Context, groupID uuid.UUID) (int64, error) {
	return s.repo.GetTimeOffset(ctx, groupID)
}

// TimeChange is the outcome of a demo-time request.
type TimeChange struct {
	Offset  int64  `json:"offset"`
	Message string `json:"message"`
}

// ChangeTime resets or skips the group's demo clock.
func (s *Service) ChangeTime(ctx context.Context, req models.DemoTimeRequest) (*TimeChange, error) {
	groupID, err := httpx.ParseID("groupId", req.GroupID)
	if err != nil {
		return nil, err
	}

	if req.Reset {
		if _, err := s.repo.ResetTimeOffset(ctx, groupID); err != nil {
			return nil, err
		}
		change := &TimeChange{Offset: 0, Message: "Time reset to real time"}
		s.notify.BroadcastMessage(groupID.String(), events.TimeChanged, change)
		return change, nil
	}

	skipMs := SkipMillis(req.SkipHours, req.SkipDays)
	if skipMs == 0 {
		return nil, apierr.BadRequest("Specify skipHours, skipDays, or reset")
	}

	group, err := s.repo.SkipTime(ctx, groupID, skipMs)
	if err != nil {
		return nil, err
	}
	change := &TimeChange{
		Offset:  group.DemoTimeOffset,
		Message: fmt.Sprintf("Time skipped forward by %s hours and %s days", formatAmount(req.SkipHours), formatAmount(req.SkipDays)),
	}
	s.notify.BroadcastMessage(groupID.String(), events.TimeChanged, change)
	return change, nil
}

// SkipMillis converts an hours/days skip to milliseconds.
func SkipMillis(hours, days float64) int64 {
	return int64(hours*float64(msPerHour)) + int64(days*float64(msPerDay))
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%g", v)
}
