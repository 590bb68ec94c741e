package group

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"rotation-server/internal/apierr"
	"rotation-server/internal/events"
	"rotation-server/internal/models"
	"rotation-server/internal/testutil"
	"rotation-server/pkg/logger"
)

type recordedEvent struct {
	room string
	kind string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) BroadcastMessage(room, kind string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{room: room, kind: kind})
}

func (f *fakeNotifier) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.kind
	}
	return out
}

func newTestService(t *testing.T) (*Service, *Repository, *fakeNotifier) {
	t.Helper()
	repo := newTestRepo(t)
	n := &fakeNotifier{}
	return NewService(repo, n, logger.Nop()), repo, n
}

func TestJoinGroupWithTopic(t *testing.T) {
	ctx := context.Background()
	svc, repo, notifier := newTestService(t)
	group, _ := repo.CreateGroup(ctx, models.DefaultGroupSettings())

	res, err := svc.JoinGroup(ctx, models.JoinGroupRequest{InviteCode: group.InviteCode, Name: " Alice ", Topic: "Mountains"})
	if err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}
	if res.Member.Name != "Alice" {
		t.Fatalf("name should be trimmed, got %q", res.Member.Name)
	}

	page, _ := repo.GetLandingPageData(ctx, group.ID)
	if len(page.Topics) != 1 || page.Topics[0].RotationCycle != 1 || page.Topics[0].MemberID != res.Member.ID {
		t.Fatalf("topic for cycle 1 not created: %+v", page.Topics)
	}
	if got := notifier.kinds(); len(got) != 1 || got[0] != events.MemberJoined {
		t.Fatalf("events: %v", got)
	}
}

func TestJoinGroupValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	cases := []models.JoinGroupRequest{
		{Name: "Alice"},
		{InviteCode: "abc123"},
	}
	for _, req := range cases {
		_, err := svc.JoinGroup(context.Background(), req)
		if apierr.StatusOf(err, 0) != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400 validation error, got %v", req, err)
		}
	}
}

func TestTestJoinCreatesGroupWhenEmpty(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	first, err := svc.TestJoin(ctx)
	if err != nil {
		t.Fatalf("TestJoin: %v", err)
	}
	if !first.Group.QuizzesEnabled || first.Group.RotationPeriod != 7 {
		t.Fatalf("default settings not applied: %+v", first.Group)
	}

	second, err := svc.TestJoin(ctx)
	if err != nil {
		t.Fatalf("TestJoin: %v", err)
	}
	if second.Group.ID != first.Group.ID {
		t.Fatalf("second join should reuse the earliest group")
	}
	page, _ := repo.GetLandingPageData(ctx, first.Group.ID)
	if len(page.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(page.Members))
	}
}

func TestChangeTime(t *testing.T) {
	ctx := context.Background()
	svc, repo, notifier := newTestService(t)
	group, _ := repo.CreateGroup(ctx, models.DefaultGroupSettings())
	id := group.ID.String()

	change, err := svc.ChangeTime(ctx, models.DemoTimeRequest{GroupID: id, SkipHours: 1})
	if err != nil {
		t.Fatalf("skip hours: %v", err)
	}
	if change.Offset != 3600000 {
		t.Fatalf("offset after 1h: %d", change.Offset)
	}
	if change.Message != "Time skipped forward by 1 hours and 0 days" {
		t.Fatalf("message: %q", change.Message)
	}

	change, err = svc.ChangeTime(ctx, models.DemoTimeRequest{GroupID: id, SkipDays: 2})
	if err != nil {
		t.Fatalf("skip days: %v", err)
	}
	if change.Offset != 3600000+2*86400000 {
		t.Fatalf("offset after 2d: %d", change.Offset)
	}

	change, err = svc.ChangeTime(ctx, models.DemoTimeRequest{GroupID: id, Reset: true})
	if err != nil || change.Offset != 0 {
		t.Fatalf("reset: %+v %v", change, err)
	}

	_, err = svc.ChangeTime(ctx, models.DemoTimeRequest{GroupID: id})
	if apierr.StatusOf(err, 0) != http.StatusBadRequest {
		t.Fatalf("empty skip should be a 400, got %v", err)
	}
	_, err = svc.ChangeTime(ctx, models.DemoTimeRequest{SkipHours: 1})
	if err == nil || err.Error() != "groupId is required" {
		t.Fatalf("missing groupId: got %v", err)
	}

	if got := notifier.kinds(); len(got) != 3 {
		t.Fatalf("expected 3 time_changed events, got %v", got)
	}
}

func TestSkipMillis(t *testing.T) {
	if got := SkipMillis(1, 0); got != 3600000 {
		t.Fatalf("1h: %d", got)
	}
	if got := SkipMillis(0.5, 1); got != 1800000+86400000 {
		t.Fatalf("0.5h+1d: %d", got)
	}
}

func TestCreateGroupRejectsNegativeSettings(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateGroup(context.Background(), models.GroupSettings{RotationPeriod: -1})
	if apierr.StatusOf(err, 0) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
