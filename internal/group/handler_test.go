package group

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"rotation-server/internal/models"
	"rotation-server/internal/session"
	"rotation-server/pkg/logger"
)

func newTestRouter(t *testing.T) (*mux.Router, *Repository) {
	t.Helper()
	svc, repo, _ := newTestService(t)
	h := NewHandler(svc, session.NewManager("", false), logger.Nop())
	r := mux.NewRouter()
	h.Register(r)
	return r, repo
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndJoinOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodPost, "/api/groups", models.GroupSettings{RotationPeriod: 7, MaxWordCount: 500})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var group models.Group
	if err := json.Unmarshal(rec.Body.Bytes(), &group); err != nil {
		t.Fatalf("decode group: %v", err)
	}

	rec = do(r, http.MethodPost, "/api/groups/"+group.ID.String()+"/join", models.JoinGroupRequest{InviteCode: group.InviteCode, Name: "Alice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("join: %d %s", rec.Code, rec.Body.String())
	}
	var joined models.JoinResult
	if err := json.Unmarshal(rec.Body.Bytes(), &joined); err != nil {
		t.Fatalf("decode join: %v", err)
	}
	names := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = c.Value
	}
	if names[session.MemberCookie] != joined.Member.ID.String() || names[session.GroupCookie] != group.ID.String() {
		t.Fatalf("cookies not set: %v", names)
	}

	rec = do(r, http.MethodGet, "/api/groups/"+group.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	var page models.LandingPage
	_ = json.Unmarshal(rec.Body.Bytes(), &page)
	if len(page.Members) != 1 {
		t.Fatalf("landing members: %+v", page.Members)
	}
}

func TestJoinUnknownInviteIs400(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := do(r, http.MethodPost, "/api/groups/x/join", models.JoinGroupRequest{InviteCode: "nope00", Name: "Bob"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("group not found")) {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestGotoInvite(t *testing.T) {
	r, repo := newTestRouter(t)
	group, _ := repo.CreateGroup(context.Background(), models.DefaultGroupSettings())

	rec := do(r, http.MethodGet, "/api/groups/goto/"+group.InviteCode, nil)
	if rec.Code != http.StatusTemporaryRedirect || rec.Header().Get("Location") != "/join-page" {
		t.Fatalf("expected 307 to /join-page, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.GroupCookie || cookies[0].Value != group.ID.String() {
		t.Fatalf("group cookie: %+v", cookies)
	}

	rec = do(r, http.MethodGet, "/api/groups/goto/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown invite: %d", rec.Code)
	}
}

func TestDemoTimeEndpoints(t *testing.T) {
	r, repo := newTestRouter(t)
	group, _ := repo.CreateGroup(context.Background(), models.DefaultGroupSettings())

	rec := do(r, http.MethodGet, "/api/demo-time", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing groupId: %d", rec.Code)
	}

	rec = do(r, http.MethodPost, "/api/demo-time", models.DemoTimeRequest{GroupID: group.ID.String(), SkipDays: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("skip: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodGet, "/api/demo-time?groupId="+group.ID.String(), nil)
	var body map[string]int64
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusOK || body["offset"] != 86400000 {
		t.Fatalf("get offset: %d %v", rec.Code, body)
	}
}

func TestTopicRequiresFields(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := do(r, http.MethodPost, "/api/topics", models.SubmitTopicRequest{TopicText: "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
