package group

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"rotation-server/internal/httpx"
	"rotation-server/internal/models"
	"rotation-server/internal/session"
	"rotation-server/pkg/logger"
)

type Handler struct {
	service  *Service
	sessions *session.Manager
	log      *logger.Logger
}

func NewHandler(service *Service, sessions *session.Manager, log *logger.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, log: log.With("handler", "GroupHandler")}
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var settings models.GroupSettings
	if err := httpx.DecodeJSON(r, &settings); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	group, err := h.service.CreateGroup(r.Context(), settings)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, group)
}

// JoinGroup resolves the group from the invite code in the body; the
// {groupId} path segment is not consulted.
func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	var req models.JoinGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	result, err := h.service.JoinGroup(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	if err := h.sessions.SetMember(w, result.Member.ID, result.Group.ID); err != nil {
		h.log.Error("failed to issue session", "member_id", result.Member.ID, "error", err)
	}
	httpx.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) TestJoin(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.TestJoin(r.Context())
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	if err := h.sessions.SetMember(w, result.Member.ID, result.Group.ID); err != nil {
		h.log.Error("failed to issue session", "member_id", result.Member.ID, "error", err)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"group":   result.Group,
		"member":  result.Member,
		"message": "Joined group as " + result.Member.Name,
	})
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := httpx.ParseID("groupId", mux.Vars(r)["groupId"])
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	page, err := h.service.GetLandingPageData(r.Context(), groupID)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// GotoInvite points the group cookie at the invited group and redirects to the join page.
func (h *Handler) GotoInvite(w http.ResponseWriter, r *http.Request) {
	invite := strings.TrimSpace(mux.Vars(r)["invite_code"])
	if invite == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: "Missing invite code"})
		return
	}

	group, ok := h.service.GetGroupByInvite(r.Context(), invite).Get()
	if !ok {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{Error: "Group not found"})
		return
	}

	h.sessions.SetGroup(w, group.ID)
	http.Redirect(w, r, "/join-page", http.StatusTemporaryRedirect)
}

func (h *Handler) SubmitTopic(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitTopicRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	topic, err := h.service.SubmitTopic(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, topic)
}

func (h *Handler) SaveRotation(w http.ResponseWriter, r *http.Request) {
	var req models.SaveRotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	rotation, err := h.service.SaveRotation(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rotation)
}

func (h *Handler) GetDemoTime(w http.ResponseWriter, r *http.Request) {
	groupID, err := httpx.ParseID("groupId", r.URL.Query().Get("groupId"))
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	offset, err := h.service.GetTimeOffset(r.Context(), groupID)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"offset": offset})
}

func (h *Handler) ChangeDemoTime(w http.ResponseWriter, r *http.Request) {
	var req models.DemoTimeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	change, err := h.service.ChangeTime(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, change)
}

// Register mounts the group routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/groups", h.CreateGroup).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/groups/goto/{invite_code}", h.GotoInvite).Methods("GET")
	r.HandleFunc("/api/groups/{groupId}/join", h.JoinGroup).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/groups/{groupId}", h.GetGroup).Methods("GET")
	r.HandleFunc("/api/topics", h.SubmitTopic).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/rotations", h.SaveRotation).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/demo-time", h.GetDemoTime).Methods("GET")
	r.HandleFunc("/api/demo-time", h.ChangeDemoTime).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/test-join", h.TestJoin).Methods("POST", "OPTIONS")
}
