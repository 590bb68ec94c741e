// Package pages serves the data each browser page loads on first render.
package pages

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"rotation-server/internal/demotime"
	"rotation-server/internal/httpx"
	"rotation-server/internal/lookup"
	"rotation-server/internal/models"
	"rotation-server/internal/session"
	"rotation-server/pkg/logger"
)

const (
	defaultTopic        = "Write about something that interests you"
	defaultMaxWordCount = 1000
)

type Groups interface {
	GetLandingPageData(ctx context.Context, groupID uuid.UUID) (*models.LandingPage, error)
	GetLatestGroup(ctx context.Context) lookup.Result[models.Group]
	GetTimeOffset(ctx context.Context, groupID uuid.UUID) (int64, error)
}

type Articles interface {
	ListArticles(ctx context.Context, rawGroupID string) ([]models.Article, error)
}

type Quizzes interface {
	CompletedArticleIDs(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error)
	HasCompletedQuizForArticle(ctx context.Context, memberID, articleID uuid.UUID) (bool, error)
}

type Handler struct {
	groups   Groups
	articles Articles
	quizzes  Quizzes
	sessions *session.Manager
	log      *logger.Logger
}

func NewHandler(groups Groups, articles Articles, quizzes Quizzes, sessions *session.Manager, log *logger.Logger) *Handler {
	return &Handler{
		groups:   groups,
		articles: articles,
		quizzes:  quizzes,
		sessions: sessions,
		log:      log.With("handler", "PagesHandler"),
	}
}

type GroupPage struct {
	*models.LandingPage
	Articles                []models.Article `json:"articles"`
	CurrentMemberID         uuid.UUID        `json:"currentMemberId"`
	CompletedQuizArticleIDs []uuid.UUID      `json:"completedQuizArticleIds"`
}

func (h *Handler) GroupPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, _ := session.FromContext(ctx)

	landing, err := h.groups.GetLandingPageData(ctx, s.GroupID)
	if err != nil {
		h.redirect(w, r, "/", "group page", err)
		return
	}
	articles, err := h.articles.ListArticles(ctx, s.GroupID.String())
	if err != nil {
		h.redirect(w, r, "/", "group page", err)
		return
	}
	completed, err := h.quizzes.CompletedArticleIDs(ctx, s.MemberID)
	if err != nil {
		h.redirect(w, r, "/", "group page", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, GroupPage{
		LandingPage:             landing,
		Articles:                articles,
		CurrentMemberID:         s.MemberID,
		CompletedQuizArticleIDs: completed,
	})
}

type SubmitPage struct {
	Group          *models.Group  `json:"group"`
	CurrentMember  *models.Member `json:"currentMember"`
	Topic          string         `json:"topic"`
	DueDate        time.Time      `json:"dueDate"`
	MaxWordCount   int            `json:"maxWordCount"`
	MemberID       uuid.UUID      `json:"memberId"`
	GroupID        uuid.UUID      `json:"groupId"`
	DemoTimeOffset int64          `json:"demoTimeOffset"`
	DemoTimeLabel  string         `json:"demoTimeLabel"`
}

func (h *Handler) SubmitPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, _ := session.FromContext(ctx)

	landing, err := h.groups.GetLandingPageData(ctx, s.GroupID)
	if err != nil {
		h.redirect(w, r, "/group", "submit page", err)
		return
	}
	offset, err := h.groups.GetTimeOffset(ctx, s.GroupID)
	if err != nil {
		h.redirect(w, r, "/group", "submit page", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, buildSubmitPage(landing, s, offset, time.Now()))
}

func buildSubmitPage(landing *models.LandingPage, s session.Session, offset int64, now time.Time) SubmitPage {
	page := SubmitPage{
		Group:          landing.Group,
		Topic:          defaultTopic,
		MaxWordCount:   landing.Group.MaxWordCount,
		MemberID:       s.MemberID,
		GroupID:        s.GroupID,
		DemoTimeOffset: offset,
		DemoTimeLabel:  demotime.FormatOffset(offset),
	}
	if page.MaxWordCount <= 0 {
		page.MaxWordCount = defaultMaxWordCount
	}

	position := -1
	for i := range landing.Members {
		if landing.Members[i].ID == s.MemberID {
			page.CurrentMember = &landing.Members[i]
			position = i
			break
		}
	}

	latest := 1
	for _, t := range landing.Topics {
		latest = max(latest, t.RotationCycle)
	}
	for _, t := range landing.Topics {
		if t.MemberID == s.MemberID && t.RotationCycle == latest {
			page.Topic = t.TopicText
			break
		}
	}

	page.DueDate = demotime.DueDateAt(now, offset, landing.Group.RotationPeriod, position).UTC()
	return page
}

// JoinPage falls back to the newest group when the cookie group is missing
// or unreadable, and answers {"landing": null} when there are no groups.
func (h *Handler) JoinPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if groupID, ok := session.GroupID(r); ok {
		landing, err := h.groups.GetLandingPageData(ctx, groupID)
		if err == nil {
			httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"landing": landing})
			return
		}
		h.log.Debug("cookie group unavailable, using newest", "group_id", groupID, "error", err)
	}

	newest, ok := h.groups.GetLatestGroup(ctx).Get()
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"landing": nil})
		return
	}
	h.sessions.SetGroup(w, newest.ID)

	landing, err := h.groups.GetLandingPageData(ctx, newest.ID)
	if err != nil {
		h.log.Warn("landing data for newest group failed", "group_id", newest.ID, "error", err)
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"landing": nil})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"landing": landing})
}

type ArticlePage struct {
	ArticleID string    `json:"articleId"`
	MemberID  uuid.UUID `json:"memberId"`
	Completed bool      `json:"completed"`
}

func (h *Handler) ArticlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, _ := session.FromContext(ctx)
	page := ArticlePage{ArticleID: r.URL.Query().Get("id"), MemberID: s.MemberID}

	if articleID, err := uuid.Parse(page.ArticleID); err == nil {
		done, err := h.quizzes.HasCompletedQuizForArticle(ctx, s.MemberID, articleID)
		if err != nil {
			h.log.Warn("quiz completion lookup failed", "article_id", articleID, "error", err)
		}
		page.Completed = done
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to, page string, err error) {
	h.log.Error("failed to load page data", "page", page, "error", err)
	http.Redirect(w, r, to, http.StatusTemporaryRedirect)
}

func (h *Handler) Register(r *mux.Router) {
	gate := h.sessions.Require("/")
	r.Handle("/api/pages/group", gate(http.HandlerFunc(h.GroupPage))).Methods("GET")
	r.Handle("/api/pages/submit", gate(http.HandlerFunc(h.SubmitPage))).Methods("GET")
	r.Handle("/api/pages/article", gate(http.HandlerFunc(h.ArticlePage))).Methods("GET")
	r.HandleFunc("/api/pages/join", h.JoinPage).Methods("GET")
}
