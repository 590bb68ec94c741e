package article

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"rotation-server/internal/httpx"
	"rotation-server/internal/models"
	"rotation-server/pkg/logger"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("handler", "ArticleHandler")}
}

func (h *Handler) SubmitArticle(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitArticleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	article, err := h.service.SubmitArticle(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, article)
}

func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.ListArticles(r.Context(), r.URL.Query().Get("groupId"))
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, articles)
}

// GetArticle reports every failure, including a bad id, as 404.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.GetArticle(r.Context(), mux.Vars(r)["articleId"])
	if err != nil {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{Error: err.Error()})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, article)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.MarkRead(r.Context(), mux.Vars(r)["articleId"])
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, article)
}

func (h *Handler) LatestForMember(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.GetLatestArticleByMember(r.Context(), mux.Vars(r)["memberId"])
	if errors.Is(err, ErrArticleNotFound) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, article)
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/articles", h.SubmitArticle).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/articles", h.ListArticles).Methods("GET")
	r.HandleFunc("/api/articles/{articleId}", h.GetArticle).Methods("GET")
	r.HandleFunc("/api/articles/{articleId}", h.MarkRead).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/api/members/{memberId}/articles/latest", h.LatestForMember).Methods("GET")
}
