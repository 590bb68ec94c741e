package quiz

import (
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
	return &Handler{service: service, log: log.With("handler", "QuizHandler")}
}

func (h *Handler) SaveQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.SaveQuizRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	quiz, err := h.service.SaveQuiz(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, quiz)
}

// GetQuiz answers with the quiz or JSON null.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuizByArticle(r.Context(), r.URL.Query().Get("articleId"))
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quiz)
}

func (h *Handler) SaveAttempt(w http.ResponseWriter, r *http.Request) {
	var req models.SaveAttemptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	attempt, err := h.service.SaveAttempt(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) AttemptsForArticle(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.AttemptsForArticle(r.Context(), r.URL.Query().Get("articleId"))
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, attempts)
}

func (h *Handler) AttemptsForMember(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.AttemptsForMember(r.Context(), mux.Vars(r)["memberId"])
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, attempts)
}

func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}

	questions, err := h.service.Generate(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/quizzes/attempts", h.AttemptsForArticle).Methods("GET")
	r.HandleFunc("/api/quizzes", h.SaveQuiz).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/quizzes", h.GetQuiz).Methods("GET")
	r.HandleFunc("/api/quizzes", h.SaveAttempt).Methods("PUT")
	r.HandleFunc("/api/generate-quiz", h.GenerateQuiz).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/members/{memberId}/attempts", h.AttemptsForMember).Methods("GET")
}
