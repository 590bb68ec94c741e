package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"rotation-server/internal/article"
	"rotation-server/internal/group"
	"rotation-server/internal/httpx"
	"rotation-server/internal/pages"
	"rotation-server/internal/quiz"
	"rotation-server/pkg/logger"
	"rotation-server/pkg/websocket"
)

type RouterConfig struct {
	GroupHandler   *group.Handler
	ArticleHandler *article.Handler
	QuizHandler    *quiz.Handler
	PagesHandler   *pages.Handler
	Hub            *websocket.Hub
	AllowedOrigins []string
	Log            *logger.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	cfg.GroupHandler.Register(router)
	cfg.ArticleHandler.Register(router)
	cfg.QuizHandler.Register(router)
	cfg.PagesHandler.Register(router)
	if cfg.Hub != nil {
		router.HandleFunc("/ws/{groupId}", cfg.Hub.HandleWebSocket)
	}

	router.Use(requestIDMiddleware, accessLogMiddleware(cfg.Log), recoverMiddleware(cfg.Log))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return corsMiddleware.Handler(router)
}
