package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"rotation-server/internal/article"
	"rotation-server/internal/config"
	"rotation-server/internal/events"
	"rotation-server/internal/group"
	"rotation-server/internal/pages"
	"rotation-server/internal/quiz"
	"rotation-server/internal/quizgen"
	"rotation-server/internal/server"
	"rotation-server/internal/session"
	"rotation-server/pkg/cache"
	"rotation-server/pkg/database"
	"rotation-server/pkg/gemini"
	"rotation-server/pkg/logger"
	"rotation-server/pkg/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}
	cfg := config.Load()

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		logg.Fatal("failed to connect to database", "driver", cfg.DBDriver, "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logg.Fatal("failed to migrate database", "error", err)
	}

	var quizCache quiz.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.QuizCacheTTL)
		if err := redisCache.Ping(ctx); err != nil {
			logg.Warn("redis unavailable, quiz cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			quizCache = redisCache
			defer redisCache.Close()
		}
	}

	hub := websocket.NewHub(logg, checkOrigin(cfg.AllowedOrigins))
	go hub.Run(ctx)
	var notify events.Notifier = hub

	genOpts := []quizgen.Option{quizgen.WithTimeout(cfg.AITimeout)}
	if cfg.AIEnabled() {
		var opts []option.ClientOption
		if cfg.GeminiEndpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.GeminiEndpoint))
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, opts...)
		if err != nil {
			logg.Warn("gemini client unavailable, using algorithmic quizzes", "error", err)
		} else {
			genOpts = append(genOpts, quizgen.WithModel(client))
			logg.Info("gemini quiz generation enabled", "model", cfg.GeminiModel)
		}
	}
	generator := quizgen.NewGenerator(logg, genOpts...)

	sessions := session.NewManager(cfg.SessionSecret, cfg.CookieSecure)

	groupRepo := group.NewRepository(db, logg)
	articleRepo := article.NewRepository(db, logg)
	quizRepo := quiz.NewRepository(db, logg)

	groupService := group.NewService(groupRepo, notify, logg)
	quizService := quiz.NewService(quizRepo, quizCache, generator, notify, logg)
	articleService := article.NewService(articleRepo, groupRepo, quizService, generator, notify, logg)

	handler := server.NewRouter(server.RouterConfig{
		GroupHandler:   group.NewHandler(groupService, sessions, logg),
		ArticleHandler: article.NewHandler(articleService, logg),
		QuizHandler:    quiz.NewHandler(quizService, logg),
		PagesHandler:   pages.NewHandler(groupService, articleService, quizService, sessions, logg),
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            logg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 15*time.Second,
	}

	go func() {
		logg.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server forced to shutdown", "error", err)
	}
	logg.Info("server shutdown gracefully")
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return database.NewSQLiteDB(cfg.SQLitePath)
	}
	return database.NewPostgresDB(&database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}
