package quiz

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"rotation-server/internal/apierr"
	"rotation-server/internal/events"
	"rotation-server/internal/httpx"
	"rotation-server/internal/models"
	"rotation-server/internal/quizgen"
	"rotation-server/pkg/cache"
	"rotation-server/pkg/logger"
)

// Cache is the read-through store for quizzes keyed by article id.
type Cache interface {
	GetQuiz(ctx context.Context, articleID string) (*models.Quiz, error)
	SetQuiz(ctx context.Context, quiz *models.Quiz) error
	DeleteQuiz(ctx context.Context, articleID string) error
}

type Service struct {
	repo      *Repository
	cache     Cache
	generator *quizgen.Generator
	notify    events.Notifier
	log       *logger.Logger
}

// NewService wires the quiz service. cache may be nil.
func NewService(repo *Repository, c Cache, generator *quizgen.Generator, notify events.Notifier, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     c,
		generator: generator,
		notify:    events.OrNop(notify),
		log:       log.With("service", "QuizService"),
	}
}

// CreateQuiz stores questions for an article.
func (s *Service) CreateQuiz(ctx context.Context, articleID uuid.UUID, questions []models.QuizQuestion) (*models.Quiz, error) {
	quiz, err := s.repo.SaveQuiz(ctx, articleID, questions)
	if err != nil {
		return nil, err
	}
	s.cacheQuiz(ctx, quiz)
	return quiz, nil
}

func (s *Service) SaveQuiz(ctx context.Context, req models.SaveQuizRequest) (*models.Quiz, error) {
	articleID, err := httpx.ParseID("articleId", req.ArticleID)
	if err != nil {
		return nil, err
	}
	if len(req.Questions) == 0 {
		return nil, apierr.BadRequest("questions are required")
	}
	return s.CreateQuiz(ctx, articleID, req.Questions)
}

// GetQuizByArticle returns nil when the article has no quiz.
func (s *Service) GetQuizByArticle(ctx context.Context, rawArticleID string) (*models.Quiz, error) {
	articleID, err := httpx.ParseID("articleId", rawArticleID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		quiz, err := s.cache.GetQuiz(ctx, articleID.String())
		if err == nil {
			return quiz, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("quiz cache read failed", "article_id", articleID, "error", err)
		}
	}

	quiz, err := s.repo.GetQuizByArticle(ctx, articleID)
	if err != nil || quiz == nil {
		return quiz, err
	}
	s.cacheQuiz(ctx, quiz)
	return quiz, nil
}

// SaveAttempt records a member's answers. A missing score is computed from
// the stored questions.
func (s *Service) SaveAttempt(ctx context.Context, req models.SaveAttemptRequest) (*models.QuizAttempt, error) {
	quizID, err := httpx.ParseID("quizId", req.QuizID)
	if err != nil {
		return nil, err
	}
	memberID, err := httpx.ParseID("memberId", req.MemberID)
	if err != nil {
		return nil, err
	}
	if req.Answers == nil {
		return nil, apierr.BadRequest("answers are required")
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		return nil, apierr.BadRequest("score must be between 0 and 100")
	}

	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	score := quizgen.Score(req.Answers, quiz.Questions)
	if req.Score != nil {
		score = *req.Score
	}

	attempt, err := s.repo.SaveAttempt(ctx, quizID, memberID, req.Answers, score)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteQuiz(ctx, quiz.ArticleID.String()); err != nil {
			s.log.Warn("quiz cache invalidation failed", "article_id", quiz.ArticleID, "error", err)
		}
	}
	if groupID, err := s.repo.GroupIDForQuiz(ctx, quizID); err == nil {
		s.notify.BroadcastMessage(groupID.String(), events.QuizAttempted, attempt)
	}
	return attempt, nil
}

func (s *Service) AttemptsForArticle(ctx context.Context, rawArticleID string) ([]models.QuizAttempt, error) {
	articleID, err := httpx.ParseID("articleId", rawArticleID)
	if err != nil {
		return nil, err
	}
	return s.repo.AttemptsForArticle(ctx, articleID)
}

func (s *Service) AttemptsForMember(ctx context.Context, rawMemberID string) ([]models.QuizAttempt, error) {
	memberID, err := httpx.ParseID("memberId", rawMemberID)
	if err != nil {
		return nil, err
	}
	return s.repo.AttemptsForMember(ctx, memberID)
}

func (s *Service) HasCompletedQuizForArticle(ctx context.Context, memberID, articleID uuid.UUID) (bool, error) {
	return s.repo.HasCompletedQuizForArticle(ctx, memberID, articleID)
}

func (s *Service) CompletedArticleIDs(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.CompletedArticleIDs(ctx, memberID)
}

// Generate builds questions without storing them. useAI defaults to true.
func (s *Service) Generate(ctx context.Context, req models.GenerateQuizRequest) ([]models.QuizQuestion, error) {
	if strings.TrimSpace(req.ArticleContent) == "" {
		return nil, apierr.BadRequest("Article content is required")
	}
	useAI := true
	if req.UseAI != nil {
		useAI = *req.UseAI
	}
	return s.generator.Generate(ctx, req.ArticleContent, req.NumQuestions, useAI), nil
}

func (s *Service) cacheQuiz(ctx context.Context, quiz *models.Quiz) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetQuiz(ctx, quiz); err != nil {
		s.log.Warn("quiz cache write failed", "article_id", quiz.ArticleID, "error", err)
	}
}
