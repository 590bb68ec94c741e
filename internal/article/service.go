package article

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"rotation-server/internal/apierr"
	"rotation-server/internal/events"
	"rotation-server/internal/httpx"
	"rotation-server/internal/models"
	"rotation-server/internal/quizgen"
	"rotation-server/pkg/logger"
)

// GroupReader loads the group an article belongs to.
type GroupReader interface {
	GetGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error)
}

// QuizSaver stores the quiz generated for a new article.
type QuizSaver interface {
	CreateQuiz(ctx context.Context, articleID uuid.UUID, questions []models.QuizQuestion) (*models.Quiz, error)
}

type Service struct {
	repo      *Repository
	groups    GroupReader
	quizzes   QuizSaver
	generator *quizgen.Generator
	notify    events.Notifier
	log       *logger.Logger
}

func NewService(repo *Repository, groups GroupReader, quizzes QuizSaver, generator *quizgen.Generator, notify events.Notifier, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		groups:    groups,
		quizzes:   quizzes,
		generator: generator,
		notify:    events.OrNop(notify),
		log:       log.With("service", "ArticleService"),
	}
}

// SubmitArticle stores the article and then tries to attach a quiz. Quiz
// problems are logged; the article is returned regardless.
func (s *Service) SubmitArticle(ctx context.Context, req models.SubmitArticleRequest) (*models.Article, error) {
	groupID, err := httpx.ParseID("group_id", req.GroupID)
	if err != nil {
		return nil, err
	}
	memberID, err := httpx.ParseID("member_id", req.MemberID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apierr.BadRequest("content is required")
	}

	article, err := s.repo.SubmitArticle(ctx, groupID, memberID, req.RotationNumber, req.Content)
	if err != nil {
		return nil, err
	}
	s.log.Info("article submitted", "article_id", article.ID, "group_id", groupID, "word_count", article.WordCount)

	s.attachQuiz(ctx, article)
	s.notify.BroadcastMessage(groupID.String(), events.ArticleSubmitted, article)
	return article, nil
}

func (s *Service) attachQuiz(ctx context.Context, article *models.Article) {
	if s.quizzes == nil || s.generator == nil {
		return
	}
	if s.groups != nil {
		group, err := s.groups.GetGroup(ctx, article.GroupID)
		if err != nil {
			s.log.Warn("skipping quiz, group lookup failed", "article_id", article.ID, "error", err)
			return
		}
		if !group.QuizzesEnabled {
			return
		}
	}

	questions := s.generator.ForSubmission(ctx, article.Content)
	if len(questions) == 0 {
		s.log.Warn("no quiz questions could be generated", "article_id", article.ID)
		return
	}
	if _, err := s.quizzes.CreateQuiz(ctx, article.ID, questions); err != nil {
		s.log.Error("failed to save quiz for article", "article_id", article.ID, "error", err)
	}
}

func (s *Service) ListArticles(ctx context.Context, rawGroupID string) ([]models.Article, error) {
	if strings.TrimSpace(rawGroupID) == "" {
		return nil, apierr.BadRequest("groupId query parameter required")
	}
	groupID, err := httpx.ParseID("groupId", rawGroupID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListArticles(ctx, groupID)
}

func (s *Service) GetArticle(ctx context.Context, rawID string) (*models.Article, error) {
	id, err := httpx.ParseID("articleId", rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetArticle(ctx, id)
}

func (s *Service) GetLatestArticleByMember(ctx context.Context, rawMemberID string) (*models.Article, error) {
	memberID, err := httpx.ParseID("memberId", rawMemberID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetLatestArticleByMember(ctx, memberID)
}

func (s *Service) MarkRead(ctx context.Context, rawID string) (*models.Article, error) {
	id, err := httpx.ParseID("articleId", rawID)
	if err != nil {
		return nil, err
	}
	article, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify.BroadcastMessage(article.GroupID.String(), events.ArticleRead, map[string]string{"article_id": article.ID.String()})
	return article, nil
}
