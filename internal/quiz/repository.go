package quiz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rotation-server/internal/models"
	"rotation-server/pkg/logger"
)

var ErrQuizNotFound = errors.New("quiz not found")

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log.With("repo", "QuizRepository")}
}

func (r *Repository) SaveQuiz(ctx context.Context, articleID uuid.UUID, questions []models.QuizQuestion) (*models.Quiz, error) {
	quiz := &models.Quiz{
		ArticleID: articleID,
		Questions: datatypes.JSONSlice[models.QuizQuestion](questions),
		QuizScore: models.ScoreUnattempted,
	}
	if err := r.db.WithContext(ctx).Create(quiz).Error; err != nil {
		r.log.Error("save quiz failed", "article_id", articleID, "error", err)
		return nil, err
	}
	r.log.Info("saved quiz", "quiz_id", quiz.ID, "article_id", articleID, "questions", len(questions))
	return quiz, nil
}

// GetQuizByArticle returns (nil, nil) when the article has no quiz.
func (r *Repository) GetQuizByArticle(ctx context.Context, articleID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).Where("article_id = ?", articleID).Take(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *Repository) GetQuiz(ctx context.Context, quizID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).First(&quiz, "id = ?", quizID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// SaveAttempt records the attempt and overwrites the quiz's latest score in
// one transaction.
func (r *Repository) SaveAttempt(ctx context.Context, quizID, memberID uuid.UUID, answers []int, score int) (*models.QuizAttempt, error) {
	attempt := &models.QuizAttempt{
		QuizID:   quizID,
		MemberID: memberID,
		Answers:  datatypes.JSONSlice[int](answers),
		Score:    score,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Quiz{}).Where("id = ?", quizID).Update("quiz_score", score)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrQuizNotFound
		}
		return tx.Create(attempt).Error
	})
	if err != nil {
		r.log.Error("save attempt failed", "quiz_id", quizID, "member_id", memberID, "error", err)
		return nil, err
	}
	return attempt, nil
}

func (r *Repository) HasCompletedQuizForArticle(ctx context.Context, memberID, articleID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.member_id = ? AND quizzes.article_id = ?", memberID, articleID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CompletedArticleIDs lists the articles whose quizzes the member has attempted.
func (r *Repository) CompletedArticleIDs(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Distinct("quizzes.article_id").
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.member_id = ?", memberID).
		Pluck("quizzes.article_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) AttemptsForMember(ctx context.Context, memberID uuid.UUID) ([]models.QuizAttempt, error) {
	attempts := []models.QuizAttempt{}
	err := r.db.WithContext(ctx).
		Preload("Quiz").
		Where("member_id = ?", memberID).
		Order("attempted_at desc").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// AttemptsForArticle returns an empty list when the article has no quiz.
func (r *Repository) AttemptsForArticle(ctx context.Context, articleID uuid.UUID) ([]models.QuizAttempt, error) {
	quiz, err := r.GetQuizByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	attempts := []models.QuizAttempt{}
	if quiz == nil {
		return attempts, nil
	}
	err = r.db.WithContext(ctx).
		Preload("Member").
		Where("quiz_id = ?", quiz.ID).
		Order("attempted_at desc").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// GroupIDForQuiz resolves the group that owns the quiz's article.
func (r *Repository) GroupIDForQuiz(ctx context.Context, quizID uuid.UUID) (uuid.UUID, error) {
	var groupIDs []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Quiz{}).
		Joins("JOIN articles ON articles.id = quizzes.article_id").
		Where("quizzes.id = ?", quizID).
		Limit(1).
		Pluck("articles.group_id", &groupIDs).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(groupIDs) == 0 {
		return uuid.Nil, ErrQuizNotFound
	}
	return groupIDs[0], nil
}
