package article

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rotation-server/internal/models"
	"rotation-server/pkg/logger"
)

var ErrArticleNotFound = errors.New("article not found")

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log.With("repo", "ArticleRepository")}
}

func (r *Repository) SubmitArticle(ctx context.Context, groupID, memberID uuid.UUID, rotationNumber int, content string) (*models.Article, error) {
	article := &models.Article{
		GroupID:        groupID,
		MemberID:       memberID,
		RotationNumber: rotationNumber,
		Content:        content,
		WordCount:      models.WordCount(content),
	}
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		r.log.Error("submit article failed", "group_id", groupID, "member_id", memberID, "error", err)
		return nil, err
	}
	return article, nil
}

// ListArticles returns the group's articles, newest first.
func (r *Repository) ListArticles(ctx context.Context, groupID uuid.UUID) ([]models.Article, error) {
	articles := []models.Article{}
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at desc").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *Repository) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).Preload("Author").First(&article, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *Repository) GetLatestArticleByMember(ctx context.Context, memberID uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("member_id = ?", memberID).
		Order("created_at desc").
		Take(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// MarkRead sets article_read; repeating it leaves the row unchanged.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Update("article_read", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrArticleNotFound
	}
	return r.GetArticle(ctx, id)
}
