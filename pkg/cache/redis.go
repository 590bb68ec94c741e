package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"rotation-server/internal/models"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache: miss")

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func quizKey(articleID string) string {
	return "quiz:article:" + articleID
}

func (c *RedisCache) SetQuiz(ctx context.Context, quiz *models.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, quizKey(quiz.ArticleID.String()), data, c.ttl).Err()
}

func (c *RedisCache) GetQuiz(ctx context.Context, articleID string) (*models.Quiz, error) {
	data, err := c.client.Get(ctx, quizKey(articleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var quiz models.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// DeleteQuiz drops the cached quiz so the next read sees the updated score.
func (c *RedisCache) DeleteQuiz(ctx context.Context, articleID string) error {
	return c.client.Del(ctx, quizKey(articleID)).Err()
}
