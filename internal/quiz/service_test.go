package quiz

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"rotation-server/internal/apierr"
	"rotation-server/internal/events"
	"rotation-server/internal/models"
	"rotation-server/internal/quizgen"
	"rotation-server/pkg/cache"
	"rotation-server/pkg/logger"
)

type memCache struct {
	mu      sync.Mutex
	quizzes map[string]*models.Quiz
	gets    int
	deletes int
}

func newMemCache() *memCache {
	return &memCache{quizzes: map[string]*models.Quiz{}}
}

func (c *memCache) GetQuiz(_ context.Context, articleID string) (*models.Quiz, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	q, ok := c.quizzes[articleID]
	if !ok {
		return nil, cache.ErrMiss
	}
	return q, nil
}

func (c *memCache) SetQuiz(_ context.Context, quiz *models.Quiz) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quizzes[quiz.ArticleID.String()] = quiz
	return nil
}

func (c *memCache) DeleteQuiz(_ context.Context, articleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	delete(c.quizzes, articleID)
	return nil
}

type kindRecorder struct {
	mu    sync.Mutex
	rooms []string
	kinds []string
}

func (k *kindRecorder) BroadcastMessage(room, kind string, _ interface{}) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rooms = append(k.rooms, room)
	k.kinds = append(k.kinds, kind)
}

func newTestService(t *testing.T, c Cache) (*Service, *fixture, *kindRecorder) {
	t.Helper()
	f := newFixture(t)
	rec := &kindRecorder{}
	gen := quizgen.NewGenerator(logger.Nop())
	return NewService(f.repo, c, gen, rec, logger.Nop()), f, rec
}

func TestSaveAttemptComputesMissingScore(t *testing.T) {
	ctx := context.Background()
	svc, f, rec := newTestService(t, nil)
	quiz, err := svc.SaveQuiz(ctx, models.SaveQuizRequest{ArticleID: f.article.ID.String(), Questions: sampleQuestions})
	if err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}

	attempt, err := svc.SaveAttempt(ctx, models.SaveAttemptRequest{
		QuizID:   quiz.ID.String(),
		MemberID: f.member.ID.String(),
		Answers:  []int{1, 0, 2},
	})
	if err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}
	if attempt.Score != 67 {
		t.Fatalf("computed score = %d, want 67", attempt.Score)
	}

	given := 10
	attempt, err = svc.SaveAttempt(ctx, models.SaveAttemptRequest{
		QuizID:   quiz.ID.String(),
		MemberID: f.member.ID.String(),
		Answers:  []int{0, 0, 0},
		Score:    &given,
	})
	if err != nil || attempt.Score != 10 {
		t.Fatalf("client score should be kept: %+v %v", attempt, err)
	}

	if len(rec.kinds) != 2 || rec.kinds[0] != events.QuizAttempted || rec.rooms[0] != f.group.ID.String() {
		t.Fatalf("events: %v %v", rec.rooms, rec.kinds)
	}
}

func TestQuizCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	svc, f, _ := newTestService(t, c)
	articleID := f.article.ID.String()

	quiz, err := svc.SaveQuiz(ctx, models.SaveQuizRequest{ArticleID: articleID, Questions: sampleQuestions})
	if err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}
	if _, ok := c.quizzes[articleID]; !ok {
		t.Fatal("saved quiz should be cached")
	}

	if _, err := svc.SaveAttempt(ctx, models.SaveAttemptRequest{QuizID: quiz.ID.String(), MemberID: f.member.ID.String(), Answers: []int{1, 0, 3}}); err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}
	if c.deletes != 1 {
		t.Fatalf("attempt should invalidate the cache")
	}

	got, err := svc.GetQuizByArticle(ctx, articleID)
	if err != nil || got == nil || got.QuizScore != 100 {
		t.Fatalf("read after invalidation should hit the store: %+v %v", got, err)
	}
	if _, ok := c.quizzes[articleID]; !ok {
		t.Fatal("store read should repopulate the cache")
	}
}

func TestQuizValidation(t *testing.T) {
	ctx := context.Background()
	svc, f, _ := newTestService(t, nil)

	cases := []struct {
		name string
		call func() error
	}{
		{"missing article id", func() error {
			_, err := svc.SaveQuiz(ctx, models.SaveQuizRequest{Questions: sampleQuestions})
			return err
		}},
		{"no questions", func() error {
			_, err := svc.SaveQuiz(ctx, models.SaveQuizRequest{ArticleID: f.article.ID.String()})
			return err
		}},
		{"missing answers", func() error {
			_, err := svc.SaveAttempt(ctx, models.SaveAttemptRequest{QuizID: f.article.ID.String(), MemberID: f.member.ID.String()})
			return err
		}},
		{"bad quiz id", func() error {
			_, err := svc.SaveAttempt(ctx, models.SaveAttemptRequest{QuizID: "nope", MemberID: f.member.ID.String(), Answers: []int{}})
			return err
		}},
		{"missing content", func() error {
			_, err := svc.Generate(ctx, models.GenerateQuizRequest{ArticleContent: "  "})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); apierr.StatusOf(err, 0) != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestSaveAttemptRejectsOutOfRangeScore(t *testing.T) {
	ctx := context.Background()
	svc, f, _ := newTestService(t, nil)
	quiz, err := svc.SaveQuiz(ctx, models.SaveQuizRequest{ArticleID: f.article.ID.String(), Questions: sampleQuestions})
	if err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}

	for _, score := range []int{-1, 101, 500} {
		score := score
		_, err := svc.SaveAttempt(ctx, models.SaveAttemptRequest{
			QuizID:   quiz.ID.String(),
			MemberID: f.member.ID.String(),
			Answers:  []int{0},
			Score:    &score,
		})
		if apierr.StatusOf(err, 0) != http.StatusBadRequest {
			t.Fatalf("score %d: expected 400, got %v", score, err)
		}
	}

	stored, err := f.repo.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if stored.Attempted() {
		t.Fatalf("quiz_score = %d after rejected attempts", stored.QuizScore)
	}
	attempts, err := svc.AttemptsForArticle(ctx, f.article.ID.String())
	if err != nil {
		t.Fatalf("AttemptsForArticle: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("expected no attempts, got %d", len(attempts))
	}

	boundary := 100
	attempt, err := svc.SaveAttempt(ctx, models.SaveAttemptRequest{
		QuizID:   quiz.ID.String(),
		MemberID: f.member.ID.String(),
		Answers:  []int{1, 0, 3},
		Score:    &boundary,
	})
	if err != nil {
		t.Fatalf("SaveAttempt at 100: %v", err)
	}
	if attempt.Score != 100 {
		t.Fatalf("score = %d", attempt.Score)
	}
}
