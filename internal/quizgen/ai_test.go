package quizgen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/api/option"

	"rotation-server/pkg/gemini"
	"rotation-server/pkg/logger"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (f *fakeModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestGenerateUsesModel(t *testing.T) {
	model := &fakeModel{reply: "```json\n[{\"question\":\"What climbed?\",\"options\":[\"trail\",\"river\",\"cloud\",\"bird\"],\"correctAnswer\":0}]\n```"}
	g := NewGenerator(logger.Nop(), WithModel(model))

	questions := g.Generate(context.Background(), article, 3, true)
	if len(questions) != 1 || questions[0].ID != "q1" || questions[0].Options[0] != "trail" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
	if !strings.Contains(model.prompt, "Generate 3 multiple-choice") || !strings.Contains(model.prompt, article) {
		t.Fatalf("prompt missing count or article: %q", model.prompt)
	}
}

func TestGenerateFallsBackToAlgorithm(t *testing.T) {
	want := FromArticle(article, 4, seeded())

	cases := map[string]*fakeModel{
		"error":      {err: errors.New("status 500")},
		"invalid":    {reply: "I cannot help with that"},
		"empty":      {reply: "[]"},
		"bad answer": {reply: `[{"question":"Q","options":["a","b"],"correctAnswer":5}]`},
		"one option": {reply: `[{"question":"Q","options":["a"],"correctAnswer":0}]`},
	}
	for name, model := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(logger.Nop(), WithModel(model), WithRand(seeded))
			got := g.Generate(context.Background(), article, 4, true)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("fallback differs from algorithm output:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestGenerateFallsBackOnGeminiServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":{"code":500,"message":"backend unavailable"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := gemini.NewClient(context.Background(), "", "test-model",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	g := NewGenerator(logger.Nop(), WithModel(client), WithRand(seeded), WithTimeout(5*time.Second))
	got := g.Generate(context.Background(), article, 4, true)
	if hits.Load() == 0 {
		t.Fatal("gemini endpoint was never called")
	}
	if want := FromArticle(article, 4, seeded()); !reflect.DeepEqual(got, want) {
		t.Fatalf("fallback differs from algorithm output:\n got %+v\nwant %+v", got, want)
	}
}

func TestGenerateSkipsModelWhenNotRequested(t *testing.T) {
	model := &fakeModel{reply: "[]"}
	g := NewGenerator(logger.Nop(), WithModel(model))
	g.Generate(context.Background(), article, 2, false)
	if model.calls != 0 {
		t.Fatalf("model called %d times", model.calls)
	}

	g = NewGenerator(logger.Nop())
	if g.ModelEnabled() {
		t.Fatal("no model configured")
	}
	if got := g.Generate(context.Background(), article, 2, true); len(got) != 2 {
		t.Fatalf("expected algorithmic quiz, got %d questions", len(got))
	}
}

type slowModel struct{}

func (slowModel) GenerateText(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateTimeout(t *testing.T) {
	g := NewGenerator(logger.Nop(), WithModel(slowModel{}), WithTimeout(10*time.Millisecond))
	done := make(chan int, 1)
	go func() { done <- len(g.Generate(context.Background(), article, 2, true)) }()
	select {
	case n := <-done:
		if n != 2 {
			t.Fatalf("expected fallback quiz, got %d questions", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("model call was not bounded by the timeout")
	}
}

func TestParseQuestionsKeepsIDs(t *testing.T) {
	got, err := ParseQuestions(`[{"id":"x","question":"Q","options":["a","b","c","d"],"correctAnswer":3}]`)
	if err != nil || got[0].ID != "x" {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestForSubmissionAsksAboutAuthor(t *testing.T) {
	model := &fakeModel{err: errors.New("unavailable")}
	g := NewGenerator(logger.Nop(), WithModel(model), WithRand(seeded))

	got := g.ForSubmission(context.Background(), article)
	if !strings.Contains(model.prompt, "about the person who wrote the article") {
		t.Fatalf("prompt = %q", model.prompt)
	}
	if want := FromArticle(article, DefaultQuestions, seeded()); !reflect.DeepEqual(got, want) {
		t.Fatal("fallback should match the algorithmic quiz")
	}
}
