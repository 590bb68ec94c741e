package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"rotation-server/internal/models"
	"rotation-server/pkg/logger"
)

// TextModel is a hosted generative model that answers a prompt with text.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Generator produces quizzes, preferring the text model when one is configured
// and falling back to FromArticle on any model failure.
type Generator struct {
	model   TextModel
	timeout time.Duration
	rand    func() *rand.Rand
	log     *logger.Logger
}

type Option func(*Generator)

// WithModel enables model-backed generation. A nil model leaves it disabled.
func WithModel(m TextModel) Option {
	return func(g *Generator) { g.model = m }
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// WithRand sets the source of randomness for the deterministic generator.
// Each Generate call takes a fresh *rand.Rand from fn.
func WithRand(fn func() *rand.Rand) Option {
	return func(g *Generator) { g.rand = fn }
}

func NewGenerator(log *logger.Logger, opts ...Option) *Generator {
	g := &Generator{
		rand: newRand,
		log:  log.With("component", "QuizGenerator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) ModelEnabled() bool {
	return g.model != nil
}

// Generate never fails: model errors, bad status codes, unparseable or empty
// output all produce the algorithmic quiz instead.
func (g *Generator) Generate(ctx context.Context, content string, n int, useAI bool) []models.QuizQuestion {
	if n <= 0 {
		n = DefaultQuestions
	}
	return g.generate(ctx, content, n, useAI, BuildPrompt(content, n))
}

// ForSubmission generates the default-size quiz stored alongside a newly
// submitted article. Model questions focus on the article's author.
func (g *Generator) ForSubmission(ctx context.Context, content string) []models.QuizQuestion {
	return g.generate(ctx, content, DefaultQuestions, true, BuildAuthorPrompt(content, DefaultQuestions))
}

func (g *Generator) generate(ctx context.Context, content string, n int, useAI bool, prompt string) []models.QuizQuestion {
	if useAI && g.model != nil {
		questions, err := g.fromModel(ctx, prompt)
		if err == nil {
			g.log.Info("generated quiz with model", "questions", len(questions))
			return questions
		}
		g.log.Warn("model quiz generation failed, using algorithm", "error", err)
	}
	return FromArticle(content, n, g.rand())
}

func (g *Generator) fromModel(ctx context.Context, prompt string) ([]models.QuizQuestion, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	text, err := g.model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseQuestions(text)
}

// BuildPrompt asks for exactly the question shape the app stores.
func BuildPrompt(content string, n int) string {
	return fmt.Sprintf(`Generate %d multiple-choice quiz questions based on this article. Each question should test understanding of key concepts.

Article:
%s

Return ONLY valid JSON in this exact format (no markdown, no extra text):
[
  {
    "id": "q1",
    "question": "What is being discussed?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": 0
  }
]

Make sure:
- correctAnswer is the index (0-3) of the correct option
- All 4 options are plausible
- Questions test understanding, not just memory
- Questions are clear and concise`, n, content)
}

// BuildAuthorPrompt asks for questions about the person who wrote the article.
func BuildAuthorPrompt(content string, n int) string {
	return fmt.Sprintf(`Read the following article and generate %d multiple-choice comprehension questions about its content (should be about the person who wrote the article). For each question, provide 4 answer options and indicate the correct answer by index (0-based). Output your response as a JSON array in the following format:

[
  {
    "question": "Question text here",
    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
    "correctAnswer": 0
  }
]

Article:
%s`, n, content)
}

var errEmptyQuiz = errors.New("model returned no usable questions")

// ParseQuestions decodes model output into questions, tolerating markdown
// fences. Questions without text, with fewer than two options, or with an
// out-of-range answer index are dropped; an empty result is an error.
func ParseQuestions(text string) ([]models.QuizQuestion, error) {
	var raw []models.QuizQuestion
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	out := make([]models.QuizQuestion, 0, len(raw))
	for _, q := range raw {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, errEmptyQuiz
	}
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
	return out, nil
}

func cleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
