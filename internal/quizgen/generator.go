// Package quizgen builds multiple-choice comprehension quizzes from article text.
package quizgen

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"rotation-server/internal/models"
)

const (
	DefaultQuestions = 5
	Blank            = "______"

	minSentenceLen = 20
	minAnswerLen   = 5
	optionCount    = 4
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Sentences splits text on terminal punctuation and drops fragments shorter
// than 20 characters.
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) >= minSentenceLen {
			out = append(out, s)
		}
	}
	return out
}

// FromArticle generates up to n fill-in-the-blank questions, one per sentence
// from the first n qualifying sentences. Sentences without a word longer than
// four characters are skipped, so fewer than n questions may come back.
func FromArticle(content string, n int, rng *rand.Rand) []models.QuizQuestion {
	if n <= 0 {
		n = DefaultQuestions
	}
	if rng == nil {
		rng = newRand()
	}

	sentences := Sentences(content)
	limit := min(n, len(sentences))
	questions := make([]models.QuizQuestion, 0, limit)

	for i := 0; i < limit; i++ {
		sentence := sentences[i]

		var candidates []string
		for _, w := range strings.Fields(sentence) {
			if utf8.RuneCountInString(w) >= minAnswerLen {
				candidates = append(candidates, w)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		answer := candidates[rng.IntN(len(candidates))]
		options := append([]string{answer}, distractors(answer, rng)...)
		rng.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})

		questions = append(questions, models.QuizQuestion{
			ID:            fmt.Sprintf("q%d", i+1),
			Question:      strings.Replace(sentence, answer, Blank, 1),
			Options:       options,
			CorrectAnswer: slices.Index(options, answer),
		})
	}
	return questions
}

// distractors derives three wrong options from the answer: a suffixed form,
// a first-letter substitution and a tagged prefix. All returned values differ
// from the answer and from each other.
func distractors(answer string, rng *rand.Rand) []string {
	suffix := "ed"
	if rng.IntN(2) == 0 {
		suffix = "ing"
	}

	candidates := []string{
		answer + suffix,
		substituteFirst(answer, rng),
		"alternative_" + prefix(answer, 3),
	}

	seen := map[string]bool{answer: true}
	out := make([]string, 0, optionCount-1)
	for i, d := range candidates {
		for seen[d] {
			d += "_" + strconv.Itoa(i+1)
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// substituteFirst replaces the first letter with a random capital letter
// other than the original one.
func substituteFirst(word string, rng *rand.Rand) string {
	first, size := utf8.DecodeRuneInString(word)
	original := unicode.ToUpper(first)
	letter := 'A' + rune(rng.IntN(26))
	if letter == original {
		letter = 'A' + (letter-'A'+1+rune(rng.IntN(25)))%26
	}
	return string(letter) + word[size:]
}

func prefix(word string, n int) string {
	runes := []rune(word)
	if len(runes) <= n {
		return word
	}
	return string(runes[:n])
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
