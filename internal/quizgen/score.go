package quizgen

import (
	"math"

	"rotation-server/internal/models"
)

// Score returns round(100 * correct / len(questions)). Answers missing for a
// question never match. A quiz with no questions scores 0.
func Score(answers []int, questions []models.QuizQuestion) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(questions))))
}
