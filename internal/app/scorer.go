package app

import "assessment-engine/internal/domain"

// Score counts answers equal to each question's shuffled correct index.
// Unanswered questions are wrong. The pass threshold is inclusive.
func Score(questions []domain.ShuffledQuestion, answers map[string]int, passPercentage float64) domain.Result {
	score := 0
	for _, q := range questions {
		if selected, ok := answers[q.ID]; ok && selected == q.CorrectShuffledIndex {
			score++
		}
	}

	total := len(questions)
	percentage := 0.0
	if total > 0 {
		percentage = float64(score) / float64(total) * 100
	}

	return domain.Result{
		Score:          score,
		Total:          total,
		Percentage:     percentage,
		PassPercentage: passPercentage,
		Passed:         percentage >= passPercentage,
	}
}
