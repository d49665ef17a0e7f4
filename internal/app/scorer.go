package app

import (
	"math"

	"drivetest-quiz/internal/domain"
)

// CalculateResults scores a session. Unanswered questions count as
// incorrect; a session without an end time reports zero minutes.
// Percentages and minutes are rounded half up.
func CalculateResults(s *Session) domain.Results {
	correct := 0
	for _, q := range s.Questions {
		if label, ok := s.Answers[q.ID]; ok && label == q.CorrectAnswer {
			correct++
		}
	}

	total := len(s.Questions)
	score := 0
	if total > 0 {
		score = roundHalfUp(float64(correct) / float64(total) * 100)
	}

	timeTaken := 0
	if s.EndTime != nil {
		timeTaken = roundHalfUp(s.EndTime.Sub(s.StartTime).Minutes())
		if timeTaken < 0 {
			timeTaken = 0
		}
	}

	questions := make([]domain.Question, total)
	copy(questions, s.Questions)

	return domain.Results{
		Score:            score,
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		IncorrectAnswers: total - correct,
		TimeTaken:        timeTaken,
		Questions:        questions,
		UserAnswers:      s.Answers.Clone(),
	}
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
