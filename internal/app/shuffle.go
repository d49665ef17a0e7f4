package app

import (
	"math/rand"
	"time"

	"drivetest-quiz/internal/domain"
)

// QuizLength is the number of questions drawn for one attempt.
const QuizLength = 30

// Rand is the randomness source used for shuffling. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a time-seeded source; not safe for concurrent use.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle returns a uniformly permuted copy of items (Fisher-Yates).
// The input slice is left untouched.
func Shuffle[T any](rng Rand, items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// GenerateQuiz shuffles the whole pool and keeps the first
// min(QuizLength, len(pool)) questions.
func GenerateQuiz(rng Rand, pool []domain.Question) []domain.Question {
	shuffled := Shuffle(rng, pool)
	if len(shuffled) > QuizLength {
		shuffled = shuffled[:QuizLength]
	}
	return shuffled
}
