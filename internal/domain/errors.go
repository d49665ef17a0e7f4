package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no quiz session exists for an id.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted is returned when a submitted session is mutated.
	ErrSessionCompleted = errors.New("quiz session already submitted")
	// ErrInvalidLabel indicates an answer label outside A..D.
	ErrInvalidLabel = errors.New("invalid answer label")
	// ErrEmptyPool indicates there are no questions to draw a quiz from.
	ErrEmptyPool = errors.New("question pool is empty")
	// ErrMalformedQuestion indicates a question record breaks the option/label rules.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrDuplicateQuestion indicates two pool records share an id.
	ErrDuplicateQuestion = errors.New("duplicate question id")
	// ErrResultsNotFound indicates no results summary has been stored yet.
	ErrResultsNotFound = errors.New("quiz results not found")
)
