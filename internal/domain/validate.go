package domain

import (
	"fmt"
	"strings"
)

// ValidationError describes why a question record was rejected.
type ValidationError struct {
	QuestionID int
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: %s", e.QuestionID, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformedQuestion
}

// Validate checks the option count, the "X. " label prefixes and that the
// correct answer names one of the options.
func (q Question) Validate() error {
	if len(q.Options) != OptionCount {
		return &ValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("expected %d options, got %d", OptionCount, len(q.Options))}
	}
	for i, opt := range q.Options {
		want := string(Labels[i]) + ". "
		if !strings.HasPrefix(opt, want) {
			return &ValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("option %d must start with %q", i+1, want)}
		}
	}
	if !q.CorrectAnswer.Valid() {
		return &ValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("correct answer %q is not a label", q.CorrectAnswer)}
	}
	return nil
}

// ValidatePool validates every record and rejects repeated ids.
func ValidatePool(questions []Question) error {
	seen := make(map[int]struct{}, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
