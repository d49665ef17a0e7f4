package app

import (
	"time"

	"drivetest-quiz/internal/domain"
)

// Session is one attempt at a quiz. It is a plain value so stores can
// serialize it; all transitions go through its methods.
type Session struct {
	ID           string            `json:"id"`
	Questions    []domain.Question `json:"questions"`
	CurrentIndex int               `json:"currentIndex"`
	Answers      domain.Answers    `json:"answers"`
	Completed    bool              `json:"completed"`
	StartTime    time.Time         `json:"startTime"`
	EndTime      *time.Time        `json:"endTime,omitempty"`
}

// NewSession starts an attempt over questions, positioned on the first one.
func NewSession(id string, questions []domain.Question, now time.Time) *Session {
	return &Session{
		ID:        id,
		Questions: questions,
		Answers:   make(domain.Answers),
		StartTime: now,
	}
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	out := *s
	out.Questions = append([]domain.Question(nil), s.Questions...)
	out.Answers = s.Answers.Clone()
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return &out
}

// Current returns the question at CurrentIndex. The session must hold
// at least one question.
func (s *Session) Current() domain.Question {
	return s.Questions[s.CurrentIndex]
}

// IsLast reports whether the current question is the final one.
func (s *Session) IsLast() bool {
	return s.CurrentIndex == len(s.Questions)-1
}

// SelectAnswer records (or overwrites) the label for the current question.
func (s *Session) SelectAnswer(label domain.Label) error {
	if s.Completed {
		return domain.ErrSessionCompleted
	}
	if !label.Valid() {
		return domain.ErrInvalidLabel
	}
	if len(s.Questions) == 0 {
		return domain.ErrEmptyPool
	}
	if s.Answers == nil {
		s.Answers = make(domain.Answers)
	}
	s.Answers[s.Current().ID] = label
	return nil
}

// Next moves forward one question; on the last question it does nothing.
func (s *Session) Next() error {
	if s.Completed {
		return domain.ErrSessionCompleted
	}
	if s.CurrentIndex < len(s.Questions)-1 {
		s.CurrentIndex++
	}
	return nil
}

// Previous moves back one question; on the first question it does nothing.
func (s *Session) Previous() error {
	if s.Completed {
		return domain.ErrSessionCompleted
	}
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
	return nil
}

// Submit finalizes the session at now and scores it. A session can be
// submitted once; later calls leave it untouched.
func (s *Session) Submit(now time.Time) (domain.Results, error) {
	if s.Completed {
		return domain.Results{}, domain.ErrSessionCompleted
	}
	end := now
	s.Completed = true
	s.EndTime = &end
	return CalculateResults(s), nil
}

// QuestionView is a question as shown while answering: no answer key.
type QuestionView struct {
	ID       int      `json:"id"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Category string   `json:"category,omitempty"`
}

// SessionView is what a client needs to render the current step.
type SessionView struct {
	SessionID string       `json:"sessionId"`
	Position  int          `json:"position"` // 1-based
	Total     int          `json:"total"`
	Answered  int          `json:"answered"`
	Progress  float64      `json:"progress"` // percent
	Question  QuestionView `json:"question"`
	Selected  domain.Label `json:"selected,omitempty"`
	IsFirst   bool         `json:"isFirst"`
	IsLast    bool         `json:"isLast"`
	Completed bool         `json:"completed"`
}

// View renders the current step. A session without questions renders
// with no question and zero progress.
func (s *Session) View() SessionView {
	total := len(s.Questions)
	if total == 0 {
		return SessionView{SessionID: s.ID, IsFirst: true, IsLast: true, Completed: s.Completed}
	}
	q := s.Current()
	return SessionView{
		SessionID: s.ID,
		Position:  s.CurrentIndex + 1,
		Total:     total,
		Answered:  len(s.Answers),
		Progress:  float64(s.CurrentIndex+1) / float64(total) * 100,
		Question: QuestionView{
			ID:       q.ID,
			Text:     q.Text,
			Options:  q.Options,
			ImageURL: q.ImageURL,
			Category: q.Category,
		},
		Selected:  s.Answers[q.ID],
		IsFirst:   s.CurrentIndex == 0,
		IsLast:    s.IsLast(),
		Completed: s.Completed,
	}
}
