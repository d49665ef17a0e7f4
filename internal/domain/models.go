package domain

import "strings"

// Label identifies one of the four choices of a question.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists the choice labels in option order.
var Labels = [OptionCount]Label{LabelA, LabelB, LabelC, LabelD}

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Valid reports whether l is one of A..D.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Answers maps a question id to the label the user picked.
// A question missing from the map is unanswered.
type Answers map[int]Label

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for id, label := range a {
		out[id] = label
	}
	return out
}

// Question is an immutable multiple-choice record of the pool.
type Question struct {
	ID            int      `json:"id" yaml:"id"`
	Text          string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer Label    `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string   `json:"explanation" yaml:"explanation"`
	ImageURL      string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Category      string   `json:"category,omitempty" yaml:"category,omitempty"`
}

// OptionText returns the choice text behind label, without its "X. " prefix.
func (q Question) OptionText(label Label) (string, bool) {
	for _, opt := range q.Options {
		if strings.HasPrefix(opt, string(label)+". ") {
			return strings.TrimPrefix(opt, string(label)+". "), true
		}
	}
	return "", false
}

// Results is the scored, read-only outcome of a submitted session.
type Results struct {
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"totalQuestions"`
	CorrectAnswers   int        `json:"correctAnswers"`
	IncorrectAnswers int        `json:"incorrectAnswers"`
	TimeTaken        int        `json:"timeTaken"` // minutes
	Questions        []Question `json:"questions"`
	UserAnswers      Answers    `json:"userAnswers"`
}

// NotAnswered is shown in review for questions the user skipped.
const NotAnswered = "not answered"

// ReviewItem is one row of the per-question answer review.
type ReviewItem struct {
	Position      int    `json:"position"`
	QuestionID    int    `json:"questionId"`
	Question      string `json:"question"`
	ImageURL      string `json:"imageUrl,omitempty"`
	UserAnswer    Label  `json:"userAnswer,omitempty"`
	UserText      string `json:"userText"`
	CorrectAnswer Label  `json:"correctAnswer"`
	CorrectText   string `json:"correctText"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation"`
}

// Review builds the per-question review in session order.
func (r Results) Review() []ReviewItem {
	items := make([]ReviewItem, 0, len(r.Questions))
	for i, q := range r.Questions {
		picked, answered := r.UserAnswers[q.ID]
		userText := NotAnswered
		if answered {
			if text, ok := q.OptionText(picked); ok {
				userText = text
			}
		}
		correctText, _ := q.OptionText(q.CorrectAnswer)
		items = append(items, ReviewItem{
			Position:      i + 1,
			QuestionID:    q.ID,
			Question:      q.Text,
			ImageURL:      q.ImageURL,
			UserAnswer:    picked,
			UserText:      userText,
			CorrectAnswer: q.CorrectAnswer,
			CorrectText:   correctText,
			Correct:       answered && picked == q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	return items
}
