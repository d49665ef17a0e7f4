package app

import "drivetest-quiz/internal/domain"

// ResultsView is the results summary plus what the results page derives from it.
type ResultsView struct {
	domain.Results
	Passed    bool                `json:"passed"`
	TimeLabel string              `json:"timeLabel"`
	Review    []domain.ReviewItem `json:"review"`
}

func NewResultsView(results domain.Results) ResultsView {
	return ResultsView{
		Results:   results,
		Passed:    IsPassingScore(float64(results.Score)),
		TimeLabel: FormatTime(float64(results.TimeTaken)),
		Review:    results.Review(),
	}
}
