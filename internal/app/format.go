package app

import (
	"fmt"
	"strconv"
	"time"
)

// PassingScore is the minimum percentage for a pass.
const PassingScore = 80

// IsPassingScore compares without rounding, so 79.9 fails.
func IsPassingScore(score float64) bool {
	return score >= PassingScore
}

// FormatTime renders a minute count for the results page.
func FormatTime(minutes float64) string {
	switch {
	case minutes < 1:
		return "less than 1 minute"
	case minutes == 1:
		return "1 minute"
	default:
		return strconv.FormatFloat(minutes, 'f', -1, 64) + " minutes"
	}
}

// FormatElapsed renders the running clock as m:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
