// Package scoring holds the fixed point policy for option categories.
package scoring

import (
	"fmt"

	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
)

// MaxPoints is the value of the best answer to a single scenario.
const MaxPoints = 10

// ErrUnknownCategory is returned for a category outside the four known ones.
var ErrUnknownCategory = scenario.ErrUnknownCategory

var pointsTable = map[scenario.OptionCategory]int{
	scenario.CNV:         MaxPoints,
	scenario.Neutral:     5,
	scenario.Passive:     2,
	scenario.Problematic: 0,
}

// Points returns the fixed value for a category.
func Points(c scenario.OptionCategory) (int, error) {
	p, ok := pointsTable[c]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return p, nil
}

// Possible is the maximum score for a session of n scenarios.
func Possible(n int) int {
	if n < 0 {
		return 0
	}
	return n * MaxPoints
}

// Percentage returns score as a percentage of possible, 0 when possible is 0.
func Percentage(score, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return float64(score) / float64(possible) * 100
}
