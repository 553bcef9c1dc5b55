package state

import (
	"slices"

	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
)

// AnswerRecord is the outcome of one answered scenario.
type AnswerRecord struct {
	Scenario string                  `json:"scenario"`
	Chosen   string                  `json:"chosen"`
	Feedback string                  `json:"feedback"`
	Points   int                     `json:"points"`
	Category scenario.OptionCategory `json:"category,omitempty"`
	Detailed string                  `json:"detailed,omitempty"`
	Fallback bool                    `json:"fallback,omitempty"` // feedback came from the local template
}

// GameState is the progress of a scenario session.
type GameState struct {
	CurrentQuestion int            `json:"currentQuestion"`
	Score           int            `json:"score"`
	Answers         []AnswerRecord `json:"answers"`
}

// NewGameState returns an empty game state.
func NewGameState() *GameState {
	return &GameState{
		Answers: make([]AnswerRecord, 0),
	}
}

// Record appends an answer and accumulates its points.
func (gs *GameState) Record(a AnswerRecord) {
	gs.Answers = append(gs.Answers, a)
	gs.Score += a.Points
}

// Clone returns a deep copy.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return NewGameState()
	}
	c := *gs
	c.Answers = slices.Clone(gs.Answers)
	if c.Answers == nil {
		c.Answers = make([]AnswerRecord, 0)
	}
	return &c
}

// CategoryCounts tallies how many answers fell into each category.
type CategoryCounts map[scenario.OptionCategory]int

// Counts returns the per-category tally, with every category present.
func (gs *GameState) Counts() CategoryCounts {
	counts := make(CategoryCounts, len(scenario.Categories))
	for _, c := range scenario.Categories {
		counts[c] = 0
	}
	for _, a := range gs.Answers {
		if a.Category.Valid() {
			counts[a.Category]++
		}
	}
	return counts
}
