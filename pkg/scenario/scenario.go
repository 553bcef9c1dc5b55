package scenario

import (
	"errors"
	"fmt"
	"strings"
)

// OptionCategory classifies a response style.
type OptionCategory string

const (
	Passive     OptionCategory = "passive"
	CNV         OptionCategory = "cnv"
	Neutral     OptionCategory = "neutral"
	Problematic OptionCategory = "problematic"
)

// Categories lists every category in category order.
var Categories = []OptionCategory{Passive, CNV, Neutral, Problematic}

// DisplayOrder is the order options are shown to the learner. It differs from
// category order so position never hints at the category.
var DisplayOrder = []OptionCategory{Neutral, CNV, Problematic, Passive}

var (
	ErrUnknownOption   = errors.New("chosen text matches no option")
	ErrUnknownCategory = errors.New("unknown option category")
	ErrMissingOption   = errors.New("scenario is missing an option")
)

// Valid reports whether c is one of the four categories.
func (c OptionCategory) Valid() bool {
	switch c {
	case Passive, CNV, Neutral, Problematic:
		return true
	}
	return false
}

// Options holds exactly one response per category.
type Options struct {
	Passive     string `json:"passive" validate:"required"`
	CNV         string `json:"cnv" validate:"required"`
	Neutral     string `json:"neutral" validate:"required"`
	Problematic string `json:"problematic" validate:"required"`
}

// Scenario is a situational prompt with four mutually exclusive responses.
type Scenario struct {
	Situation string  `json:"situation" validate:"required"`
	Options   Options `json:"options"`
}

// Choice is one option as presented to the learner.
type Choice struct {
	Category OptionCategory `json:"category"`
	Text     string         `json:"text"`
}

// Option returns the text for a category.
func (s Scenario) Option(c OptionCategory) (string, error) {
	switch c {
	case Passive:
		return s.Options.Passive, nil
	case CNV:
		return s.Options.CNV, nil
	case Neutral:
		return s.Options.Neutral, nil
	case Problematic:
		return s.Options.Problematic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, c)
}

// Choices returns the options in DisplayOrder.
func (s Scenario) Choices() []Choice {
	choices := make([]Choice, 0, len(DisplayOrder))
	for _, c := range DisplayOrder {
		text, _ := s.Option(c)
		choices = append(choices, Choice{Category: c, Text: text})
	}
	return choices
}

// CategoryOf maps verbatim option text back to its category.
func (s Scenario) CategoryOf(text string) (OptionCategory, error) {
	for _, c := range Categories {
		if opt, _ := s.Option(c); opt == text {
			return c, nil
		}
	}
	return "", ErrUnknownOption
}

// Validate checks that the situation and every option are non-empty.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Situation) == "" {
		return fmt.Errorf("situation cannot be empty")
	}
	for _, c := range Categories {
		if opt, _ := s.Option(c); strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: %s", ErrMissingOption, c)
		}
	}
	return nil
}
