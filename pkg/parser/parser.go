// Package parser turns free-form model output into validated scenario and
// feedback values. Models often wrap JSON in prose or code fences, so each
// well-formed object in the text is tried in order until one fits.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
	"github.com/jwebster45206/cnv-trainer/pkg/textfilter"
)

// ErrMalformedResponse wraps every decode or validation failure.
var ErrMalformedResponse = errors.New("malformed response")

var validate = validator.New()

// Feedback is the model's remark on one choice.
type Feedback struct {
	Immediate string `json:"immediate" validate:"required"`
	Detailed  string `json:"detailed" validate:"required"`
}

type scenarioBatch struct {
	Scenarios []scenario.Scenario `json:"scenarios" validate:"required,min=1,dive"`
}

// ExtractObject returns the first well-formed JSON object embedded in text.
func ExtractObject(text string) (json.RawMessage, error) {
	objs := candidates(text)
	if len(objs) == 0 {
		return nil, errNoObject
	}
	return objs[0], nil
}

var errNoObject = fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)

// candidates lists every top-level JSON object in text, in order. Objects
// nested inside an earlier candidate are not listed separately.
func candidates(text string) []json.RawMessage {
	var objs []json.RawMessage
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		objs = append(objs, raw)
		i += int(dec.InputOffset()) - 1
	}
	return objs
}

// firstValid runs parse over each candidate object until one succeeds. Models
// sometimes echo a format example ahead of the real payload. The error from
// the first candidate is returned when none parse.
func firstValid[T any](text string, parse func(json.RawMessage) (T, error)) (T, error) {
	var zero T
	objs := candidates(text)
	if len(objs) == 0 {
		return zero, errNoObject
	}
	var firstErr error
	for _, raw := range objs {
		v, err := parse(raw)
		if err == nil {
			return v, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return zero, firstErr
}

// ParseScenarios decodes a scenario batch and checks every scenario carries
// all four options. Fewer than want scenarios is malformed; extras are dropped.
func ParseScenarios(text string, want int) ([]scenario.Scenario, error) {
	return firstValid(text, func(raw json.RawMessage) ([]scenario.Scenario, error) {
		return parseScenarioBatch(raw, want)
	})
}

func parseScenarioBatch(raw json.RawMessage, want int) ([]scenario.Scenario, error) {
	var batch scenarioBatch
	if err := decode(raw, &batch); err != nil {
		return nil, err
	}

	for i := range batch.Scenarios {
		s := &batch.Scenarios[i]
		s.Situation = textfilter.Clean(s.Situation)
		s.Options.Passive = textfilter.Clean(s.Options.Passive)
		s.Options.CNV = textfilter.Clean(s.Options.CNV)
		s.Options.Neutral = textfilter.Clean(s.Options.Neutral)
		s.Options.Problematic = textfilter.Clean(s.Options.Problematic)
	}

	if err := validate.Struct(batch); err != nil {
		return nil, fmt.Errorf("%w: invalid scenario batch: %v", ErrMalformedResponse, err)
	}

	if want > 0 {
		if len(batch.Scenarios) < want {
			return nil, fmt.Errorf("%w: expected %d scenarios, got %d", ErrMalformedResponse, want, len(batch.Scenarios))
		}
		batch.Scenarios = batch.Scenarios[:want]
	}
	return batch.Scenarios, nil
}

// ParseFeedback decodes a feedback record. Any points value in the payload is
// ignored; scoring is local.
func ParseFeedback(text string) (Feedback, error) {
	return firstValid(text, parseFeedback)
}

func parseFeedback(raw json.RawMessage) (Feedback, error) {
	var fb Feedback
	if err := decode(raw, &fb); err != nil {
		return Feedback{}, err
	}
	fb.Immediate = textfilter.Clean(fb.Immediate)
	fb.Detailed = textfilter.CleanProse(fb.Detailed)

	if err := validate.Struct(fb); err != nil {
		return Feedback{}, fmt.Errorf("%w: invalid feedback: %v", ErrMalformedResponse, err)
	}
	return fb, nil
}

// ParseSummary treats the closing narrative as literal prose.
func ParseSummary(text string) (string, error) {
	summary := textfilter.CleanProse(text)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", ErrMalformedResponse)
	}
	return summary, nil
}

// decode unmarshals raw into v. Unknown keys are allowed, type mismatches are not.
func decode(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
