// Package session runs one training session over a generated scenario batch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/cnv-trainer/internal/logger"
	"github.com/jwebster45206/cnv-trainer/internal/storage"
	"github.com/jwebster45206/cnv-trainer/pkg/parser"
	"github.com/jwebster45206/cnv-trainer/pkg/profile"
	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
	"github.com/jwebster45206/cnv-trainer/pkg/scoring"
	"github.com/jwebster45206/cnv-trainer/pkg/state"
)

var (
	// ErrBusy means a model request is already in flight.
	ErrBusy = errors.New("session is busy")
	// ErrInvalidState means the operation is not allowed in the current phase.
	ErrInvalidState = errors.New("invalid session state")
)

// Phase is the session's position in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePresenting
	PhaseAwaitingFeedback
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePresenting:
		return "presenting"
	case PhaseAwaitingFeedback:
		return "awaiting_feedback"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Generator is the subset of generation.Client a session needs.
type Generator interface {
	RequestScenarios(ctx context.Context, p profile.UserProfile, n int) (string, error)
	RequestFeedback(ctx context.Context, situation, chosen string, category scenario.OptionCategory, name string) (string, error)
	RequestSummary(ctx context.Context, name string, score, totalPossible int, counts state.CategoryCounts) (string, error)
}

// ResultRecorder persists a completed session.
type ResultRecorder interface {
	Append(ctx context.Context, summary storage.ResultSummary) (storage.StoredResult, error)
}

// Config wires a session. Generator is required; the rest is optional.
type Config struct {
	Profile   profile.UserProfile
	Count     int
	Generator Generator
	Recorder  ResultRecorder
	Notifier  Notifier
	Logger    *slog.Logger
}

// Presented is the scenario currently shown to the learner.
type Presented struct {
	Index     int
	Total     int
	Situation string
	Choices   []scenario.Choice
}

// Session owns the scenario batch and the game state for one run.
// One model request may be in flight at a time.
type Session struct {
	profile  profile.UserProfile
	count    int
	gen      Generator
	recorder ResultRecorder
	notify   Notifier
	logger   *slog.Logger

	mu        sync.Mutex
	phase     Phase
	busy      bool
	index     int
	scenarios []scenario.Scenario
	gs        *state.GameState
	loadErr   error
	last      *state.AnswerRecord
	summary   string
}

func New(cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	notify := cfg.Notifier
	if notify == nil {
		notify = func(Notice) {}
	}
	return &Session{
		profile:  cfg.Profile.Clone(),
		count:    cfg.Count,
		gen:      cfg.Generator,
		recorder: cfg.Recorder,
		notify:   notify,
		logger:   log,
		phase:    PhaseIdle,
		gs:       state.NewGameState(),
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Busy reports whether a model request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Err returns the load failure once the session is Failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// GameState returns a copy of the current game state.
func (s *Session) GameState() *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gs.Clone()
}

// LastAnswer returns the most recent answer while awaiting Next.
func (s *Session) LastAnswer() (state.AnswerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return state.AnswerRecord{}, false
	}
	return *s.last, true
}

// Load requests and parses the scenario batch. Any failure is fatal: the
// session moves to Failed and the error is returned.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot load in phase %s", ErrInvalidState, s.phase)
	}
	s.phase = PhaseLoading
	s.busy = true
	s.mu.Unlock()

	s.logger.Info("Loading scenarios", "count", s.count)
	scenarios, err := s.fetchScenarios(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.phase = PhaseFailed
		s.loadErr = err
		logger.WithError(s.logger, err).Error("Scenario load failed")
		return err
	}
	s.scenarios = scenarios
	s.index = 0
	s.gs.CurrentQuestion = 0
	s.phase = PhasePresenting
	s.logger.Info("Scenarios loaded", "count", len(scenarios))
	return nil
}

func (s *Session) fetchScenarios(ctx context.Context) ([]scenario.Scenario, error) {
	raw, err := s.gen.RequestScenarios(ctx, s.profile, s.count)
	if err != nil {
		return nil, fmt.Errorf("failed to generate scenarios: %w", err)
	}
	scenarios, err := parser.ParseScenarios(raw, s.count)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("failed to parse scenarios: %w: empty batch", parser.ErrMalformedResponse)
	}
	return scenarios, nil
}

// Current returns the scenario at the current index with options in display order.
func (s *Session) Current() (Presented, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePresenting && s.phase != PhaseAwaitingFeedback {
		return Presented{}, fmt.Errorf("%w: no scenario in phase %s", ErrInvalidState, s.phase)
	}
	sc := s.scenarios[s.index]
	return Presented{
		Index:     s.index,
		Total:     len(s.scenarios),
		Situation: sc.Situation,
		Choices:   sc.Choices(),
	}, nil
}

// Select scores the option of the given category and requests feedback.
// A failed feedback request falls back to a local template and a notice.
func (s *Session) Select(ctx context.Context, category scenario.OptionCategory) (state.AnswerRecord, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return state.AnswerRecord{}, ErrBusy
	}
	if s.phase != PhasePresenting {
		s.mu.Unlock()
		return state.AnswerRecord{}, fmt.Errorf("%w: cannot select in phase %s", ErrInvalidState, s.phase)
	}
	points, err := scoring.Points(category)
	if err != nil {
		s.mu.Unlock()
		return state.AnswerRecord{}, err
	}
	sc := s.scenarios[s.index]
	chosen, err := sc.Option(category)
	if err != nil {
		s.mu.Unlock()
		return state.AnswerRecord{}, err
	}
	index := s.index
	s.busy = true
	s.mu.Unlock()

	record := state.AnswerRecord{
		Scenario: sc.Situation,
		Chosen:   chosen,
		Points:   points,
		Category: category,
	}

	fb, fbErr := s.fetchFeedback(ctx, sc.Situation, chosen, category)
	if fbErr != nil {
		record.Feedback, record.Detailed = fallbackFeedback(category, s.profile.Name)
		record.Fallback = true
		logger.WithError(s.logger, fbErr).Warn("Feedback unavailable, using fallback", "index", index)
	} else {
		record.Feedback = fb.Immediate
		record.Detailed = fb.Detailed
	}

	s.mu.Lock()
	s.gs.Record(record)
	s.last = &record
	s.phase = PhaseAwaitingFeedback
	s.busy = false
	s.mu.Unlock()

	s.logger.Info("Answer recorded", "index", index, "category", category, "points", points, "fallback", record.Fallback)
	if fbErr != nil {
		s.notify(Notice{
			Kind:    NoticeFeedbackFallback,
			Message: "Não foi possível gerar o feedback personalizado. Exibindo uma explicação padrão.",
			Err:     fbErr,
		})
	}
	return record, nil
}

func (s *Session) fetchFeedback(ctx context.Context, situation, chosen string, category scenario.OptionCategory) (parser.Feedback, error) {
	raw, err := s.gen.RequestFeedback(ctx, situation, chosen, category, s.profile.Name)
	if err != nil {
		return parser.Feedback{}, err
	}
	return parser.ParseFeedback(raw)
}

// SelectText resolves verbatim option text to its category and selects it.
// Text that matches no option is scenario.ErrUnknownOption.
func (s *Session) SelectText(ctx context.Context, text string) (state.AnswerRecord, error) {
	s.mu.Lock()
	if s.phase != PhasePresenting {
		phase := s.phase
		s.mu.Unlock()
		return state.AnswerRecord{}, fmt.Errorf("%w: cannot select in phase %s", ErrInvalidState, phase)
	}
	category, err := s.scenarios[s.index].CategoryOf(text)
	s.mu.Unlock()
	if err != nil {
		return state.AnswerRecord{}, err
	}
	return s.Select(ctx, category)
}

// Next advances past the answered scenario. It returns the final game state
// when the last scenario has been answered, and nil otherwise.
func (s *Session) Next(ctx context.Context) (*state.GameState, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if s.phase != PhaseAwaitingFeedback {
		phase := s.phase
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot advance in phase %s", ErrInvalidState, phase)
	}
	s.last = nil
	if s.index+1 < len(s.scenarios) {
		s.index++
		s.gs.CurrentQuestion = s.index
		s.phase = PhasePresenting
		s.mu.Unlock()
		return nil, nil
	}

	s.gs.CurrentQuestion = len(s.scenarios)
	s.phase = PhaseCompleted
	final := s.gs.Clone()
	s.busy = s.recorder != nil
	s.mu.Unlock()

	s.logger.Info("Session completed", "score", final.Score, "total_questions", len(final.Answers))
	if s.recorder != nil {
		s.record(ctx, final)
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}
	return final, nil
}

func (s *Session) record(ctx context.Context, final *state.GameState) {
	_, err := s.recorder.Append(ctx, storage.ResultSummary{
		Name:           s.profile.Name,
		Score:          final.Score,
		TotalQuestions: final.CurrentQuestion,
		KnowsCNV:       s.profile.KnowsCNV,
		Answers:        final.Answers,
	})
	if err != nil {
		logger.WithError(s.logger, err).Error("Failed to save result")
		s.notify(Notice{
			Kind:    NoticeResultNotSaved,
			Message: "Não foi possível salvar o resultado.",
			Err:     err,
		})
	}
}

// Summary returns the closing narrative for a completed session. A failed
// summary request falls back to a local template and a notice. The text is
// generated once and then reused.
func (s *Session) Summary(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrBusy
	}
	if s.phase != PhaseCompleted {
		phase := s.phase
		s.mu.Unlock()
		return "", fmt.Errorf("%w: no summary in phase %s", ErrInvalidState, phase)
	}
	if s.summary != "" {
		summary := s.summary
		s.mu.Unlock()
		return summary, nil
	}
	score := s.gs.Score
	possible := scoring.Possible(len(s.scenarios))
	counts := s.gs.Counts()
	s.busy = true
	s.mu.Unlock()

	summary, err := s.fetchSummary(ctx, score, possible, counts)
	if err != nil {
		logger.WithError(s.logger, err).Warn("Summary unavailable, using fallback")
		summary = fallbackSummary(s.profile.Name, score, possible)
	}

	s.mu.Lock()
	s.summary = summary
	s.busy = false
	s.mu.Unlock()

	if err != nil {
		s.notify(Notice{
			Kind:    NoticeSummaryFallback,
			Message: "Não foi possível gerar o feedback final personalizado.",
			Err:     err,
		})
	}
	return summary, nil
}

func (s *Session) fetchSummary(ctx context.Context, score, possible int, counts state.CategoryCounts) (string, error) {
	raw, err := s.gen.RequestSummary(ctx, s.profile.Name, score, possible, counts)
	if err != nil {
		return "", err
	}
	return parser.ParseSummary(raw)
}
