// Package controller drives the training flow from credential entry to results.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/cnv-trainer/internal/generation"
	"github.com/jwebster45206/cnv-trainer/internal/logger"
	"github.com/jwebster45206/cnv-trainer/internal/services"
	"github.com/jwebster45206/cnv-trainer/internal/session"
	"github.com/jwebster45206/cnv-trainer/pkg/profile"
	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
	"github.com/jwebster45206/cnv-trainer/pkg/scoring"
	"github.com/jwebster45206/cnv-trainer/pkg/state"
)

var (
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrBlankName         = errors.New("name cannot be blank")
	ErrBlankAnswer       = errors.New("answer cannot be blank")
)

// Step is the controller's stage.
type Step int

const (
	StepCredential Step = iota
	StepIdentity
	StepBranch
	StepQuestionnaire
	StepSession
	StepResults
)

func (s Step) String() string {
	switch s {
	case StepCredential:
		return "credential"
	case StepIdentity:
		return "identity"
	case StepBranch:
		return "branch"
	case StepQuestionnaire:
		return "questionnaire"
	case StepSession:
		return "session"
	case StepResults:
		return "results"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// CredentialKeeper remembers the credential between runs.
type CredentialKeeper interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Forget(ctx context.Context) error
}

// Config wires a Controller. LLMFactory is required.
type Config struct {
	LLMFactory    services.Factory
	Credentials   CredentialKeeper
	Recorder      session.ResultRecorder
	Notifier      session.Notifier
	ScenarioCount int
	Timeout       time.Duration
	Logger        *slog.Logger
}

// QuestionView is the active questionnaire item.
type QuestionView struct {
	Index    int
	Total    int
	Question profile.Question
}

// Controller is the top-level state machine. Methods are safe for concurrent
// use; model calls run without the controller lock held.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	step       Step
	credential string
	profile    profile.UserProfile
	questions  []profile.Question
	session    *session.Session
	final      *state.GameState
}

func New(cfg Config) *Controller {
	if cfg.ScenarioCount <= 0 {
		cfg.ScenarioCount = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = generation.DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		cfg:     cfg,
		logger:  log,
		step:    StepCredential,
		profile: profile.Empty(),
		final:   state.NewGameState(),
	}
}

// Step returns the current stage.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Profile returns a copy of the collected profile.
func (c *Controller) Profile() profile.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.Clone()
}

// HasCredential reports whether a credential is held in memory.
func (c *Controller) HasCredential() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.credential != ""
}

// Session returns the active session, or nil before StartSession.
func (c *Controller) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// GameState returns a copy of the final state once in Results, or an empty state.
func (c *Controller) GameState() *state.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.final.Clone()
}

// Performance rates the final state.
func (c *Controller) Performance() (scoring.Performance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepResults {
		return scoring.Performance{}, c.wrongStep("performance")
	}
	return scoring.Evaluate(c.final.Score, scoring.Possible(c.final.CurrentQuestion)), nil
}

func (c *Controller) wrongStep(op string) error {
	return fmt.Errorf("%w: %s not allowed in step %s", ErrInvalidTransition, op, c.step)
}

// SubmitCredential holds a non-blank credential and moves to Identity.
// Persisting it is best effort.
func (c *Controller) SubmitCredential(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)

	c.mu.Lock()
	if c.step != StepCredential {
		err := c.wrongStep("credential")
		c.mu.Unlock()
		return err
	}
	if credential == "" {
		c.mu.Unlock()
		return fmt.Errorf("%w: credential is blank", services.ErrAuthorization)
	}
	c.credential = credential
	c.step = StepIdentity
	c.mu.Unlock()

	c.logger.Info("Credential accepted", "credential_set", true)
	if c.cfg.Credentials != nil {
		if err := c.cfg.Credentials.Save(ctx, credential); err != nil {
			logger.WithError(c.logger, err).Warn("Failed to remember credential")
		}
	}
	return nil
}

// StoredCredential returns the remembered credential, or "" if none.
func (c *Controller) StoredCredential(ctx context.Context) (string, error) {
	if c.cfg.Credentials == nil {
		return "", nil
	}
	return c.cfg.Credentials.Load(ctx)
}

// ForgetCredential removes the remembered credential. The in-memory one is kept.
func (c *Controller) ForgetCredential(ctx context.Context) error {
	if c.cfg.Credentials == nil {
		return nil
	}
	if err := c.cfg.Credentials.Forget(ctx); err != nil {
		return err
	}
	c.logger.Info("Remembered credential removed", "credential_set", c.HasCredential())
	return nil
}

// SubmitName records a non-blank name and moves to Branch.
func (c *Controller) SubmitName(name string) error {
	name = strings.TrimSpace(name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepIdentity {
		return c.wrongStep("name")
	}
	if name == "" {
		return ErrBlankName
	}
	c.profile.Name = name
	c.step = StepBranch
	return nil
}

// SubmitBranch records whether the learner already knows CNV and picks the
// matching questionnaire.
func (c *Controller) SubmitBranch(knowsCNV bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepBranch {
		return c.wrongStep("branch")
	}
	c.profile.KnowsCNV = knowsCNV
	c.profile.Answers = []string{}
	c.questions = profile.Questionnaire(knowsCNV)
	c.step = StepQuestionnaire
	return nil
}

// CurrentQuestion returns the questionnaire item awaiting an answer.
func (c *Controller) CurrentQuestion() (QuestionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepQuestionnaire {
		return QuestionView{}, c.wrongStep("question")
	}
	i := len(c.profile.Answers)
	return QuestionView{Index: i, Total: len(c.questions), Question: c.questions[i]}, nil
}

// AnswerQuestion appends a non-blank answer. After the last question the
// controller moves to Session.
func (c *Controller) AnswerQuestion(answer string) error {
	answer = strings.TrimSpace(answer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepQuestionnaire {
		return c.wrongStep("answer")
	}
	if answer == "" {
		return ErrBlankAnswer
	}
	c.profile.Answers = append(c.profile.Answers, answer)
	if len(c.profile.Answers) == len(c.questions) {
		c.step = StepSession
		c.logger.Info("Questionnaire complete", "knows_cnv", c.profile.KnowsCNV, "answers", len(c.profile.Answers))
	}
	return nil
}

// Back returns to the previous question and discards its answer.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepQuestionnaire || len(c.profile.Answers) == 0 {
		return c.wrongStep("back")
	}
	c.profile.Answers = c.profile.Answers[:len(c.profile.Answers)-1]
	return nil
}

// StartSession builds an LLM client for the held credential and loads a
// scenario session. A load failure leaves the session Failed and is returned.
func (c *Controller) StartSession(ctx context.Context) error {
	c.mu.Lock()
	if c.step != StepSession || c.session != nil {
		err := c.wrongStep("start session")
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()
	return c.startSession(ctx)
}

// RetrySession replaces a failed session with a fresh one and loads it.
func (c *Controller) RetrySession(ctx context.Context) error {
	c.mu.Lock()
	if c.step != StepSession || (c.session != nil && c.session.Phase() != session.PhaseFailed) {
		err := c.wrongStep("retry session")
		c.mu.Unlock()
		return err
	}
	c.session = nil
	c.mu.Unlock()
	c.logger.Info("Retrying scenario session")
	return c.startSession(ctx)
}

func (c *Controller) startSession(ctx context.Context) error {
	c.mu.Lock()
	credential := c.credential
	p := c.profile.Clone()
	c.mu.Unlock()

	llm, err := c.cfg.LLMFactory(ctx, credential)
	if err != nil {
		logger.WithError(c.logger, err).Error("Failed to create LLM client", "credential_set", credential != "")
		return err
	}

	sessionID := uuid.NewString()
	sessLogger := logger.WithSession(c.logger, sessionID).With("model", llm.ModelName())
	sessLogger.Info("Starting scenario session", "scenario_count", c.cfg.ScenarioCount)

	sess := session.New(session.Config{
		Profile: p,
		Count:   c.cfg.ScenarioCount,
		Generator: generation.New(llm,
			generation.WithTimeout(c.cfg.Timeout),
			generation.WithLogger(sessLogger)),
		Recorder: c.cfg.Recorder,
		Notifier: c.cfg.Notifier,
		Logger:   sessLogger,
	})

	c.mu.Lock()
	if c.step != StepSession || c.session != nil {
		err := c.wrongStep("start session")
		c.mu.Unlock()
		return err
	}
	c.session = sess
	c.mu.Unlock()

	return sess.Load(ctx)
}

func (c *Controller) activeSession(op string) (*session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepSession || c.session == nil {
		return nil, c.wrongStep(op)
	}
	return c.session, nil
}

// Current returns the scenario being presented.
func (c *Controller) Current() (session.Presented, error) {
	sess, err := c.activeSession("current")
	if err != nil {
		return session.Presented{}, err
	}
	return sess.Current()
}

// Select answers the current scenario with the option of category.
func (c *Controller) Select(ctx context.Context, category scenario.OptionCategory) (state.AnswerRecord, error) {
	sess, err := c.activeSession("select")
	if err != nil {
		return state.AnswerRecord{}, err
	}
	return sess.Select(ctx, category)
}

// Next advances the session. Completing it moves the controller to Results.
func (c *Controller) Next(ctx context.Context) (completed bool, err error) {
	sess, err := c.activeSession("next")
	if err != nil {
		return false, err
	}
	final, err := sess.Next(ctx)
	if err != nil || final == nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != sess {
		// reset while the result was being saved
		return false, c.wrongStep("next")
	}
	c.final = final
	c.step = StepResults
	c.logger.Info("Training complete", "score", final.Score, "possible", scoring.Possible(final.CurrentQuestion))
	return true, nil
}

// Summary returns the closing narrative in Results.
func (c *Controller) Summary(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.step != StepResults || c.session == nil {
		err := c.wrongStep("summary")
		c.mu.Unlock()
		return "", err
	}
	sess := c.session
	c.mu.Unlock()
	return sess.Summary(ctx)
}

// Reset clears the profile, game state, held credential and session and
// returns to Credential. The remembered credential is left in place.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = StepCredential
	c.credential = ""
	c.profile = profile.Empty()
	c.questions = nil
	c.session = nil
	c.final = state.NewGameState()
	c.logger.Info("Controller reset", "credential_set", false)
}
