package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/cnv-trainer/internal/generation"
	"github.com/jwebster45206/cnv-trainer/internal/services"
	"github.com/jwebster45206/cnv-trainer/internal/storage"
	"github.com/jwebster45206/cnv-trainer/pkg/parser"
	"github.com/jwebster45206/cnv-trainer/pkg/profile"
	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
	"github.com/jwebster45206/cnv-trainer/pkg/textfilter"
)

const twoScenarios = `Aqui estão os cenários:
{"scenarios":[
 {"situation":"Um colega atrasa a entrega","options":{"passive":"Deixo pra lá","cnv":"Quando vejo o atraso fico preocupado, podemos combinar um prazo?","neutral":"Pode me avisar quando terminar?","problematic":"Você sempre atrasa"}},
 {"situation":"Reunião sem pauta","options":{"passive":"Fico quieto","cnv":"Sinto falta de clareza, podemos definir uma pauta?","neutral":"Qual é a pauta?","problematic":"Essa reunião é inútil"}}
]}`

const oneScenario = `{"scenarios":[{"situation":"Um colega atrasa a entrega","options":{"passive":"a","cnv":"b","neutral":"c","problematic":"d"}}]}`

const feedbackJSON = `{"immediate":"Muito bem, Ana!","detailed":"Você usou observação e pedido.","points":99}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *noticeLog) add(x Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, x)
}

func (n *noticeLog) kinds() []NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NoticeKind, 0, len(n.notices))
	for _, x := range n.notices {
		out = append(out, x.Kind)
	}
	return out
}

type fixture struct {
	mock    *services.MockLLMAPI
	store   *storage.MemoryStore
	results *storage.Results
	notices *noticeLog
	session *Session
}

func newFixture(t *testing.T, responses ...string) *fixture {
	t.Helper()
	mock := services.NewMockLLMAPI(responses...)
	store := storage.NewMemoryStore()
	results := storage.NewResults(store, quietLogger())
	notices := &noticeLog{}
	s := New(Config{
		Profile:   profile.UserProfile{Name: "Ana", KnowsCNV: true, Answers: []string{"Reuniões"}},
		Count:     2,
		Generator: generation.New(mock, generation.WithLogger(quietLogger())),
		Recorder:  results,
		Notifier:  notices.add,
		Logger:    quietLogger(),
	})
	return &fixture{mock: mock, store: store, results: results, notices: notices, session: s}
}

func TestSession_EndToEndAllCNV(t *testing.T) {
	f := newFixture(t, twoScenarios, feedbackJSON, feedbackJSON)
	ctx := context.Background()

	require.NoError(t, f.session.Load(ctx))
	assert.Equal(t, PhasePresenting, f.session.Phase())

	for i := 0; i < 2; i++ {
		cur, err := f.session.Current()
		require.NoError(t, err)
		assert.Equal(t, i, cur.Index)
		assert.Equal(t, 2, cur.Total)

		rec, err := f.session.Select(ctx, scenario.CNV)
		require.NoError(t, err)
		assert.Equal(t, 10, rec.Points, "points come from the local table, not the payload")
		assert.Equal(t, "Muito bem, Ana!", rec.Feedback)
		assert.False(t, rec.Fallback)
		assert.Equal(t, PhaseAwaitingFeedback, f.session.Phase())

		final, err := f.session.Next(ctx)
		require.NoError(t, err)
		if i == 0 {
			assert.Nil(t, final)
			continue
		}
		require.NotNil(t, final)
		assert.Equal(t, 20, final.Score)
		assert.Equal(t, 2, final.CurrentQuestion)
		assert.Len(t, final.Answers, 2)
	}

	assert.Equal(t, PhaseCompleted, f.session.Phase())
	assert.Equal(t, 3, f.mock.CallCount(), "one scenario call and one feedback call per answer")

	saved, err := f.results.List(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Ana", saved[0].Name)
	assert.Equal(t, 20, saved[0].Score)
	assert.Equal(t, 2, saved[0].TotalQuestions)
	assert.True(t, saved[0].KnowsCNV)
	assert.Empty(t, f.notices.kinds())
}

func TestSession_CurrentUsesDisplayOrder(t *testing.T) {
	f := newFixture(t, twoScenarios)
	require.NoError(t, f.session.Load(context.Background()))

	cur, err := f.session.Current()
	require.NoError(t, err)
	require.Len(t, cur.Choices, 4)
	for i, c := range cur.Choices {
		assert.Equal(t, scenario.DisplayOrder[i], c.Category)
	}
	assert.Equal(t, "Pode me avisar quando terminar?", cur.Choices[0].Text)
}

func TestSession_FeedbackFailureFallsBack(t *testing.T) {
	f := newFixture(t, twoScenarios)
	f.mock.QueueError(services.ErrServiceUnavailable)
	ctx := context.Background()

	require.NoError(t, f.session.Load(ctx))
	rec, err := f.session.Select(ctx, scenario.Neutral)
	require.NoError(t, err, "feedback failure must not abort the session")
	assert.Equal(t, 5, rec.Points)
	assert.NotEmpty(t, rec.Feedback)
	assert.NotEmpty(t, rec.Detailed)
	assert.True(t, rec.Fallback)
	assert.False(t, textfilter.ContainsMarkup(rec.Feedback))
	assert.Equal(t, []NoticeKind{NoticeFeedbackFallback}, f.notices.kinds())

	gs := f.session.GameState()
	assert.Equal(t, 5, gs.Score)
	assert.Len(t, gs.Answers, 1)
}

func TestSession_MalformedFeedbackFallsBack(t *testing.T) {
	f := newFixture(t, twoScenarios, `{"immediate":""}`)
	ctx := context.Background()

	require.NoError(t, f.session.Load(ctx))
	rec, err := f.session.Select(ctx, scenario.Problematic)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Points)
	assert.True(t, rec.Fallback)
	assert.Contains(t, rec.Feedback, "Ana")
}

func TestSession_LoadFailures(t *testing.T) {
	tests := []struct {
		name    string
		reply   *services.MockResponse
		wantErr error
	}{
		{"service down", &services.MockResponse{Err: services.ErrServiceUnavailable}, services.ErrServiceUnavailable},
		{"bad credential", &services.MockResponse{Err: services.ErrAuthorization}, services.ErrAuthorization},
		{"no json", &services.MockResponse{Text: "desculpe, não posso"}, parser.ErrMalformedResponse},
		{"empty batch", &services.MockResponse{Text: `{"scenarios":[]}`}, parser.ErrMalformedResponse},
		{"too few", &services.MockResponse{Text: oneScenario}, parser.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.mock.Responses = append(f.mock.Responses, *tt.reply)

			err := f.session.Load(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, PhaseFailed, f.session.Phase())
			assert.ErrorIs(t, f.session.Err(), tt.wantErr)
			assert.Empty(t, f.notices.kinds(), "fatal load is returned, not notified")

			_, err = f.session.Current()
			assert.ErrorIs(t, err, ErrInvalidState)
			_, err = f.session.Select(context.Background(), scenario.CNV)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestSession_LoadTwice(t *testing.T) {
	f := newFixture(t, twoScenarios)
	require.NoError(t, f.session.Load(context.Background()))
	assert.ErrorIs(t, f.session.Load(context.Background()), ErrInvalidState)
}

func TestSession_WrongPhase(t *testing.T) {
	f := newFixture(t, twoScenarios, feedbackJSON)
	ctx := context.Background()

	_, err := f.session.Select(ctx, scenario.CNV)
	assert.ErrorIs(t, err, ErrInvalidState, "select before load")

	require.NoError(t, f.session.Load(ctx))
	_, err = f.session.Next(ctx)
	assert.ErrorIs(t, err, ErrInvalidState, "next before select")

	_, err = f.session.Select(ctx, scenario.CNV)
	require.NoError(t, err)
	_, err = f.session.Select(ctx, scenario.Passive)
	assert.ErrorIs(t, err, ErrInvalidState, "second select on the same scenario")

	_, err = f.session.Summary(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSession_UnknownCategory(t *testing.T) {
	f := newFixture(t, twoScenarios)
	require.NoError(t, f.session.Load(context.Background()))

	_, err := f.session.Select(context.Background(), scenario.OptionCategory("aggressive"))
	assert.ErrorIs(t, err, scenario.ErrUnknownCategory)
	assert.Equal(t, PhasePresenting, f.session.Phase())
}

func TestSession_SelectText(t *testing.T) {
	f := newFixture(t, twoScenarios, feedbackJSON)
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	_, err := f.session.SelectText(ctx, "texto que não existe")
	assert.ErrorIs(t, err, scenario.ErrUnknownOption)

	rec, err := f.session.SelectText(ctx, "Deixo pra lá")
	require.NoError(t, err)
	assert.Equal(t, scenario.Passive, rec.Category)
	assert.Equal(t, 2, rec.Points)

	last, ok := f.session.LastAnswer()
	assert.True(t, ok)
	assert.Equal(t, rec, last)
}

func TestSession_SelectWhileBusy(t *testing.T) {
	f := newFixture(t, twoScenarios)
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	started := make(chan struct{})
	release := make(chan struct{})
	f.mock.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		close(started)
		<-release
		return feedbackJSON, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.session.Select(ctx, scenario.CNV)
		done <- err
	}()

	<-started
	assert.True(t, f.session.Busy())
	_, err := f.session.Select(ctx, scenario.Passive)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = f.session.Next(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("select did not finish")
	}
	assert.Len(t, f.session.GameState().Answers, 1)
}

func TestSession_Summary(t *testing.T) {
	f := newFixture(t, twoScenarios, feedbackJSON, feedbackJSON, "Ana, **excelente** trabalho!\n\n\nContinue assim.")
	ctx := context.Background()
	completeSession(t, f, scenario.CNV)

	summary, err := f.session.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana, excelente trabalho!\nContinue assim.", summary)
	assert.Contains(t, f.mock.LastPrompt(), "20")

	again, err := f.session.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary, again)
	assert.Equal(t, 4, f.mock.CallCount(), "summary is generated once")
}

func TestSession_SummaryFallback(t *testing.T) {
	f := newFixture(t, twoScenarios, feedbackJSON, feedbackJSON)
	f.mock.QueueError(services.ErrServiceUnavailable)
	ctx := context.Background()
	completeSession(t, f, scenario.Passive)

	summary, err := f.session.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(summary, "Parabéns, Ana!"))
	assert.Contains(t, summary, "4 pontos")
	assert.Equal(t, []NoticeKind{NoticeSummaryFallback}, f.notices.kinds())
}

type failingRecorder struct{}

func (failingRecorder) Append(ctx context.Context, summary storage.ResultSummary) (storage.StoredResult, error) {
	return storage.StoredResult{}, errors.New("store offline")
}

func TestSession_RecorderFailureIsNotice(t *testing.T) {
	f := newFixture(t, twoScenarios, feedbackJSON, feedbackJSON)
	f.session.recorder = failingRecorder{}
	completeSession(t, f, scenario.CNV)

	assert.Equal(t, PhaseCompleted, f.session.Phase())
	assert.Equal(t, []NoticeKind{NoticeResultNotSaved}, f.notices.kinds())
}

func completeSession(t *testing.T, f *fixture, c scenario.OptionCategory) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))
	for {
		_, err := f.session.Select(ctx, c)
		require.NoError(t, err)
		final, err := f.session.Next(ctx)
		require.NoError(t, err)
		if final != nil {
			return
		}
	}
}

func TestFallbackSummaryBands(t *testing.T) {
	assert.Contains(t, fallbackSummary("Ana", 20, 20), "excelente desempenho")
	assert.Contains(t, fallbackSummary("Ana", 13, 20), "bom desempenho")
	assert.Contains(t, fallbackSummary("Ana", 9, 20), "bom esforço")
	assert.Contains(t, fallbackSummary("Ana", 0, 20), "início da sua jornada")
}

func TestFallbackFeedbackCoversEveryCategory(t *testing.T) {
	for _, c := range scenario.Categories {
		immediate, detailed := fallbackFeedback(c, "Ana")
		assert.Contains(t, immediate, "Ana")
		assert.NotEmpty(t, detailed)
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "awaiting_feedback", PhaseAwaitingFeedback.String())
	assert.Equal(t, "phase(42)", Phase(42).String())
}

func TestSession_FallbackLogsCarryError(t *testing.T) {
	f := newFixture(t, twoScenarios)
	var buf bytes.Buffer
	f.session.logger = slog.New(slog.NewTextHandler(&buf, nil))
	f.mock.QueueError(services.ErrServiceUnavailable)
	ctx := context.Background()

	require.NoError(t, f.session.Load(ctx))
	_, err := f.session.Select(ctx, scenario.CNV)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Feedback unavailable, using fallback")
	assert.Contains(t, out, "error=")
	assert.Contains(t, out, services.ErrServiceUnavailable.Error())
}
