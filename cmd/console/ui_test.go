package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/cnv-trainer/internal/controller"
	"github.com/jwebster45206/cnv-trainer/internal/services"
	"github.com/jwebster45206/cnv-trainer/internal/storage"
)

func newTestUI(t *testing.T) ConsoleUI {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore()
	ctrl := controller.New(controller.Config{
		LLMFactory: func(ctx context.Context, credential string) (services.LLMService, error) {
			return services.NewMockLLMAPI(), nil
		},
		Credentials: storage.NewCredentialStore(store, log),
		Recorder:    storage.NewResults(store, log),
		Logger:      log,
	})
	m := NewConsoleUI(ctrl, log)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(ConsoleUI)
}

func typeText(t *testing.T, m ConsoleUI, s string) ConsoleUI {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(ConsoleUI)
}

func press(t *testing.T, m ConsoleUI, k tea.KeyType) ConsoleUI {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(ConsoleUI)
}

func TestConsoleUI_CredentialAndName(t *testing.T) {
	m := newTestUI(t)
	assert.Equal(t, controller.StepCredential, m.ctrl.Step())

	m = press(t, m, tea.KeyEnter)
	assert.ErrorIs(t, m.err, services.ErrAuthorization)
	assert.Equal(t, controller.StepCredential, m.ctrl.Step())

	m = typeText(t, m, "segredo")
	assert.NotContains(t, m.View(), "segredo", "the credential is masked")
	m = press(t, m, tea.KeyEnter)
	require.NoError(t, m.err)
	assert.Equal(t, controller.StepIdentity, m.ctrl.Step())

	m = press(t, m, tea.KeyEnter)
	assert.ErrorIs(t, m.err, controller.ErrBlankName)

	m = typeText(t, m, "Ana")
	m = press(t, m, tea.KeyEnter)
	require.NoError(t, m.err)
	assert.Equal(t, controller.StepBranch, m.ctrl.Step())
	assert.Contains(t, m.View(), "Ana")
}

func TestConsoleUI_BranchAndQuestionnaireNavigation(t *testing.T) {
	m := newTestUI(t)
	m = typeText(t, m, "segredo")
	m = press(t, m, tea.KeyEnter)
	m = typeText(t, m, "Ana")
	m = press(t, m, tea.KeyEnter)

	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, controller.StepQuestionnaire, m.ctrl.Step())
	assert.False(t, m.ctrl.Profile().KnowsCNV)

	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)
	q, err := m.ctrl.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Index)

	m = press(t, m, tea.KeyLeft)
	q, err = m.ctrl.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, 0, q.Index)
	assert.Empty(t, m.ctrl.Profile().Answers)
}

func TestConsoleUI_QuitModal(t *testing.T) {
	m := newTestUI(t)
	m = press(t, m, tea.KeyCtrlC)
	assert.True(t, m.showQuitModal)
	assert.Contains(t, m.View(), "Sair do treinamento?")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.False(t, next.(ConsoleUI).showQuitModal)
}

func TestShareText(t *testing.T) {
	assert.Equal(t, "Consegui 80 pontos no teste de CNV! Expert em CNV", shareText(80, "Expert em CNV"))
}

func TestDescribeError(t *testing.T) {
	assert.Empty(t, describeError(nil))
	assert.Contains(t, describeError(fmt.Errorf("x: %w", services.ErrAuthorization)), "Chave")
	assert.Contains(t, describeError(services.ErrServiceUnavailable), "não respondeu")
	assert.Equal(t, "boom", describeError(fmt.Errorf("boom")))
}

func TestRenderOptionsMarksCursor(t *testing.T) {
	out := renderOptions([]string{"um", "dois"}, 1, 40)
	assert.Contains(t, out, "▶ dois")
	assert.Contains(t, out, "  um")
}

func TestConsoleUI_NoticeClears(t *testing.T) {
	m := newTestUI(t)

	cmd := m.showNotice("Resultado copiado para a área de transferência!")
	require.NotNil(t, cmd)
	first := m.noticeSeq
	assert.Equal(t, "Resultado copiado para a área de transferência!", m.notice)

	// a newer notice outlives the older clear
	m.showNotice("Outro aviso")
	next, _ := m.Update(clearNoticeMsg{seq: first})
	m = next.(ConsoleUI)
	assert.Equal(t, "Outro aviso", m.notice)

	next, _ = m.Update(clearNoticeMsg{seq: m.noticeSeq})
	m = next.(ConsoleUI)
	assert.Empty(t, m.notice)
}

func TestConsoleUI_ShareOutsideResults(t *testing.T) {
	m := newTestUI(t)
	cmd := m.share()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.err, controller.ErrInvalidTransition)
	assert.Empty(t, m.notice)
}
