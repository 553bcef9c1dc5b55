package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/cnv-trainer/internal/controller"
	"github.com/jwebster45206/cnv-trainer/internal/services"
	"github.com/jwebster45206/cnv-trainer/internal/session"
	"github.com/jwebster45206/cnv-trainer/pkg/scoring"
)

const (
	Title         = "TREINAMENTO CNV"
	noticeTimeout = 6 * time.Second
)

var branchOptions = []string{
	"Sim, já conheço a Comunicação Não Violenta",
	"Não, estou começando agora",
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctrl   *controller.Controller
	logger *slog.Logger

	input    textinput.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	cursor       int
	loading      bool
	progressTick int
	err          error
	notice       string
	noticeSeq    int
	summary      string
	storedKey    bool

	showQuitModal bool
}

type storedCredentialMsg struct {
	found bool
}

type sessionLoadedMsg struct{ err error }

type answerMsg struct{ err error }

type nextMsg struct {
	completed bool
	err       error
}

type summaryMsg struct {
	text string
	err  error
}

type noticeMsg struct{ notice session.Notice }

type clearNoticeMsg struct{ seq int }

type progressTickMsg struct{}

var (
	panelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3).
			PaddingRight(3)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	feedbackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(ctrl *controller.Controller, logger *slog.Logger) ConsoleUI {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 256
	ti.Width = 50

	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	m := ConsoleUI{
		ctrl:     ctrl,
		logger:   logger,
		input:    ti,
		viewport: vp,
	}
	m.prepareInput()
	return m
}

// prepareInput configures the text input for the current step.
func (m *ConsoleUI) prepareInput() {
	m.input.Reset()
	m.input.EchoMode = textinput.EchoNormal
	switch m.ctrl.Step() {
	case controller.StepCredential:
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
		m.input.Placeholder = "Cole sua chave de API"
		if m.storedKey {
			m.input.Placeholder = "Enter para usar a chave salva"
		}
		m.input.Focus()
	case controller.StepIdentity:
		m.input.Placeholder = "Digite seu nome"
		m.input.Focus()
	default:
		m.input.Blur()
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadStoredCredential())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 6
		m.viewport.Height = m.height - 8
		m.input.Width = m.width - 12
		m.ready = true
		m.refresh()
		return m, nil

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case storedCredentialMsg:
		m.storedKey = msg.found
		m.prepareInput()

	case sessionLoadedMsg:
		m.loading = false
		m.cursor = 0
		// a failed load is shown from the session's own error
		m.err = nil
		if msg.err != nil && m.ctrl.Session() == nil {
			m.err = msg.err
		}

	case answerMsg:
		m.loading = false
		m.err = msg.err

	case nextMsg:
		m.loading = false
		m.cursor = 0
		m.err = msg.err
		if msg.completed {
			m.loading = true
			m.progressTick = 0
			m.refresh()
			return m, tea.Batch(m.requestSummary(), progressTick())
		}

	case summaryMsg:
		m.loading = false
		m.summary = msg.text
		m.err = msg.err

	case noticeMsg:
		cmd := m.showNotice(msg.notice.Message)
		m.refresh()
		return m, cmd

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.refresh()
			return m, progressTick()
		}

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		next, cmd := m.handleKey(msg)
		next.refresh()
		return next, cmd
	}

	m.refresh()
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (ConsoleUI, tea.Cmd) {
	switch m.ctrl.Step() {
	case controller.StepCredential:
		return m.handleCredentialKey(msg)
	case controller.StepIdentity:
		if msg.Type == tea.KeyEnter {
			m.err = m.ctrl.SubmitName(m.input.Value())
			if m.err == nil {
				m.cursor = 0
				m.prepareInput()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case controller.StepBranch:
		if m.moveCursor(msg, len(branchOptions)) {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			m.err = m.ctrl.SubmitBranch(m.cursor == 0)
			m.cursor = 0
		}
		return m, nil
	case controller.StepQuestionnaire:
		return m.handleQuestionKey(msg)
	case controller.StepSession:
		return m.handleSessionKey(msg)
	case controller.StepResults:
		return m.handleResultsKey(msg)
	}
	return m, nil
}

func (m ConsoleUI) handleCredentialKey(msg tea.KeyMsg) (ConsoleUI, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		key := m.input.Value()
		if strings.TrimSpace(key) == "" && m.storedKey {
			stored, err := m.ctrl.StoredCredential(context.Background())
			if err != nil {
				m.err = err
				return m, nil
			}
			key = stored
		}
		m.err = m.ctrl.SubmitCredential(context.Background(), key)
		if m.err == nil {
			m.prepareInput()
		}
		return m, nil
	case tea.KeyCtrlF:
		if m.storedKey {
			m.err = m.ctrl.ForgetCredential(context.Background())
			m.storedKey = m.err != nil
			m.prepareInput()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ConsoleUI) handleQuestionKey(msg tea.KeyMsg) (ConsoleUI, tea.Cmd) {
	q, err := m.ctrl.CurrentQuestion()
	if err != nil {
		m.err = err
		return m, nil
	}
	if m.moveCursor(msg, len(q.Question.Options)) {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		m.err = m.ctrl.AnswerQuestion(q.Question.Options[m.cursor])
		m.cursor = 0
		if m.err == nil && m.ctrl.Step() == controller.StepSession {
			return m.startLoading(m.startSession())
		}
	case tea.KeyLeft, tea.KeyBackspace:
		if q.Index > 0 {
			m.err = m.ctrl.Back()
			m.cursor = 0
		}
	}
	return m, nil
}

func (m ConsoleUI) handleSessionKey(msg tea.KeyMsg) (ConsoleUI, tea.Cmd) {
	sess := m.ctrl.Session()
	if sess == nil {
		if msg.String() == "r" {
			return m.startLoading(m.startSession())
		}
		return m, nil
	}

	switch sess.Phase() {
	case session.PhaseFailed:
		if msg.String() == "r" {
			return m.startLoading(m.retrySession())
		}
	case session.PhasePresenting:
		cur, err := m.ctrl.Current()
		if err != nil {
			m.err = err
			return m, nil
		}
		if m.moveCursor(msg, len(cur.Choices)) {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			return m.startLoading(m.selectChoice(cur.Choices[m.cursor].Category))
		}
	case session.PhaseAwaitingFeedback:
		if msg.Type == tea.KeyEnter {
			return m.startLoading(m.next())
		}
	}
	return m, nil
}

func (m ConsoleUI) handleResultsKey(msg tea.KeyMsg) (ConsoleUI, tea.Cmd) {
	switch msg.String() {
	case "s":
		cmd := m.share()
		return m, cmd
	case "n":
		m.ctrl.Reset()
		m.summary = ""
		m.err = nil
		m.cursor = 0
		m.prepareInput()
		return m, m.loadStoredCredential()
	case "q":
		m.showQuitModal = true
	}
	return m, nil
}

func (m *ConsoleUI) moveCursor(msg tea.KeyMsg, n int) bool {
	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return true
	case tea.KeyDown:
		if m.cursor < n-1 {
			m.cursor++
		}
		return true
	}
	return false
}

func (m ConsoleUI) startLoading(cmd tea.Cmd) (ConsoleUI, tea.Cmd) {
	m.loading = true
	m.progressTick = 0
	m.err = nil
	return m, tea.Batch(cmd, progressTick())
}

// showNotice displays text as a toast and schedules its removal. A newer
// notice wins over the pending clear of an older one.
func (m *ConsoleUI) showNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg { return clearNoticeMsg{seq} })
}

func (m *ConsoleUI) share() tea.Cmd {
	perf, err := m.ctrl.Performance()
	if err != nil {
		m.err = err
		return nil
	}
	text := shareText(m.ctrl.GameState().Score, perf.Level)
	if err := clipboard.WriteAll(text); err != nil {
		m.logger.Warn("Clipboard unavailable", "error", err)
		return m.showNotice("Não foi possível copiar. " + text)
	}
	return m.showNotice("Resultado copiado para a área de transferência!")
}

func shareText(score int, level string) string {
	return fmt.Sprintf("Consegui %d pontos no teste de CNV! %s", score, level)
}

// refresh rebuilds the viewport content for the current step and width.
func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderBody(m.viewport.Width))
}

func (m ConsoleUI) renderBody(width int) string {
	if width <= 0 {
		width = 60
	}
	wrap := func(s string) string { return wordwrap.String(s, width) }

	var b strings.Builder
	b.WriteString(titleStyle.Render(Title) + "\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", max(width, 10))) + "\n\n")

	switch m.ctrl.Step() {
	case controller.StepCredential:
		b.WriteString(headingStyle.Render("Chave de API") + "\n\n")
		b.WriteString(wrap("Informe a chave do serviço de IA para gerar cenários personalizados.") + "\n\n")
		b.WriteString(m.input.View() + "\n")
	case controller.StepIdentity:
		b.WriteString(headingStyle.Render("Como você se chama?") + "\n\n")
		b.WriteString(m.input.View() + "\n")
	case controller.StepBranch:
		b.WriteString(headingStyle.Render(fmt.Sprintf("Olá, %s! Você já conhece a CNV?", m.ctrl.Profile().Name)) + "\n\n")
		b.WriteString(renderOptions(branchOptions, m.cursor, width))
	case controller.StepQuestionnaire:
		q, err := m.ctrl.CurrentQuestion()
		if err == nil {
			b.WriteString(promptStyle.Render(fmt.Sprintf("Pergunta %d de %d", q.Index+1, q.Total)) + "\n\n")
			b.WriteString(headingStyle.Render(wrap(q.Question.Text)) + "\n\n")
			b.WriteString(renderOptions(q.Question.Options, m.cursor, width))
		}
	case controller.StepSession:
		b.WriteString(m.renderSession(width))
	case controller.StepResults:
		b.WriteString(m.renderResults(width))
	}

	if m.loading {
		b.WriteString("\n" + m.renderProgressBar() + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(wrap(describeError(m.err))) + "\n")
	}
	return b.String()
}

func (m ConsoleUI) renderSession(width int) string {
	wrap := func(s string) string { return wordwrap.String(s, width) }
	sess := m.ctrl.Session()
	if sess == nil {
		if m.loading {
			return loadingStyle.Render("Preparando seu treinamento...") + "\n"
		}
		return "Pressione r para gerar os cenários.\n"
	}

	var b strings.Builder
	switch sess.Phase() {
	case session.PhaseIdle, session.PhaseLoading:
		b.WriteString(loadingStyle.Render("Gerando cenários personalizados...") + "\n")
	case session.PhaseFailed:
		b.WriteString(errorStyle.Render(wrap("Não foi possível gerar os cenários: "+describeError(sess.Err()))) + "\n\n")
		b.WriteString(promptStyle.Render("Pressione r para tentar novamente") + "\n")
	case session.PhasePresenting, session.PhaseAwaitingFeedback:
		cur, err := sess.Current()
		if err != nil {
			return ""
		}
		gs := sess.GameState()
		b.WriteString(promptStyle.Render(fmt.Sprintf("Cenário %d de %d · %d pontos", cur.Index+1, cur.Total, gs.Score)) + "\n\n")
		b.WriteString(headingStyle.Render(wrap(cur.Situation)) + "\n\n")
		if sess.Phase() == session.PhasePresenting {
			texts := make([]string, len(cur.Choices))
			for i, c := range cur.Choices {
				texts[i] = c.Text
			}
			b.WriteString(renderOptions(texts, m.cursor, width))
			break
		}
		if rec, ok := sess.LastAnswer(); ok {
			b.WriteString("Sua resposta: " + wrap(rec.Chosen) + "\n\n")
			b.WriteString(feedbackStyle.Render(fmt.Sprintf("+%d pontos", rec.Points)) + "\n\n")
			b.WriteString(feedbackStyle.Render(wrap(rec.Feedback)) + "\n\n")
			if rec.Detailed != "" {
				b.WriteString(wrap(rec.Detailed) + "\n\n")
			}
		}
		b.WriteString(promptStyle.Render("Enter para continuar") + "\n")
	}
	return b.String()
}

func (m ConsoleUI) renderResults(width int) string {
	wrap := func(s string) string { return wordwrap.String(s, width) }
	gs := m.ctrl.GameState()
	possible := scoring.Possible(gs.CurrentQuestion)
	perf, err := m.ctrl.Performance()
	if err != nil {
		return ""
	}
	name := m.ctrl.Profile().Name

	var b strings.Builder
	b.WriteString(headingStyle.Render(perf.Level) + "\n\n")
	b.WriteString(fmt.Sprintf("%d de %d pontos (%.0f%%)\n\n", gs.Score, possible, scoring.Percentage(gs.Score, possible)))
	b.WriteString(wrap(perf.Describe(name)) + "\n\n")
	if m.summary != "" {
		b.WriteString(feedbackStyle.Render(wrap(m.summary)) + "\n\n")
	}
	b.WriteString(headingStyle.Render("Recomendações") + "\n")
	for _, r := range perf.Recommendations {
		b.WriteString(wrap("• "+r) + "\n")
	}
	b.WriteString("\n" + headingStyle.Render("Suas respostas") + "\n")
	for i, a := range gs.Answers {
		b.WriteString(fmt.Sprintf("%d. %s (+%d)\n", i+1, wrap(a.Chosen), a.Points))
	}
	b.WriteString("\n" + promptStyle.Render("s compartilhar · n novo treinamento · q sair") + "\n")
	return b.String()
}

func renderOptions(options []string, cursor, width int) string {
	var b strings.Builder
	for i, opt := range options {
		text := wordwrap.String(opt, max(width-4, 10))
		if i == cursor {
			b.WriteString(selectedStyle.Render("▶ "+text) + "\n")
		} else {
			b.WriteString("  " + text + "\n")
		}
	}
	b.WriteString("\n" + promptStyle.Render("Use ↑/↓ para escolher e Enter para confirmar") + "\n")
	return b.String()
}

// describeError turns the error taxonomy into learner-facing text.
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrAuthorization):
		return "Chave de API inválida ou ausente."
	case errors.Is(err, services.ErrServiceUnavailable):
		return "O serviço de IA não respondeu. Tente novamente em instantes."
	case errors.Is(err, controller.ErrBlankName):
		return "Por favor, digite seu nome."
	case errors.Is(err, controller.ErrBlankAnswer):
		return "Escolha uma resposta."
	}
	return err.Error()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y", "s", "S":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Carregando..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Sair do treinamento?"))
	content.WriteString("\n\n")
	content.WriteString("O progresso da sessão atual será perdido.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("S para sair, N para continuar, Ctrl+C para forçar"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Inicializando..."
	}

	footer := promptStyle.Render("Ctrl+C: sair")
	if m.ctrl.Step() == controller.StepCredential && m.storedKey {
		footer = promptStyle.Render("Ctrl+F: esquecer chave salva · Ctrl+C: sair")
	}
	if m.notice != "" {
		footer = loadingStyle.Render(m.notice)
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		separatorStyle.Render(strings.Repeat("─", max(m.viewport.Width, 10))),
		footer,
	))
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.viewport.Width
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
