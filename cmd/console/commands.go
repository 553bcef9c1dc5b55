package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
)

// Every controller call that may reach the model runs as a tea.Cmd so the
// UI keeps drawing. The controller bounds each call with its own timeout.

func (m ConsoleUI) loadStoredCredential() tea.Cmd {
	return func() tea.Msg {
		key, err := m.ctrl.StoredCredential(context.Background())
		if err != nil {
			m.logger.Warn("Failed to read remembered credential", "error", err)
		}
		return storedCredentialMsg{found: key != ""}
	}
}

func (m ConsoleUI) startSession() tea.Cmd {
	return func() tea.Msg {
		return sessionLoadedMsg{err: m.ctrl.StartSession(context.Background())}
	}
}

func (m ConsoleUI) retrySession() tea.Cmd {
	return func() tea.Msg {
		return sessionLoadedMsg{err: m.ctrl.RetrySession(context.Background())}
	}
}

func (m ConsoleUI) selectChoice(category scenario.OptionCategory) tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.Select(context.Background(), category)
		return answerMsg{err: err}
	}
}

func (m ConsoleUI) next() tea.Cmd {
	return func() tea.Msg {
		completed, err := m.ctrl.Next(context.Background())
		return nextMsg{completed: completed, err: err}
	}
}

func (m ConsoleUI) requestSummary() tea.Cmd {
	return func() tea.Msg {
		text, err := m.ctrl.Summary(context.Background())
		return summaryMsg{text: text, err: err}
	}
}
