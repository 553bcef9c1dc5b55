package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/cnv-trainer/internal/config"
	"github.com/jwebster45206/cnv-trainer/internal/controller"
	"github.com/jwebster45206/cnv-trainer/internal/logger"
	"github.com/jwebster45206/cnv-trainer/internal/services"
	"github.com/jwebster45206/cnv-trainer/internal/session"
	"github.com/jwebster45206/cnv-trainer/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.Setup(cfg, logFile)

	store, err := storage.Open(cfg.StoreBackend, cfg.StorePath, cfg.RedisURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	if rs, ok := store.(*storage.RedisStore); ok {
		if err := rs.WaitForConnection(context.Background(), 5, time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Could not connect to Redis: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = rs.Close()
		}()
	}

	var program *tea.Program
	ctrl := controller.New(controller.Config{
		LLMFactory: services.NewFactory(services.ProviderConfig{
			Provider:  cfg.LLMProvider,
			ModelName: cfg.ModelName,
			OllamaURL: cfg.OllamaURL,
		}, log),
		Credentials: storage.NewCredentialStore(store, log),
		Recorder:    storage.NewResults(store, log),
		Notifier: func(n session.Notice) {
			log.Warn("Recovered error", "kind", n.Kind, "error", n.Err)
			if program != nil {
				program.Send(noticeMsg{n})
			}
		},
		ScenarioCount: cfg.ScenarioCount,
		Timeout:       cfg.GenerationTimeout,
		Logger:        log,
	})

	log.Info("Starting console",
		"provider", cfg.LLMProvider,
		"store", cfg.StoreBackend,
		"scenario_count", cfg.ScenarioCount,
		"timeout", cfg.GenerationTimeout)

	program = tea.NewProgram(NewConsoleUI(ctrl, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
