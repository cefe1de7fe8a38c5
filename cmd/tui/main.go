package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/fostercare-aficionado/chat/internal/config"
	"github.com/fostercare-aficionado/chat/internal/tui"
)

func main() {
	defaultPath, err := config.DefaultPath()
	if err != nil {
		log.Fatal(err)
	}
	cfgPath := flag.String("config", defaultPath, "path to the configuration file")
	style := flag.String("style", "auto", "glamour style for assistant replies (auto, dark, light, notty)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	// The terminal belongs to the UI, so logs go next to the config file.
	logPath := filepath.Join(filepath.Dir(*cfgPath), "tui.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		log.Fatal(fmt.Errorf("error creating log directory: %w", err))
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.Fatal(fmt.Errorf("error opening log file: %w", err))
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	transport, err := cfg.Backend.Transport(logger)
	if err != nil {
		log.Fatal(fmt.Errorf("error creating %s backend: %w", cfg.Backend.Name(), err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := chatview.New(transport, cfg.ViewOptions(logger)...)

	p := tea.NewProgram(tui.New(ctx, view, *style), tea.WithAltScreen(), tea.WithMouseCellMotion())
	unsubscribe := tui.Subscribe(view, p.Send)
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		logger.Error("TUI exited with error", slog.String("err", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
