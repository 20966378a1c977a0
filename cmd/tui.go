package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/downbeats/internal/shared"
	"github.com/desertthunder/downbeats/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive browser for the category hierarchy.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.svc == nil {
		return fmt.Errorf("%w: downbeats service not initialized", shared.ErrServiceUnavailable)
	}

	logPath := r.config.Logging.File
	if logPath == "" {
		logPath = filepath.Join("tmp", "downbeats-tui.log")
	}

	// Logs go to a file so they don't interfere with rendering
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.svc, fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
