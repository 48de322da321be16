package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinefav/internal/shared"
	"github.com/desertthunder/cinefav/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI, starting on the table when a token is stored.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	if err := r.connect(); err != nil {
		return err
	}

	_, err = r.store.Token(ctx)
	authenticated := err == nil
	if err != nil && !errors.Is(err, shared.ErrNotAuthenticated) {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	email, err := r.store.RememberedEmail(ctx)
	if err != nil {
		r.logger.Warn("failed to read remembered email", "err", err)
	}

	model := ui.NewModel(ctx, ui.Options{
		Catalog:       r.catalog,
		Auth:          r.catalog,
		Credentials:   r.store,
		Memory:        r.store,
		Email:         email,
		Authenticated: authenticated,
		Controller:    r.controllerOpts(),
		Logger:        r.logger,
		OpenURL:       r.openURL,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
