package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive song browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	model := ui.NewModel(ctx, r.client(), collectionFromFlag(cmd))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
