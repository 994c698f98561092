package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/model"
)

// Run starts the program and blocks until the user quits. Session
// transitions are forwarded to the program for as long as it runs.
func Run(ctx context.Context, d Deps) error {
	p := tea.NewProgram(New(ctx, d), tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := d.Session.Subscribe(func(u *model.User) {
		p.Send(SessionMsg{User: u})
	})
	defer unsubscribe()
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
