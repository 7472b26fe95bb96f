package browse

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/catalog"
)

// Start runs the catalog browser until the user quits or the context is
// cancelled.
func Start(ctx context.Context, cat *catalog.Catalog) error {
	p := tea.NewProgram(New(cat), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "error running catalog browser")
	}
	return nil
}
