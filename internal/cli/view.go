package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmap/pkg/engine"
	"github.com/matzehuels/plotmap/pkg/pipeline"
)

// viewCommand creates the view command for the interactive terminal map.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		statusView bool
		selectID   int
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore the map interactively in the terminal",
		Long: `Explore the site plan in the terminal.

Drag with the mouse or use the arrow keys to pan, scroll or press +/- to
zoom and click a plot to see its card. Press s to sweep the sales status
in, / to search by plot number and q to quit.`,
		Example: `  plotmap view
  plotmap view --status-view --select 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), statusView, selectID)
		},
	}

	cmd.Flags().BoolVar(&statusView, "status-view", false, "start with the status view on")
	cmd.Flags().IntVar(&selectID, "select", 0, "start with a parcel selected")

	return cmd
}

// runView runs the viewer until the user quits or ctx is cancelled.
func (c *CLI) runView(ctx context.Context, statusView bool, selectID int) error {
	plan := pipeline.DefaultPlan()
	vc := c.Config.ViewStack()
	eng, err := engine.New(engine.Options{
		Registry: plan.Registry,
		Sectors:  plan.Resolver.Sectors(),
		View:     &vc,
		Stagger:  c.Config.Animation.Stagger.Duration,
		Logger:   c.Logger,
	})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer eng.Close()

	if selectID != 0 {
		if err := eng.ClickParcel(selectID); err != nil {
			return err
		}
	}
	eng.SetStatusView(statusView)

	p := tea.NewProgram(NewMapModel(eng),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
