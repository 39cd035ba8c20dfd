package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/pipeline"
)

// parcelsCommand lists the registry as a table.
func (c *CLI) parcelsCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "parcels",
		Short: "List parcels with their status and dimensions",
		Example: `  plotmap parcels
  plotmap parcels --status available`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := pipeline.DefaultPlan()
			ps := plan.Registry.All()
			if status != "" {
				st, err := parcel.ParseStatus(status)
				if err != nil {
					return err
				}
				ps = plan.Registry.Filter(st)
			}
			writeParcelTable(c.out, ps, plan.Resolver)
			fmt.Fprintln(c.out, parcelSummary(plan.Registry))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "only list parcels with this status (available, sold, builder)")
	_ = cmd.RegisterFlagCompletionFunc("status", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, st := range parcel.Statuses {
			out = append(out, string(st))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// parcelCommand prints one parcel's card and placement.
func (c *CLI) parcelCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "parcel <id>",
		Short:   "Show the card of one parcel",
		Example: "  plotmap parcel 40",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := perrors.ParseParcelID(args[0])
			if err != nil {
				return err
			}
			plan := pipeline.DefaultPlan()
			p, err := plan.Registry.Get(id)
			if err != nil {
				return err
			}
			cell, err := plan.Resolver.Resolve(id)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out, renderCard(engine.NewCard(p)))
			if place, ok := plan.Resolver.Placement(id); ok {
				fmt.Fprintln(c.out, StyleDim.Render(fmt.Sprintf("  %s sector, position %d", place.Sector, place.Index+1)))
			}
			fmt.Fprintln(c.out, StyleDim.Render(fmt.Sprintf("  cell %gx%g at (%g, %g)", cell.W, cell.H, cell.X, cell.Y)))
			return nil
		},
	}
}

func writeParcelTable(w io.Writer, ps []parcel.Parcel, res *layout.Resolver) {
	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		place, _ := res.Placement(p.ID)
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			string(p.Status),
			strconv.FormatFloat(p.AreaSqM, 'f', -1, 64),
			strconv.FormatFloat(p.AreaSqYd, 'f', -1, 64),
			fmt.Sprintf("%g×%g", p.WidthM, p.LengthM),
			string(p.Facing),
			place.Sector,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Plot", "Status", "m²", "yd²", "Dims", "Facing", "Sector").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 1 && row >= 0 && row < len(ps) {
				return statusStyle(ps[row].Status).Padding(0, 1)
			}
			return base
		})
	fmt.Fprintln(w, t.Render())
}

func parcelSummary(reg *parcel.Registry) string {
	var parts []string
	for _, st := range parcel.Statuses {
		parts = append(parts, fmt.Sprintf("%d %s", reg.Count(st), st.Label()))
	}
	line := StyleDim.Render(fmt.Sprintf("%d parcels: ", reg.Len()))
	for i, p := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleValue.Render(p)
	}
	return line
}
