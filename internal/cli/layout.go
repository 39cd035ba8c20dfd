package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmap/pkg/pipeline"
)

// layoutCommand creates the layout command for exporting the static plan.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Export the site plan layout",
		Long: `Export the static site plan: every parcel with its cell, sector and index,
the sector bounds and the site drawing.

Formats:
  json, yaml  layout document
  dot         Graphviz graph of the sector sequencing order
  svg         the plan with the status view off

Without --output the export is written to stdout.`,
		Example: `  plotmap layout -f yaml
  plotmap layout -f dot --detailed -o plan.dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), format, output, detailed, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "export format: json, yaml, dot, svg")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include status, area and facing in dot labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout exports the plan and writes it to output or stdout.
func (c *CLI) runLayout(ctx context.Context, format, output string, detailed, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	data, cacheHit, err := runner.ExportLayout(ctx, format, detailed)
	if err != nil {
		return fmt.Errorf("export layout: %w", err)
	}
	c.Logger.Debug("exported layout", "format", format, "bytes", len(data), "cached", cacheHit)

	if output == "" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	prog.done("Exported layout")

	printSuccess("Layout exported")
	printFile(output)
	printStats(runner.Plan.Registry.Len(), 1, cacheHit)
	printNewline()
	printNextStep("Render a view", appName+" render --status-view -f svg,png")
	return nil
}
