package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmap/pkg/core/view"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/pipeline"
)

// defaultOutputBase names render outputs when --output is not given.
const defaultOutputBase = "plotmap"

// renderCommand creates the render command for snapshotting the map.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		panStr     string
		viewStr    string
		noCache    bool
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a map snapshot to SVG, PNG, PDF, JSON, YAML or DOT",
		Long: `Render the map in a given view state.

The state flags drive a fresh engine the way a user would: pick a view mode,
zoom and pan, turn the status view on (the reveal animation runs to
completion), select a parcel and search. The resulting snapshot is rendered
in every requested format.

With --projection the SVG is drawn through the screen transform, as the
viewer shows it; otherwise it is the flat site drawing.

Rendered artifacts are cached; --no-cache disables the cache and --refresh
re-renders and overwrites cached entries.`,
		Example: `  plotmap render --status-view -f svg,png
  plotmap render --select 40 --mode north-up --projection -o plot40.svg
  plotmap render --search 10 --zoom 1.5 --pan 40,-20 -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			if len(formats) == 0 {
				formats = []string{pipeline.FormatSVG}
			}
			opts.Formats = formats
			if panStr != "" {
				if opts.Pan, err = parsePoint(panStr); err != nil {
					return err
				}
			}
			if viewStr != "" {
				if opts.Viewport, err = parseSize(viewStr); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", pipeline.FormatSVG, "output format(s): svg, png, pdf, json, yaml, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.StatusView, "status-view", false, "colour parcels by sales status")
	cmd.Flags().IntVar(&opts.Select, "select", 0, "select a parcel by id")
	cmd.Flags().StringVar(&opts.Search, "search", "", "search text")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "view mode: flat, tilted (default), north-up")
	cmd.Flags().Float64Var(&opts.Zoom, "zoom", 0, "zoom factor (clamped to the configured bounds)")
	cmd.Flags().StringVar(&panStr, "pan", "", "pan offset in pixels, as x,y")
	cmd.Flags().StringVar(&viewStr, "viewport", "", "viewport size in pixels, as WxH (default 660x720)")
	cmd.Flags().BoolVar(&opts.Projection, "projection", false, "draw the SVG through the screen transform")
	cmd.Flags().BoolVar(&opts.NoLegend, "no-legend", false, "omit the status legend")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include status, area and facing in dot labels")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even if cached")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formatNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(view.ModeFlat), string(view.ModeTilted), string(view.ModeNorthUp)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runRender renders the requested state and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	opts.Progress = spinner.Observe
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(output, opts.Formats)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		c.Logger.Debugf("Generated %s: %d bytes", path, len(result.Artifacts[format]))
	}

	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.Parcels, len(result.Artifacts), result.CacheHit)
	printFormatSources(spinner.Cached(), spinner.Rendered())
	if card := result.Snapshot.Card; card != nil {
		printNewline()
		fmt.Println(renderCard(*card))
	}
	return nil
}

// printFormatSources lists which formats came from the cache and which
// were rendered, when a run mixed both.
func printFormatSources(cached, rendered []string) {
	if len(cached) == 0 || len(rendered) == 0 {
		return
	}
	printKeyValue("  cached", strings.Join(cached, ", "))
	printKeyValue("  rendered", strings.Join(rendered, ", "))
}

// outputPaths maps each format to its output file. A single format writes
// to output verbatim; several formats share output as a base path with any
// known format extension stripped.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips a known format extension from output.
func basePath(output string) string {
	if output == "" {
		return defaultOutputBase
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// parsePoint parses "x,y".
func parsePoint(s string) (view.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return view.Point{}, perrors.New(perrors.ErrCodeInvalidInput, "invalid point %q (want x,y)", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return view.Point{}, perrors.New(perrors.ErrCodeInvalidInput, "invalid point %q (want x,y)", s)
	}
	return view.Point{X: x, Y: y}, nil
}

// parseSize parses "WxH" with positive dimensions.
func parseSize(s string) (view.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return view.Size{}, perrors.New(perrors.ErrCodeInvalidInput, "invalid size %q (want WxH)", s)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return view.Size{}, perrors.New(perrors.ErrCodeInvalidInput, "invalid size %q (want positive WxH)", s)
	}
	return view.Size{W: w, H: h}, nil
}

// formatNames lists the valid formats for help and completion.
func formatNames() []string {
	names := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}
