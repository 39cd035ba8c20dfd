package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/render"
	"github.com/matzehuels/plotmap/pkg/render/styles"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds status, area and facing to node labels.
	Detailed bool
	// StatusColors fills nodes with the status palette instead of the
	// neutral one.
	StatusColors bool
}

// ToDOT converts the placed registry to Graphviz DOT. Positions are in
// points with the y axis flipped, so the diagram keeps the plan's
// orientation.
func ToDOT(reg *parcel.Registry, res *layout.Resolver, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=9, fixedsize=true, pin=true];\n")
	buf.WriteString("  edge [arrowsize=0.4, color=\"#9a8060\"];\n")
	buf.WriteString("\n")

	for _, p := range reg.All() {
		cell, err := res.Resolve(p.ID)
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", strconv.Itoa(p.ID), strings.Join(fmtAttrs(p, cell, opts), ", "))
	}

	for _, s := range res.Sectors() {
		if len(s.IDs) < 2 {
			continue
		}
		fmt.Fprintf(&buf, "\n  // %s\n", s.Name)
		for i := 1; i < len(s.IDs); i++ {
			fmt.Fprintf(&buf, "  %q -> %q;\n", strconv.Itoa(s.IDs[i-1]), strconv.Itoa(s.IDs[i]))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p parcel.Parcel, detailed bool) string {
	if !detailed {
		return strconv.Itoa(p.ID)
	}
	return fmt.Sprintf("%d\n%s\n%gm²\n%s", p.ID, p.Status.Label(), p.AreaSqM, p.Facing)
}

// fmtAttrs pins the node at its cell centre. Graphviz measures node sizes
// in inches (72 points).
func fmtAttrs(p parcel.Parcel, c layout.Cell, opts Options) []string {
	col := styles.For(p.Status, opts.StatusColors)
	h := c.H
	if opts.Detailed {
		h *= 2
	}
	return []string{
		fmt.Sprintf("label=%q", fmtLabel(p, opts.Detailed)),
		fmt.Sprintf("pos=\"%g,%g!\"", c.CenterX(), layout.CanvasH-c.CenterY()),
		fmt.Sprintf("width=%g", c.W/72),
		fmt.Sprintf("height=%g", h/72),
		fmt.Sprintf("fillcolor=%q", col.Fill),
		fmt.Sprintf("color=%q", col.Stroke),
		fmt.Sprintf("fontcolor=%q", col.Text),
	}
}

// RenderSVG renders DOT to SVG with the neato engine.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.SetLayout(graphviz.NEATO).Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
