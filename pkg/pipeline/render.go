package pipeline

import (
	"fmt"

	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/render"
	"github.com/matzehuels/plotmap/pkg/render/nodelink"
	"github.com/matzehuels/plotmap/pkg/render/sink"
)

// Plan is the static part of the map: the registry and its placement.
type Plan struct {
	Registry *parcel.Registry
	Resolver *layout.Resolver
}

// DefaultPlan returns the built-in site plan.
func DefaultPlan() Plan {
	reg := parcel.Default()
	return Plan{Registry: reg, Resolver: layout.Default(reg)}
}

// Render generates output artifacts for a snapshot in the requested formats.
// The SVG is rendered once and shared by the raster formats.
func Render(snap engine.Snapshot, plan Plan, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	svgFor := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(snap, svgOptions(plan, opts)...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgFor()
		case FormatPNG:
			data, err = render.ToPNG(svgFor(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(svgFor())
		case FormatJSON:
			data, err = sink.RenderJSON(snap)
		case FormatYAML:
			data, err = sink.RenderYAML(snap)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(plan.Registry, plan.Resolver, nodelink.Options{
				Detailed:     opts.Detailed,
				StatusColors: snap.StatusView,
			}))
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(plan Plan, opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithSite(plan.Resolver.Site())}
	if opts.Projection {
		svgOpts = append(svgOpts, sink.WithProjection())
	}
	if opts.NoLegend {
		svgOpts = append(svgOpts, sink.WithoutLegend())
	}
	return svgOpts
}

// ExportLayout renders the static site plan in one of json, yaml, dot or
// svg. The svg is the flat plan with every parcel in its neutral colour.
func ExportLayout(plan Plan, format string, detailed bool) ([]byte, error) {
	switch format {
	case FormatJSON:
		return sink.RenderJSON(sink.NewDocument(plan.Registry, plan.Resolver))
	case FormatYAML:
		return sink.RenderYAML(sink.NewDocument(plan.Registry, plan.Resolver))
	case FormatDOT:
		return []byte(nodelink.ToDOT(plan.Registry, plan.Resolver, nodelink.Options{Detailed: detailed})), nil
	case FormatSVG:
		e, err := engine.New(engine.Options{Registry: plan.Registry, Sectors: plan.Resolver.Sectors()})
		if err != nil {
			return nil, err
		}
		defer e.Close()
		return sink.RenderSVG(e.Snapshot(DefaultViewport), sink.WithSite(plan.Resolver.Site())), nil
	}
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	return nil, perrors.New(perrors.ErrCodeUnsupported, "layout export does not support %s", format)
}
