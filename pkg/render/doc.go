// Package render turns engine snapshots into files.
//
// # Overview
//
// Rendering is split by concern:
//
//   - [styles]: colour palettes and the legend
//   - [sink]: SVG, JSON and YAML output of a snapshot or the layout document
//   - [nodelink]: Graphviz diagram of the sector sequencing
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg):
//
//	svg := sink.RenderSVG(snap)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [styles]: github.com/matzehuels/plotmap/pkg/render/styles
// [sink]: github.com/matzehuels/plotmap/pkg/render/sink
// [nodelink]: github.com/matzehuels/plotmap/pkg/render/nodelink
package render
