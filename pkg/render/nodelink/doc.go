// Package nodelink renders the sector sequencing of a site plan as a
// Graphviz diagram.
//
// # Overview
//
// Every parcel becomes a node pinned at its cell centre, and each sector
// contributes a chain of edges in sequencing order. The result shows at a
// glance how the layout resolver walks the plan, which is handy when
// editing sector definitions.
//
// # Usage
//
//	dot := nodelink.ToDOT(reg, res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] with the neato engine
// for in-process SVG rendering. PDF and PNG conversion requires librsvg
// (rsvg-convert).
package nodelink
