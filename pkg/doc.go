// Package pkg provides the libraries behind plotmap, an interactive site-plan
// viewer for a land subdivision.
//
// # Overview
//
// Plotmap shows every parcel of the subdivision on a tilted, pannable,
// zoomable map. Turning on the status view sweeps each parcel from its
// neutral colour to its sales colour one step at a time. Parcels can be
// selected and searched by number. The pkg directory is organized into
// four areas:
//
//  1. [core] - Domain logic (parcels, layout, view transforms, animation, selection)
//  2. [engine] - The single owner of all mutable map state
//  3. [render] and [pipeline] - Snapshots and exports in SVG, PNG, PDF, JSON, YAML and DOT
//  4. [server] - HTTP and WebSocket sessions driving one engine each
//
// # Architecture
//
// Input flows one way through the engine:
//
//	pointer / wheel / click / search / toggles
//	         ↓
//	    [engine.Engine.Dispatch]
//	         ↓
//	    [core/view] stack, [core/selection] filter, [core/anim] sequencer
//	         ↓
//	    [engine.Snapshot] (parcels, displayed status, emphasis, transform)
//	         ↓
//	    [render/sink] SVG/JSON/YAML, [render/nodelink] DOT, [render] PNG/PDF
//
// # Quick Start
//
// Render the map with the status view on:
//
//	eng := engine.Default()
//	eng.SetStatusView(true)
//	eng.FinishAnimation()
//	snap := eng.Snapshot(engine.Content)
//	svg := sink.RenderSVG(snap)
//
// Or let the pipeline run it with caching:
//
//	r := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, _ := r.Execute(ctx, pipeline.Options{StatusView: true, Formats: []string{"svg", "png"}})
//
// # Main Packages
//
// [core/parcel] - The immutable parcel registry: identity, dimensions,
// facing and sales status.
//
// [core/layout] - Sectors, the deterministic parcel-to-cell resolver, hit
// testing and the static site drawing.
//
// [core/view] - Pan, zoom and perspective modes composed into a single
// site-to-screen transform, with its inverse for hit testing.
//
// [core/anim] - The staggered status sweep. Every sweep has a generation;
// steps of a superseded generation never apply.
//
// [core/selection] - The single selection and the numeric search filter.
//
// [cache] - File (zstd) and Redis artifact caches behind one interface.
//
// [config] - TOML settings for the view, animation, server and cache.
//
// [observability] - Hooks for engine, cache and server events.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/core
// [core/parcel]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/core/parcel
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/core/layout
// [core/view]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/core/view
// [core/anim]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/core/anim
// [core/selection]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/core/selection
// [engine]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/engine
// [render]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/plotmap/pkg/observability
package pkg
