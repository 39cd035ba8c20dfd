// Package sink writes engine snapshots and the layout document to files.
//
// # SVG Output
//
// [RenderSVG] draws the site features, every parcel cell in its displayed
// colour, the selection and search emphasis, and the status legend:
//
//	svg := sink.RenderSVG(eng.Snapshot(viewport))
//
// By default the plan is drawn in site coordinates, which is what the map
// looks like in the flat view without pan or zoom. [WithProjection] instead
// draws every rectangle as its projected quad through the snapshot's screen
// transform, so the file matches what a viewer of that viewport sees in
// the tilted or north-up modes.
//
// # Data Output
//
// [RenderJSON] and [RenderYAML] encode any value; [NewDocument] builds the
// layout document (sectors, cells, site features, palettes) that the
// layout command and the server export.
package sink
