// Package engine ties the parcel registry, layout resolver, view stack,
// status sequencer and selection filter into one owned state object.
//
// An [Engine] is what every presentation surface talks to. Surfaces read the
// geometry, transform, displayed status and emphasis of each parcel through
// query methods or a [Snapshot], and feed user input back through named input
// methods or [Engine.Dispatch], which routes an [Event] through a static table
// keyed by [EventKind]. The same Event JSON is the WebSocket protocol of the
// server.
//
// Engines are single-threaded: one goroutine owns an engine and serializes
// input, animation ticks and queries. The terminal viewer does this in its
// bubbletea update loop; the server runs one loop goroutine per session.
package engine
