// Package view owns the pan × zoom × perspective transform of the map.
//
// A [Stack] is a small state machine over gesture intents: drags move the pan
// offset, wheel ticks scale the zoom multiplicatively within a clamp, and the
// flat/tilted/north-up toggles pick the perspective parameters. Gestures never
// fail. Non-finite input is ignored and out-of-range zoom is clamped.
//
// # Composition
//
// The site → screen mapping mirrors how a browser composes the two nested
// transformed boxes of the map:
//
//	T(viewportCentre + pan) · S(zoom) · P(d) · Rx · Rz · S(k) · T(t) · T(−contentCentre)
//
// Pan and zoom act in screen space around the viewport centre. The
// perspective/rotation part acts on the content around its own centre, so
// panning feels screen-relative whatever the tilt. [Transform.Apply] projects
// a site point with the homogeneous divide and [Transform.Invert] intersects a
// screen ray with the z=0 site plane, which is what click targeting needs.
package view
