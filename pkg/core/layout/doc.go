// Package layout maps parcel identities to rectangular cells in site space.
//
// Site space is the undistorted plane of the drawing: x grows to the right,
// y grows downward, one unit is one SVG user unit on the 660×720 canvas.
//
// The plane is partitioned into named [Sector] values. Each sector owns an
// ordered list of identities and steps from its origin by (extent + gap) along
// one axis, so the whole plan is described by a dozen small tables rather than
// 109 hand-placed rectangles.
//
// # Building
//
// [New] computes every cell once into an arena indexed by identity and checks
// the partition: every registered identity must appear in exactly one sector
// and no two cells may overlap. Violations are construction bugs and return
// LAYOUT_INVALID. After construction, [Resolver.Resolve] is an O(1) lookup.
//
// # Click targeting
//
// [Resolver.HitTest] answers "which parcel is under this site point" without
// scanning every cell: it finds the sector whose bounds contain the point and
// computes the step index directly.
package layout
