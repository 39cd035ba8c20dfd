// Package anim sequences the staggered status reveal/conceal sweep.
//
// The displayed status of every parcel starts neutral. [Sequencer.Reveal]
// resets all parcels to neutral and schedules, in ascending identity order,
// one step per parcel that sets its true status at index × stagger.
// [Sequencer.Conceal] schedules the reverse sweep back to neutral without a
// reset.
//
// There are no per-parcel timers. A sequencer owns a single ordered step list
// and a generation counter; starting a new sweep or closing the sequencer
// bumps the generation and drops the old list before anything else happens,
// so no step of a cancelled sweep can ever be applied. Time comes from an
// injected [Clock] and steps are applied by [Sequencer.Advance], which makes
// the whole thing deterministic under test.
//
// Drivers (the terminal viewer, the server session loop) arm one timer for
// [Sequencer.NextDue], tag it with [Sequencer.Generation] and drop any tick
// whose generation no longer matches.
package anim
