package anim

import (
	"slices"
	"time"

	"github.com/matzehuels/plotmap/pkg/core/parcel"
)

// DefaultStagger is the delay between consecutive parcels of a sweep.
const DefaultStagger = 14 * time.Millisecond

// Phase names the sweep a sequencer is running or last ran.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseReveal  Phase = "reveal"
	PhaseConceal Phase = "conceal"
)

// Source provides the parcels to animate in ascending identity order.
// *parcel.Registry satisfies it.
type Source interface {
	All() []parcel.Parcel
}

// Step is one scheduled mutation of a sweep.
type Step struct {
	Offset time.Duration
	ID     int
	Target parcel.Status
}

// ChangeFunc observes a displayed status change.
type ChangeFunc func(id int, status parcel.Status)

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithClock sets the time source. The default is the wall clock.
func WithClock(c Clock) Option {
	return func(s *Sequencer) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithStagger sets the per-parcel delay. Non-positive values are ignored.
func WithStagger(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.stagger = d
		}
	}
}

// WithObserver registers fn to be called for every displayed status change.
func WithObserver(fn ChangeFunc) Option {
	return func(s *Sequencer) { s.onChange = fn }
}

// Sequencer owns the displayed status of every parcel.
// It is not safe for concurrent use; its owner serializes access.
type Sequencer struct {
	ids       []int
	truth     []parcel.Status
	displayed []parcel.Status
	pos       map[int]int

	steps []Step
	next  int
	start time.Time
	gen   uint64
	phase Phase

	closed   bool
	clock    Clock
	stagger  time.Duration
	onChange ChangeFunc
}

// New returns a sequencer with every parcel of src displayed neutral.
func New(src Source, opts ...Option) *Sequencer {
	ps := src.All()
	slices.SortFunc(ps, func(a, b parcel.Parcel) int { return a.ID - b.ID })
	s := &Sequencer{
		ids:       make([]int, len(ps)),
		truth:     make([]parcel.Status, len(ps)),
		displayed: make([]parcel.Status, len(ps)),
		pos:       make(map[int]int, len(ps)),
		phase:     PhaseIdle,
		clock:     SystemClock(),
		stagger:   DefaultStagger,
	}
	for i, p := range ps {
		s.ids[i] = p.ID
		s.truth[i] = p.Status
		s.displayed[i] = parcel.Neutral
		s.pos[p.ID] = i
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange replaces the change observer.
func (s *Sequencer) OnChange(fn ChangeFunc) { s.onChange = fn }

// Stagger returns the per-parcel delay.
func (s *Sequencer) Stagger() time.Duration { return s.stagger }

// Reveal cancels any sweep, resets every parcel to neutral, and schedules
// each parcel's true status at index × stagger.
func (s *Sequencer) Reveal() {
	if s.closed {
		return
	}
	s.cancel()
	for i := range s.displayed {
		s.set(i, parcel.Neutral)
	}
	s.schedule(PhaseReveal, func(i int) parcel.Status { return s.truth[i] })
}

// Conceal cancels any sweep and schedules each parcel back to neutral at
// index × stagger. Parcels keep what they show until their step is due.
func (s *Sequencer) Conceal() {
	if s.closed {
		return
	}
	s.cancel()
	s.schedule(PhaseConceal, func(int) parcel.Status { return parcel.Neutral })
}

// Advance applies, in order, every pending step whose offset has elapsed
// and returns how many were applied.
func (s *Sequencer) Advance() int {
	if s.closed || s.next >= len(s.steps) {
		return 0
	}
	elapsed := s.clock.Now().Sub(s.start)
	n := 0
	for s.next < len(s.steps) && s.steps[s.next].Offset <= elapsed {
		st := s.steps[s.next]
		s.set(s.pos[st.ID], st.Target)
		s.next++
		n++
	}
	return n
}

// Complete applies every pending step immediately.
func (s *Sequencer) Complete() int {
	if s.closed {
		return 0
	}
	n := len(s.steps) - s.next
	for ; s.next < len(s.steps); s.next++ {
		st := s.steps[s.next]
		s.set(s.pos[st.ID], st.Target)
	}
	return n
}

// NextDue returns the delay until the next pending step.
// ok is false when nothing is pending.
func (s *Sequencer) NextDue() (d time.Duration, ok bool) {
	if !s.Active() {
		return 0, false
	}
	due := s.start.Add(s.steps[s.next].Offset)
	return max(0, due.Sub(s.clock.Now())), true
}

// Active reports whether steps are pending.
func (s *Sequencer) Active() bool {
	return !s.closed && s.next < len(s.steps)
}

// Pending returns the number of steps not yet applied.
func (s *Sequencer) Pending() int {
	if s.closed {
		return 0
	}
	return len(s.steps) - s.next
}

// Phase returns the current or most recent sweep.
func (s *Sequencer) Phase() Phase { return s.phase }

// Generation identifies the current plan. It changes on every Reveal,
// Conceal and Close.
func (s *Sequencer) Generation() uint64 { return s.gen }

// Displayed returns the status parcel id currently shows.
func (s *Sequencer) Displayed(id int) (parcel.Status, bool) {
	i, ok := s.pos[id]
	if !ok {
		return "", false
	}
	return s.displayed[i], true
}

// State returns a copy of the displayed status of every parcel.
func (s *Sequencer) State() map[int]parcel.Status {
	m := make(map[int]parcel.Status, len(s.ids))
	for i, id := range s.ids {
		m[id] = s.displayed[i]
	}
	return m
}

// Steps returns the pending steps.
func (s *Sequencer) Steps() []Step {
	if s.closed {
		return nil
	}
	return slices.Clone(s.steps[s.next:])
}

// Close cancels any sweep. The sequencer is inert afterwards: sweeps,
// Advance and Complete do nothing, and the displayed state is frozen.
func (s *Sequencer) Close() {
	if s.closed {
		return
	}
	s.cancel()
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Sequencer) Closed() bool { return s.closed }

func (s *Sequencer) cancel() {
	s.gen++
	s.steps = nil
	s.next = 0
}

func (s *Sequencer) schedule(phase Phase, target func(i int) parcel.Status) {
	s.phase = phase
	s.start = s.clock.Now()
	s.steps = make([]Step, len(s.ids))
	for i, id := range s.ids {
		s.steps[i] = Step{
			Offset: time.Duration(i) * s.stagger,
			ID:     id,
			Target: target(i),
		}
	}
}

func (s *Sequencer) set(i int, st parcel.Status) {
	if s.displayed[i] == st {
		return
	}
	s.displayed[i] = st
	if s.onChange != nil {
		s.onChange(s.ids[i], st)
	}
}
