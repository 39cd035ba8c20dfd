package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plotmap/pkg/core/anim"
	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/core/selection"
	"github.com/matzehuels/plotmap/pkg/core/view"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/observability"
)

// Options configures a new Engine. The zero value builds the default plan.
type Options struct {
	Registry *parcel.Registry // Defaults to parcel.Default()
	Sectors  []layout.Sector  // Defaults to layout.DefaultSectors()
	View     *view.Config     // Defaults to view.DefaultConfig()
	Stagger  time.Duration    // Defaults to anim.DefaultStagger
	Clock    anim.Clock       // Defaults to the wall clock
	Logger   *log.Logger      // Defaults to log.Default()
}

// Content is the size of the site drawing the transform centres on.
var Content = view.Size{W: layout.CanvasW, H: layout.CanvasH}

// Engine owns all mutable map state.
type Engine struct {
	reg    *parcel.Registry
	res    *layout.Resolver
	view   *view.Stack
	seq    *anim.Sequencer
	filter selection.Filter
	clock  anim.Clock
	logger *log.Logger

	statusOn  bool
	animStart time.Time
	closed    bool
}

// New builds an engine. It fails only if the layout is inconsistent with
// the registry.
func New(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		opts.Registry = parcel.Default()
	}
	if opts.Sectors == nil {
		opts.Sectors = layout.DefaultSectors()
	}
	cfg := view.DefaultConfig()
	if opts.View != nil {
		cfg = *opts.View
	}
	if opts.Clock == nil {
		opts.Clock = anim.SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	res, err := layout.New(opts.Registry, opts.Sectors)
	if err != nil {
		return nil, err
	}
	return &Engine{
		reg:    opts.Registry,
		res:    res,
		view:   view.NewStack(cfg),
		seq:    anim.New(opts.Registry, anim.WithClock(opts.Clock), anim.WithStagger(opts.Stagger)),
		clock:  opts.Clock,
		logger: opts.Logger,
	}, nil
}

// Default builds an engine over the default plan with the wall clock.
func Default() *Engine {
	e, err := New(Options{})
	if err != nil {
		panic(err)
	}
	return e
}

// =============================================================================
// Queries
// =============================================================================

// Registry returns the parcel registry.
func (e *Engine) Registry() *parcel.Registry { return e.reg }

// Resolver returns the layout resolver.
func (e *Engine) Resolver() *layout.Resolver { return e.res }

// Parcel returns the parcel with the given identity.
func (e *Engine) Parcel(id int) (parcel.Parcel, error) { return e.reg.Get(id) }

// Parcels returns every parcel in ascending identity order.
func (e *Engine) Parcels() []parcel.Parcel { return e.reg.All() }

// Cell returns the cell of id in site space.
func (e *Engine) Cell(id int) (layout.Cell, error) { return e.res.Resolve(id) }

// Site returns the static drawing around the parcels.
func (e *Engine) Site() layout.Site { return e.res.Site() }

// ScreenTransform returns the site → screen mapping for a viewport showing
// content of the given size.
func (e *Engine) ScreenTransform(viewport, content view.Size) view.Transform {
	return e.view.Transform(viewport, content)
}

// View returns the current view state.
func (e *Engine) View() view.State { return e.view.State() }

// DisplayedStatus returns the animated status of id.
func (e *Engine) DisplayedStatus(id int) (parcel.Status, error) {
	st, ok := e.seq.Displayed(id)
	if !ok {
		return "", perrors.New(perrors.ErrCodeParcelNotFound, "parcel %d not found", id)
	}
	return st, nil
}

// IsSelected reports whether id is the selected parcel.
func (e *Engine) IsSelected(id int) bool { return e.filter.IsSelected(id) }

// IsDimmed reports whether id is dimmed by the active search.
func (e *Engine) IsDimmed(id int) bool { return e.filter.IsDimmed(id) }

// MatchesSearch reports whether id matches the active search.
func (e *Engine) MatchesSearch(id int) bool { return e.filter.Matches(id) }

// Emphasis returns the combined selection/search emphasis of id.
func (e *Engine) Emphasis(id int) selection.Emphasis { return e.filter.Emphasis(id) }

// Selected returns the selected parcel, if any.
func (e *Engine) Selected() (int, bool) { return e.filter.Selected() }

// Search returns the active search text.
func (e *Engine) Search() string { return e.filter.Search() }

// StatusView reports whether the status view is on.
func (e *Engine) StatusView() bool { return e.statusOn }

// Animating reports whether a status sweep has pending steps.
func (e *Engine) Animating() bool { return e.seq.Active() }

// NextDue returns the delay until the next animation step.
func (e *Engine) NextDue() (time.Duration, bool) { return e.seq.NextDue() }

// Generation returns the current animation generation.
func (e *Engine) Generation() uint64 { return e.seq.Generation() }

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool { return e.closed }

// OnStatusChange registers fn to observe displayed status changes.
func (e *Engine) OnStatusChange(fn anim.ChangeFunc) { e.seq.OnChange(fn) }

// HitTest returns the parcel under a screen point of the given viewport.
func (e *Engine) HitTest(viewport view.Size, screen view.Point) (int, bool) {
	site, ok := e.view.Transform(viewport, Content).Invert(screen)
	if !ok {
		return 0, false
	}
	return e.res.HitTest(site.X, site.Y)
}

// =============================================================================
// Inputs
// =============================================================================

// PointerDown starts a drag at p.
func (e *Engine) PointerDown(p view.Point) { e.view.BeginDrag(p) }

// PointerMove continues an active drag.
func (e *Engine) PointerMove(p view.Point) { e.view.ContinueDrag(p) }

// PointerUp ends the drag.
func (e *Engine) PointerUp() { e.view.EndDrag() }

// PointerLeave ends the drag when the pointer leaves the map.
func (e *Engine) PointerLeave() { e.view.EndDrag() }

// Wheel applies one wheel tick.
func (e *Engine) Wheel(delta float64) { e.view.Wheel(delta) }

// ClickParcel toggles the selection of id.
func (e *Engine) ClickParcel(id int) error {
	if !e.reg.Has(id) {
		return perrors.New(perrors.ErrCodeParcelNotFound, "parcel %d not found", id)
	}
	e.filter.Select(id)
	return nil
}

// ClickBackground clears the selection.
func (e *Engine) ClickBackground() { e.filter.Clear() }

// ClickAt resolves a screen click to a parcel click or a background click.
func (e *Engine) ClickAt(viewport view.Size, screen view.Point) (int, bool) {
	id, ok := e.HitTest(viewport, screen)
	if !ok {
		e.filter.Clear()
		return 0, false
	}
	e.filter.Select(id)
	return id, true
}

// SearchInput replaces the search text.
func (e *Engine) SearchInput(text string) { e.filter.SetSearch(text) }

// SetStatusView turns the status view on (reveal) or off (conceal).
// Setting the current value does nothing.
func (e *Engine) SetStatusView(on bool) {
	if e.closed || on == e.statusOn {
		return
	}
	e.statusOn = on
	if on {
		e.seq.Reveal()
	} else {
		e.seq.Conceal()
	}
	e.animStart = e.clock.Now()
	observability.Engine().OnAnimationStart(string(e.seq.Phase()), e.seq.Generation(), e.seq.Pending())
	e.logger.Debug("status sweep", "phase", e.seq.Phase(), "generation", e.seq.Generation())
	e.Tick()
}

// ToggleStatusView flips the status view.
func (e *Engine) ToggleStatusView() { e.SetStatusView(!e.statusOn) }

// ToggleNorthUp flips the north-up orientation.
func (e *Engine) ToggleNorthUp() { e.view.ToggleNorthUp() }

// SetFlat switches to the 2D view.
func (e *Engine) SetFlat() { e.view.SetFlat() }

// SetTilted switches to the 3D view.
func (e *Engine) SetTilted() { e.view.SetTilted() }

// ToggleFlat flips between 2D and 3D.
func (e *Engine) ToggleFlat() { e.view.ToggleFlat() }

// SetZoom sets the zoom directly, clamped.
func (e *Engine) SetZoom(z float64) { e.view.SetZoom(z) }

// SetPan sets the pan offset directly.
func (e *Engine) SetPan(p view.Point) { e.view.SetPan(p) }

// SetMode sets the rotation mode directly.
func (e *Engine) SetMode(m view.Mode) { e.view.SetMode(m) }

// Reset restores the default view.
func (e *Engine) Reset() { e.view.Reset() }

// Tick applies every due animation step and returns how many were applied.
func (e *Engine) Tick() int {
	wasActive := e.seq.Active()
	n := e.seq.Advance()
	if wasActive && !e.seq.Active() {
		observability.Engine().OnAnimationComplete(string(e.seq.Phase()), e.seq.Generation(), e.clock.Now().Sub(e.animStart))
	}
	return n
}

// FinishAnimation applies every pending step at once.
func (e *Engine) FinishAnimation() int {
	wasActive := e.seq.Active()
	n := e.seq.Complete()
	if wasActive {
		observability.Engine().OnAnimationComplete(string(e.seq.Phase()), e.seq.Generation(), e.clock.Now().Sub(e.animStart))
	}
	return n
}

// Close cancels any animation and makes the engine inert to status changes.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.seq.Close()
	e.view.EndDrag()
}
