package engine

import (
	"testing"
	"time"

	"github.com/matzehuels/plotmap/pkg/core/anim"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/core/selection"
	"github.com/matzehuels/plotmap/pkg/core/view"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/observability"
)

var viewport = view.Size{W: 1280, H: 800}

func newTestEngine(t *testing.T) (*Engine, *anim.ManualClock) {
	t.Helper()
	clk := anim.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	e, err := New(Options{Clock: clk})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	return e, clk
}

func TestEndToEndReveal(t *testing.T) {
	e, clk := newTestEngine(t)

	e.SetStatusView(true)
	clk.Add(5*anim.DefaultStagger + time.Millisecond)
	e.Tick()

	if st, _ := e.DisplayedStatus(5); st != parcel.Builder {
		t.Errorf("parcel 5 = %s, want builder", st)
	}
	if st, _ := e.DisplayedStatus(109); st != parcel.Neutral {
		t.Errorf("parcel 109 = %s, want neutral", st)
	}

	clk.Add(109 * anim.DefaultStagger)
	e.Tick()
	for _, p := range e.Parcels() {
		if st, _ := e.DisplayedStatus(p.ID); st != p.Status {
			t.Errorf("parcel %d = %s, want %s", p.ID, st, p.Status)
		}
	}
	if e.Animating() {
		t.Error("still animating after sweep")
	}
}

func TestStatusViewCancellation(t *testing.T) {
	e, clk := newTestEngine(t)

	e.SetStatusView(true)
	clk.Add(20 * anim.DefaultStagger)
	e.Tick()
	e.SetStatusView(false)

	transient := false
	e.OnStatusChange(func(id int, st parcel.Status) {
		if st != parcel.Neutral {
			transient = true
		}
	})
	for i := 0; i < 200; i++ {
		clk.Add(anim.DefaultStagger)
		e.Tick()
	}
	if transient {
		t.Error("a parcel showed its true status after the status view was turned off")
	}
	for _, p := range e.Parcels() {
		if st, _ := e.DisplayedStatus(p.ID); st != parcel.Neutral {
			t.Errorf("parcel %d = %s, want neutral", p.ID, st)
		}
	}
}

func TestSetStatusViewSameValueIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	gen := e.Generation()
	e.SetStatusView(false)
	if e.Generation() != gen {
		t.Error("SetStatusView(false) while off started a sweep")
	}
	e.ToggleStatusView()
	if !e.StatusView() || e.Generation() == gen {
		t.Error("ToggleStatusView did not start a reveal")
	}
}

func TestDispatchTable(t *testing.T) {
	on := true
	tests := []struct {
		name  string
		ev    Event
		check func(t *testing.T, e *Engine)
	}{
		{
			name: "pointer drag",
			ev:   Event{Kind: EventPointerDown, X: 10, Y: 10},
			check: func(t *testing.T, e *Engine) {
				_ = e.Dispatch(Event{Kind: EventPointerMove, X: 30, Y: 5})
				_ = e.Dispatch(Event{Kind: EventPointerLeave})
				_ = e.Dispatch(Event{Kind: EventPointerMove, X: 90, Y: 90})
				if got := e.View().Pan; got != (view.Point{X: 20, Y: -5}) {
					t.Errorf("pan = %+v", got)
				}
			},
		},
		{
			name: "wheel",
			ev:   Event{Kind: EventWheel, Delta: -100},
			check: func(t *testing.T, e *Engine) {
				if z := e.View().Zoom; z != 1.1 {
					t.Errorf("zoom = %v", z)
				}
			},
		},
		{
			name: "click parcel",
			ev:   Event{Kind: EventClickParcel, ID: 5},
			check: func(t *testing.T, e *Engine) {
				if !e.IsSelected(5) {
					t.Error("5 not selected")
				}
				_ = e.Dispatch(Event{Kind: EventClickBackground})
				if _, ok := e.Selected(); ok {
					t.Error("background click kept selection")
				}
			},
		},
		{
			name: "search",
			ev:   Event{Kind: EventSearch, Text: "10"},
			check: func(t *testing.T, e *Engine) {
				if !e.IsDimmed(3) || e.IsDimmed(104) || !e.MatchesSearch(100) {
					t.Error("search predicates wrong")
				}
			},
		},
		{
			name: "status view explicit",
			ev:   Event{Kind: EventStatusView, On: &on},
			check: func(t *testing.T, e *Engine) {
				if !e.StatusView() {
					t.Error("status view not on")
				}
			},
		},
		{
			name: "status view toggle",
			ev:   Event{Kind: EventStatusView},
			check: func(t *testing.T, e *Engine) {
				if !e.StatusView() {
					t.Error("status view not toggled on")
				}
			},
		},
		{
			name: "view modes",
			ev:   Event{Kind: EventToggleNorthUp},
			check: func(t *testing.T, e *Engine) {
				if e.View().Mode != view.ModeNorthUp {
					t.Errorf("mode = %s", e.View().Mode)
				}
				_ = e.Dispatch(Event{Kind: EventSetFlat})
				if e.View().Mode != view.ModeFlat {
					t.Errorf("mode = %s", e.View().Mode)
				}
				_ = e.Dispatch(Event{Kind: EventToggleFlat})
				_ = e.Dispatch(Event{Kind: EventSetTilted})
				_ = e.Dispatch(Event{Kind: EventReset})
				if e.View().Mode != view.ModeTilted {
					t.Errorf("mode after reset = %s", e.View().Mode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			if err := e.Dispatch(tt.ev); err != nil {
				t.Fatalf("Dispatch(%s): %v", tt.ev.Kind, err)
			}
			tt.check(t, e)
		})
	}
}

func TestDispatchErrors(t *testing.T) {
	e, _ := newTestEngine(t)

	tests := []struct {
		name string
		ev   Event
		code perrors.Code
	}{
		{"unknown kind", Event{Kind: "teleport"}, perrors.ErrCodeInvalidEvent},
		{"empty kind", Event{}, perrors.ErrCodeInvalidEvent},
		{"unknown parcel", Event{Kind: EventClickParcel, ID: 999}, perrors.ErrCodeParcelNotFound},
		{"click_at without viewport", Event{Kind: EventClickAt, X: 1, Y: 1}, perrors.ErrCodeInvalidEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.Dispatch(tt.ev); !perrors.Is(err, tt.code) {
				t.Errorf("Dispatch() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEveryKindRouted(t *testing.T) {
	if got := len(EventKinds()); got != 15 {
		t.Errorf("EventKinds() has %d entries, want 15", got)
	}
}

func TestClickAtProjectedCenter(t *testing.T) {
	for _, mode := range []view.Mode{view.ModeFlat, view.ModeTilted, view.ModeNorthUp} {
		t.Run(string(mode), func(t *testing.T) {
			e, _ := newTestEngine(t)
			e.SetMode(mode)
			e.SetZoom(1.4)
			e.SetPan(view.Point{X: -30, Y: 15})

			c, _ := e.Cell(42)
			tr := e.ScreenTransform(viewport, Content)
			screen := tr.Apply(view.Point{X: c.CenterX(), Y: c.CenterY()})

			id, ok := e.ClickAt(viewport, screen)
			if !ok || id != 42 {
				t.Fatalf("ClickAt = %d, %v; want 42", id, ok)
			}
			if !e.IsSelected(42) {
				t.Error("42 not selected")
			}

			if _, ok := e.ClickAt(viewport, view.Point{X: -5000, Y: -5000}); ok {
				t.Error("far click hit a parcel")
			}
			if _, ok := e.Selected(); ok {
				t.Error("background click kept selection")
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	e, _ := newTestEngine(t)
	_ = e.ClickParcel(5)
	e.SearchInput("5")

	snap := e.Snapshot(viewport)
	if len(snap.Parcels) != 109 {
		t.Fatalf("snapshot has %d parcels", len(snap.Parcels))
	}
	if snap.Selected != 5 || snap.Card == nil || snap.Card.Title != "Plot #5" {
		t.Errorf("selection/card = %d %+v", snap.Selected, snap.Card)
	}

	byID := map[int]ParcelView{}
	for _, pv := range snap.Parcels {
		byID[pv.ID] = pv
	}
	want := map[int]selection.Emphasis{5: selection.Selected, 15: selection.Matched, 7: selection.Dimmed}
	for id, em := range want {
		if byID[id].Emphasis != em {
			t.Errorf("parcel %d emphasis = %s, want %s", id, byID[id].Emphasis, em)
		}
	}
	if byID[1].Displayed != parcel.Neutral || byID[1].Cell.W == 0 {
		t.Errorf("parcel 1 view = %+v", byID[1])
	}
	if snap.Transform.InnerCSS == "" || snap.Content != Content {
		t.Error("transform missing from snapshot")
	}
}

func TestSelectedCard(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, ok := e.SelectedCard(); ok {
		t.Fatal("card without selection")
	}
	_ = e.ClickParcel(5)
	card, ok := e.SelectedCard()
	if !ok {
		t.Fatal("no card for selection")
	}
	want := Card{
		Number: 5, Title: "Plot #5", Status: parcel.Builder, Badge: "Builder",
		Area: "135 m²", AreaSqYd: "161 yd²", Dims: "5.5×16m", Facing: parcel.South,
	}
	if card != want {
		t.Errorf("card = %+v, want %+v", card, want)
	}
	if f := card.Fields(); len(f) != 4 || f[2][0] != "Dims" {
		t.Errorf("Fields() = %v", f)
	}
}

func TestCloseStopsAnimation(t *testing.T) {
	e, clk := newTestEngine(t)
	e.SetStatusView(true)
	e.Close()

	clk.Add(time.Hour)
	if n := e.Tick(); n != 0 {
		t.Errorf("Tick after Close applied %d steps", n)
	}
	if err := e.Dispatch(Event{Kind: EventReset}); !perrors.Is(err, perrors.ErrCodeClosed) {
		t.Errorf("Dispatch after Close = %v, want CLOSED", err)
	}
	e.SetStatusView(false)
	if !e.StatusView() {
		t.Error("status view changed after Close")
	}
}

type countingHooks struct {
	observability.NoopEngineHooks
	events, starts, completes int
}

func (h *countingHooks) OnEvent(string, error)                             { h.events++ }
func (h *countingHooks) OnAnimationStart(string, uint64, int)              { h.starts++ }
func (h *countingHooks) OnAnimationComplete(string, uint64, time.Duration) { h.completes++ }

func TestEngineHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetEngineHooks(h)
	defer observability.Reset()

	e, clk := newTestEngine(t)
	_ = e.Dispatch(Event{Kind: EventStatusView})
	clk.Add(time.Hour)
	e.Tick()

	if h.events != 1 || h.starts != 1 || h.completes != 1 {
		t.Errorf("hooks = %+v", h)
	}
}

func TestNewRejectsBadLayout(t *testing.T) {
	reg, _ := parcel.Build(parcel.Spec{Count: 200})
	if _, err := New(Options{Registry: reg}); !perrors.Is(err, perrors.ErrCodeLayoutInvalid) {
		t.Errorf("New with uncovered registry = %v, want LAYOUT_INVALID", err)
	}
}
