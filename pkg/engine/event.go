package engine

import (
	"slices"

	"github.com/matzehuels/plotmap/pkg/core/view"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/observability"
)

// EventKind names an input event. The values are the wire names of the
// WebSocket protocol.
type EventKind string

const (
	EventPointerDown     EventKind = "pointer_down"
	EventPointerMove     EventKind = "pointer_move"
	EventPointerUp       EventKind = "pointer_up"
	EventPointerLeave    EventKind = "pointer_leave"
	EventWheel           EventKind = "wheel"
	EventClickParcel     EventKind = "click_parcel"
	EventClickBackground EventKind = "click_background"
	EventClickAt         EventKind = "click_at"
	EventSearch          EventKind = "search"
	EventStatusView      EventKind = "status_view"
	EventToggleNorthUp   EventKind = "toggle_north_up"
	EventSetFlat         EventKind = "set_flat"
	EventSetTilted       EventKind = "set_tilted"
	EventToggleFlat      EventKind = "toggle_flat"
	EventReset           EventKind = "reset"
)

// Event is one input from a presentation surface.
// Only the fields relevant to Kind are read.
type Event struct {
	Kind     EventKind  `json:"kind"`
	X        float64    `json:"x,omitempty"`
	Y        float64    `json:"y,omitempty"`
	Delta    float64    `json:"delta,omitempty"`
	ID       int        `json:"id,omitempty"`
	Text     string     `json:"text,omitempty"`
	On       *bool      `json:"on,omitempty"`
	Viewport *view.Size `json:"viewport,omitempty"`
}

func (ev Event) point() view.Point { return view.Point{X: ev.X, Y: ev.Y} }

type handler func(*Engine, Event) error

// handlers is the static routing table of Dispatch.
var handlers = map[EventKind]handler{
	EventPointerDown:     func(e *Engine, ev Event) error { e.PointerDown(ev.point()); return nil },
	EventPointerMove:     func(e *Engine, ev Event) error { e.PointerMove(ev.point()); return nil },
	EventPointerUp:       func(e *Engine, _ Event) error { e.PointerUp(); return nil },
	EventPointerLeave:    func(e *Engine, _ Event) error { e.PointerLeave(); return nil },
	EventWheel:           func(e *Engine, ev Event) error { e.Wheel(ev.Delta); return nil },
	EventClickParcel:     func(e *Engine, ev Event) error { return e.ClickParcel(ev.ID) },
	EventClickBackground: func(e *Engine, _ Event) error { e.ClickBackground(); return nil },
	EventClickAt:         clickAt,
	EventSearch:          func(e *Engine, ev Event) error { e.SearchInput(ev.Text); return nil },
	EventStatusView:      statusView,
	EventToggleNorthUp:   func(e *Engine, _ Event) error { e.ToggleNorthUp(); return nil },
	EventSetFlat:         func(e *Engine, _ Event) error { e.SetFlat(); return nil },
	EventSetTilted:       func(e *Engine, _ Event) error { e.SetTilted(); return nil },
	EventToggleFlat:      func(e *Engine, _ Event) error { e.ToggleFlat(); return nil },
	EventReset:           func(e *Engine, _ Event) error { e.Reset(); return nil },
}

func clickAt(e *Engine, ev Event) error {
	if ev.Viewport == nil {
		return perrors.New(perrors.ErrCodeInvalidEvent, "click_at requires a viewport")
	}
	e.ClickAt(*ev.Viewport, ev.point())
	return nil
}

func statusView(e *Engine, ev Event) error {
	if ev.On == nil {
		e.ToggleStatusView()
	} else {
		e.SetStatusView(*ev.On)
	}
	return nil
}

// EventKinds returns every routable kind, sorted.
func EventKinds() []EventKind {
	kinds := make([]EventKind, 0, len(handlers))
	for k := range handlers {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Dispatch routes ev to its input method. Unknown kinds yield INVALID_EVENT
// and a closed engine yields CLOSED.
func (e *Engine) Dispatch(ev Event) error {
	err := e.dispatch(ev)
	observability.Engine().OnEvent(string(ev.Kind), err)
	if err != nil {
		e.logger.Debug("event rejected", "kind", ev.Kind, "err", err)
	}
	return err
}

func (e *Engine) dispatch(ev Event) error {
	if e.closed {
		return perrors.New(perrors.ErrCodeClosed, "engine closed")
	}
	h, ok := handlers[ev.Kind]
	if !ok {
		return perrors.New(perrors.ErrCodeInvalidEvent, "unknown event kind %q", ev.Kind)
	}
	return h(e, ev)
}
