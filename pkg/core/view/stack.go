package view

import (
	"fmt"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// Mode is the rotation mode of the view.
type Mode string

const (
	ModeFlat    Mode = "flat"
	ModeTilted  Mode = "tilted"
	ModeNorthUp Mode = "north-up"
)

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeFlat, ModeTilted, ModeNorthUp:
		return m, nil
	}
	return "", perrors.New(perrors.ErrCodeInvalidInput, "unknown view mode %q (want flat, tilted or north-up)", s)
}

// Config bounds and parameterises a Stack.
type Config struct {
	MinZoom float64 // lower zoom clamp
	MaxZoom float64 // upper zoom clamp
	ZoomIn  float64 // factor per wheel tick towards the user (delta < 0)
	ZoomOut float64 // factor per wheel tick away from the user (delta > 0)
	Tilted  Tilt
	NorthUp Tilt
}

// DefaultConfig returns the bounds used by every surface unless configured.
func DefaultConfig() Config {
	return Config{
		MinZoom: 0.3,
		MaxZoom: 5,
		ZoomIn:  1.1,
		ZoomOut: 0.91,
		Tilted:  DefaultTilt,
		NorthUp: NorthUpTilt,
	}
}

// State is a read-only copy of the view.
type State struct {
	Pan      Point   `json:"pan" yaml:"pan"`
	Zoom     float64 `json:"zoom" yaml:"zoom"`
	Mode     Mode    `json:"mode" yaml:"mode"`
	NorthUp  bool    `json:"north_up" yaml:"north_up"`
	Dragging bool    `json:"dragging" yaml:"dragging"`
}

// Stack owns the view state and its gesture state machine.
// A Stack is not safe for concurrent use; its owner serializes access.
type Stack struct {
	cfg     Config
	pan     Point
	zoom    float64
	flat    bool
	northUp bool

	dragging bool
	anchor   Point
}

// NewStack returns a stack in the default tilted, non-north-up state.
func NewStack(cfg Config) *Stack {
	if cfg.MinZoom <= 0 || cfg.MaxZoom < cfg.MinZoom {
		d := DefaultConfig()
		cfg.MinZoom, cfg.MaxZoom = d.MinZoom, d.MaxZoom
	}
	if cfg.Tilted.Validate() != nil {
		cfg.Tilted = DefaultTilt
	}
	if cfg.NorthUp.Validate() != nil {
		cfg.NorthUp = NorthUpTilt
	}
	return &Stack{cfg: cfg, zoom: 1}
}

// State returns a copy of the current view.
func (s *Stack) State() State {
	return State{
		Pan:      s.pan,
		Zoom:     s.zoom,
		Mode:     s.Mode(),
		NorthUp:  s.northUp,
		Dragging: s.dragging,
	}
}

// Mode returns the effective rotation mode. North-up only shows while tilted.
func (s *Stack) Mode() Mode {
	switch {
	case s.flat:
		return ModeFlat
	case s.northUp:
		return ModeNorthUp
	default:
		return ModeTilted
	}
}

// Dragging reports whether a drag is in progress.
func (s *Stack) Dragging() bool { return s.dragging }

// BeginDrag records the anchor p − pan. Nothing moves yet.
func (s *Stack) BeginDrag(p Point) {
	if !p.finite() {
		return
	}
	s.dragging = true
	s.anchor = p.Sub(s.pan)
}

// ContinueDrag sets pan = p − anchor while a drag is active.
func (s *Stack) ContinueDrag(p Point) {
	if !s.dragging || !p.finite() {
		return
	}
	s.pan = p.Sub(s.anchor)
}

// EndDrag clears the drag. It is safe to call at any time.
func (s *Stack) EndDrag() { s.dragging = false }

// Wheel applies one wheel tick: delta > 0 zooms out, delta < 0 zooms in,
// zero and non-finite deltas are ignored. The result is clamped.
func (s *Stack) Wheel(delta float64) {
	switch {
	case !finite(delta) || delta == 0:
		return
	case delta > 0:
		s.SetZoom(s.zoom * s.cfg.ZoomOut)
	default:
		s.SetZoom(s.zoom * s.cfg.ZoomIn)
	}
}

// SetZoom sets the zoom factor, clamped to the configured bounds.
func (s *Stack) SetZoom(z float64) {
	if !finite(z) {
		return
	}
	s.zoom = min(s.cfg.MaxZoom, max(s.cfg.MinZoom, z))
}

// SetPan sets the pan offset directly.
func (s *Stack) SetPan(p Point) {
	if p.finite() {
		s.pan = p
	}
}

// ToggleNorthUp flips the north-up flag. Pan and zoom are untouched.
func (s *Stack) ToggleNorthUp() { s.northUp = !s.northUp }

// SetFlat switches to the 2D identity transform.
func (s *Stack) SetFlat() { s.flat = true }

// SetTilted switches to the 3D transform.
func (s *Stack) SetTilted() { s.flat = false }

// ToggleFlat flips between 2D and 3D.
func (s *Stack) ToggleFlat() { s.flat = !s.flat }

// SetMode applies m as if the matching toggles had been pressed.
func (s *Stack) SetMode(m Mode) {
	switch m {
	case ModeFlat:
		s.flat = true
	case ModeTilted:
		s.flat, s.northUp = false, false
	case ModeNorthUp:
		s.flat, s.northUp = false, true
	}
}

// Reset restores pan (0,0), zoom 1 and the tilted, non-north-up mode.
// An active drag is dropped too.
func (s *Stack) Reset() {
	s.pan = Point{}
	s.zoom = 1
	s.flat = false
	s.northUp = false
	s.dragging = false
}

// Tilt returns the perspective parameters of the current mode.
func (s *Stack) Tilt() Tilt {
	switch s.Mode() {
	case ModeFlat:
		return flatTilt
	case ModeNorthUp:
		return s.cfg.NorthUp
	default:
		return s.cfg.Tilted
	}
}

// Transform composes the site → screen mapping for a viewport showing
// content of the given size centred in it.
func (s *Stack) Transform(viewport, content Size) Transform {
	tilt := s.Tilt()
	vc := viewport.Center().Add(s.pan)
	cc := content.Center()
	m := Chain(
		Translate(vc.X, vc.Y, 0),
		Scale(s.zoom, s.zoom, 1),
		tilt.Matrix(),
		Translate(-cc.X, -cc.Y, 0),
	)
	return Transform{
		Matrix:   m,
		OuterCSS: fmt.Sprintf("translate(%gpx,%gpx) scale(%g)", s.pan.X, s.pan.Y, s.zoom),
		InnerCSS: tilt.CSS(),
	}
}
