// Package pipeline renders plotmap snapshots into output artifacts.
//
// The CLI render command and the server's plan endpoint share this code so
// both produce byte-identical files for the same engine state.
//
// # Architecture
//
// A run has two stages:
//
//  1. State: build an engine, apply the requested view, status view,
//     selection and search, and take a snapshot
//  2. Render: turn the snapshot into each requested format
//
// Rendered artifacts are cached by the hash of the snapshot plus the
// options that change the bytes, so a repeated request for the same state
// is served from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Formats:    []string{"svg", "png"},
//	    StatusView: true,
//	    Mode:       "tilted",
//	})
//	svg := result.Artifacts["svg"]
//
// Render a snapshot taken elsewhere:
//
//	artifacts, hit, err := runner.RenderSnapshot(ctx, snap, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plotmap/pkg/cache"
	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// DefaultViewport is the screen size snapshots are taken for when none is
// given. It equals the site drawing, so the flat view fills it exactly.
var DefaultViewport = engine.Content

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatYAML: true,
	FormatDOT:  true,
}

// formatOrder lists formats in the order they are reported.
var formatOrder = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatYAML, FormatDOT}

// =============================================================================
// Options
// =============================================================================

// Options describe the engine state to render and the outputs to produce.
type Options struct {
	// State options
	StatusView bool       `json:"status_view,omitempty"`
	Select     int        `json:"select,omitempty"`
	Search     string     `json:"search,omitempty"`
	Mode       string     `json:"mode,omitempty"`
	Zoom       float64    `json:"zoom,omitempty"`
	Pan        view.Point `json:"pan,omitempty"`
	Viewport   view.Size  `json:"viewport,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Projection bool     `json:"projection,omitempty"`
	NoLegend   bool     `json:"no_legend,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"` // dot labels
	Scale      float64  `json:"scale,omitempty"`    // png
	Refresh    bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger    `json:"-"`
	Progress func(Progress) `json:"-"` // called from the goroutine running Execute

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the engine state that was rendered.
	Snapshot engine.Snapshot

	// StateHash is the content hash of the snapshot.
	StateHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheHit reports whether every artifact came from the cache.
	CacheHit bool
}

// Stage names a step of a pipeline run.
type Stage string

// Pipeline stages, in the order they are reported.
const (
	StageState  Stage = "state"  // building the engine state
	StageCached Stage = "cached" // one format served from the cache
	StageRender Stage = "render" // rendering the formats that missed
)

// Progress reports one step of a pipeline run.
type Progress struct {
	Stage   Stage
	Formats []string
}

func (o *Options) report(stage Stage, formats ...string) {
	if o.Progress != nil {
		o.Progress(Progress{Stage: stage, Formats: formats})
	}
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Parcels    int
	StateTime  time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return perrors.New(perrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatOrder, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Mode != "" {
		if _, err := view.ParseMode(o.Mode); err != nil {
			return err
		}
	}
	if o.Select < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "select must be a parcel id, got %d", o.Select)
	}
	if o.Viewport.W <= 0 || o.Viewport.H <= 0 {
		o.Viewport = DefaultViewport
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Apply drives e into the requested state. The status animation is run to
// completion so the snapshot shows final colours.
func (o *Options) Apply(e *engine.Engine) error {
	if o.Mode != "" {
		m, err := view.ParseMode(o.Mode)
		if err != nil {
			return err
		}
		e.SetMode(m)
	}
	if o.Zoom != 0 {
		e.SetZoom(o.Zoom)
	}
	if o.Pan != (view.Point{}) {
		e.SetPan(o.Pan)
	}
	if o.StatusView {
		e.SetStatusView(true)
		e.FinishAnimation()
	}
	if o.Select != 0 {
		if err := e.ClickParcel(o.Select); err != nil {
			return err
		}
	}
	if o.Search != "" {
		e.SearchInput(o.Search)
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Projection: o.Projection,
		Legend:     !o.NoLegend,
		Width:      o.Viewport.W,
		Height:     o.Viewport.H,
	}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatDOT:
		k.Detailed = o.Detailed
	}
	return k
}

// String summarises the options for logs.
func (o *Options) String() string {
	return fmt.Sprintf("formats=%s mode=%s status=%v select=%d search=%q",
		strings.Join(o.Formats, ","), o.Mode, o.StatusView, o.Select, o.Search)
}
