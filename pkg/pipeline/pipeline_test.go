package pipeline

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/plotmap/pkg/cache"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/observability"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"yaml", false},
		{"dot", false},
		{"gif", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !perrors.Is(err, perrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, perrors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" svg, PNG,svg,,json")
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	if want := []string{"svg", "png", "json"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ParseFormats = %v, want %v", got, want)
	}
	if _, err := ParseFormats("svg,gif"); err == nil {
		t.Error("ParseFormats accepted gif")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options: %v", err)
	}
	if !reflect.DeepEqual(o.Formats, []string{FormatSVG}) || o.Viewport != DefaultViewport || o.Scale != DefaultScale {
		t.Errorf("defaults = %+v", o)
	}

	bad := []Options{
		{Mode: "isometric"},
		{Formats: []string{"gif"}},
		{Select: -1},
	}
	for _, o := range bad {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("ValidateAndSetDefaults(%+v) expected error", o)
		}
	}
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExecute(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()
	opts := Options{
		Formats:    []string{FormatSVG, FormatJSON, FormatYAML, FormatDOT},
		StatusView: true,
		Select:     40,
		Search:     "4",
		Mode:       "north-up",
		Zoom:       1.5,
	}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheHit {
		t.Error("first run should miss the cache")
	}
	for _, f := range opts.Formats {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if res.Stats.Parcels != 109 || res.StateHash == "" {
		t.Errorf("result = %+v", res.Stats)
	}

	snap := res.Snapshot
	if !snap.StatusView || snap.Animating || snap.Selected != 40 || snap.Search != "4" || snap.View.Zoom != 1.5 {
		t.Errorf("snapshot state = status %v animating %v selected %d search %q zoom %v",
			snap.StatusView, snap.Animating, snap.Selected, snap.Search, snap.View.Zoom)
	}

	var decoded engine.Snapshot
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &decoded); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if decoded.Card == nil || decoded.Card.Title != "Plot #40" {
		t.Errorf("json card = %+v", decoded.Card)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), `class="legend"`) {
		t.Error("svg lacks legend with the status view on")
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), `fillcolor="#e05252"`) {
		t.Error("dot should use status colours")
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheHit {
		t.Error("second run should hit the cache")
	}
	if string(again.Artifacts[FormatSVG]) != string(res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteDifferentStateMisses(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{Select: 5}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, Options{Select: 6})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("a different selection must not reuse the cached artifact")
	}
}

func TestExecuteProgress(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()

	var got []Progress
	opts := Options{
		Formats:  []string{FormatSVG, FormatJSON},
		Progress: func(p Progress) { got = append(got, p) },
	}
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}
	want := []Progress{
		{Stage: StageState},
		{Stage: StageRender, Formats: []string{FormatSVG, FormatJSON}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("first run progress = %+v, want %+v", got, want)
	}

	got = nil
	opts.Formats = []string{FormatSVG, FormatDOT}
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}
	want = []Progress{
		{Stage: StageState},
		{Stage: StageCached, Formats: []string{FormatSVG}},
		{Stage: StageRender, Formats: []string{FormatDOT}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("second run progress = %+v, want %+v", got, want)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{Select: 500}); !perrors.Is(err, perrors.ErrCodeParcelNotFound) {
		t.Errorf("Select 500: %v", err)
	}
	if _, err := r.Execute(ctx, Options{Formats: []string{"gif"}}); !perrors.Is(err, perrors.ErrCodeInvalidFormat) {
		t.Errorf("gif: %v", err)
	}
}

func TestExportLayout(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()

	for _, f := range []string{FormatJSON, FormatYAML, FormatDOT, FormatSVG} {
		t.Run(f, func(t *testing.T) {
			data, hit, err := r.ExportLayout(ctx, f, false)
			if err != nil || hit || len(data) == 0 {
				t.Fatalf("ExportLayout(%s) = %d bytes, hit %v, err %v", f, len(data), hit, err)
			}
			if _, hit, _ := r.ExportLayout(ctx, f, false); !hit {
				t.Errorf("second ExportLayout(%s) missed the cache", f)
			}
		})
	}

	if _, _, err := r.ExportLayout(ctx, FormatPNG, false); !perrors.Is(err, perrors.ErrCodeUnsupported) {
		t.Errorf("ExportLayout(png) = %v, want UNSUPPORTED", err)
	}
}

type countingCacheHooks struct {
	mu               sync.Mutex
	hits, miss, sets int
}

func (c *countingCacheHooks) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits++
}

func (c *countingCacheHooks) OnCacheMiss(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.miss++
}

func (c *countingCacheHooks) OnCacheSet(context.Context, string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
}

type countingRenderHooks struct {
	starts, completes int
	last              time.Duration
}

func (c *countingRenderHooks) OnRenderStart(context.Context, []string) { c.starts++ }
func (c *countingRenderHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, _ error) {
	c.completes++
	c.last = d
}

func TestHooks(t *testing.T) {
	ch := &countingCacheHooks{}
	rh := &countingRenderHooks{}
	observability.SetCacheHooks(ch)
	observability.SetRenderHooks(rh)
	defer observability.Reset()

	r := newRunner(t)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}

	if ch.miss != 2 || ch.sets != 2 || ch.hits != 2 {
		t.Errorf("cache hooks = %d hits, %d misses, %d sets; want 2/2/2", ch.hits, ch.miss, ch.sets)
	}
	if rh.starts != 1 || rh.completes != 1 {
		t.Errorf("render hooks = %d starts, %d completes; want 1/1", rh.starts, rh.completes)
	}
}
