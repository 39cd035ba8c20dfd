package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plotmap/pkg/cache"
	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
	"github.com/matzehuels/plotmap/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeSite     = "site"
	keyTypeArtifact = "artifact"
)

// Runner renders with caching. The CLI and the server share one.
//
// The Runner is stateless except for the cache, the plan and the logger.
// Multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Plan   Plan

	// TTL is the lifetime of rendered artifacts. Zero uses cache.TTLArtifact.
	TTL time.Duration

	// View configures the engines Execute builds. Nil uses view.DefaultConfig().
	View *view.Config
}

// NewRunner creates a runner over the default plan.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Plan:   DefaultPlan(),
	}
}

// Execute builds an engine in the requested state and renders it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	opts.report(StageState)
	stateStart := time.Now()
	e, err := engine.New(engine.Options{
		Registry: r.Plan.Registry,
		Sectors:  r.Plan.Resolver.Sectors(),
		View:     r.View,
		Logger:   r.Logger,
	})
	if err != nil {
		return nil, err
	}
	defer e.Close()

	if err := opts.Apply(e); err != nil {
		return nil, err
	}
	snap := e.Snapshot(opts.Viewport)

	result := &Result{Snapshot: snap}
	result.Stats.Parcels = len(snap.Parcels)
	result.Stats.StateTime = time.Since(stateStart)

	r.Logger.Debug("built engine state", "opts", opts.String(), "duration", result.Stats.StateTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderSnapshot(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheHit = hit
	result.StateHash, _ = cache.HashJSON(snap)
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderSnapshot renders snap in every requested format, serving what it
// can from the cache. hit is true only if every artifact was cached.
func (r *Runner) RenderSnapshot(ctx context.Context, snap engine.Snapshot, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	stateHash, err := cache.HashJSON(snap)
	if err != nil {
		return nil, false, fmt.Errorf("hash snapshot: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(stateHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, key, keyTypeArtifact); ok {
				artifacts[format] = data
				opts.report(StageCached, format)
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	opts.report(StageRender, missing...)

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(snap, r.Plan, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		r.store(ctx, r.Keyer.ArtifactKey(stateHash, opts.ArtifactKeyOpts(format)), data, r.artifactTTL(), keyTypeArtifact)
	}
	return artifacts, false, nil
}

// ExportLayout renders the static plan with caching.
func (r *Runner) ExportLayout(ctx context.Context, format string, detailed bool) ([]byte, bool, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}
	doc, err := cache.HashJSON(struct {
		Parcels  any
		Sectors  any
		Detailed bool
	}{r.Plan.Registry.All(), r.Plan.Resolver.Sectors(), detailed})
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.SiteKey(doc, format)
	if data, ok := r.lookup(ctx, key, keyTypeSite); ok {
		return data, true, nil
	}

	data, err := ExportLayout(r.Plan, format, detailed)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, data, cache.TTLSite, keyTypeSite)
	return data, false, nil
}

func (r *Runner) artifactTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLArtifact
}

// lookup reads key from the cache. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key string, data []byte, ttl time.Duration, keyType string) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
