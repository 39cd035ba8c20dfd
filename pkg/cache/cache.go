// Package cache stores rendered plotmap artifacts.
//
// The site plan is static, so every export is a pure function of the
// engine state it was rendered from. Keys are derived from a hash of that
// state plus the render options, which makes invalidation unnecessary:
// entries only expire through their TTL.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries under a directory, used by the CLI
//   - [RedisCache]: shared cache for plotmap serve
//   - [NullCache]: caching disabled
//
// Key construction lives behind [Keyer] so the server can scope keys per
// deployment with [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the data for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs by entry kind.
const (
	TTLSite     = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// SiteKey keys an export of the static site plan (json, yaml, dot).
	SiteKey(siteHash, format string) string

	// ArtifactKey keys a rendered snapshot.
	ArtifactKey(stateHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Projection bool    `json:"projection"`
	Legend     bool    `json:"legend"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Scale      float64 `json:"scale,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
}

// DefaultKeyer is the unscoped Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the unscoped Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SiteKey returns "site:<hash>".
func (DefaultKeyer) SiteKey(siteHash, format string) string {
	return hashKey("site", siteHash, format)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(stateHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", stateHash, opts)
}

var _ Keyer = DefaultKeyer{}
