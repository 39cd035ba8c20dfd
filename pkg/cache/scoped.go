package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can
// share one Redis without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "plotmap:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SiteKey generates a prefixed key for site plan exports.
func (k *ScopedKeyer) SiteKey(siteHash, format string) string {
	return k.prefix + k.inner.SiteKey(siteHash, format)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(stateHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(stateHash, opts)
}
