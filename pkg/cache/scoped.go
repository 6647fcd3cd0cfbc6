package cache

// ScopedKeyer wraps a Keyer with a prefix so several backends can share one
// cache without colliding.
//
// Example usage:
//
//	// Keys for the staging vectorizer
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "https://staging.example.com|")
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

// FetchKey generates a prefixed key for a backend graph response.
func (k *ScopedKeyer) FetchKey(project, view string, opts FetchKeyOpts) string {
	return k.prefix + k.inner.FetchKey(project, view, opts)
}

// RenderKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(graphHash, opts)
}
