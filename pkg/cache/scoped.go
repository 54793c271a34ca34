package cache

// ScopedKeyer wraps a Keyer with a prefix, giving callers that share one
// backend separate namespaces. The server scopes its keys this way so that
// CLI and server entries in one Redis instance never collide.
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
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

// GraphKey generates a prefixed key for parsed hypergraphs.
func (k *ScopedKeyer) GraphKey(format, sourceHash string) string {
	return k.prefix + k.inner.GraphKey(format, sourceHash)
}

// DecompKey generates a prefixed key for decompositions.
func (k *ScopedKeyer) DecompKey(graphHash string, opts DecompKeyOpts) string {
	return k.prefix + k.inner.DecompKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(treeHash, opts)
}
