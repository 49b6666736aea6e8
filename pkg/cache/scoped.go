package cache

// ScopedKeyer wraps a Keyer with a prefix so that several workspaces can
// share one backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ws:"+Hash([]byte(root))[:12]+":")
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

func (k *ScopedKeyer) DumpKey(manifestHash, toolchain string) string {
	return k.prefix + k.inner.DumpKey(manifestHash, toolchain)
}

func (k *ScopedKeyer) GraphKey(workspaceHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(workspaceHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(graphHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, format)
}
