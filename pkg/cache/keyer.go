package cache

// Keyer derives cache keys.
type Keyer interface {
	// DumpKey identifies dump-package output for a manifest.
	DumpKey(manifestHash, toolchain string) string
	// GraphKey identifies the edge list of a whole workspace pass.
	GraphKey(workspaceHash string, opts GraphKeyOpts) string
	// ArtifactKey identifies a rendered graph.
	ArtifactKey(graphHash, format string) string
}

// GraphKeyOpts are the options that change a graph pass result.
type GraphKeyOpts struct {
	Strategies []string `json:"strategies"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) DumpKey(manifestHash, toolchain string) string {
	return hashKey("dump", manifestHash, toolchain)
}

func (DefaultKeyer) GraphKey(workspaceHash string, opts GraphKeyOpts) string {
	return hashKey("graph", workspaceHash, opts)
}

func (DefaultKeyer) ArtifactKey(graphHash, format string) string {
	return hashKey("artifact", graphHash, format)
}
