package cache

// Keyer derives cache keys. Every key is "<kind>:<sha256 of its inputs>".
type Keyer interface {
	// GraphKey addresses the hypergraph parsed from input text.
	GraphKey(format, sourceHash string) string
	// DecompKey addresses a decomposition of the hypergraph with the given
	// content hash.
	DecompKey(graphHash string, opts DecompKeyOpts) string
	// ArtifactKey addresses a rendering of the decomposition with the given
	// content hash.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// DecompKeyOpts holds every option that changes a decomposition.
type DecompKeyOpts struct {
	Algorithm      string  `json:"algorithm"`
	Width          int     `json:"width"`
	Seed           uint64  `json:"seed"`
	MaxRecursion   int     `json:"max_recursion,omitempty"`
	BIP            bool    `json:"bip,omitempty"`
	MinImprovement float64 `json:"min_improvement,omitempty"`
	Shrink         bool    `json:"shrink,omitempty"`
	Reduce         bool    `json:"reduce,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendering.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Detailed bool    `json:"detailed,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(format, sourceHash string) string {
	return hashKey("graph", format, sourceHash)
}

// DecompKey implements Keyer.
func (DefaultKeyer) DecompKey(graphHash string, opts DecompKeyOpts) string {
	return hashKey("decomp", graphHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}

var _ Keyer = DefaultKeyer{}
