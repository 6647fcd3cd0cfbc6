package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Keyer derives cache keys.
type Keyer interface {
	// FetchKey is the key of a backend graph response.
	FetchKey(project, view string, opts FetchKeyOpts) string

	// RenderKey is the key of a rendered artifact for a graph.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// FetchKeyOpts are the fetch parameters that change the response.
type FetchKeyOpts struct {
	Threshold float64  `json:"threshold"`
	Limit     int      `json:"limit"`
	Languages []string `json:"languages,omitempty"`
}

// RenderKeyOpts are the render parameters that change an artifact.
type RenderKeyOpts struct {
	Format    string  `json:"format"`
	Layout    string  `json:"layout"`
	Clustered bool    `json:"clustered"`
	MinSize   int     `json:"min_size"`
	Query     string  `json:"query,omitempty"`
	Detailed  bool    `json:"detailed,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FetchKey returns "fetch:<project>:<view>:<hash of opts>". Languages are
// lower-cased, deduplicated and sorted before hashing.
func (DefaultKeyer) FetchKey(project, view string, opts FetchKeyOpts) string {
	langs := make([]string, 0, len(opts.Languages))
	for _, l := range opts.Languages {
		langs = append(langs, strings.ToLower(strings.TrimSpace(l)))
	}
	slices.Sort(langs)
	opts.Languages = slices.Compact(langs)
	return hashKey(fmt.Sprintf("fetch:%s:%s", project, view), opts)
}

// RenderKey returns "render:<hash of graphHash and opts>".
func (DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
