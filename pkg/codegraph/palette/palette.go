// Package palette derives display colours for graph nodes.
//
// Colours are deterministic: the same language always yields the same colour,
// so a language keeps its hue when its nodes are folded into a cluster and
// unfolded again. Well-known languages use fixed colours; anything else is
// hashed into a fixed set of hues.
package palette

import (
	"fmt"
	"hash/fnv"

	"github.com/matzehuels/codegraph/pkg/codegraph"
)

// Search-state colours.
const (
	Highlight = "#ffb000" // node matched the active search
	Dimmed    = "#3a3f47" // search active, node did not match
	Unknown   = "#8a8f98" // language "unknown"
)

var known = map[string]string{
	"javascript": "#f1e05a",
	"jsx":        "#f1e05a",
	"typescript": "#3178c6",
	"tsx":        "#3178c6",
	"python":     "#3572a5",
	"go":         "#00add8",
	"java":       "#b07219",
	"kotlin":     "#a97bff",
	"rust":       "#dea584",
	"ruby":       "#701516",
	"php":        "#4f5d95",
	"c":          "#555555",
	"cpp":        "#f34b7d",
	"csharp":     "#178600",
	"swift":      "#f05138",
	"shell":      "#89e051",
	"html":       "#e34c26",
	"css":        "#563d7c",
	"unknown":    Unknown,
}

// hues used for languages without a fixed colour.
var fallback = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4",
	"#46f0f0", "#f032e6", "#bcf60c", "#008080", "#9a6324",
}

// Language returns the colour for a language name.
func Language(lang string) string {
	if c, ok := known[lang]; ok {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(lang))
	return fallback[h.Sum32()%uint32(len(fallback))]
}

// Cluster returns the colour for a cluster of the given language: the
// language colour darkened so aggregates stand out from their members.
func Cluster(lang string) string {
	return shade(Language(lang), 0.7)
}

// ForNode returns the colour a node should be drawn with, taking search state
// into account. Clusters always keep their cluster colour.
func ForNode(n codegraph.Node) string {
	switch {
	case n.IsCluster:
		return Cluster(n.Language)
	case n.Highlighted:
		return Highlight
	case n.Dimmed:
		return Dimmed
	default:
		return Language(n.Language)
	}
}

// shade scales each RGB channel of a #rrggbb colour by f.
func shade(hex string, f float64) string {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return hex
	}
	scale := func(v int) int { return min(255, max(0, int(float64(v)*f))) }
	return fmt.Sprintf("#%02x%02x%02x", scale(r), scale(g), scale(b))
}
