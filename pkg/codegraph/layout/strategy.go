package layout

import (
	"strings"

	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
)

// Strategy names a layout algorithm.
type Strategy string

// Layout strategies.
const (
	Force        Strategy = "force"
	Circular     Strategy = "circular"
	Hierarchical Strategy = "hierarchical"
	Grid         Strategy = "grid"
)

// DefaultStrategy is used when none is configured.
const DefaultStrategy = Force

var strategies = []Strategy{Force, Circular, Hierarchical, Grid}

// Strategies returns all supported strategies.
func Strategies() []Strategy {
	return append([]Strategy(nil), strategies...)
}

// ParseStrategy validates a strategy name. Matching is case-insensitive and
// an empty name selects [DefaultStrategy].
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return DefaultStrategy, nil
	}
	name := Strategy(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range strategies {
		if st == name {
			return st, nil
		}
	}
	return "", cgerrors.New(cgerrors.ErrCodeInvalidLayout, "unknown layout %q (want force, circular, hierarchical or grid)", s)
}
