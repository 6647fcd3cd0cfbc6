// Package pipeline provides the code graph pipeline shared by the CLI, the
// explorer and the server.
//
// This package implements the fetch → transform → cluster → layout →
// highlight → render sequence. Centralizing it keeps every entry point on the
// same defaults and the same stage order.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Fetch: Load a graph payload from the backend or a saved file ([Source])
//  2. Arrange: Normalize, cluster by language, and compute positions
//  3. Highlight: Flag nodes matching the search query
//  4. Render: Produce JSON, DOT or SVG output
//
// Each stage can be run on its own. The controller package drives the same
// stage functions one event at a time.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(source, cache, nil, logger)
//	opts := pipeline.Options{
//	    Project: "acme",
//	    Cluster: true,
//	    Layout:  "hierarchical",
//	    Formats: []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/pkg/cache"
	"github.com/matzehuels/codegraph/pkg/codegraph"
	"github.com/matzehuels/codegraph/pkg/codegraph/cluster"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/codegraph/transform"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/integrations/vectorizer"
)

// DefaultMinSize is the language group size above which nodes are clustered.
const DefaultMinSize = cluster.DefaultMinSize

// DefaultLayout is the layout used when Options.Layout is empty.
const DefaultLayout = string(layout.DefaultStrategy)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists every output format in a stable order.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG}

// Options configures one pipeline run. It doubles as the JSON body of the
// server's render endpoint.
type Options struct {
	Project   string   `json:"project"`
	View      string   `json:"view,omitempty"`
	Threshold float64  `json:"threshold"`
	Limit     int      `json:"limit,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"`

	InferLanguage bool `json:"infer_language,omitempty"`

	Cluster bool `json:"cluster"`
	MinSize int  `json:"min_size,omitempty"`

	Layout string `json:"layout,omitempty"`
	Search string `json:"search,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result is everything a run produced.
type Result struct {
	Snapshot  transform.Snapshot
	Graph     codegraph.Graph // clustered, positioned and highlighted
	GraphHash string          // content hash of the JSON rendering
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats are sizes and per-stage timings of a run.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Clusters   int
	Matches    int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	RenderHit bool // every artifact came from cache
}

// ValidateFormat rejects anything not in [Formats].
func ValidateFormat(format string) error {
	if slices.Contains(Formats, format) {
		return nil
	}
	return cgerrors.New(cgerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
}

// ValidateFormats checks each of formats; an empty list is valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults fills defaults for every stage and validates the
// result. Calling it again on the filled options changes nothing.
func (o *Options) ValidateAndSetDefaults() error {
	for _, check := range []func() error{o.ValidateForFetch, o.ValidateForLayout, o.ValidateForRender} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForFetch fills the query defaults and checks the query.
func (o *Options) ValidateForFetch() error {
	o.ensureLogger()
	q := o.Query()
	if err := q.Validate(); err != nil {
		return err
	}
	o.View, o.Limit = q.View, q.Limit
	return nil
}

// ValidateForLayout fills the cluster size and layout defaults and checks
// them.
func (o *Options) ValidateForLayout() error {
	o.ensureLogger()
	if o.MinSize == 0 {
		o.MinSize = DefaultMinSize
	}
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.MinSize < 1 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "min_size must be at least 1, got %d", o.MinSize)
	}
	_, err := layout.ParseStrategy(o.Layout)
	return err
}

// ValidateForRender defaults the formats to JSON and checks them.
func (o *Options) ValidateForRender() error {
	o.ensureLogger()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) ensureLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Query returns the backend query described by the fetch options.
func (o *Options) Query() vectorizer.Query {
	return vectorizer.Query{
		Project:   o.Project,
		View:      o.View,
		Threshold: o.Threshold,
		Limit:     o.Limit,
		Languages: o.Languages,
	}.WithDefaults()
}

// Strategy returns the layout strategy, falling back to the default when
// the name does not parse.
func (o *Options) Strategy() layout.Strategy {
	s, err := layout.ParseStrategy(o.Layout)
	if err != nil {
		return layout.DefaultStrategy
	}
	return s
}

// TransformOptions returns the normalization options.
func (o *Options) TransformOptions() transform.Options {
	return transform.Options{InferLanguage: o.InferLanguage}
}

// ClusterOptions returns the clustering options.
func (o *Options) ClusterOptions() cluster.Options {
	return cluster.Options{MinSize: o.MinSize}
}

// RenderKeyOpts returns cache key options for artifact rendering.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:    format,
		Layout:    o.Layout,
		Clustered: o.Cluster,
		MinSize:   o.MinSize,
		Query:     o.Search,
		Detailed:  o.Detailed,
	}
}

func (o *Options) String() string {
	return fmt.Sprintf("%s/%s threshold=%g limit=%d cluster=%t layout=%s", o.Project, o.View, o.Threshold, o.Limit, o.Cluster, o.Layout)
}
