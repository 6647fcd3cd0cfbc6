// Package pkg provides the core libraries for codegraph.
//
// # Overview
//
// Codegraph fetches a code-relationship graph (functions, classes and modules
// linked by calls and similarity) from a vectorization backend and prepares it
// for interactive viewing. The data flow is:
//
//	vectorizer backend or snapshot file
//	         ↓
//	    [graph] wire types (decode, validate)
//	         ↓
//	    [codegraph/transform] normalize into a [codegraph.Graph]
//	         ↓
//	    [codegraph/cluster] collapse large language groups
//	         ↓
//	    [codegraph/layout] position nodes
//	         ↓
//	    [codegraph/search] highlight matches
//	         ↓
//	    JSON / DOT / SVG, or the interactive [controller]
//
// # Main Packages
//
// [codegraph] holds the immutable graph value and its transforms. Every
// transform returns a new graph.
//
// [controller] is the state machine behind the explorer and the server: it
// applies filter, search, layout and click events and publishes each change.
//
// [pipeline] runs the same stages one-shot for the CLI with caching of
// fetched graphs and rendered artifacts.
//
// ## Infrastructure
//
// [cache] stores backend responses and artifacts on disk or in Redis.
// [integrations] and [integrations/vectorizer] talk to the backend with
// retries from [httputil]. [observability] exposes hook points for pipeline
// stages and frame-rate samples from [perf]. [errors] defines the coded
// errors shared by all of them.
//
// [graph]: github.com/matzehuels/codegraph/pkg/graph
// [codegraph]: github.com/matzehuels/codegraph/pkg/codegraph
// [codegraph.Graph]: github.com/matzehuels/codegraph/pkg/codegraph#Graph
// [codegraph/transform]: github.com/matzehuels/codegraph/pkg/codegraph/transform
// [codegraph/cluster]: github.com/matzehuels/codegraph/pkg/codegraph/cluster
// [codegraph/layout]: github.com/matzehuels/codegraph/pkg/codegraph/layout
// [codegraph/search]: github.com/matzehuels/codegraph/pkg/codegraph/search
// [controller]: github.com/matzehuels/codegraph/pkg/controller
// [pipeline]: github.com/matzehuels/codegraph/pkg/pipeline
// [cache]: github.com/matzehuels/codegraph/pkg/cache
// [integrations]: github.com/matzehuels/codegraph/pkg/integrations
// [integrations/vectorizer]: github.com/matzehuels/codegraph/pkg/integrations/vectorizer
// [httputil]: github.com/matzehuels/codegraph/pkg/httputil
// [observability]: github.com/matzehuels/codegraph/pkg/observability
// [perf]: github.com/matzehuels/codegraph/pkg/perf
// [errors]: github.com/matzehuels/codegraph/pkg/errors
package pkg
