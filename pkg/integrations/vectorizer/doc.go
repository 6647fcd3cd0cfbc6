// Package vectorizer fetches code-relationship graphs from the vectorization
// backend.
//
// # Endpoint
//
//	GET {base}/api/projects/{project}/graph/{view}?threshold=0.5&limit=200&languages=go,python
//
// The response is the raw graph payload documented in pkg/graph. Views name
// the kind of relationship graph: [ViewFunctions] for the function-call graph
// and [ViewComponents] for the component-relationship graph.
//
// # Caching
//
// Responses are cached by (base URL, project, view, threshold, limit,
// languages). Only bodies that decode as a graph payload are cached, so a
// malformed response is refetched next time rather than replayed.
//
// # Errors
//
// All failures are coded errors from pkg/errors. Transport errors and 5xx
// responses are retried with backoff before being returned.
package vectorizer
