// Package graph provides the wire formats at both edges of the graph engine.
//
// # Architecture
//
// The package sits at the serialization boundary between the engine's
// working model and the collaborators on either side of it:
//
//   - [RawGraph]: what the vectorization backend returns (fetch input)
//   - [RenderGraph]: what the force-graph renderer consumes (render output)
//   - pkg/codegraph.Graph: the internal working graph
//
// Use [FromGraph] to convert a working graph to render output and the
// transform package to turn a RawGraph into a working graph.
//
// # Fetch Input
//
//	{
//	  "nodes": [{"id": "f1", "name": "parseJSON", "type": "function",
//	             "language": "javascript", "file": "src/parse.js",
//	             "complexity": 4, "centrality": 2.5, "code": "..."}],
//	  "links": [{"source": "f1", "target": "f2", "relationship": "calls", "weight": 1}]
//	}
//
// Both "nodes" and "links" must be present; a body missing either is a
// MALFORMED_RESPONSE error. Every node field except id is optional.
//
// # Render Output
//
//	{
//	  "nodes": [{"id": "f1", "name": "parseJSON", "language": "javascript",
//	             "val": 4, "color": "#f1e05a", "x": 50, "y": 0}],
//	  "links": [{"source": "f1", "target": "f2", "value": 1}]
//	}
//
// # Link Endpoints
//
// Force-graph renderers replace link endpoint ids with the node objects they
// resolve to. When such a payload comes back, [Endpoint] accepts either form:
//
//	"source": "f1"
//	"source": {"id": "f1", "x": 12.5, "y": -3}
//
// and always serializes as the plain id.
//
// # Concurrency
//
// All functions are safe for concurrent use; none retain their arguments.
package graph
