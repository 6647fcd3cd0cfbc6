package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
)

// =============================================================================
// Fetch Input API
// =============================================================================

// UnmarshalRaw decodes a backend response body.
// A body that is not JSON, or that lacks "nodes" or "links", yields a
// MALFORMED_RESPONSE error. Empty arrays are valid.
func UnmarshalRaw(data []byte) (RawGraph, error) {
	var envelope struct {
		Nodes *[]RawNode `json:"nodes"`
		Links *[]RawLink `json:"links"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return RawGraph{}, cgerrors.Wrap(cgerrors.ErrCodeMalformedResponse, err, "decode graph response")
	}
	if envelope.Nodes == nil {
		return RawGraph{}, cgerrors.New(cgerrors.ErrCodeMalformedResponse, "response missing \"nodes\"")
	}
	if envelope.Links == nil {
		return RawGraph{}, cgerrors.New(cgerrors.ErrCodeMalformedResponse, "response missing \"links\"")
	}
	return RawGraph{Nodes: *envelope.Nodes, Links: *envelope.Links}, nil
}

// ReadRaw decodes a backend response from r. See [UnmarshalRaw].
func ReadRaw(r io.Reader) (RawGraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return RawGraph{}, cgerrors.Wrap(cgerrors.ErrCodeFetch, err, "read graph response")
	}
	return UnmarshalRaw(data)
}

// ReadRawFile reads a saved backend response from a JSON file.
func ReadRawFile(path string) (RawGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawGraph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRaw(f)
}

// MarshalRaw encodes a RawGraph as indented JSON. Nil slices encode as [].
func MarshalRaw(g RawGraph) ([]byte, error) {
	if g.Nodes == nil {
		g.Nodes = []RawNode{}
	}
	if g.Links == nil {
		g.Links = []RawLink{}
	}
	return marshalIndent(g)
}

// WriteRawFile writes a RawGraph to a JSON file.
// The file is created with 0644 permissions.
func WriteRawFile(g RawGraph, path string) error {
	data, err := MarshalRaw(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// Render Output API
// =============================================================================

// MarshalRender encodes a RenderGraph as indented JSON. Nil slices encode as [].
func MarshalRender(g RenderGraph) ([]byte, error) {
	if g.Nodes == nil {
		g.Nodes = []RenderNode{}
	}
	if g.Links == nil {
		g.Links = []RenderLink{}
	}
	return marshalIndent(g)
}

// WriteRender writes a RenderGraph as JSON to w.
func WriteRender(g RenderGraph, w io.Writer) error {
	data, err := MarshalRender(g)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteRenderFile writes a RenderGraph to a JSON file.
func WriteRenderFile(g RenderGraph, path string) error {
	data, err := MarshalRender(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// UnmarshalRender decodes a render payload, typically one posted back by the
// renderer after its simulation settled.
func UnmarshalRender(data []byte) (RenderGraph, error) {
	var g RenderGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return RenderGraph{}, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "decode render graph")
	}
	return g, nil
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
