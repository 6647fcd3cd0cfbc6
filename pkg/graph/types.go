package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Endpoint - Link Endpoint Reference
// =============================================================================

// Endpoint is a link endpoint: a node id. It decodes from a plain id (string
// or number) or from a node object carrying an "id" field, and always encodes
// as the plain id string.
type Endpoint string

// ID returns the node id the endpoint refers to.
func (e Endpoint) ID() string { return string(e) }

// MarshalJSON encodes the endpoint as its plain id.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(e))
}

// UnmarshalJSON accepts "id", 42, or {"id": ...}.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("endpoint object: %w", err)
		}
		if obj.ID == nil {
			return fmt.Errorf("endpoint object has no id")
		}
		data = bytes.TrimSpace(obj.ID)
	}
	id, err := decodeID(data)
	if err != nil {
		return err
	}
	*e = Endpoint(id)
	return nil
}

func decodeID(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("endpoint id: %w", err)
	}
	switch id := v.(type) {
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("endpoint id has unsupported type %T", v)
	}
}

// =============================================================================
// RawGraph - Fetch Input
// =============================================================================

// RawGraph is the backend's graph payload. It is kept verbatim next to the
// normalized graph so cluster expansion can restore original records.
type RawGraph struct {
	Nodes []RawNode `json:"nodes"`
	Links []RawLink `json:"links"`
}

// RawNode is a node record as returned by the backend. Only ID is required.
// Pointer fields distinguish "absent" from zero.
type RawNode struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Type       string   `json:"type,omitempty"`
	Language   string   `json:"language,omitempty"`
	File       string   `json:"file,omitempty"`
	Complexity *float64 `json:"complexity,omitempty"`
	Centrality *float64 `json:"centrality,omitempty"`
	Code       string   `json:"code,omitempty"`
}

// RawLink is an edge record as returned by the backend.
type RawLink struct {
	Source       Endpoint `json:"source"`
	Target       Endpoint `json:"target"`
	Relationship string   `json:"relationship,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
}

// =============================================================================
// RenderGraph - Render Output
// =============================================================================

// RenderGraph is the payload handed to the rendering collaborator.
type RenderGraph struct {
	Nodes []RenderNode `json:"nodes"`
	Links []RenderLink `json:"links"`
}

// RenderNode carries the fields a force-graph renderer needs. ID, Name,
// Language, Val and Color are always present.
type RenderNode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Language    string   `json:"language"`
	Val         float64  `json:"val"`
	Color       string   `json:"color"`
	Kind        string   `json:"kind,omitempty"`
	FilePath    string   `json:"filePath,omitempty"`
	Complexity  float64  `json:"complexity,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	IsCluster   bool     `json:"isCluster,omitempty"`
	MemberIDs   []string `json:"memberIds,omitempty"`
	Highlighted bool     `json:"highlighted,omitempty"`
}

// RenderLink is an edge as the renderer sees it. Source and Target may come
// back from the renderer as node objects; see [Endpoint].
type RenderLink struct {
	Source       Endpoint `json:"source"`
	Target       Endpoint `json:"target"`
	Value        float64  `json:"value"`
	Relationship string   `json:"relationship,omitempty"`
}
