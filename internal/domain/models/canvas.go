package models

import (
	"time"
)

// CanvasNode is one element of a canvas, tagged by its "type" field
// (image, merge, edit, upscale, pdf, brand, output, mockup, ...).
// Nodes arrive from the client as free-form JSON and unrecognized
// variants or fields must round-trip untouched, so the node is kept as
// a raw map with typed accessors rather than a closed struct.
type CanvasNode map[string]interface{}

// ID returns the node identifier, or "" if absent or malformed.
func (n CanvasNode) ID() string {
	id, _ := n["id"].(string)
	return id
}

// Type returns the node's variant tag, or "" if absent or malformed.
func (n CanvasNode) Type() string {
	t, _ := n["type"].(string)
	return t
}

// Data returns the variant-specific payload map, or nil if absent.
func (n CanvasNode) Data() map[string]interface{} {
	d, _ := n["data"].(map[string]interface{})
	return d
}

// Clone returns a deep copy of the node. The reconciler works on clones
// so the caller's nodes are never mutated in place.
func (n CanvasNode) Clone() CanvasNode {
	return CanvasNode(cloneMap(n))
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		// JSON scalars (string, float64, bool, nil) are immutable
		return v
	}
}

// Collaboration holds the access control lists for a shared canvas.
type Collaboration struct {
	Editors []string `json:"editors"`
	Viewers []string `json:"viewers"`
}

// CanEdit reports whether userID may mutate the canvas (owner excluded,
// callers check ownership separately).
func (c Collaboration) CanEdit(userID string) bool {
	return contains(c.Editors, userID)
}

// CanView reports whether userID may read the canvas.
func (c Collaboration) CanView(userID string) bool {
	return contains(c.Editors, userID) || contains(c.Viewers, userID)
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

// CanvasProject is a persisted canvas document. Node order is
// semantically meaningful (z-order/layout) and is preserved verbatim.
type CanvasProject struct {
	ID            string                   `json:"id"`
	OwnerID       string                   `json:"owner_id"`
	Name          string                   `json:"name"`
	Nodes         []CanvasNode             `json:"nodes"`
	Edges         []map[string]interface{} `json:"edges"`
	Drawings      map[string]interface{}   `json:"drawings,omitempty"`
	ShareID       *string                  `json:"share_id,omitempty"`
	Collaboration Collaboration            `json:"collaboration"`
	Version       int                      `json:"version"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// CanvasSummary is the listing view of a canvas, without the node payload.
type CanvasSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Shared    bool      `json:"shared"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
