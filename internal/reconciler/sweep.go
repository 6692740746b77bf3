package reconciler

import (
	"time"

	"brandcanvas/internal/domain/models"
)

// Sweep returns a copy of nodes with every redundant or stale inline
// payload removed. A payload is redundant when a durable URL already
// exists for its slot (the URL always wins, regardless of age) and stale
// when older than ttl or missing its timestamp entirely - a payload whose
// age is unknowable fails safe toward deletion.
//
// The result has the same length and order as the input, only slot fields
// are cleared, and the input nodes are never mutated. Unrecognized node
// types and malformed shapes pass through unchanged; the sweep itself
// never fails.
func Sweep(nodes []models.CanvasNode, now time.Time, ttl time.Duration) []models.CanvasNode {
	out := make([]models.CanvasNode, len(nodes))
	for i, node := range nodes {
		out[i] = sweepNode(node, now, ttl)
	}
	return out
}

// sweepNode processes one node, returning it unmodified if anything about
// its shape defeats processing. One bad node must not abort the batch.
func sweepNode(node models.CanvasNode, now time.Time, ttl time.Duration) (out models.CanvasNode) {
	out = node
	defer func() {
		if r := recover(); r != nil {
			out = node
		}
	}()

	specs, ok := nodeSlots[node.Type()]
	if !ok || node.Data() == nil {
		return node
	}

	clone := node.Clone()
	data := clone.Data()
	for _, spec := range specs {
		forEachSlot(data, spec, func(m map[string]interface{}, _ int) {
			sweepSlot(m, spec, now, ttl)
		})
	}
	return clone
}

func sweepSlot(m map[string]interface{}, spec SlotSpec, now time.Time, ttl time.Duration) {
	if url, ok := m[spec.URL].(string); ok && url != "" {
		// Durable URL wins: any coexisting inline payload is stale.
		clearInline(m, spec)
		return
	}

	if _, ok := inlineValue(m, spec); !ok {
		return
	}

	ts, ok := stampValue(m, spec)
	if !ok {
		// No timestamp means the age is unknowable - already expired.
		clearInline(m, spec)
		return
	}

	if now.Sub(time.UnixMilli(ts)) > ttl {
		clearInline(m, spec)
	}
}
