package reconciler

import (
	"time"

	"brandcanvas/internal/domain/models"
)

// Stamp returns a copy of nodes in which every inline payload missing a
// creation timestamp has been stamped with now. All payloads introduced by
// one write share the same timestamp, and payloads that already carry one
// are left alone so their age only grows through real elapsed time.
//
// Stamp runs before Sweep on the write path. The sweep fails safe by
// dropping unstamped payloads, and every payload a client introduces is
// unstamped; stamping first is what keeps new uploads alive.
func Stamp(nodes []models.CanvasNode, now time.Time) []models.CanvasNode {
	out := make([]models.CanvasNode, len(nodes))
	for i, node := range nodes {
		out[i] = stampNode(node, now)
	}
	return out
}

func stampNode(node models.CanvasNode, now time.Time) (out models.CanvasNode) {
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
			stampSlot(m, spec, now)
		})
	}
	return clone
}

func stampSlot(m map[string]interface{}, spec SlotSpec, now time.Time) {
	if _, ok := inlineValue(m, spec); !ok {
		return
	}
	if _, ok := stampValue(m, spec); ok {
		return
	}
	// float64 matches how JSON numbers decode, so a stamped batch is
	// indistinguishable from one that round-tripped through storage.
	m[spec.Stamp] = float64(now.UnixMilli())
}
