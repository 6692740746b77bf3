package reconciler

import (
	"context"
	"time"

	"brandcanvas/internal/domain/models"
)

// Pipeline runs the three reconciliation phases in their required order:
// timestamping, expiration sweep, durable upload migration. Stamp and
// sweep share one now value per invocation so a single write produces a
// single consistent timestamp.
type Pipeline struct {
	ttl      time.Duration
	migrator *Migrator
	now      func() time.Time
}

// NewPipeline creates a pipeline with the given inline-payload TTL.
func NewPipeline(ttl time.Duration, migrator *Migrator) *Pipeline {
	return &Pipeline{
		ttl:      ttl,
		migrator: migrator,
		now:      time.Now,
	}
}

// Clean runs the expiration sweep alone. Used on the read path, where
// expired payloads must not be served but nothing new needs stamping or
// uploading.
func (p *Pipeline) Clean(nodes []models.CanvasNode) []models.CanvasNode {
	return Sweep(nodes, p.now(), p.ttl)
}

// Process runs the full write-path pipeline. Stamping runs before the
// sweep: payloads introduced by this write have no timestamp yet, and
// the sweep treats unstamped payloads as expired, so sweeping first
// would drop every new upload. Stamping makes their age knowable (zero)
// and the sweep then only removes genuinely stale or redundant payloads.
// Running Process twice over the same input yields the same result as
// running it once.
func (p *Pipeline) Process(ctx context.Context, nodes []models.CanvasNode, userID, canvasID string) ([]models.CanvasNode, Report) {
	now := p.now()
	stamped := Stamp(nodes, now)
	swept := Sweep(stamped, now, p.ttl)
	return p.migrator.Migrate(ctx, swept, userID, canvasID)
}

// StorageConfigured reports whether migration has a backend to upload to,
// for inclusion in size-ceiling diagnostics.
func (p *Pipeline) StorageConfigured() bool {
	return p.migrator.store.IsConfigured()
}

// CountInline returns how many recognized slots across nodes still hold
// inline payloads. Size-ceiling diagnostics use it to tell "still needs
// migrating" apart from "fundamentally too large".
func CountInline(nodes []models.CanvasNode) int {
	count := 0
	for _, node := range nodes {
		specs, ok := nodeSlots[node.Type()]
		if !ok || node.Data() == nil {
			continue
		}
		for _, spec := range specs {
			forEachSlot(node.Data(), spec, func(m map[string]interface{}, _ int) {
				if _, ok := inlineValue(m, spec); ok {
					count++
				}
			})
		}
	}
	return count
}
