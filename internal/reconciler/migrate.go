package reconciler

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"brandcanvas/internal/domain/models"
	"brandcanvas/internal/pdfutil"
	"brandcanvas/internal/storage"
)

// defaultUploadConcurrency bounds the per-request fan-out of slot uploads.
const defaultUploadConcurrency = 8

// Report summarizes one migration pass. Failed > 0 means at least one
// payload stayed inline and the caller's size diagnostics should say so.
type Report struct {
	Uploaded int
	Failed   int
}

// ProcessingFailed reports whether any upload errored during the pass.
func (r Report) ProcessingFailed() bool { return r.Failed > 0 }

// Migrator uploads surviving inline payloads to object storage and
// rewrites their slots to durable URLs.
type Migrator struct {
	store       storage.ObjectStore
	pdf         pdfutil.Compressor
	logger      *slog.Logger
	concurrency int
}

// NewMigrator creates a migrator. pdf may be nil, in which case PDF
// payloads are uploaded uncompressed.
func NewMigrator(store storage.ObjectStore, pdf pdfutil.Compressor, logger *slog.Logger) *Migrator {
	return &Migrator{
		store:       store,
		pdf:         pdf,
		logger:      logger,
		concurrency: defaultUploadConcurrency,
	}
}

// uploadTask is one slot occurrence holding inline data to migrate.
// target is the cloned data map the result is written back into.
type uploadTask struct {
	target  map[string]interface{}
	spec    SlotSpec
	value   string
	slotKey string
}

// Migrate uploads every inline payload that has no durable URL yet and
// rewrites its slot to reference the uploaded object, clearing the inline
// payload and timestamp. Uploads fan out concurrently and are joined
// before return, so latency is bounded by the slowest upload.
//
// The pass is idempotent: slots with URLs are skipped, as are inline
// fields that already hold URLs. An upload failure leaves that one slot
// inline and is only reflected in the Report; the batch never fails. When
// no object storage is configured the whole pass is a no-op.
func (m *Migrator) Migrate(ctx context.Context, nodes []models.CanvasNode, userID, canvasID string) ([]models.CanvasNode, Report) {
	if !m.store.IsConfigured() || len(nodes) == 0 {
		return nodes, Report{}
	}

	out := make([]models.CanvasNode, len(nodes))
	var tasks []uploadTask
	for i, node := range nodes {
		out[i] = node

		specs, ok := nodeSlots[node.Type()]
		if !ok || node.Data() == nil {
			continue
		}

		clone := node.Clone()
		out[i] = clone
		data := clone.Data()
		nodeID := clone.ID()

		for _, spec := range specs {
			forEachSlot(data, spec, func(slot map[string]interface{}, index int) {
				if url, ok := slot[spec.URL].(string); ok && url != "" {
					return // already durable
				}
				value, ok := inlineValue(slot, spec)
				if !ok {
					return
				}
				tasks = append(tasks, uploadTask{
					target:  slot,
					spec:    spec,
					value:   value,
					slotKey: slotKey(nodeID, spec, index),
				})
			})
		}
	}

	if len(tasks) == 0 {
		return out, Report{}
	}

	var (
		mu     sync.Mutex
		report Report
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, task := range tasks {
		g.Go(func() error {
			url, err := m.uploadSlot(ctx, task, userID, canvasID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Keep the inline payload as fallback; the next
				// successful save migrates it.
				m.logger.Error("slot migration failed",
					"canvas_id", canvasID,
					"slot_key", task.slotKey,
					"error", err,
				)
				report.Failed++
				return nil
			}
			task.target[task.spec.URL] = url
			clearInline(task.target, task.spec)
			report.Uploaded++
			return nil
		})
	}
	g.Wait()

	return out, report
}

func (m *Migrator) uploadSlot(ctx context.Context, task uploadTask, userID, canvasID string) (string, error) {
	data, contentType, err := decodeInline(task.value)
	if err != nil {
		return "", err
	}

	if task.spec.Kind == KindPDF {
		if m.pdf != nil {
			if compressed, cerr := m.pdf.Compress(data); cerr != nil {
				m.logger.Warn("pdf compression failed, uploading original",
					"slot_key", task.slotKey,
					"error", cerr,
				)
			} else {
				data = compressed
			}
		}
		return m.store.UploadPDF(ctx, data, userID, canvasID, task.slotKey)
	}

	// Images and videos are uploaded verbatim to preserve the
	// designer-supplied quality.
	return m.store.UploadImage(ctx, data, contentType, userID, canvasID, task.slotKey)
}
