package repositories

import (
	"context"

	"brandcanvas/internal/domain/models"
)

// CanvasRepository defines data access operations for canvas projects.
type CanvasRepository interface {
	// Create persists a new canvas and fills in its generated ID and timestamps.
	Create(ctx context.Context, canvas *models.CanvasProject) error

	// GetByID retrieves a canvas by ID regardless of owner. Access control
	// (ownership, collaboration lists, share tokens) is the service's job.
	GetByID(ctx context.Context, id string) (*models.CanvasProject, error)

	// GetByShareID retrieves a canvas by its public share token.
	GetByShareID(ctx context.Context, shareID string) (*models.CanvasProject, error)

	// List retrieves summaries of all canvases owned by a user,
	// ordered by updated_at DESC. Node payloads are not loaded.
	List(ctx context.Context, ownerID string) ([]models.CanvasSummary, error)

	// Update persists the canvas conditionally on its version field.
	// The stored version must equal canvas.Version; on success the stored
	// and in-memory versions are incremented. A version mismatch returns
	// domain.ErrConflict instead of overwriting a concurrent save.
	Update(ctx context.Context, canvas *models.CanvasProject) error

	// Delete removes a canvas permanently. Object-storage blobs referenced
	// by its nodes are left behind (see DESIGN.md, known gap).
	Delete(ctx context.Context, id string) error
}
