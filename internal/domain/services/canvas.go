package services

import (
	"context"

	"brandcanvas/internal/domain/models"
)

// CreateCanvasRequest represents a request to create a canvas.
// Nodes and edges are optional; a canvas may start empty or be seeded
// from a preset on the client.
type CreateCanvasRequest struct {
	OwnerID string                   `json:"-"`
	Name    string                   `json:"name"`
	Nodes   []models.CanvasNode      `json:"nodes,omitempty"`
	Edges   []map[string]interface{} `json:"edges,omitempty"`
}

// UpdateCanvasRequest represents a partial canvas update. Nil fields are
// left unchanged; name, nodes, edges and drawings update independently.
type UpdateCanvasRequest struct {
	Name     *string                   `json:"name,omitempty"`
	Nodes    *[]models.CanvasNode      `json:"nodes,omitempty"`
	Edges    *[]map[string]interface{} `json:"edges,omitempty"`
	Drawings *map[string]interface{}   `json:"drawings,omitempty"`
}

// UpdateCollaboratorsRequest replaces a canvas's access control lists.
type UpdateCollaboratorsRequest struct {
	Editors []string `json:"editors"`
	Viewers []string `json:"viewers"`
}

// CanvasService defines business logic operations for canvas projects,
// including the inline-blob reconciliation that runs on every write.
type CanvasService interface {
	// CreateCanvas creates a new canvas, running the blob pipeline on any
	// client-provided nodes.
	CreateCanvas(ctx context.Context, req *CreateCanvasRequest) (*models.CanvasProject, error)

	// GetCanvas retrieves a canvas readable by userID (owner, editor or
	// viewer). Expired inline payloads are swept from the returned nodes.
	GetCanvas(ctx context.Context, id, userID string) (*models.CanvasProject, error)

	// GetSharedCanvas retrieves a canvas by public share token, no auth.
	GetSharedCanvas(ctx context.Context, shareID string) (*models.CanvasProject, error)

	// ListCanvases retrieves summaries of all canvases owned by userID.
	ListCanvases(ctx context.Context, userID string) ([]models.CanvasSummary, error)

	// UpdateCanvas applies a partial update for an owner or editor. When
	// nodes are included the full sweep/stamp/migrate pipeline runs and the
	// processed payload is checked against both size ceilings before the
	// write. The returned canvas reflects post-migration state.
	UpdateCanvas(ctx context.Context, id, userID string, req *UpdateCanvasRequest) (*models.CanvasProject, error)

	// DeleteCanvas permanently removes a canvas. Owner only.
	DeleteCanvas(ctx context.Context, id, userID string) error

	// EnableSharing mints a share token for unauthenticated read access.
	EnableSharing(ctx context.Context, id, userID string) (*models.CanvasProject, error)

	// DisableSharing revokes the share token.
	DisableSharing(ctx context.Context, id, userID string) (*models.CanvasProject, error)

	// SetCollaborators replaces the editor/viewer lists. Owner only.
	SetCollaborators(ctx context.Context, id, userID string, req *UpdateCollaboratorsRequest) (*models.CanvasProject, error)
}
