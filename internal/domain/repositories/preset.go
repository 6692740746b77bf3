package repositories

import (
	"context"

	"brandcanvas/internal/domain/models"
)

// PresetRepository defines data access operations for community presets.
// Built-in presets live in the embedded catalog, not here.
type PresetRepository interface {
	// Create persists a published preset and fills in its generated ID.
	Create(ctx context.Context, preset *models.Preset) error

	// GetByID retrieves a preset by ID.
	GetByID(ctx context.Context, id string) (*models.Preset, error)

	// List retrieves all published presets, newest first.
	List(ctx context.Context) ([]models.Preset, error)

	// Delete removes a preset owned by authorID.
	Delete(ctx context.Context, id, authorID string) error
}
