package services

import (
	"context"

	"brandcanvas/internal/domain/models"
)

// PublishPresetRequest represents a request to publish a community preset.
type PublishPresetRequest struct {
	AuthorID    string                   `json:"-"`
	Name        string                   `json:"name"`
	Category    string                   `json:"category"`
	Description string                   `json:"description,omitempty"`
	Thumbnail   string                   `json:"thumbnail_url,omitempty"`
	Nodes       []models.CanvasNode      `json:"nodes"`
	Edges       []map[string]interface{} `json:"edges,omitempty"`
}

// PresetService defines operations over the preset marketplace: the
// embedded built-in catalog plus user-published presets.
type PresetService interface {
	// ListPresets returns built-in presets followed by community presets.
	ListPresets(ctx context.Context) ([]models.Preset, error)

	// GetPreset retrieves a preset by ID, checking the built-in catalog first.
	GetPreset(ctx context.Context, id string) (*models.Preset, error)

	// PublishPreset publishes a community preset.
	PublishPreset(ctx context.Context, req *PublishPresetRequest) (*models.Preset, error)

	// DeletePreset removes a community preset. Author only; built-in
	// presets cannot be deleted.
	DeletePreset(ctx context.Context, id, userID string) error
}
