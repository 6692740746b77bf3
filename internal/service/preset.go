package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"brandcanvas/internal/config"
	"brandcanvas/internal/domain"
	"brandcanvas/internal/domain/models"
	"brandcanvas/internal/domain/repositories"
	domainSvc "brandcanvas/internal/domain/services"
	"brandcanvas/internal/preset"
)

// presetService merges the embedded built-in catalog with
// community-published presets from the repository.
type presetService struct {
	catalog    *preset.Catalog
	presetRepo repositories.PresetRepository
	logger     *slog.Logger
}

// NewPresetService creates a new preset service
func NewPresetService(
	catalog *preset.Catalog,
	presetRepo repositories.PresetRepository,
	logger *slog.Logger,
) domainSvc.PresetService {
	return &presetService{
		catalog:    catalog,
		presetRepo: presetRepo,
		logger:     logger,
	}
}

// ListPresets returns built-in presets followed by community presets.
func (s *presetService) ListPresets(ctx context.Context) ([]models.Preset, error) {
	presets := s.catalog.List()

	community, err := s.presetRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	return append(presets, community...), nil
}

// GetPreset retrieves a preset by ID, checking the built-in catalog first.
func (s *presetService) GetPreset(ctx context.Context, id string) (*models.Preset, error) {
	if p, ok := s.catalog.Get(id); ok {
		return p, nil
	}
	return s.presetRepo.GetByID(ctx, id)
}

// PublishPreset publishes a community preset.
func (s *presetService) PublishPreset(ctx context.Context, req *domainSvc.PublishPresetRequest) (*models.Preset, error) {
	if err := s.validatePublishRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	p := &models.Preset{
		AuthorID:    req.AuthorID,
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.presetRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("preset published",
		"id", p.ID,
		"name", p.Name,
		"author_id", p.AuthorID,
	)

	return p, nil
}

// DeletePreset removes a community preset. Built-in presets cannot be
// deleted.
func (s *presetService) DeletePreset(ctx context.Context, id, userID string) error {
	if _, ok := s.catalog.Get(id); ok {
		return fmt.Errorf("built-in preset %s: %w", id, domain.ErrForbidden)
	}
	return s.presetRepo.Delete(ctx, id, userID)
}

// validatePublishRequest validates a publish preset request
func (s *presetService) validatePublishRequest(req *domainSvc.PublishPresetRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.AuthorID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxPresetNameLength),
		),
		validation.Field(&req.Category, validation.Required),
		validation.Field(&req.Description, validation.Length(0, config.MaxPresetDescriptionLength)),
		validation.Field(&req.Nodes, validation.Required),
	)
}
