package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"brandcanvas/internal/config"
	"brandcanvas/internal/domain"
	"brandcanvas/internal/domain/models"
	"brandcanvas/internal/domain/repositories"
	domainSvc "brandcanvas/internal/domain/services"
	"brandcanvas/internal/reconciler"
)

// canvasService implements the CanvasService interface. All canvas writes
// funnel through here: access control, the blob reconciliation pipeline
// and payload-size negotiation happen before anything reaches the
// repository.
type canvasService struct {
	canvasRepo repositories.CanvasRepository
	txManager  repositories.TransactionManager
	pipeline   *reconciler.Pipeline
	cfg        *config.Config
	logger     *slog.Logger
}

// NewCanvasService creates a new canvas service
func NewCanvasService(
	canvasRepo repositories.CanvasRepository,
	txManager repositories.TransactionManager,
	pipeline *reconciler.Pipeline,
	cfg *config.Config,
	logger *slog.Logger,
) domainSvc.CanvasService {
	return &canvasService{
		canvasRepo: canvasRepo,
		txManager:  txManager,
		pipeline:   pipeline,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateCanvas creates a new canvas, running the blob pipeline on any
// client-provided nodes.
func (s *canvasService) CreateCanvas(ctx context.Context, req *domainSvc.CreateCanvasRequest) (*models.CanvasProject, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	canvas := &models.CanvasProject{
		// Pre-generated so migration can namespace storage keys.
		ID:      uuid.NewString(),
		OwnerID: req.OwnerID,
		Name:    strings.TrimSpace(req.Name),
		Nodes:   req.Nodes,
		Edges:   req.Edges,
		Collaboration: models.Collaboration{
			Editors: []string{},
			Viewers: []string{},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	var report reconciler.Report
	if len(canvas.Nodes) > 0 {
		canvas.Nodes, report = s.pipeline.Process(ctx, canvas.Nodes, canvas.OwnerID, canvas.ID)
	}
	if err := s.checkCeilings(canvas.Name, canvas.Nodes, canvas.Edges, nil, report); err != nil {
		return nil, err
	}

	if err := s.canvasRepo.Create(ctx, canvas); err != nil {
		return nil, err
	}

	s.logger.Info("canvas created",
		"id", canvas.ID,
		"name", canvas.Name,
		"owner_id", canvas.OwnerID,
		"nodes", len(canvas.Nodes),
	)

	return canvas, nil
}

// GetCanvas retrieves a canvas readable by userID. Expired inline
// payloads are swept from the returned nodes; the cleaned state is not
// written back here, the next save persists it.
func (s *canvasService) GetCanvas(ctx context.Context, id, userID string) (*models.CanvasProject, error) {
	canvas, err := s.canvasRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if canvas.OwnerID != userID && !canvas.Collaboration.CanView(userID) {
		return nil, fmt.Errorf("canvas %s: %w", id, domain.ErrForbidden)
	}

	canvas.Nodes = s.pipeline.Clean(canvas.Nodes)
	return canvas, nil
}

// GetSharedCanvas retrieves a canvas by its public share token.
func (s *canvasService) GetSharedCanvas(ctx context.Context, shareID string) (*models.CanvasProject, error) {
	canvas, err := s.canvasRepo.GetByShareID(ctx, shareID)
	if err != nil {
		return nil, err
	}

	canvas.Nodes = s.pipeline.Clean(canvas.Nodes)
	return canvas, nil
}

// ListCanvases retrieves summaries of all canvases owned by userID.
func (s *canvasService) ListCanvases(ctx context.Context, userID string) ([]models.CanvasSummary, error) {
	return s.canvasRepo.List(ctx, userID)
}

// UpdateCanvas applies a partial update. When nodes are included the full
// stamp/sweep/migrate pipeline runs first; the merged payload is then
// checked against both size ceilings on every write - migration is the
// primary way a payload shrinks, so measuring before migrating would
// reject saves that fit perfectly well.
func (s *canvasService) UpdateCanvas(ctx context.Context, id, userID string, req *domainSvc.UpdateCanvasRequest) (*models.CanvasProject, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	canvas, err := s.canvasRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if canvas.OwnerID != userID && !canvas.Collaboration.CanEdit(userID) {
		return nil, fmt.Errorf("canvas %s: %w", id, domain.ErrForbidden)
	}

	if req.Name != nil {
		canvas.Name = strings.TrimSpace(*req.Name)
	}
	if req.Edges != nil {
		canvas.Edges = *req.Edges
	}
	if req.Drawings != nil {
		canvas.Drawings = *req.Drawings
	}

	var report reconciler.Report
	if req.Nodes != nil {
		// Storage keys live in the owner's namespace even when an
		// editor saves.
		canvas.Nodes, report = s.pipeline.Process(ctx, *req.Nodes, canvas.OwnerID, canvas.ID)
	}

	// Ceilings apply to every write, not only node-bearing ones: a save
	// that grows edges or drawings alone can still push the document past
	// either limit.
	if err := s.checkCeilings(canvas.Name, canvas.Nodes, canvas.Edges, canvas.Drawings, report); err != nil {
		return nil, err
	}

	if err := s.canvasRepo.Update(ctx, canvas); err != nil {
		return nil, err
	}

	s.logger.Info("canvas updated",
		"id", canvas.ID,
		"user_id", userID,
		"version", canvas.Version,
	)

	return canvas, nil
}

// DeleteCanvas permanently removes a canvas. Owner only. The ownership
// check and the delete run in one transaction. Object-storage blobs
// referenced by the nodes are orphaned, matching the documented gap.
func (s *canvasService) DeleteCanvas(ctx context.Context, id, userID string) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		canvas, err := s.canvasRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if canvas.OwnerID != userID {
			return fmt.Errorf("canvas %s: %w", id, domain.ErrForbidden)
		}
		return s.canvasRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("canvas deleted", "id", id, "owner_id", userID)
	return nil
}

// EnableSharing mints a share token for unauthenticated read access.
// Idempotent: an already-shared canvas keeps its token.
func (s *canvasService) EnableSharing(ctx context.Context, id, userID string) (*models.CanvasProject, error) {
	var canvas *models.CanvasProject
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		canvas, err = s.ownedCanvas(ctx, id, userID)
		if err != nil {
			return err
		}

		if canvas.ShareID == nil {
			shareID := uuid.NewString()
			canvas.ShareID = &shareID
			return s.canvasRepo.Update(ctx, canvas)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return canvas, nil
}

// DisableSharing revokes the share token.
func (s *canvasService) DisableSharing(ctx context.Context, id, userID string) (*models.CanvasProject, error) {
	var canvas *models.CanvasProject
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		canvas, err = s.ownedCanvas(ctx, id, userID)
		if err != nil {
			return err
		}

		if canvas.ShareID != nil {
			canvas.ShareID = nil
			return s.canvasRepo.Update(ctx, canvas)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return canvas, nil
}

// SetCollaborators replaces the editor/viewer lists. Owner only.
func (s *canvasService) SetCollaborators(ctx context.Context, id, userID string, req *domainSvc.UpdateCollaboratorsRequest) (*models.CanvasProject, error) {
	if err := s.validateCollaborators(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var canvas *models.CanvasProject
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		canvas, err = s.ownedCanvas(ctx, id, userID)
		if err != nil {
			return err
		}

		canvas.Collaboration = models.Collaboration{
			Editors: req.Editors,
			Viewers: req.Viewers,
		}
		if canvas.Collaboration.Editors == nil {
			canvas.Collaboration.Editors = []string{}
		}
		if canvas.Collaboration.Viewers == nil {
			canvas.Collaboration.Viewers = []string{}
		}

		return s.canvasRepo.Update(ctx, canvas)
	})
	if err != nil {
		return nil, err
	}

	return canvas, nil
}

func (s *canvasService) ownedCanvas(ctx context.Context, id, userID string) (*models.CanvasProject, error) {
	canvas, err := s.canvasRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if canvas.OwnerID != userID {
		return nil, fmt.Errorf("canvas %s: %w", id, domain.ErrForbidden)
	}
	return canvas, nil
}

// persistedPayload mirrors what actually lands in the document row, so
// size checks measure the same bytes the persistence layer would see.
type persistedPayload struct {
	Name     string                   `json:"name"`
	Nodes    []models.CanvasNode      `json:"nodes"`
	Edges    []map[string]interface{} `json:"edges"`
	Drawings map[string]interface{}   `json:"drawings,omitempty"`
}

// checkCeilings measures the processed payload against the platform and
// persistence ceilings and builds the diagnostic error when either is
// exceeded. Runs after migration by design - see UpdateCanvas.
func (s *canvasService) checkCeilings(name string, nodes []models.CanvasNode, edges []map[string]interface{}, drawings map[string]interface{}, report reconciler.Report) error {
	payload, err := json.Marshal(persistedPayload{
		Name:     name,
		Nodes:    nodes,
		Edges:    edges,
		Drawings: drawings,
	})
	if err != nil {
		return fmt.Errorf("measure payload: %w", err)
	}

	size := int64(len(payload))
	sizeMB := float64(size) / (1 << 20)

	newErr := func(ceiling domain.SizeCeiling, maxMB int) error {
		return &domain.PayloadTooLargeError{
			Ceiling:           ceiling,
			SizeMB:            sizeMB,
			MaxMB:             float64(maxMB),
			InlineCount:       reconciler.CountInline(nodes),
			StorageConfigured: s.pipeline.StorageConfigured(),
			MigrationFailed:   report.ProcessingFailed(),
		}
	}

	if size > s.cfg.MaxRequestBytes() {
		return newErr(domain.CeilingPlatform, s.cfg.MaxRequestMB)
	}
	if size > s.cfg.MaxDocumentBytes() {
		return newErr(domain.CeilingDocument, s.cfg.MaxDocumentMB)
	}
	return nil
}

// validateCreateRequest validates a create canvas request
func (s *canvasService) validateCreateRequest(req *domainSvc.CreateCanvasRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxCanvasNameLength),
		),
	)
}

// validateUpdateRequest validates an update canvas request
func (s *canvasService) validateUpdateRequest(req *domainSvc.UpdateCanvasRequest) error {
	if req.Name == nil {
		return nil
	}
	name := strings.TrimSpace(*req.Name)
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxCanvasNameLength),
	)
}

func (s *canvasService) validateCollaborators(req *domainSvc.UpdateCollaboratorsRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Editors, validation.Length(0, config.MaxCollaborators)),
		validation.Field(&req.Viewers, validation.Length(0, config.MaxCollaborators)),
	)
}
