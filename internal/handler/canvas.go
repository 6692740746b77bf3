package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"brandcanvas/internal/config"
	"brandcanvas/internal/domain/models"
	domainSvc "brandcanvas/internal/domain/services"
	"brandcanvas/internal/httputil"
)

// CanvasHandler handles canvas HTTP requests
type CanvasHandler struct {
	canvasService domainSvc.CanvasService
	cfg           *config.Config
	logger        *slog.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(canvasService domainSvc.CanvasService, cfg *config.Config, logger *slog.Logger) *CanvasHandler {
	return &CanvasHandler{
		canvasService: canvasService,
		cfg:           cfg,
		logger:        logger,
	}
}

// ListCanvases retrieves all canvases owned by the user
// GET /api/canvases
func (h *CanvasHandler) ListCanvases(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	summaries, err := h.canvasService.ListCanvases(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summaries)
}

// CreateCanvas creates a new canvas
// POST /api/canvases
func (h *CanvasHandler) CreateCanvas(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	if h.rejectOversizedRequest(w, r) {
		return
	}

	var req domainSvc.CreateCanvasRequest
	if err := httputil.ParseJSON(w, r, h.cfg.MaxRequestBytes(), &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = userID

	canvas, err := h.canvasService.CreateCanvas(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, canvas)
}

// GetCanvas retrieves a canvas by ID
// GET /api/canvases/{id}
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "canvas ID is required")
		return
	}

	canvas, err := h.canvasService.GetCanvas(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, canvas)
}

// UpdateCanvas updates a canvas
// PATCH /api/canvases/{id}
func (h *CanvasHandler) UpdateCanvas(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "canvas ID is required")
		return
	}

	if h.rejectOversizedRequest(w, r) {
		return
	}

	var req domainSvc.UpdateCanvasRequest
	if err := httputil.ParseJSON(w, r, h.cfg.MaxRequestBytes(), &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	canvas, err := h.canvasService.UpdateCanvas(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, canvas)
}

// DeleteCanvas deletes a canvas
// DELETE /api/canvases/{id}
func (h *CanvasHandler) DeleteCanvas(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "canvas ID is required")
		return
	}

	if err := h.canvasService.DeleteCanvas(r.Context(), id, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EnableSharing mints a public share token
// POST /api/canvases/{id}/share
func (h *CanvasHandler) EnableSharing(w http.ResponseWriter, r *http.Request) {
	h.shareOp(w, r, h.canvasService.EnableSharing)
}

// DisableSharing revokes the public share token
// DELETE /api/canvases/{id}/share
func (h *CanvasHandler) DisableSharing(w http.ResponseWriter, r *http.Request) {
	h.shareOp(w, r, h.canvasService.DisableSharing)
}

func (h *CanvasHandler) shareOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, userID string) (*models.CanvasProject, error)) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "canvas ID is required")
		return
	}

	canvas, err := op(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, canvas)
}

// SetCollaborators replaces the editor/viewer lists
// PUT /api/canvases/{id}/collaborators
func (h *CanvasHandler) SetCollaborators(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "canvas ID is required")
		return
	}

	var req domainSvc.UpdateCollaboratorsRequest
	if err := httputil.ParseJSON(w, r, maxMetadataBytes, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	canvas, err := h.canvasService.SetCollaborators(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, canvas)
}

// GetSharedCanvas retrieves a canvas by public share token, no auth
// GET /api/shared/{shareId}
func (h *CanvasHandler) GetSharedCanvas(w http.ResponseWriter, r *http.Request) {
	shareID := r.PathValue("shareId")
	if shareID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "share ID is required")
		return
	}

	canvas, err := h.canvasService.GetSharedCanvas(r.Context(), shareID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, canvas)
}

// rejectOversizedRequest applies the cheap pre-body check: a declared
// Content-Length over the platform ceiling cannot possibly succeed, so
// it is rejected before any bytes are read or processed.
func (h *CanvasHandler) rejectOversizedRequest(w http.ResponseWriter, r *http.Request) bool {
	if r.ContentLength <= h.cfg.MaxRequestBytes() {
		return false
	}

	sizeMB := float64(r.ContentLength) / (1 << 20)
	httputil.RespondErrorWithExtras(w, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("request is %.1fMB, exceeds platform limit of %dMB", sizeMB, h.cfg.MaxRequestMB),
		map[string]interface{}{
			"payloadSizeMB": sizeMB,
			"maxSizeMB":     float64(h.cfg.MaxRequestMB),
		})
	return true
}
