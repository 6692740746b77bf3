package handler

import (
	"log/slog"
	"net/http"

	domainSvc "brandcanvas/internal/domain/services"
	"brandcanvas/internal/httputil"
)

// PresetHandler handles preset HTTP requests
type PresetHandler struct {
	presetService domainSvc.PresetService
	logger        *slog.Logger
}

// NewPresetHandler creates a new preset handler
func NewPresetHandler(presetService domainSvc.PresetService, logger *slog.Logger) *PresetHandler {
	return &PresetHandler{
		presetService: presetService,
		logger:        logger,
	}
}

// ListPresets retrieves all presets, built-in first
// GET /api/presets
func (h *PresetHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.presetService.ListPresets(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, presets)
}

// GetPreset retrieves a preset by ID
// GET /api/presets/{id}
func (h *PresetHandler) GetPreset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "preset ID is required")
		return
	}

	p, err := h.presetService.GetPreset(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, p)
}

// PublishPreset publishes a community preset
// POST /api/presets
func (h *PresetHandler) PublishPreset(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req domainSvc.PublishPresetRequest
	if err := httputil.ParseJSON(w, r, maxPresetBytes, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.AuthorID = userID

	p, err := h.presetService.PublishPreset(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, p)
}

// DeletePreset removes a community preset authored by the user
// DELETE /api/presets/{id}
func (h *PresetHandler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "preset ID is required")
		return
	}

	if err := h.presetService.DeletePreset(r.Context(), id, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
