package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"brandcanvas/internal/config"
	"brandcanvas/internal/domain"
	"brandcanvas/internal/domain/models"
	domainSvc "brandcanvas/internal/domain/services"
	"brandcanvas/internal/httputil"
)

// mockCanvasService stubs the service layer with overridable behavior.
type mockCanvasService struct {
	canvas     *models.CanvasProject
	err        error
	createSeen bool
	updateSeen bool
}

func (m *mockCanvasService) CreateCanvas(_ context.Context, req *domainSvc.CreateCanvasRequest) (*models.CanvasProject, error) {
	m.createSeen = true
	if m.err != nil {
		return nil, m.err
	}
	return m.canvas, nil
}

func (m *mockCanvasService) GetCanvas(context.Context, string, string) (*models.CanvasProject, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.canvas, nil
}

func (m *mockCanvasService) GetSharedCanvas(context.Context, string) (*models.CanvasProject, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.canvas, nil
}

func (m *mockCanvasService) ListCanvases(context.Context, string) ([]models.CanvasSummary, error) {
	return []models.CanvasSummary{}, m.err
}

func (m *mockCanvasService) UpdateCanvas(_ context.Context, _, _ string, _ *domainSvc.UpdateCanvasRequest) (*models.CanvasProject, error) {
	m.updateSeen = true
	if m.err != nil {
		return nil, m.err
	}
	return m.canvas, nil
}

func (m *mockCanvasService) DeleteCanvas(context.Context, string, string) error { return m.err }

func (m *mockCanvasService) EnableSharing(context.Context, string, string) (*models.CanvasProject, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.canvas, nil
}

func (m *mockCanvasService) DisableSharing(context.Context, string, string) (*models.CanvasProject, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.canvas, nil
}

func (m *mockCanvasService) SetCollaborators(_ context.Context, _, _ string, _ *domainSvc.UpdateCollaboratorsRequest) (*models.CanvasProject, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.canvas, nil
}

func newTestHandler(svc *mockCanvasService) *CanvasHandler {
	cfg := &config.Config{MaxRequestMB: 50, MaxDocumentMB: 15}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCanvasHandler(svc, cfg, logger)
}

func authedRequest(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	return httputil.WithUserID(r, "user-1")
}

func TestCreateCanvas_Handler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockCanvasService{canvas: &models.CanvasProject{ID: "c1", Name: "Board", Version: 1}}
		h := newTestHandler(svc)

		body := bytes.NewBufferString(`{"name":"Board"}`)
		w := httptest.NewRecorder()
		h.CreateCanvas(w, authedRequest(http.MethodPost, "/api/canvases", body))

		if w.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d", w.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := &mockCanvasService{}
		h := newTestHandler(svc)

		w := httptest.NewRecorder()
		h.CreateCanvas(w, httptest.NewRequest(http.MethodPost, "/api/canvases", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("declared oversized body rejected before read", func(t *testing.T) {
		svc := &mockCanvasService{}
		h := newTestHandler(svc)

		r := authedRequest(http.MethodPost, "/api/canvases", strings.NewReader("{}"))
		r.ContentLength = 60 << 20 // 60MB declared
		w := httptest.NewRecorder()
		h.CreateCanvas(w, r)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
		if svc.createSeen {
			t.Error("expected service untouched for declared-oversized request")
		}

		var problem map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
			t.Fatalf("invalid problem body: %v", err)
		}
		if _, ok := problem["payloadSizeMB"]; !ok {
			t.Error("expected payloadSizeMB diagnostic")
		}
		if problem["maxSizeMB"] != float64(50) {
			t.Errorf("expected maxSizeMB 50, got %v", problem["maxSizeMB"])
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &mockCanvasService{}
		h := newTestHandler(svc)

		body := bytes.NewBufferString(`{not json`)
		w := httptest.NewRecorder()
		h.CreateCanvas(w, authedRequest(http.MethodPost, "/api/canvases", body))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestUpdateCanvas_Handler(t *testing.T) {
	t.Run("size-ceiling error carries diagnostics", func(t *testing.T) {
		svc := &mockCanvasService{err: &domain.PayloadTooLargeError{
			Ceiling:           domain.CeilingDocument,
			SizeMB:            22.5,
			MaxMB:             15,
			InlineCount:       3,
			StorageConfigured: true,
			MigrationFailed:   true,
		}}
		h := newTestHandler(svc)

		body := bytes.NewBufferString(`{"nodes":[]}`)
		r := authedRequest(http.MethodPatch, "/api/canvases/c1", body)
		r.SetPathValue("id", "c1")
		w := httptest.NewRecorder()
		h.UpdateCanvas(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for document ceiling, got %d", w.Code)
		}

		var problem map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
			t.Fatalf("invalid problem body: %v", err)
		}
		if problem["base64ImageCount"] != float64(3) {
			t.Errorf("expected base64ImageCount 3, got %v", problem["base64ImageCount"])
		}
		if problem["r2Configured"] != true {
			t.Errorf("expected r2Configured true, got %v", problem["r2Configured"])
		}
		if problem["r2ProcessingFailed"] != true {
			t.Errorf("expected r2ProcessingFailed true, got %v", problem["r2ProcessingFailed"])
		}
	})

	t.Run("version conflict maps to 409", func(t *testing.T) {
		svc := &mockCanvasService{err: domain.ErrConflict}
		h := newTestHandler(svc)

		body := bytes.NewBufferString(`{"name":"x"}`)
		r := authedRequest(http.MethodPatch, "/api/canvases/c1", body)
		r.SetPathValue("id", "c1")
		w := httptest.NewRecorder()
		h.UpdateCanvas(w, r)

		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", w.Code)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		svc := &mockCanvasService{}
		h := newTestHandler(svc)

		w := httptest.NewRecorder()
		h.UpdateCanvas(w, authedRequest(http.MethodPatch, "/api/canvases/", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if svc.updateSeen {
			t.Error("expected service untouched without an id")
		}
	})
}

func TestGetSharedCanvas_Handler(t *testing.T) {
	t.Run("no auth required", func(t *testing.T) {
		svc := &mockCanvasService{canvas: &models.CanvasProject{ID: "c1"}}
		h := newTestHandler(svc)

		r := httptest.NewRequest(http.MethodGet, "/api/shared/tok-1", nil)
		r.SetPathValue("shareId", "tok-1")
		w := httptest.NewRecorder()
		h.GetSharedCanvas(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		svc := &mockCanvasService{err: domain.ErrNotFound}
		h := newTestHandler(svc)

		r := httptest.NewRequest(http.MethodGet, "/api/shared/tok-x", nil)
		r.SetPathValue("shareId", "tok-x")
		w := httptest.NewRecorder()
		h.GetSharedCanvas(w, r)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}
