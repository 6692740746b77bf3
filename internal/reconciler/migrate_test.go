package reconciler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"brandcanvas/internal/domain/models"
)

// mockStore is a hand-rolled ObjectStore recording uploads, with optional
// per-key failures.
type mockStore struct {
	mu         sync.Mutex
	configured bool
	failKeys   map[string]bool
	uploads    map[string][]byte
	types      map[string]string
	pdfKeys    map[string]bool
}

func newMockStore() *mockStore {
	return &mockStore{
		configured: true,
		failKeys:   map[string]bool{},
		uploads:    map[string][]byte{},
		types:      map[string]string{},
		pdfKeys:    map[string]bool{},
	}
}

func (s *mockStore) IsConfigured() bool { return s.configured }

func (s *mockStore) UploadImage(_ context.Context, data []byte, contentType, userID, canvasID, slotKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKeys[slotKey] {
		return "", errors.New("upload failed")
	}
	s.uploads[slotKey] = data
	s.types[slotKey] = contentType
	return "https://cdn.test/" + userID + "/" + canvasID + "/" + slotKey, nil
}

func (s *mockStore) UploadPDF(_ context.Context, data []byte, userID, canvasID, slotKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKeys[slotKey] {
		return "", errors.New("upload failed")
	}
	s.uploads[slotKey] = data
	s.pdfKeys[slotKey] = true
	return "https://cdn.test/" + userID + "/" + canvasID + "/" + slotKey + ".pdf", nil
}

func (s *mockStore) Delete(context.Context, string) error { return nil }

// mockCompressor records its input and returns a fixed output or an error.
type mockCompressor struct {
	out []byte
	err error
}

func (c *mockCompressor) Compress(data []byte) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.out != nil {
		return c.out, nil
	}
	return data, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMigrate_UploadsInlineAndRewritesSlot(t *testing.T) {
	store := newMockStore()
	m := NewMigrator(store, nil, testLogger())

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageBase64":          "data:image/png;base64,cGF5bG9hZA==",
			"imageBase64Timestamp": float64(1700000000000),
		}),
	}

	out, report := m.Migrate(context.Background(), nodes, "user-1", "canvas-1")

	if report.Uploaded != 1 || report.Failed != 0 {
		t.Fatalf("expected report {1 0}, got %+v", report)
	}

	data := out[0].Data()
	if data["imageUrl"] != "https://cdn.test/user-1/canvas-1/n1" {
		t.Errorf("expected rewritten URL, got %v", data["imageUrl"])
	}
	if _, ok := data["imageBase64"]; ok {
		t.Error("expected inline payload cleared after upload")
	}
	if _, ok := data["imageBase64Timestamp"]; ok {
		t.Error("expected timestamp cleared after upload")
	}
	if string(store.uploads["n1"]) != "payload" {
		t.Errorf("expected decoded bytes uploaded, got %q", store.uploads["n1"])
	}
	if store.types["n1"] != "image/png" {
		t.Errorf("expected data URI content type, got %q", store.types["n1"])
	}
}

func TestMigrate_NoOpWhenStorageUnconfigured(t *testing.T) {
	store := newMockStore()
	store.configured = false
	m := NewMigrator(store, nil, testLogger())

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageBase64": "cGF5bG9hZA==",
		}),
	}

	out, report := m.Migrate(context.Background(), nodes, "user-1", "canvas-1")

	if report.Uploaded != 0 || report.Failed != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if out[0].Data()["imageBase64"] != "cGF5bG9hZA==" {
		t.Error("expected inline payload untouched when storage is unconfigured")
	}
	if len(store.uploads) != 0 {
		t.Error("expected no uploads")
	}
}

func TestMigrate_PartialFailureIsolated(t *testing.T) {
	store := newMockStore()
	store.failKeys["n1"] = true
	m := NewMigrator(store, nil, testLogger())

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageBase64":          "YQ==",
			"imageBase64Timestamp": float64(1700000000000),
		}),
		imageNode("n2", map[string]interface{}{
			"imageBase64":          "Yg==",
			"imageBase64Timestamp": float64(1700000000000),
		}),
	}

	out, report := m.Migrate(context.Background(), nodes, "user-1", "canvas-1")

	if report.Uploaded != 1 || report.Failed != 1 {
		t.Fatalf("expected report {1 1}, got %+v", report)
	}

	failed := out[0].Data()
	if failed["imageBase64"] != "YQ==" {
		t.Error("expected failed slot to keep its inline payload")
	}
	if _, ok := failed["imageUrl"]; ok {
		t.Error("expected failed slot to have no URL")
	}

	succeeded := out[1].Data()
	if succeeded["imageUrl"] != "https://cdn.test/user-1/canvas-1/n2" {
		t.Errorf("expected second slot migrated, got %v", succeeded["imageUrl"])
	}
}

func TestMigrate_SkipsSlotsWithDurableURL(t *testing.T) {
	store := newMockStore()
	m := NewMigrator(store, nil, testLogger())

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageUrl": "https://cdn.test/existing.png",
		}),
	}

	_, report := m.Migrate(context.Background(), nodes, "user-1", "canvas-1")

	if report.Uploaded != 0 {
		t.Errorf("expected no uploads for already-durable slot, got %+v", report)
	}
	if len(store.uploads) != 0 {
		t.Error("expected store untouched")
	}
}

func TestMigrate_ArraySlotKeys(t *testing.T) {
	store := newMockStore()
	m := NewMigrator(store, nil, testLogger())

	nodes := []models.CanvasNode{
		{
			"id":   "m1",
			"type": "mockup",
			"data": map[string]interface{}{
				"resultImageBase64": "cg==",
				"referenceImages": []interface{}{
					map[string]interface{}{"imageBase64": "YQ=="},
					map[string]interface{}{"imageBase64": "Yg=="},
				},
			},
		},
	}

	_, report := m.Migrate(context.Background(), nodes, "user-1", "canvas-1")

	if report.Uploaded != 3 {
		t.Fatalf("expected 3 uploads, got %+v", report)
	}
	for _, key := range []string{"m1-result", "m1-ref-0", "m1-ref-1"} {
		if _, ok := store.uploads[key]; !ok {
			t.Errorf("expected upload under slot key %s", key)
		}
	}
}

func TestMigrate_PDFCompressedBeforeUpload(t *testing.T) {
	store := newMockStore()
	compressor := &mockCompressor{out: []byte("small")}
	m := NewMigrator(store, compressor, testLogger())

	nodes := []models.CanvasNode{
		{
			"id":   "p1",
			"type": "pdf",
			"data": map[string]interface{}{
				"pdfBase64": "data:application/pdf;base64,cGF5bG9hZA==",
			},
		},
	}

	out, report := m.Migrate(context.Background(), nodes, "user-1", "canvas-1")

	if report.Uploaded != 1 {
		t.Fatalf("expected 1 upload, got %+v", report)
	}
	if !store.pdfKeys["p1"] {
		t.Error("expected the PDF upload path to be used")
	}
	if string(store.uploads["p1"]) != "small" {
		t.Errorf("expected compressed bytes uploaded, got %q", store.uploads["p1"])
	}
	if out[0].Data()["pdfUrl"] != "https://cdn.test/user-1/canvas-1/p1.pdf" {
		t.Errorf("expected pdfUrl rewritten, got %v", out[0].Data()["pdfUrl"])
	}
}

func TestMigrate_PDFCompressionFailureUploadsOriginal(t *testing.T) {
	store := newMockStore()
	compressor := &mockCompressor{err: errors.New("corrupt xref")}
	m := NewMigrator(store, compressor, testLogger())

	nodes := []models.CanvasNode{
		{
			"id":   "p1",
			"type": "pdf",
			"data": map[string]interface{}{
				"pdfBase64": "data:application/pdf;base64,cGF5bG9hZA==",
			},
		},
	}

	_, report := m.Migrate(context.Background(), nodes, "user-1", "canvas-1")

	if report.Uploaded != 1 || report.Failed != 0 {
		t.Fatalf("expected compression failure to fall back, got %+v", report)
	}
	if string(store.uploads["p1"]) != "payload" {
		t.Errorf("expected original bytes uploaded, got %q", store.uploads["p1"])
	}
}

func TestMigrate_UndecodablePayloadCountsAsFailed(t *testing.T) {
	store := newMockStore()
	m := NewMigrator(store, nil, testLogger())

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageBase64": "!!! not base64 !!!",
		}),
	}

	out, report := m.Migrate(context.Background(), nodes, "user-1", "canvas-1")

	if report.Failed != 1 {
		t.Fatalf("expected 1 failure, got %+v", report)
	}
	if out[0].Data()["imageBase64"] != "!!! not base64 !!!" {
		t.Error("expected undecodable payload left in place")
	}
}
