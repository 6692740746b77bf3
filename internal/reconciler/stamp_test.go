package reconciler

import (
	"testing"
	"time"

	"brandcanvas/internal/domain/models"
)

func TestStamp_AddsTimestampToUnstampedPayload(t *testing.T) {
	now := time.Now()

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageBase64": "cGF5bG9hZA==",
		}),
	}

	out := Stamp(nodes, now)

	got, ok := out[0].Data()["imageBase64Timestamp"].(float64)
	if !ok {
		t.Fatal("expected a float64 timestamp to be stamped")
	}
	if int64(got) != now.UnixMilli() {
		t.Errorf("expected stamp %d, got %d", now.UnixMilli(), int64(got))
	}
}

func TestStamp_PreservesExistingTimestamp(t *testing.T) {
	now := time.Now()
	original := msStamp(now.Add(-48 * time.Hour))

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageBase64":          "cGF5bG9hZA==",
			"imageBase64Timestamp": original,
		}),
	}

	out := Stamp(nodes, now)

	if got := out[0].Data()["imageBase64Timestamp"]; got != original {
		t.Errorf("expected existing timestamp preserved, got %v", got)
	}
}

func TestStamp_NoInlineNoStamp(t *testing.T) {
	now := time.Now()

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageUrl": "https://cdn.example.com/u1/c1/n1.png",
		}),
	}

	out := Stamp(nodes, now)

	if _, ok := out[0].Data()["imageBase64Timestamp"]; ok {
		t.Error("expected no timestamp when no inline payload exists")
	}
}

func TestStamp_SharedTimestampAcrossBatch(t *testing.T) {
	now := time.Now()

	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{"imageBase64": "YQ=="}),
		imageNode("n2", map[string]interface{}{"imageBase64": "Yg=="}),
	}

	out := Stamp(nodes, now)

	first := out[0].Data()["imageBase64Timestamp"]
	second := out[1].Data()["imageBase64Timestamp"]
	if first != second {
		t.Errorf("expected one shared timestamp per batch, got %v and %v", first, second)
	}
}

func TestStamp_URLValuedInlineFieldIgnored(t *testing.T) {
	now := time.Now()

	// Some clients echo the migrated URL back into the inline field.
	nodes := []models.CanvasNode{
		imageNode("n1", map[string]interface{}{
			"imageBase64": "https://cdn.example.com/u1/c1/n1.png",
		}),
	}

	out := Stamp(nodes, now)

	if _, ok := out[0].Data()["imageBase64Timestamp"]; ok {
		t.Error("expected URL-valued inline field not to be stamped")
	}
}
