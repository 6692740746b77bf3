// Package reconciler keeps canvas nodes and object storage consistent.
// Canvas nodes arrive from the client with image and PDF payloads embedded
// as base64 inside their JSON. The reconciler sweeps out payloads that are
// expired or already backed by a durable URL, stamps new payloads with a
// creation time, and migrates surviving payloads into object storage so the
// persisted document stays small.
package reconciler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// SlotKind describes what kind of asset a slot carries.
type SlotKind int

const (
	KindImage SlotKind = iota
	KindPDF
	KindVideo
)

// SlotSpec describes one asset slot on a node variant: the data-map fields
// holding its inline base64 payload, the payload's creation timestamp
// (ms epoch) and its durable URL. Every node type shares this shape, so
// sweep, stamp and migrate are each written once against SlotSpec instead
// of once per variant.
type SlotSpec struct {
	Inline string
	Stamp  string
	URL    string
	Kind   SlotKind

	// Array names a field holding a list of objects that each carry the
	// Inline/Stamp/URL fields above. Empty for scalar slots. The list
	// itself is never resized; only element fields change.
	Array string

	// Suffix namespaces the storage key when a node has several slots.
	Suffix string
}

// nodeSlots maps a node's type tag to its recognized asset slots.
// Unlisted node types pass through the reconciler untouched.
var nodeSlots = map[string][]SlotSpec{
	"image": {
		{Inline: "imageBase64", Stamp: "imageBase64Timestamp", URL: "imageUrl", Kind: KindImage},
	},
	"mockup": {
		{Inline: "resultImageBase64", Stamp: "resultImageBase64Timestamp", URL: "resultImageUrl", Kind: KindImage, Suffix: "result"},
		{Inline: "imageBase64", Stamp: "imageBase64Timestamp", URL: "imageUrl", Kind: KindImage, Array: "referenceImages", Suffix: "ref"},
	},
	"merge": {
		{Inline: "resultImageBase64", Stamp: "resultImageBase64Timestamp", URL: "resultImageUrl", Kind: KindImage, Suffix: "result"},
		{Inline: "imageBase64", Stamp: "imageBase64Timestamp", URL: "imageUrl", Kind: KindImage, Array: "sourceImages", Suffix: "source"},
	},
	"edit": {
		{Inline: "resultImageBase64", Stamp: "resultImageBase64Timestamp", URL: "resultImageUrl", Kind: KindImage, Suffix: "result"},
		{Inline: "imageBase64", Stamp: "imageBase64Timestamp", URL: "imageUrl", Kind: KindImage, Array: "referenceImages", Suffix: "ref"},
	},
	"upscale": {
		{Inline: "resultImageBase64", Stamp: "resultImageBase64Timestamp", URL: "resultImageUrl", Kind: KindImage, Suffix: "result"},
	},
	"pdf": {
		{Inline: "pdfBase64", Stamp: "pdfBase64Timestamp", URL: "pdfUrl", Kind: KindPDF},
	},
	"brand": {
		{Inline: "identityPdfBase64", Stamp: "identityPdfBase64Timestamp", URL: "identityPdfUrl", Kind: KindPDF, Suffix: "identity"},
		{Inline: "logoBase64", Stamp: "logoBase64Timestamp", URL: "logoUrl", Kind: KindImage, Suffix: "logo"},
	},
	"output": {
		{Inline: "resultImageBase64", Stamp: "resultImageBase64Timestamp", URL: "resultImageUrl", Kind: KindImage, Suffix: "result"},
		{Inline: "videoBase64", Stamp: "videoBase64Timestamp", URL: "videoUrl", Kind: KindVideo, Suffix: "video"},
	},
}

// forEachSlot invokes fn on every data map carrying the slot's fields:
// the node data itself for scalar slots, each list element for array slots.
func forEachSlot(data map[string]interface{}, spec SlotSpec, fn func(m map[string]interface{}, index int)) {
	if spec.Array == "" {
		fn(data, -1)
		return
	}
	items, _ := data[spec.Array].([]interface{})
	for i, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			fn(m, i)
		}
	}
}

// slotKey builds the storage key component for a slot:
// {nodeID}[-{suffix}][-{index}].
func slotKey(nodeID string, spec SlotSpec, index int) string {
	key := nodeID
	if spec.Suffix != "" {
		key += "-" + spec.Suffix
	}
	if index >= 0 {
		key += fmt.Sprintf("-%d", index)
	}
	return key
}

// inlineValue returns the slot's inline payload if the field holds actual
// inline data. Values that are already http(s) URLs are not inline data;
// treating them as such would re-upload migrated assets on double
// processing.
func inlineValue(m map[string]interface{}, spec SlotSpec) (string, bool) {
	v, ok := m[spec.Inline].(string)
	if !ok || v == "" || isRemoteURL(v) {
		return "", false
	}
	return v, true
}

func isRemoteURL(v string) bool {
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

// stampValue returns the slot's timestamp in ms epoch. JSON numbers decode
// as float64 but persisted values may round-trip as other numeric types.
func stampValue(m map[string]interface{}, spec SlotSpec) (int64, bool) {
	switch v := m[spec.Stamp].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// clearInline removes the slot's inline payload and its timestamp.
func clearInline(m map[string]interface{}, spec SlotSpec) {
	delete(m, spec.Inline)
	delete(m, spec.Stamp)
}

// decodeInline decodes an inline payload into raw bytes and a content
// type. Payloads are either data URIs ("data:image/png;base64,...") or
// bare base64; for bare payloads the content type is sniffed from the
// decoded bytes.
func decodeInline(value string) ([]byte, string, error) {
	contentType := ""
	payload := value

	if rest, ok := strings.CutPrefix(value, "data:"); ok {
		meta, b64, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = b64
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders omit padding
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("decode base64: %w", err)
		}
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}
