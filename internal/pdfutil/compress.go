package pdfutil

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Compressor shrinks PDF bytes before upload. Best-effort: callers fall
// back to the original bytes on error, and Compress itself returns the
// input when optimization would grow the file.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Optimizer implements Compressor via pdfcpu's optimizer, which
// deduplicates resources and recompresses streams without touching
// page content.
type Optimizer struct {
	conf *model.Configuration
}

// NewOptimizer creates a Compressor with relaxed validation, since
// designer-supplied PDFs are frequently malformed.
func NewOptimizer() *Optimizer {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Optimizer{conf: conf}
}

// Compress optimizes the PDF. Never required to reduce size: if the
// optimized output is larger than the input, the input wins.
func (o *Optimizer) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, o.conf); err != nil {
		return nil, fmt.Errorf("optimize pdf: %w", err)
	}

	if buf.Len() >= len(data) {
		return data, nil
	}
	return buf.Bytes(), nil
}
