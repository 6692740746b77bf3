package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("version conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// SizeCeiling identifies which size limit a payload violated.
type SizeCeiling string

const (
	// CeilingPlatform is the hosting platform's request-size limit.
	CeilingPlatform SizeCeiling = "platform"
	// CeilingDocument is the persistence layer's document-size limit.
	CeilingDocument SizeCeiling = "document"
)

// PayloadTooLargeError reports a canvas payload that exceeds a size ceiling
// after blob migration already ran. It carries enough diagnostic detail for
// the client to decide whether retrying will help: how big the processed
// payload is, how many inline payloads remain, and whether migration was
// possible at all.
type PayloadTooLargeError struct {
	Ceiling           SizeCeiling
	SizeMB            float64
	MaxMB             float64
	InlineCount       int  // inline base64 payloads still embedded after migration
	StorageConfigured bool // object storage available for migration
	MigrationFailed   bool // at least one upload errored during this request
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload is %.1fMB, exceeds %s limit of %.0fMB", e.SizeMB, e.Ceiling, e.MaxMB)
}

// StatusCode implements the HTTPError interface. Platform-ceiling overflow
// maps to 413; document-ceiling overflow is a policy rejection, not a
// transport limit, and maps to 400.
func (e *PayloadTooLargeError) StatusCode() int {
	if e.Ceiling == CeilingPlatform {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// Extras returns the diagnostic fields included in the error response body.
func (e *PayloadTooLargeError) Extras() map[string]interface{} {
	return map[string]interface{}{
		"payloadSizeMB":      e.SizeMB,
		"maxSizeMB":          e.MaxMB,
		"base64ImageCount":   e.InlineCount,
		"r2Configured":       e.StorageConfigured,
		"r2ProcessingFailed": e.MigrationFailed,
	}
}
