package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ParseJSON decodes JSON from the request body into the given destination.
// maxBytes bounds how much body is read; canvas saves pass the platform
// request ceiling, everything else a much smaller bound.
// Unknown fields are deliberately allowed: node data is free-form JSON and
// validation happens downstream in the services.
func ParseJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
