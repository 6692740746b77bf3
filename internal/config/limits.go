package config

import "time"

const (
	// DefaultInlineTTL is the maximum age an inline base64 payload may reach
	// before the expiration sweep drops it. Payloads older than this are
	// assumed to have been abandoned by the client (no save migrated them).
	DefaultInlineTTL = 7 * 24 * time.Hour

	// DefaultMaxRequestMB is the platform request-size ceiling. Serverless
	// hosts reject request/response bodies above ~50MB, so anything larger
	// would fail downstream regardless of what we do.
	DefaultMaxRequestMB = 50

	// DefaultMaxDocumentMB is the persistence-layer document-size ceiling.
	// Held conservatively below the 16MB document hard limit so metadata
	// and encoding overhead never push a row over it.
	DefaultMaxDocumentMB = 15

	// MaxCanvasNameLength is the maximum length for canvas names.
	// Limited to 255 to fit in VARCHAR(255) and provide reasonable UX
	// (names should be short and descriptive).
	MaxCanvasNameLength = 255

	// MaxPresetNameLength is the maximum length for preset names.
	// Same as canvas names for consistency.
	MaxPresetNameLength = 255

	// MaxPresetDescriptionLength bounds community preset descriptions.
	MaxPresetDescriptionLength = 2000

	// MaxCollaborators bounds the editor and viewer lists on a canvas.
	MaxCollaborators = 100
)
