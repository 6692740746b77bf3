package models

import "time"

// Preset is a reusable canvas template: a named set of starter nodes and
// edges users can stamp onto a new canvas. Built-in presets ship with the
// binary; community presets are published by users and persisted.
type Preset struct {
	ID          string                   `json:"id"`
	AuthorID    string                   `json:"author_id,omitempty"` // empty for built-in presets
	Name        string                   `json:"name"`
	Category    string                   `json:"category"`
	Description string                   `json:"description,omitempty"`
	Thumbnail   string                   `json:"thumbnail_url,omitempty"`
	Nodes       []CanvasNode             `json:"nodes"`
	Edges       []map[string]interface{} `json:"edges,omitempty"`
	BuiltIn     bool                     `json:"built_in"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}
