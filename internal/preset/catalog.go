// Package preset holds the built-in preset catalog. Built-in presets ship
// inside the binary as embedded YAML; the catalog object is created once
// in main and passed to the preset service explicitly, so there is no
// process-wide mutable preset state.
package preset

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"brandcanvas/internal/domain/models"
)

//go:embed catalog/*.yaml
var catalogFiles embed.FS

// catalogFile is the on-disk shape of one catalog YAML file.
type catalogFile struct {
	Presets []catalogEntry `yaml:"presets"`
}

type catalogEntry struct {
	ID          string                   `yaml:"id"`
	Name        string                   `yaml:"name"`
	Category    string                   `yaml:"category"`
	Description string                   `yaml:"description"`
	Thumbnail   string                   `yaml:"thumbnail_url"`
	Nodes       []map[string]interface{} `yaml:"nodes"`
	Edges       []map[string]interface{} `yaml:"edges"`
}

// Catalog serves the built-in presets loaded from embedded YAML.
type Catalog struct {
	mu      sync.RWMutex
	byID    map[string]models.Preset
	ordered []models.Preset
}

// NewCatalog loads the embedded catalog files.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{
		byID: make(map[string]models.Preset),
	}

	for _, name := range []string{"mockups", "moodboards", "budgets"} {
		if err := c.loadFile(name); err != nil {
			return nil, fmt.Errorf("failed to load %s catalog: %w", name, err)
		}
	}

	return c, nil
}

func (c *Catalog) loadFile(name string) error {
	filename := fmt.Sprintf("catalog/%s.yaml", name)
	data, err := catalogFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range file.Presets {
		if entry.ID == "" {
			return fmt.Errorf("%s: preset without id", filename)
		}
		if _, exists := c.byID[entry.ID]; exists {
			return fmt.Errorf("%s: duplicate preset id %q", filename, entry.ID)
		}

		preset := models.Preset{
			ID:          entry.ID,
			Name:        entry.Name,
			Category:    entry.Category,
			Description: entry.Description,
			Thumbnail:   entry.Thumbnail,
			Nodes:       toNodes(entry.Nodes),
			Edges:       entry.Edges,
			BuiltIn:     true,
		}
		c.byID[entry.ID] = preset
		c.ordered = append(c.ordered, preset)
	}

	return nil
}

func toNodes(raw []map[string]interface{}) []models.CanvasNode {
	nodes := make([]models.CanvasNode, len(raw))
	for i, m := range raw {
		nodes[i] = models.CanvasNode(m)
	}
	return nodes
}

// Get returns a built-in preset by ID.
func (c *Catalog) Get(id string) (*models.Preset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	preset, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &preset, true
}

// List returns all built-in presets in catalog order.
func (c *Catalog) List() []models.Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Preset, len(c.ordered))
	copy(out, c.ordered)
	return out
}
