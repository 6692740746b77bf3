package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"brandcanvas/internal/domain"
	"brandcanvas/internal/domain/models"
	"brandcanvas/internal/domain/repositories"
)

// PostgresPresetRepository implements the PresetRepository interface for
// community-published presets.
type PostgresPresetRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPresetRepository creates a new preset repository
func NewPresetRepository(config *RepositoryConfig) repositories.PresetRepository {
	return &PostgresPresetRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create persists a published preset
func (r *PostgresPresetRepository) Create(ctx context.Context, preset *models.Preset) error {
	nodes, err := json.Marshal(preset.Nodes)
	if err != nil {
		return fmt.Errorf("marshal preset nodes: %w", err)
	}
	edges, err := json.Marshal(preset.Edges)
	if err != nil {
		return fmt.Errorf("marshal preset edges: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (author_id, name, category, description, thumbnail_url, nodes, edges, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Presets)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		preset.AuthorID,
		preset.Name,
		preset.Category,
		preset.Description,
		preset.Thumbnail,
		nodes,
		edges,
		preset.CreatedAt,
		preset.UpdatedAt,
	).Scan(&preset.ID, &preset.CreatedAt, &preset.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create preset: %w", err)
	}

	return nil
}

// GetByID retrieves a preset by ID
func (r *PostgresPresetRepository) GetByID(ctx context.Context, id string) (*models.Preset, error) {
	query := fmt.Sprintf(`
		SELECT id, author_id, name, category, description, thumbnail_url, nodes, edges, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Presets)

	var (
		preset models.Preset
		nodes  []byte
		edges  []byte
	)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&preset.ID,
		&preset.AuthorID,
		&preset.Name,
		&preset.Category,
		&preset.Description,
		&preset.Thumbnail,
		&nodes,
		&edges,
		&preset.CreatedAt,
		&preset.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("preset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get preset: %w", err)
	}

	if err := json.Unmarshal(nodes, &preset.Nodes); err != nil {
		return nil, fmt.Errorf("unmarshal preset nodes: %w", err)
	}
	if err := json.Unmarshal(edges, &preset.Edges); err != nil {
		return nil, fmt.Errorf("unmarshal preset edges: %w", err)
	}

	return &preset, nil
}

// List retrieves all published presets, newest first
func (r *PostgresPresetRepository) List(ctx context.Context) ([]models.Preset, error) {
	query := fmt.Sprintf(`
		SELECT id, author_id, name, category, description, thumbnail_url, nodes, edges, created_at, updated_at
		FROM %s
		ORDER BY created_at DESC
	`, r.tables.Presets)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var presets []models.Preset
	for rows.Next() {
		var (
			preset models.Preset
			nodes  []byte
			edges  []byte
		)
		err := rows.Scan(
			&preset.ID,
			&preset.AuthorID,
			&preset.Name,
			&preset.Category,
			&preset.Description,
			&preset.Thumbnail,
			&nodes,
			&edges,
			&preset.CreatedAt,
			&preset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		if err := json.Unmarshal(nodes, &preset.Nodes); err != nil {
			return nil, fmt.Errorf("unmarshal preset nodes: %w", err)
		}
		if err := json.Unmarshal(edges, &preset.Edges); err != nil {
			return nil, fmt.Errorf("unmarshal preset edges: %w", err)
		}
		presets = append(presets, preset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}

	if presets == nil {
		presets = []models.Preset{}
	}

	return presets, nil
}

// Delete removes a preset owned by authorID
func (r *PostgresPresetRepository) Delete(ctx context.Context, id, authorID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND author_id = $2`, r.tables.Presets)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, authorID)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("preset %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
