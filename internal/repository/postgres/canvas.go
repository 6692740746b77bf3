package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"brandcanvas/internal/domain"
	"brandcanvas/internal/domain/models"
	"brandcanvas/internal/domain/repositories"
)

// PostgresCanvasRepository implements the CanvasRepository interface.
// Node, edge and drawing payloads are stored as JSONB; the row also
// carries a version counter used for conditional updates.
type PostgresCanvasRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCanvasRepository creates a new canvas repository
func NewCanvasRepository(config *RepositoryConfig) repositories.CanvasRepository {
	return &PostgresCanvasRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new canvas
func (r *PostgresCanvasRepository) Create(ctx context.Context, canvas *models.CanvasProject) error {
	nodes, edges, drawings, collab, err := marshalPayloads(canvas)
	if err != nil {
		return err
	}

	// The service pre-generates the canvas ID so blob migration can
	// namespace storage keys before the row exists.
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, name, nodes, edges, drawings, collaboration, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, $7::jsonb, 1, $8, $9)
		RETURNING id, version, created_at, updated_at
	`, r.tables.Canvases)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		canvas.ID,
		canvas.OwnerID,
		canvas.Name,
		nodes,
		edges,
		drawings,
		collab,
		canvas.CreatedAt,
		canvas.UpdatedAt,
	).Scan(&canvas.ID, &canvas.Version, &canvas.CreatedAt, &canvas.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create canvas: %w", err)
	}

	return nil
}

// GetByID retrieves a canvas by ID
func (r *PostgresCanvasRepository) GetByID(ctx context.Context, id string) (*models.CanvasProject, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, nodes, edges, drawings, share_id, collaboration, version, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Canvases)

	return r.getOne(ctx, query, id)
}

// GetByShareID retrieves a canvas by its public share token
func (r *PostgresCanvasRepository) GetByShareID(ctx context.Context, shareID string) (*models.CanvasProject, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, nodes, edges, drawings, share_id, collaboration, version, created_at, updated_at
		FROM %s
		WHERE share_id = $1
	`, r.tables.Canvases)

	return r.getOne(ctx, query, shareID)
}

func (r *PostgresCanvasRepository) getOne(ctx context.Context, query, arg string) (*models.CanvasProject, error) {
	var (
		canvas   models.CanvasProject
		nodes    []byte
		edges    []byte
		drawings []byte
		collab   []byte
	)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, arg).Scan(
		&canvas.ID,
		&canvas.OwnerID,
		&canvas.Name,
		&nodes,
		&edges,
		&drawings,
		&canvas.ShareID,
		&collab,
		&canvas.Version,
		&canvas.CreatedAt,
		&canvas.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("canvas %s: %w", arg, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get canvas: %w", err)
	}

	if err := unmarshalPayloads(&canvas, nodes, edges, drawings, collab); err != nil {
		return nil, err
	}

	return &canvas, nil
}

// List retrieves canvas summaries for a user, ordered by updated_at DESC.
// Node payloads stay in the database.
func (r *PostgresCanvasRepository) List(ctx context.Context, ownerID string) ([]models.CanvasSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, name, share_id IS NOT NULL, version, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Canvases)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}
	defer rows.Close()

	var summaries []models.CanvasSummary
	for rows.Next() {
		var s models.CanvasSummary
		err := rows.Scan(&s.ID, &s.Name, &s.Shared, &s.Version, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan canvas: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate canvases: %w", err)
	}

	if summaries == nil {
		summaries = []models.CanvasSummary{}
	}

	return summaries, nil
}

// Update persists the canvas conditionally on its version. The WHERE
// clause guards against concurrent writers: a mismatch updates zero rows
// and surfaces as domain.ErrConflict instead of last-write-wins.
func (r *PostgresCanvasRepository) Update(ctx context.Context, canvas *models.CanvasProject) error {
	nodes, edges, drawings, collab, err := marshalPayloads(canvas)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, nodes = $2::jsonb, edges = $3::jsonb, drawings = $4::jsonb,
		    share_id = $5, collaboration = $6::jsonb, version = version + 1, updated_at = $7
		WHERE id = $8 AND version = $9
	`, r.tables.Canvases)

	canvas.UpdatedAt = time.Now()

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		canvas.Name,
		nodes,
		edges,
		drawings,
		canvas.ShareID,
		collab,
		canvas.UpdatedAt,
		canvas.ID,
		canvas.Version,
	)
	if err != nil {
		return fmt.Errorf("update canvas: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the row is gone or someone else saved first.
		if _, err := r.GetByID(ctx, canvas.ID); err != nil {
			return err
		}
		return fmt.Errorf("canvas %s was modified concurrently: %w", canvas.ID, domain.ErrConflict)
	}

	canvas.Version++
	return nil
}

// Delete removes a canvas permanently
func (r *PostgresCanvasRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Canvases)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete canvas: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("canvas %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func marshalPayloads(canvas *models.CanvasProject) (nodes, edges, drawings, collab []byte, err error) {
	if canvas.Nodes == nil {
		canvas.Nodes = []models.CanvasNode{}
	}
	if canvas.Edges == nil {
		canvas.Edges = []map[string]interface{}{}
	}

	if nodes, err = json.Marshal(canvas.Nodes); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal nodes: %w", err)
	}
	if edges, err = json.Marshal(canvas.Edges); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal edges: %w", err)
	}
	if canvas.Drawings != nil {
		if drawings, err = json.Marshal(canvas.Drawings); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal drawings: %w", err)
		}
	}
	if collab, err = json.Marshal(canvas.Collaboration); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal collaboration: %w", err)
	}
	return nodes, edges, drawings, collab, nil
}

func unmarshalPayloads(canvas *models.CanvasProject, nodes, edges, drawings, collab []byte) error {
	if err := json.Unmarshal(nodes, &canvas.Nodes); err != nil {
		return fmt.Errorf("unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal(edges, &canvas.Edges); err != nil {
		return fmt.Errorf("unmarshal edges: %w", err)
	}
	if drawings != nil {
		if err := json.Unmarshal(drawings, &canvas.Drawings); err != nil {
			return fmt.Errorf("unmarshal drawings: %w", err)
		}
	}
	if err := json.Unmarshal(collab, &canvas.Collaboration); err != nil {
		return fmt.Errorf("unmarshal collaboration: %w", err)
	}
	return nil
}
