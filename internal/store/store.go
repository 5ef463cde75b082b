package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store persists projects and users in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables the service needs if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'processing',
			progress INT NOT NULL DEFAULT 0,
			status_message TEXT,
			files_json JSONB NOT NULL DEFAULT '[]',
			documentation TEXT,
			generation_metadata TEXT,
			diagrams_json TEXT,
			created_by TEXT,
			is_public BOOLEAN NOT NULL DEFAULT false,
			version TEXT NOT NULL DEFAULT '1.0',
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateProject inserts a new project. A missing ID is generated.
func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = models.ProjectStatusProcessing
	}
	if p.Version == "" {
		p.Version = "1.0"
	}
	filesJSON, err := json.Marshal(p.Files)
	if err != nil {
		return fmt.Errorf("failed to marshal project files: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO projects (id, title, description, status, progress, status_message, files_json, created_by, is_public, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		p.ID, p.Title, p.Description, p.Status, p.Progress, p.StatusMessage,
		filesJSON, p.CreatedBy, p.IsPublic, p.Version,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProject loads one project with its files.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var (
		p         models.Project
		filesJSON []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, status, progress, status_message, files_json,
		        documentation, generation_metadata, diagrams_json, created_by,
		        is_public, version, error_message, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.Progress, &p.StatusMessage,
		&filesJSON, &p.Documentation, &p.GenerationMetadata, &p.DiagramsJSON,
		&p.CreatedBy, &p.IsPublic, &p.Version, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if len(filesJSON) > 0 {
		if err := json.Unmarshal(filesJSON, &p.Files); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project files: %w", err)
		}
	}
	return &p, nil
}

// ListProjects returns the caller's own projects plus public and unowned
// ones, newest first, without file contents or documentation bodies.
func (s *Store) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, status, progress, status_message, created_by,
		        is_public, version, error_message, created_at, updated_at
		 FROM projects
		 WHERE created_by = $1 OR is_public OR created_by IS NULL
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.Progress,
			&p.StatusMessage, &p.CreatedBy, &p.IsPublic, &p.Version, &p.ErrorMessage,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// UpdateProject changes the mutable descriptive fields of a project.
func (s *Store) UpdateProject(ctx context.Context, id, title, description string, isPublic *bool) (*models.Project, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects
		 SET title = COALESCE(NULLIF($2, ''), title),
		     description = CASE WHEN $3::text IS NULL THEN description ELSE $3 END,
		     is_public = COALESCE($4, is_public),
		     updated_at = now()
		 WHERE id = $1`,
		id, title, description, isPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetProject(ctx, id)
}

// UpdateProgress records a processing checkpoint.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress int, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects
		 SET progress = $2, status_message = $3, status = $4, updated_at = now()
		 WHERE id = $1`,
		id, progress, message, models.ProjectStatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkCompleted stores the generated documentation and flips the project to
// completed at 100 percent.
func (s *Store) MarkCompleted(ctx context.Context, id string, documentation, metadata string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects
		 SET status = $2, progress = 100, status_message = $3,
		     documentation = $4, generation_metadata = $5, error_message = NULL,
		     updated_at = now()
		 WHERE id = $1`,
		id, models.ProjectStatusCompleted, "Documentation generated successfully",
		documentation, metadata)
	if err != nil {
		return fmt.Errorf("failed to mark project completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkError flips the project to the error state with a message.
func (s *Store) MarkError(ctx context.Context, id string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects
		 SET status = $2, status_message = $3, error_message = $3, updated_at = now()
		 WHERE id = $1`,
		id, models.ProjectStatusError, message)
	if err != nil {
		return fmt.Errorf("failed to mark project errored: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDocumentation replaces the stored document, optionally together with
// regenerated metadata. Pass a nil metadata pointer to keep the existing one.
func (s *Store) UpdateDocumentation(ctx context.Context, id, documentation string, metadata *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects
		 SET documentation = $2,
		     generation_metadata = COALESCE($3, generation_metadata),
		     updated_at = now()
		 WHERE id = $1`,
		id, documentation, metadata)
	if err != nil {
		return fmt.Errorf("failed to update documentation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetForRegeneration puts a project back into processing before a new run.
func (s *Store) ResetForRegeneration(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects
		 SET status = $2, progress = 0, status_message = $3,
		     error_message = NULL, updated_at = now()
		 WHERE id = $1`,
		id, models.ProjectStatusProcessing, "Regenerating documentation...")
	if err != nil {
		return fmt.Errorf("failed to reset project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject removes a project permanently.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
