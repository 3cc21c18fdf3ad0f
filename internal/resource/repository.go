package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const resourceColumns = `id, title, file_url, object_key, year, subject, course, type, folder, content_type, size_bytes, status, created_at, updated_at`

// pgxPool is the subset of *pgxpool.Pool the repository uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository provides access to resource metadata storage.
type Repository struct {
	pool pgxPool
}

// NewRepository builds a new resource repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return newRepository(pool)
}

func newRepository(pool pgxPool) *Repository {
	return &Repository{pool: pool}
}

// CreatePending inserts a row that marks an upload in progress.
func (r *Repository) CreatePending(ctx context.Context, res Resource) (Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO resources (id, title, object_key, year, subject, course, type, folder, content_type, size_bytes, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending')
RETURNING ` + resourceColumns + `;`

	stored, err := scanResource(r.pool.QueryRow(ctx, query,
		res.ID,
		res.Title,
		res.ObjectKey,
		res.Year,
		res.Subject,
		res.Course,
		res.Type,
		res.Folder,
		res.ContentType,
		res.SizeBytes,
	))
	if err != nil {
		return Resource{}, fmt.Errorf("create pending resource: %w", err)
	}
	return stored, nil
}

// Promote marks a pending row ready and records its durable URL.
func (r *Repository) Promote(ctx context.Context, id uuid.UUID, fileURL string) (Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE resources
SET status = 'ready', file_url = $2, updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING ` + resourceColumns + `;`

	stored, err := scanResource(r.pool.QueryRow(ctx, query, id, fileURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, ErrResourceNotFound
		}
		return Resource{}, fmt.Errorf("promote resource: %w", err)
	}
	return stored, nil
}

// DiscardPending deletes a pending row and reports whether one was deleted.
// The row stays locked while cleanup runs; a cleanup error rolls the delete
// back so the row is left for a later sweep. Rows that are no longer pending
// are untouched and cleanup is not called.
func (r *Repository) DiscardPending(ctx context.Context, id uuid.UUID, cleanup func(context.Context, Resource) error) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin discard: %w", err)
	}

	query := `
DELETE FROM resources
WHERE id = $1 AND status = 'pending'
RETURNING ` + resourceColumns + `;`

	res, err := scanResource(tx.QueryRow(ctx, query, id))
	if err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("discard pending resource: %w", err)
	}

	if cleanup != nil {
		if err := cleanup(ctx, res); err != nil {
			_ = tx.Rollback(ctx)
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit discard: %w", err)
	}
	return true, nil
}

// ListByYear returns ready resources whose year equals year exactly.
func (r *Repository) ListByYear(ctx context.Context, year string) ([]Resource, error) {
	query := `
SELECT ` + resourceColumns + `
FROM resources
WHERE status = 'ready' AND year = $1
ORDER BY created_at DESC;`

	return r.list(ctx, query, year)
}

// ListAll returns every ready resource.
func (r *Repository) ListAll(ctx context.Context) ([]Resource, error) {
	query := `
SELECT ` + resourceColumns + `
FROM resources
WHERE status = 'ready'
ORDER BY type, folder, created_at DESC;`

	return r.list(ctx, query)
}

// ListStalePending returns pending rows created before cutoff, oldest first.
func (r *Repository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Resource, error) {
	query := `
SELECT ` + resourceColumns + `
FROM resources
WHERE status = 'pending' AND created_at < $1
ORDER BY created_at
LIMIT $2;`

	return r.list(ctx, query, cutoff, limit)
}

// Get fetches a single ready resource.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT ` + resourceColumns + `
FROM resources
WHERE id = $1 AND status = 'ready';`

	res, err := scanResource(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, ErrResourceNotFound
		}
		return Resource{}, fmt.Errorf("get resource: %w", err)
	}
	return res, nil
}

// Delete removes a ready resource and returns the deleted record.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
DELETE FROM resources
WHERE id = $1 AND status = 'ready'
RETURNING ` + resourceColumns + `;`

	res, err := scanResource(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, ErrResourceNotFound
		}
		return Resource{}, fmt.Errorf("delete resource: %w", err)
	}
	return res, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	list := []Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return list, nil
}

func scanResource(row pgx.Row) (Resource, error) {
	var (
		res     Resource
		fileURL *string
		status  string
	)
	err := row.Scan(
		&res.ID,
		&res.Title,
		&fileURL,
		&res.ObjectKey,
		&res.Year,
		&res.Subject,
		&res.Course,
		&res.Type,
		&res.Folder,
		&res.ContentType,
		&res.SizeBytes,
		&status,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return Resource{}, err
	}
	if fileURL != nil {
		res.FileURL = *fileURL
	}
	res.Status = Status(status)
	return res, nil
}
