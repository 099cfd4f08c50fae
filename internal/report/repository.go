package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals an unknown report id. Handlers map it to 404.
var ErrNotFound = errors.New("report not found")

// Repository persists computed reports as JSONB blobs.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the reports table when absent. Safe to run on
// every startup.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS reports (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			file_name text NOT NULL,
			data jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)
	`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure reports schema: %w", err)
	}
	return nil
}

// Save stores a report and returns its generated id.
func (r *Repository) Save(ctx context.Context, rep *Report) (string, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO reports (file_name, data)
		VALUES ($1, $2)
		RETURNING id::text
	`

	var id string
	if err := r.pool.QueryRow(ctx, query, rep.FileName, data).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return id, nil
}

// Get retrieves a stored report by id. The blob is returned exactly as
// stored.
func (r *Repository) Get(ctx context.Context, id string) (*Report, error) {
	query := `
		SELECT data
		FROM reports
		WHERE id = $1::uuid
	`

	var data []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rep, nil
}

// DeleteOlderThan purges reports created before the cutoff and returns
// the number of rows removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM reports
		WHERE created_at < $1
	`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old reports: %w", err)
	}
	return tag.RowsAffected(), nil
}
