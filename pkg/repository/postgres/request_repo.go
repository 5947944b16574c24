package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/matcher/pkg/analysis"
)

// RequestRepository хранит историю запросов анализа.
type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) (*RequestRepository, error) {
	r := &RequestRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RequestRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS matcher_requests (
	id BIGSERIAL PRIMARY KEY,
	request_id UUID NOT NULL UNIQUE,
	user_id UUID NOT NULL,
	kind TEXT NOT NULL DEFAULT 'analyze',
	vacancy_text TEXT NOT NULL,
	resume_text TEXT NOT NULL,
	result JSONB,
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matcher_requests_user ON matcher_requests(user_id);
CREATE INDEX IF NOT EXISTS idx_matcher_requests_created ON matcher_requests(created_at);
`)
	return err
}

func (r *RequestRepository) Store(ctx context.Context, req analysis.Request) error {
	if req.RequestID == uuid.Nil {
		req.RequestID = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	var result any
	if len(req.Result) > 0 {
		result = []byte(req.Result)
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO matcher_requests (request_id, user_id, kind, vacancy_text, resume_text, result, status, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, req.RequestID, req.UserID, req.Kind, req.VacancyText, req.ResumeText, result, req.Status, req.Error, req.CreatedAt)
	return err
}

func (r *RequestRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]analysis.Request, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, request_id, user_id, kind, vacancy_text, resume_text, result, status, error, created_at
FROM matcher_requests
WHERE user_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *RequestRepository) ListAll(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]analysis.Request, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if userID != nil {
		rows, err = r.pool.Query(ctx, `
SELECT id, request_id, user_id, kind, vacancy_text, resume_text, result, status, error, created_at
FROM matcher_requests
WHERE user_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`, *userID, limit, offset)
	} else {
		rows, err = r.pool.Query(ctx, `
SELECT id, request_id, user_id, kind, vacancy_text, resume_text, result, status, error, created_at
FROM matcher_requests
ORDER BY id DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows pgx.Rows) ([]analysis.Request, error) {
	items := []analysis.Request{}
	for rows.Next() {
		var (
			req     analysis.Request
			result  []byte
			created time.Time
		)
		if err := rows.Scan(&req.ID, &req.RequestID, &req.UserID, &req.Kind,
			&req.VacancyText, &req.ResumeText, &result, &req.Status, &req.Error, &created); err != nil {
			return nil, err
		}
		req.Result = result
		req.CreatedAt = created.UTC()
		items = append(items, req)
	}
	return items, rows.Err()
}

var _ analysis.Repository = (*RequestRepository)(nil)
