// Package repo provides postgres access for the oracle job queue
package repo

import (
	"context"
	"time"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/store"
)

// Repo defines the job queue contract
type Repo interface {
	Enqueue(ctx context.Context, callbackID, handler string, handles [][]byte) error
	Lease(ctx context.Context, owner string, limit int, lease time.Duration) ([]RowJob, error)
	Done(ctx context.Context, callbackID, owner string) error
	Retry(ctx context.Context, callbackID, owner, lastErr string, delay time.Duration) error
	Fail(ctx context.Context, callbackID, owner, lastErr string) error
	Cancel(ctx context.Context, callbackID, reason string) error
	Get(ctx context.Context, callbackID string) (RowJob, error)
}

// RowJob is one oracle_jobs row
type RowJob struct {
	CallbackID string
	Handler    string
	Handles    [][]byte
	State      string
	Attempts   int
	LastError  string
}

type (
	// PG implements Repo on Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG returns the Postgres binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a queryer
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const jobCols = `callback_id, handler, handles, state, attempts, COALESCE(last_error, '')`

func scanJob(r store.Row) (RowJob, error) {
	var j RowJob
	err := r.Scan(&j.CallbackID, &j.Handler, &j.Handles, &j.State, &j.Attempts, &j.LastError)
	return j, err
}

func (r *queries) Enqueue(ctx context.Context, callbackID, handler string, handles [][]byte) error {
	_, err := r.q.Exec(ctx, `
INSERT INTO oracle_jobs (callback_id, handler, handles) VALUES ($1, $2, $3)`, callbackID, handler, handles)
	return err
}

// Lease claims ready jobs and jobs whose previous lease ran out
func (r *queries) Lease(ctx context.Context, owner string, limit int, lease time.Duration) ([]RowJob, error) {
	const sql = `
UPDATE oracle_jobs
SET state = 'leased', leased_by = $1::uuid, attempts = attempts + 1, updated_at = now(),
    lease_expires_at = now() + ($3 * interval '1 microsecond')
WHERE callback_id IN (
  SELECT callback_id FROM oracle_jobs
  WHERE (state = 'queued' AND next_attempt_at <= now())
     OR (state = 'leased' AND lease_expires_at <= now())
  ORDER BY next_attempt_at, created_at
  LIMIT $2
  FOR UPDATE SKIP LOCKED
)
RETURNING ` + jobCols
	return store.Many(ctx, r.q, scanJob, sql, owner, limit, lease.Microseconds())
}

func (r *queries) Done(ctx context.Context, callbackID, owner string) error {
	return store.ExecOne(ctx, r.q, `
UPDATE oracle_jobs
SET state = 'done', leased_by = NULL, lease_expires_at = NULL, last_error = NULL, updated_at = now()
WHERE callback_id = $1 AND state = 'leased' AND leased_by = $2::uuid`, callbackID, owner)
}

func (r *queries) Retry(ctx context.Context, callbackID, owner, lastErr string, delay time.Duration) error {
	return store.ExecOne(ctx, r.q, `
UPDATE oracle_jobs
SET state = 'queued', leased_by = NULL, lease_expires_at = NULL, last_error = $3, updated_at = now(),
    next_attempt_at = now() + ($4 * interval '1 microsecond')
WHERE callback_id = $1 AND state = 'leased' AND leased_by = $2::uuid`, callbackID, owner, lastErr, delay.Microseconds())
}

func (r *queries) Fail(ctx context.Context, callbackID, owner, lastErr string) error {
	return store.ExecOne(ctx, r.q, `
UPDATE oracle_jobs
SET state = 'failed', leased_by = NULL, lease_expires_at = NULL, last_error = $3, updated_at = now()
WHERE callback_id = $1 AND state = 'leased' AND leased_by = $2::uuid`, callbackID, owner, lastErr)
}

func (r *queries) Cancel(ctx context.Context, callbackID, reason string) error {
	_, err := r.q.Exec(ctx, `
UPDATE oracle_jobs
SET state = 'failed', leased_by = NULL, lease_expires_at = NULL, last_error = $2, updated_at = now()
WHERE callback_id = $1 AND state IN ('queued', 'leased')`, callbackID, reason)
	return err
}

func (r *queries) Get(ctx context.Context, callbackID string) (RowJob, error) {
	return store.One(ctx, r.q, scanJob, `SELECT `+jobCols+` FROM oracle_jobs WHERE callback_id = $1`, callbackID)
}
