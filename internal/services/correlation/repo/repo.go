// Package repo provides postgres access for callback correlations
package repo

import (
	"context"
	"time"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/store"
)

// Constraint names the service maps to domain errors
const (
	PKey       = "correlations_pkey"
	OneLiveIdx = "correlations_one_live_request"
)

// Repo defines the correlation storage contract
type Repo interface {
	Insert(ctx context.Context, c RowCorrelation, ttl time.Duration) (RowCorrelation, error)
	Get(ctx context.Context, callbackID string) (RowCorrelation, error)
	Lock(ctx context.Context, callbackID string) (RowCorrelation, error)
	LiveForRequest(ctx context.Context, requestID int64) (RowCorrelation, error)
	SetState(ctx context.Context, callbackID, from, to string) error
	ExpireDue(ctx context.Context, limit int) ([]RowCorrelation, error)
}

// RowCorrelation is one correlations row plus the computed due flag
type RowCorrelation struct {
	CallbackID string
	Flow       string
	RequestID  *int64
	ZoneHash   []byte
	State      string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ResolvedAt *time.Time
	Due        bool
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

const corrCols = `callback_id, flow, request_id, zone_hash, state, created_at, expires_at, resolved_at, expires_at <= now()`

func scanCorr(r store.Row) (RowCorrelation, error) {
	var c RowCorrelation
	err := r.Scan(&c.CallbackID, &c.Flow, &c.RequestID, &c.ZoneHash, &c.State, &c.CreatedAt, &c.ExpiresAt,
		&c.ResolvedAt, &c.Due)
	return c, err
}

// Insert stores a pending correlation; duplicate keys come back as the raw pg error for the service to map
func (r *queries) Insert(ctx context.Context, c RowCorrelation, ttl time.Duration) (RowCorrelation, error) {
	const sql = `
INSERT INTO correlations (callback_id, flow, request_id, zone_hash, state, created_at, expires_at)
VALUES ($1, $2, $3, $4, 'pending', now(), now() + ($5 * interval '1 microsecond'))
RETURNING ` + corrCols
	return store.One(ctx, r.q, scanCorr, sql, c.CallbackID, c.Flow, c.RequestID, c.ZoneHash, ttl.Microseconds())
}

func (r *queries) Get(ctx context.Context, callbackID string) (RowCorrelation, error) {
	return store.One(ctx, r.q, scanCorr, `SELECT `+corrCols+` FROM correlations WHERE callback_id = $1`, callbackID)
}

func (r *queries) Lock(ctx context.Context, callbackID string) (RowCorrelation, error) {
	return store.One(ctx, r.q, scanCorr, `SELECT `+corrCols+` FROM correlations WHERE callback_id = $1 FOR UPDATE`, callbackID)
}

func (r *queries) LiveForRequest(ctx context.Context, requestID int64) (RowCorrelation, error) {
	const sql = `SELECT ` + corrCols + ` FROM correlations
WHERE request_id = $1 AND flow = 'request' AND state = 'pending'
FOR UPDATE`
	return store.One(ctx, r.q, scanCorr, sql, requestID)
}

func (r *queries) SetState(ctx context.Context, callbackID, from, to string) error {
	const sql = `
UPDATE correlations
SET state = $3, resolved_at = CASE WHEN $3 = 'resolved' THEN now() ELSE resolved_at END
WHERE callback_id = $1 AND state = $2`
	return store.ExecOne(ctx, r.q, sql, callbackID, from, to)
}

// ExpireDue flips a batch of overdue pending rows to expired; rows locked by a resolver are skipped
func (r *queries) ExpireDue(ctx context.Context, limit int) ([]RowCorrelation, error) {
	const sql = `
UPDATE correlations
SET state = 'expired'
WHERE callback_id IN (
  SELECT callback_id FROM correlations
  WHERE state = 'pending' AND expires_at <= now()
  ORDER BY expires_at
  LIMIT $1
  FOR UPDATE SKIP LOCKED
)
RETURNING ` + corrCols
	return store.Many(ctx, r.q, scanCorr, sql, limit)
}
