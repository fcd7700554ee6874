// Package repo provides postgres access for the request ledger
package repo

import (
	"context"
	"time"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/store"
)

// Repo defines the ledger storage contract
type Repo interface {
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, r RowRequest) (time.Time, error)
	Get(ctx context.Context, id int64) (RowRequest, error)
	Lock(ctx context.Context, id int64) (RowRequest, error)
	SetState(ctx context.Context, id int64, from, to string) error
	MarkDecrypted(ctx context.Context, id, demand, priority int64) (RowRequest, error)
}

// RowRequest is one requests row
type RowRequest struct {
	ID          int64
	Submitter   string
	EncDemand   []byte
	EncPriority []byte
	Zone        string
	State       string
	Demand      int64
	Priority    int64
	SubmittedAt time.Time
	DecryptedAt *time.Time
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

const requestCols = `id, submitter, enc_demand, enc_priority, target_zone, state, demand, priority, submitted_at, decrypted_at`

func scanRequest(r store.Row) (RowRequest, error) {
	var x RowRequest
	err := r.Scan(&x.ID, &x.Submitter, &x.EncDemand, &x.EncPriority, &x.Zone, &x.State,
		&x.Demand, &x.Priority, &x.SubmittedAt, &x.DecryptedAt)
	return x, err
}

const detailCols = `id, submitter, target_zone, state, demand, priority, submitted_at, decrypted_at`

func scanDetail(r store.Row) (RowRequest, error) {
	var x RowRequest
	err := r.Scan(&x.ID, &x.Submitter, &x.Zone, &x.State, &x.Demand, &x.Priority, &x.SubmittedAt, &x.DecryptedAt)
	return x, err
}

// NextID hands out the allocator value and bumps it; the row lock serializes submitters
// and a rolled back transaction gives the id back
func (r *queries) NextID(ctx context.Context) (int64, error) {
	return store.Scalar[int64](ctx, r.q, `
UPDATE ledger_seq SET next_id = next_id + 1 WHERE one_row RETURNING next_id - 1`)
}

func (r *queries) Insert(ctx context.Context, x RowRequest) (time.Time, error) {
	return store.Scalar[time.Time](ctx, r.q, `
INSERT INTO requests (id, submitter, enc_demand, enc_priority, target_zone, state, submitted_at)
VALUES ($1, $2, $3, $4, $5, 'created', now())
RETURNING submitted_at`, x.ID, x.Submitter, x.EncDemand, x.EncPriority, x.Zone)
}

// Get reads id without its ciphertext columns; Lock returns the full row
func (r *queries) Get(ctx context.Context, id int64) (RowRequest, error) {
	return store.One(ctx, r.q, scanDetail, `SELECT `+detailCols+` FROM requests WHERE id = $1`, id)
}

func (r *queries) Lock(ctx context.Context, id int64) (RowRequest, error) {
	return store.One(ctx, r.q, scanRequest, `SELECT `+requestCols+` FROM requests WHERE id = $1 FOR UPDATE`, id)
}

// SetState moves id from one state to another; ErrNotFound when id is not in from
func (r *queries) SetState(ctx context.Context, id int64, from, to string) error {
	return store.ExecOne(ctx, r.q, `UPDATE requests SET state = $3 WHERE id = $1 AND state = $2`, id, from, to)
}

func (r *queries) MarkDecrypted(ctx context.Context, id, demand, priority int64) (RowRequest, error) {
	const sql = `
UPDATE requests
SET state = 'decrypted', demand = $2, priority = $3, decrypted_at = now()
WHERE id = $1 AND state = 'decryption_requested'
RETURNING ` + requestCols
	return store.One(ctx, r.q, scanRequest, sql, id, demand, priority)
}
