// Package repo provides postgres access for the event outbox
package repo

import (
	"context"
	"time"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/store"
)

// Repo defines the outbox storage contract
type Repo interface {
	Append(ctx context.Context, kind, subject string, payload []byte) (RowEvent, error)
	After(ctx context.Context, after int64, limit int) ([]RowEvent, error)
	TakeUnrelayed(ctx context.Context, limit int) ([]RowEvent, error)
	MarkRelayed(ctx context.Context, seqs []int64) error
}

// RowEvent is one events row
type RowEvent struct {
	Seq       int64
	Kind      string
	Subject   string
	Payload   []byte
	CreatedAt time.Time
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

func scanEvent(r store.Row) (RowEvent, error) {
	var e RowEvent
	err := r.Scan(&e.Seq, &e.Kind, &e.Subject, &e.Payload, &e.CreatedAt)
	return e, err
}

func (r *queries) Append(ctx context.Context, kind, subject string, payload []byte) (RowEvent, error) {
	const sql = `
INSERT INTO events (kind, subject, payload, created_at)
VALUES ($1, $2, $3::jsonb, now())
RETURNING seq, kind, subject, payload, created_at`
	return store.One(ctx, r.q, scanEvent, sql, kind, subject, string(payload))
}

func (r *queries) After(ctx context.Context, after int64, limit int) ([]RowEvent, error) {
	const sql = `
SELECT seq, kind, subject, payload, created_at
FROM events
WHERE seq > $1
ORDER BY seq
LIMIT $2`
	return store.Many(ctx, r.q, scanEvent, sql, after, limit)
}

func (r *queries) TakeUnrelayed(ctx context.Context, limit int) ([]RowEvent, error) {
	const sql = `
SELECT seq, kind, subject, payload, created_at
FROM events
WHERE relayed_at IS NULL
ORDER BY seq
LIMIT $1
FOR UPDATE SKIP LOCKED`
	return store.Many(ctx, r.q, scanEvent, sql, limit)
}

func (r *queries) MarkRelayed(ctx context.Context, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE events SET relayed_at = now() WHERE seq = ANY($1)`, seqs)
	return err
}
