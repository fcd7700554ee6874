// Package repo provides postgres access for zone accumulators and reveals
package repo

import (
	"context"
	"time"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/store"
)

// Repo defines the zone storage contract
type Repo interface {
	Get(ctx context.Context, name string) (RowZone, error)
	Lock(ctx context.Context, name string) (RowZone, error)
	Create(ctx context.Context, name string, hash, zero []byte) (bool, error)
	SetTotal(ctx context.Context, name string, total []byte) (RowZone, error)
	ListNames(ctx context.Context) ([]RowName, error)
	InsertReveal(ctx context.Context, callbackID, zone string, total int64) (RowReveal, error)
	SetLastRevealed(ctx context.Context, name string, total int64, at time.Time) error
	LatestReveal(ctx context.Context, zone string) (RowReveal, error)
}

// RowZone is one zones row
type RowZone struct {
	Name              string
	Seq               int64
	Hash              []byte
	EncTotal          []byte
	Contributions     int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastRevealedTotal *int64
	LastRevealedAt    *time.Time
}

// RowName is the ciphertext free registry projection of a zones row
type RowName struct {
	Name string
	Seq  int64
	Hash []byte
}

// RowReveal is one zone_reveals row
type RowReveal struct {
	CallbackID string
	Zone       string
	Total      int64
	RevealedAt time.Time
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

const zoneCols = `name, seq, hash, enc_total, contributions, created_at, updated_at, last_revealed_total, last_revealed_at`

func scanZone(r store.Row) (RowZone, error) {
	var z RowZone
	err := r.Scan(&z.Name, &z.Seq, &z.Hash, &z.EncTotal, &z.Contributions, &z.CreatedAt, &z.UpdatedAt,
		&z.LastRevealedTotal, &z.LastRevealedAt)
	return z, err
}

func scanName(r store.Row) (RowName, error) {
	var n RowName
	err := r.Scan(&n.Name, &n.Seq, &n.Hash)
	return n, err
}

func scanReveal(r store.Row) (RowReveal, error) {
	var v RowReveal
	err := r.Scan(&v.CallbackID, &v.Zone, &v.Total, &v.RevealedAt)
	return v, err
}

func (r *queries) Get(ctx context.Context, name string) (RowZone, error) {
	return store.One(ctx, r.q, scanZone, `SELECT `+zoneCols+` FROM zones WHERE name = $1`, name)
}

func (r *queries) Lock(ctx context.Context, name string) (RowZone, error) {
	return store.One(ctx, r.q, scanZone, `SELECT `+zoneCols+` FROM zones WHERE name = $1 FOR UPDATE`, name)
}

// Create inserts a zone at the given zero total; a concurrent creator wins and false is returned
func (r *queries) Create(ctx context.Context, name string, hash, zero []byte) (bool, error) {
	tag, err := r.q.Exec(ctx, `
INSERT INTO zones (name, hash, enc_total, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (name) DO NOTHING`, name, hash, zero)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *queries) SetTotal(ctx context.Context, name string, total []byte) (RowZone, error) {
	const sql = `
UPDATE zones
SET enc_total = $2, contributions = contributions + 1, updated_at = now()
WHERE name = $1
RETURNING ` + zoneCols
	return store.One(ctx, r.q, scanZone, sql, name, total)
}

func (r *queries) ListNames(ctx context.Context) ([]RowName, error) {
	return store.Many(ctx, r.q, scanName, `SELECT name, seq, hash FROM zones ORDER BY seq`)
}

func (r *queries) InsertReveal(ctx context.Context, callbackID, zone string, total int64) (RowReveal, error) {
	const sql = `
INSERT INTO zone_reveals (callback_id, zone, total, revealed_at)
VALUES ($1, $2, $3, now())
RETURNING callback_id, zone, total, revealed_at`
	return store.One(ctx, r.q, scanReveal, sql, callbackID, zone, total)
}

func (r *queries) SetLastRevealed(ctx context.Context, name string, total int64, at time.Time) error {
	return store.ExecOne(ctx, r.q, `
UPDATE zones SET last_revealed_total = $2, last_revealed_at = $3 WHERE name = $1`, name, total, at)
}

func (r *queries) LatestReveal(ctx context.Context, zone string) (RowReveal, error) {
	const sql = `
SELECT callback_id, zone, total, revealed_at
FROM zone_reveals
WHERE zone = $1
ORDER BY revealed_at DESC, callback_id DESC
LIMIT 1`
	return store.One(ctx, r.q, scanReveal, sql, zone)
}
