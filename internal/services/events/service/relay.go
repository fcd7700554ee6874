package service

import (
	"context"
	"time"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/logger"
	"allocvault/internal/platform/store"
	"allocvault/internal/services/events/repo"
)

// RelayTable is the ClickHouse mirror of the outbox
const RelayTable = "vault_events"

// ReplacingMergeTree keyed on seq absorbs a batch that was sent twice
const relayDDL = `
CREATE TABLE IF NOT EXISTS vault_events (
  seq        UInt64,
  kind       LowCardinality(String),
  subject    String,
  payload    String,
  created_at DateTime64(6, 'UTC')
) ENGINE = ReplacingMergeTree
ORDER BY seq`

// RelayConfig tunes the relay loop
type RelayConfig struct {
	Every time.Duration
	Batch int
}

// Relay copies committed outbox rows to ClickHouse
type Relay struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	ch     store.Clickhouse
	cfg    RelayConfig
}

// NewRelay wires the relay; ch must be non nil
func NewRelay(db repokit.TxRunner, binder repokit.Binder[repo.Repo], ch store.Clickhouse, cfg RelayConfig) *Relay {
	if db == nil || binder == nil || ch == nil {
		panic("events.Relay requires a TxRunner, a Repo binder and a Clickhouse client")
	}
	if cfg.Every <= 0 {
		cfg.Every = 2 * time.Second
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 500
	}
	return &Relay{db: db, binder: binder, ch: ch, cfg: cfg}
}

// Ensure creates the mirror table
func (r *Relay) Ensure(ctx context.Context) error { return r.ch.Exec(ctx, relayDDL) }

// Once relays one batch and reports how many rows moved
// rows stay unrelayed when the ClickHouse insert fails because the mark rolls back with it
func (r *Relay) Once(ctx context.Context) (int, error) {
	var n int
	err := r.db.Tx(ctx, func(q repokit.Queryer) error {
		rp := r.binder.Bind(q)
		rows, err := rp.TakeUnrelayed(ctx, r.cfg.Batch)
		if err != nil || len(rows) == 0 {
			return err
		}
		batch := make([][]any, 0, len(rows))
		seqs := make([]int64, 0, len(rows))
		for _, e := range rows {
			batch = append(batch, []any{uint64(e.Seq), e.Kind, e.Subject, string(e.Payload), e.CreatedAt.UTC()})
			seqs = append(seqs, e.Seq)
		}
		if err := r.ch.Insert(ctx, RelayTable, batch); err != nil {
			return err
		}
		n = len(rows)
		return rp.MarkRelayed(ctx, seqs)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Run relays on a ticker until ctx ends; a full batch triggers an immediate follow up
func (r *Relay) Run(ctx context.Context) error {
	log := logger.Named("events-relay")
	if err := r.Ensure(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(r.cfg.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				n, err := r.Once(ctx)
				if err != nil {
					log.Error().Err(err).Msg("relay batch failed")
					break
				}
				if n > 0 {
					log.Debug().Int("rows", n).Msg("relayed events")
				}
				if n < r.cfg.Batch {
					break
				}
			}
		}
	}
}
