package service

import (
	"context"
	"time"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/logger"
	"allocvault/internal/platform/store"
	evdom "allocvault/internal/services/events/domain"
)

// SweepConfig tunes the expiry loop
type SweepConfig struct {
	Every time.Duration
	Batch int
}

// Sweeper expires correlations whose callback never came
type Sweeper struct {
	svc *Svc
	cfg SweepConfig
	log *logger.Logger
}

// NewSweeper wires the expiry loop over svc
func NewSweeper(svc *Svc, cfg SweepConfig) *Sweeper {
	if svc == nil {
		panic("decryption.Sweeper requires a service")
	}
	if cfg.Every <= 0 {
		cfg.Every = 30 * time.Second
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	return &Sweeper{svc: svc, cfg: cfg, log: logger.Named("decryption-sweeper")}
}

// Run sweeps on a ticker until ctx ends
func (w *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(w.cfg.Every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			n, err := w.Once(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if n > 0 {
				w.log.Info().Int("expired", n).Msg("expired stale correlations")
			}
		}
	}
}

// Once expires one batch; requests go back to created and their oracle jobs are withdrawn
func (w *Sweeper) Once(ctx context.Context) (int, error) {
	var (
		n   int
		rec *evdom.Recorder
	)
	err := store.RunTx(ctx, w.svc.d.DB, txAttempts, func(q repokit.Queryer) error {
		b := w.svc.bind(q)
		rec = b.rec
		n = 0

		due, err := b.corr.ExpireDue(ctx, w.cfg.Batch)
		if err != nil {
			return err
		}
		for _, c := range due {
			if err := w.svc.release(ctx, b, c); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	w.svc.d.Publisher.Publish(rec.Events()...)
	return n, nil
}
