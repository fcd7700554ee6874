package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"allocvault/internal/core/attest"
	"allocvault/internal/core/cipher"
	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/logger"
	"allocvault/internal/services/oracle/domain"
	"allocvault/internal/services/oracle/repo"

	"github.com/google/uuid"
)

// WorkerConfig tunes leasing and retries
type WorkerConfig struct {
	Every       time.Duration
	Concurrency int
	TakeBatch   int
	Lease       time.Duration
	RetryBase   time.Duration
	MaxAttempts int
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Every <= 0 {
		c.Every = 500 * time.Millisecond
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.TakeBatch <= 0 {
		c.TakeBatch = 16
	}
	if c.Lease <= 0 {
		c.Lease = time.Minute
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 500 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	return c
}

// Worker leases queued jobs, decrypts them and delivers signed callbacks
type Worker struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	dec    cipher.Decrypter
	signer *attest.Signer
	out    domain.Deliverer
	cfg    WorkerConfig
	owner  string
	log    *logger.Logger
}

// NewWorker wires the oracle worker; each worker leases under its own id
func NewWorker(db repokit.TxRunner, binder repokit.Binder[repo.Repo], dec cipher.Decrypter, signer *attest.Signer, out domain.Deliverer, cfg WorkerConfig) *Worker {
	if db == nil || binder == nil || dec == nil || signer == nil || out == nil {
		panic("oracle.Worker requires a TxRunner, Repo binder, Decrypter, Signer and Deliverer")
	}
	return &Worker{
		db:     db,
		binder: binder,
		dec:    dec,
		signer: signer,
		out:    out,
		cfg:    cfg.withDefaults(),
		owner:  uuid.NewString(),
		log:    logger.Named("oracle-worker"),
	}
}

// Owner is the lease id this worker writes to leased_by
func (w *Worker) Owner() string { return w.owner }

// Run polls until ctx ends
func (w *Worker) Run(ctx context.Context) error {
	sem := make(chan struct{}, w.cfg.Concurrency)
	ticker := time.NewTicker(w.cfg.Every)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			jobs, err := w.lease(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("lease oracle jobs failed")
				continue
			}
			for i := range jobs {
				sem <- struct{}{}
				wg.Add(1)
				j := jobs[i]
				go func() {
					defer func() { <-sem; wg.Done() }()
					if err := w.handle(ctx, j); err != nil {
						w.log.Warn().Err(err).Str("callback_id", j.CallbackID).Msg("job bookkeeping failed")
					}
				}()
			}
		}
	}
}

// Once leases one batch and handles it inline
func (w *Worker) Once(ctx context.Context) (int, error) {
	jobs, err := w.lease(ctx)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, j := range jobs {
		if err := w.handle(ctx, j); err != nil {
			errs = append(errs, err)
		}
	}
	return len(jobs), errors.Join(errs...)
}

func (w *Worker) lease(ctx context.Context) ([]domain.Job, error) {
	rows, err := w.binder.Bind(w.db).Lease(ctx, w.owner, w.cfg.TakeBatch, w.cfg.Lease)
	if err != nil {
		return nil, perr.FromPostgres(err, "lease oracle jobs")
	}
	out := make([]domain.Job, len(rows))
	for i, r := range rows {
		out[i] = toJob(r)
	}
	return out, nil
}

// handle answers one job; the returned error is only about recording the outcome
func (w *Worker) handle(ctx context.Context, j domain.Job) error {
	r := w.binder.Bind(w.db)
	cb, err := w.answer(j)
	if err != nil {
		w.log.Error().Err(err).Str("callback_id", j.CallbackID).Msg("oracle job cannot be answered")
		return r.Fail(ctx, j.CallbackID, w.owner, err.Error())
	}

	err = w.out.Deliver(ctx, cb)
	switch {
	case err == nil:
		w.log.Debug().Str("callback_id", j.CallbackID).Str("handler", string(j.Handler)).Msg("callback delivered")
		return r.Done(ctx, j.CallbackID, w.owner)
	case errors.Is(err, domain.ErrPermanent) || j.Attempts >= w.cfg.MaxAttempts:
		w.log.Warn().Err(err).Str("callback_id", j.CallbackID).Int("attempts", j.Attempts).Msg("callback rejected")
		return r.Fail(ctx, j.CallbackID, w.owner, err.Error())
	default:
		delay := backoff(j.Attempts, w.cfg.RetryBase)
		w.log.Info().Err(err).Str("callback_id", j.CallbackID).Dur("retry_in", delay).Msg("callback delivery retrying")
		return r.Retry(ctx, j.CallbackID, w.owner, err.Error(), delay)
	}
}

// answer decrypts, encodes and signs
func (w *Worker) answer(j domain.Job) (domain.Callback, error) {
	if n := j.Handler.Arity(); n == 0 || len(j.Handles) != n {
		return domain.Callback{}, fmt.Errorf("handler %q with %d handles", j.Handler, len(j.Handles))
	}
	vals := make([]uint32, len(j.Handles))
	for i, h := range j.Handles {
		v, err := w.dec.Decrypt(h)
		if err != nil {
			return domain.Callback{}, fmt.Errorf("decrypt handle %d: %w", i, err)
		}
		if v > math.MaxUint32 {
			return domain.Callback{}, fmt.Errorf("handle %d decrypts to %d, outside uint32", i, v)
		}
		vals[i] = uint32(v)
	}

	var (
		plain []byte
		err   error
	)
	if j.Handler == domain.HandlerRequest {
		plain, err = attest.EncodeRequest(vals[0], vals[1])
	} else {
		plain, err = attest.EncodeZone(vals[0])
	}
	if err != nil {
		return domain.Callback{}, err
	}
	proof, err := w.signer.Sign(j.CallbackID, plain)
	if err != nil {
		return domain.Callback{}, err
	}
	return domain.Callback{CallbackID: j.CallbackID, Handler: j.Handler, Cleartext: plain, Proof: proof}, nil
}

// exponential with a 30s cap
func backoff(attempt int, base time.Duration) time.Duration {
	limit := 30 * time.Second
	if attempt > 16 {
		return limit
	}
	d := base << uint(max(attempt-1, 0))
	if d <= 0 || d > limit {
		return limit
	}
	return d
}

func toJob(r repo.RowJob) domain.Job {
	hs := make([]cipher.Handle, len(r.Handles))
	for i, h := range r.Handles {
		hs[i] = cipher.Handle(h)
	}
	return domain.Job{
		CallbackID: r.CallbackID,
		Handler:    domain.Handler(r.Handler),
		Handles:    hs,
		State:      domain.JobState(r.State),
		Attempts:   r.Attempts,
		LastError:  r.LastError,
	}
}
