// Package service implements the oracle callback correlator
package service

import (
	"context"
	"time"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/services/correlation/domain"
	"allocvault/internal/services/correlation/repo"
)

// Service is the correlator surface plus its transaction binder
type Service interface {
	domain.ServicePort
	repokit.Binder[domain.Tx]
}

// Svc implements Service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
}

// New wires the correlation service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("correlation.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("correlation.Service requires a non nil Repo binder")
	}
	return &Svc{db: db, binder: binder}
}

// Bind returns correlator operations running on q
func (s *Svc) Bind(q repokit.Queryer) domain.Tx { return txOps{r: s.binder.Bind(q)} }

// Register stores a pending correlation in its own transaction
func (s *Svc) Register(ctx context.Context, callbackID string, t domain.Target, ttl time.Duration) (domain.Correlation, error) {
	var out domain.Correlation
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		c, err := s.Bind(q).Register(ctx, callbackID, t, ttl)
		out = c
		return err
	})
	return out, err
}

// Resolve looks a callback up for flow without changing it
func (s *Svc) Resolve(ctx context.Context, callbackID string, flow domain.Flow) (domain.Correlation, error) {
	var out domain.Correlation
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		c, err := s.Bind(q).Resolve(ctx, callbackID, flow)
		out = c
		return err
	})
	return out, err
}

// MarkResolved consumes a pending correlation
func (s *Svc) MarkResolved(ctx context.Context, callbackID string) error {
	return s.db.Tx(ctx, func(q repokit.Queryer) error { return s.Bind(q).MarkResolved(ctx, callbackID) })
}

// ExpireDue expires overdue correlations; callers owning a target should use the Tx form
func (s *Svc) ExpireDue(ctx context.Context, limit int) ([]domain.Correlation, error) {
	var out []domain.Correlation
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		cs, err := s.Bind(q).ExpireDue(ctx, limit)
		out = cs
		return err
	})
	return out, err
}

// Get reads a correlation; unknown ids are InvalidRequest
func (s *Svc) Get(ctx context.Context, callbackID string) (domain.Correlation, error) {
	row, err := s.binder.Bind(s.db).Get(ctx, callbackID)
	if err != nil {
		return domain.Correlation{}, unknown(err, callbackID)
	}
	return toCorrelation(row), nil
}
