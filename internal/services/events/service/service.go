// Package service implements the outbox, its reader and the live fan-out
package service

import (
	"context"
	"encoding/json"

	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/services/events/domain"
	"allocvault/internal/services/events/repo"
)

// Service is the full events surface
type Service interface {
	domain.ReaderPort
	domain.Publisher
	domain.Subscriber
	repokit.Binder[domain.Outbox]
}

// Svc implements Service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	hub    *Hub
}

// New wires the events service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], hub *Hub) *Svc {
	if db == nil {
		panic("events.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("events.Service requires a non nil Repo binder")
	}
	if hub == nil {
		hub = NewHub(0)
	}
	return &Svc{db: db, binder: binder, hub: hub}
}

// Bind returns an Outbox writing through q, normally the caller's transaction
func (s *Svc) Bind(q repokit.Queryer) domain.Outbox { return outbox{r: s.binder.Bind(q)} }

type outbox struct{ r repo.Repo }

func (o outbox) Append(ctx context.Context, kind domain.Kind, subject string, payload any) (domain.Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return domain.Event{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "encode %s payload", kind)
	}
	row, err := o.r.Append(ctx, string(kind), subject, b)
	if err != nil {
		return domain.Event{}, perr.FromPostgres(err, "append event")
	}
	return toEvent(row), nil
}

// Publish forwards committed events to the hub
func (s *Svc) Publish(evs ...domain.Event) { s.hub.Publish(evs...) }

// Subscribe opens a live channel
func (s *Svc) Subscribe() (<-chan domain.Event, func()) { return s.hub.Subscribe() }

// Page reads events after a cursor; limit 0 means 100
func (s *Svc) Page(ctx context.Context, in domain.PageInput) (domain.Page, error) {
	if in.After < 0 {
		return domain.Page{}, perr.InvalidArgf("after must be >= 0")
	}
	limit := in.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.binder.Bind(s.db).After(ctx, in.After, limit)
	if err != nil {
		return domain.Page{}, perr.FromPostgres(err, "read events")
	}
	out := domain.Page{Events: make([]domain.Event, 0, len(rows)), Next: in.After}
	for _, r := range rows {
		out.Events = append(out.Events, toEvent(r))
		out.Next = r.Seq
	}
	return out, nil
}

func toEvent(r repo.RowEvent) domain.Event {
	return domain.Event{
		Seq:       r.Seq,
		Kind:      domain.Kind(r.Kind),
		Subject:   r.Subject,
		Payload:   json.RawMessage(r.Payload),
		CreatedAt: r.CreatedAt,
	}
}
