// Package service implements the request ledger
package service

import (
	"context"
	"math"

	"allocvault/internal/core/cipher"
	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/store"
	pstrings "allocvault/internal/platform/strings"
	allocdom "allocvault/internal/services/allocation/domain"
	evdom "allocvault/internal/services/events/domain"
	"allocvault/internal/services/ledger/domain"
	"allocvault/internal/services/ledger/repo"
)

// Config holds ledger settings
type Config struct {
	// DefaultZone receives demand for requests submitted without a zone
	DefaultZone string
}

// Service is the ledger surface plus its transaction binder
type Service interface {
	domain.ServicePort
	repokit.Binder[domain.Tx]
}

// Svc implements Service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	alg    cipher.Algebra
	outbox repokit.Binder[evdom.Outbox]
	pub    evdom.Publisher
	cfg    Config
}

// New wires the ledger service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], alg cipher.Algebra,
	outbox repokit.Binder[evdom.Outbox], pub evdom.Publisher, cfg Config) *Svc {
	if db == nil {
		panic("ledger.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ledger.Service requires a non nil Repo binder")
	}
	if alg == nil {
		panic("ledger.Service requires a cipher.Algebra")
	}
	if outbox == nil {
		panic("ledger.Service requires an outbox binder")
	}
	if pub == nil {
		pub = evdom.NopPublisher{}
	}
	cfg.DefaultZone = pstrings.Or(cfg.DefaultZone, "default")
	return &Svc{db: db, binder: binder, alg: alg, outbox: outbox, pub: pub, cfg: cfg}
}

// Bind returns ledger operations running on q
func (s *Svc) Bind(q repokit.Queryer) domain.Tx { return txOps{r: s.binder.Bind(q)} }

// Submit stores a new request under the next id
func (s *Svc) Submit(ctx context.Context, principal string, in domain.SubmitInput) (domain.SubmitOutput, error) {
	if principal == "" {
		return domain.SubmitOutput{}, perr.Unauthorizedf("submit requires an authenticated principal")
	}
	demand, err := s.parse(in.EncryptedDemand, "encrypted_demand")
	if err != nil {
		return domain.SubmitOutput{}, err
	}
	priority, err := s.parse(in.EncryptedPriority, "encrypted_priority")
	if err != nil {
		return domain.SubmitOutput{}, err
	}
	zone, err := allocdom.Canonical(pstrings.Or(in.Zone, s.cfg.DefaultZone))
	if err != nil {
		return domain.SubmitOutput{}, err
	}

	var (
		out domain.SubmitOutput
		rec *evdom.Recorder
	)
	err = store.RunTx(ctx, s.db, 3, func(q repokit.Queryer) error {
		rec = evdom.Record(s.outbox.Bind(q))
		r := s.binder.Bind(q)

		id, err := r.NextID(ctx)
		if err != nil {
			return perr.FromPostgres(err, "allocate request id")
		}
		at, err := r.Insert(ctx, repo.RowRequest{
			ID:          id,
			Submitter:   principal,
			EncDemand:   demand,
			EncPriority: priority,
			Zone:        zone,
		})
		if err != nil {
			return perr.FromPostgres(err, "insert request")
		}
		out = domain.SubmitOutput{ID: uint64(id), Zone: zone, SubmittedAt: at}
		return rec.Add(ctx, evdom.RequestSubmitted, evdom.RequestSubject(out.ID),
			domain.SubmittedPayload{ID: out.ID, Zone: zone, SubmittedAt: at})
	})
	if err != nil {
		return domain.SubmitOutput{}, err
	}
	s.pub.Publish(rec.Events()...)
	return out, nil
}

// Read returns (demand, priority, processed); zeros until resolved
func (s *Svc) Read(ctx context.Context, id uint64) (domain.Result, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return domain.Result{}, err
	}
	return r.Result(), nil
}

// Get returns the request detail
func (s *Svc) Get(ctx context.Context, id uint64) (domain.RequestView, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return domain.RequestView{}, err
	}
	return r.View(), nil
}

func (s *Svc) get(ctx context.Context, id uint64) (domain.Request, error) {
	key, err := rowID(id)
	if err != nil {
		return domain.Request{}, err
	}
	row, err := s.binder.Bind(s.db).Get(ctx, key)
	if err != nil {
		return domain.Request{}, notFound(err, id)
	}
	return toRequest(row), nil
}

func (s *Svc) parse(b64, field string) (cipher.Handle, error) {
	h, err := cipher.Parse(s.alg, b64)
	if err != nil {
		return nil, perr.WithField(perr.InvalidArgf("%s is not a %s ciphertext", field, s.alg.Name()), field)
	}
	return h, nil
}

// rowID rejects the reserved id 0 and anything a bigint cannot hold
func rowID(id uint64) (int64, error) {
	if id == 0 || id > math.MaxInt64 {
		return 0, perr.NotFoundf("request %d not found", id)
	}
	return int64(id), nil
}

func notFound(err error, id uint64) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("request %d not found", id)
	}
	return perr.FromPostgres(err, "read request")
}

func toRequest(r repo.RowRequest) domain.Request {
	return domain.Request{
		ID:                uint64(r.ID),
		Submitter:         r.Submitter,
		EncryptedDemand:   cipher.Handle(r.EncDemand),
		EncryptedPriority: cipher.Handle(r.EncPriority),
		Zone:              r.Zone,
		State:             domain.State(r.State),
		Demand:            uint32(r.Demand),
		Priority:          uint32(r.Priority),
		SubmittedAt:       r.SubmittedAt,
		DecryptedAt:       r.DecryptedAt,
	}
}
