// Package service implements the zone accumulators
package service

import (
	"context"

	"allocvault/internal/core/cipher"
	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/store"
	"allocvault/internal/services/allocation/domain"
	"allocvault/internal/services/allocation/repo"
	evdom "allocvault/internal/services/events/domain"

	"github.com/ethereum/go-ethereum/common"
)

// Service is the accumulator surface plus its transaction binder
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
}

// New wires the allocation service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], alg cipher.Algebra,
	outbox repokit.Binder[evdom.Outbox], pub evdom.Publisher) *Svc {
	if db == nil {
		panic("allocation.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("allocation.Service requires a non nil Repo binder")
	}
	if alg == nil {
		panic("allocation.Service requires a cipher.Algebra")
	}
	if outbox == nil {
		panic("allocation.Service requires an outbox binder")
	}
	if pub == nil {
		pub = evdom.NopPublisher{}
	}
	return &Svc{db: db, binder: binder, alg: alg, outbox: outbox, pub: pub}
}

// Bind returns accumulator operations running on q
func (s *Svc) Bind(q repokit.Queryer) domain.Tx { return txOps{r: s.binder.Bind(q), alg: s.alg} }

// Contribute adds h to zone in its own transaction and emits ZoneAllocationUpdated
func (s *Svc) Contribute(ctx context.Context, zone string, h cipher.Handle) (domain.Zone, error) {
	var (
		out domain.Zone
		rec *evdom.Recorder
	)
	err := store.RunTx(ctx, s.db, 3, func(q repokit.Queryer) error {
		rec = evdom.Record(s.outbox.Bind(q))
		z, created, err := s.Bind(q).Contribute(ctx, zone, h)
		if err != nil {
			return err
		}
		out = z
		return rec.Add(ctx, evdom.ZoneAllocationUpdated, evdom.ZoneSubject(z.Name),
			domain.UpdatedPayload{Zone: z.Name, Contributions: z.Contributions, Created: created})
	})
	if err != nil {
		return domain.Zone{}, err
	}
	s.pub.Publish(rec.Events()...)
	return out, nil
}

// ReadEncrypted returns the zone with its current encrypted total
func (s *Svc) ReadEncrypted(ctx context.Context, zone string) (domain.Zone, error) {
	return s.Bind(s.db).ReadEncrypted(ctx, zone)
}

// Registry lists zones in the order they were first contributed to
func (s *Svc) Registry(ctx context.Context) ([]domain.RegistryEntry, error) {
	rows, err := s.binder.Bind(s.db).ListNames(ctx)
	if err != nil {
		return nil, perr.FromPostgres(err, "list zones")
	}
	out := make([]domain.RegistryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.RegistryEntry{Name: r.Name, Hash: common.BytesToHash(r.Hash).Hex()})
	}
	return out, nil
}

// Lookup reverse maps a zone hash
func (s *Svc) Lookup(ctx context.Context, hash common.Hash) (string, error) {
	return s.Bind(s.db).Lookup(ctx, hash)
}

// LatestReveal returns the most recent decrypted total of zone
func (s *Svc) LatestReveal(ctx context.Context, zone string) (domain.Reveal, error) {
	name, err := domain.Canonical(zone)
	if err != nil {
		return domain.Reveal{}, err
	}
	r := s.binder.Bind(s.db)
	if _, err := r.Get(ctx, name); err != nil {
		return domain.Reveal{}, zoneErr(err, name)
	}
	row, err := r.LatestReveal(ctx, name)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Reveal{}, perr.NotFoundf("zone %q has not been revealed", name)
	}
	if err != nil {
		return domain.Reveal{}, perr.FromPostgres(err, "read zone reveal")
	}
	return toReveal(row), nil
}
