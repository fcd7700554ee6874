// Package service runs the request and zone decryption flows across the ledger, correlator and accumulator
package service

import (
	"time"

	"allocvault/internal/modkit/repokit"
	allocdom "allocvault/internal/services/allocation/domain"
	corrdom "allocvault/internal/services/correlation/domain"
	"allocvault/internal/services/decryption/domain"
	evdom "allocvault/internal/services/events/domain"
	ledgerdom "allocvault/internal/services/ledger/domain"
	oracledom "allocvault/internal/services/oracle/domain"
)

// txAttempts bounds serialization retries per operation
const txAttempts = 3

// Deps are the transaction binders every flow composes
type Deps struct {
	DB           repokit.TxRunner
	Ledger       repokit.Binder[ledgerdom.Tx]
	Correlations repokit.Binder[corrdom.Tx]
	Zones        repokit.Binder[allocdom.Tx]
	Gateway      repokit.Binder[oracledom.Gateway]
	Verifier     oracledom.Verifier
	Outbox       repokit.Binder[evdom.Outbox]
	Publisher    evdom.Publisher
}

// Config tunes correlation lifetimes
type Config struct {
	TTL time.Duration
}

// Svc implements domain.ServicePort
type Svc struct {
	d    Deps
	auth domain.Authorizer
	cfg  Config
}

// New wires the decryption service
func New(d Deps, auth domain.Authorizer, cfg Config) *Svc {
	switch {
	case d.DB == nil:
		panic("decryption.Service requires a non nil TxRunner")
	case d.Ledger == nil || d.Correlations == nil || d.Zones == nil:
		panic("decryption.Service requires ledger, correlation and zone binders")
	case d.Gateway == nil || d.Verifier == nil:
		panic("decryption.Service requires an oracle gateway and verifier")
	case d.Outbox == nil:
		panic("decryption.Service requires an outbox binder")
	}
	if d.Publisher == nil {
		d.Publisher = evdom.NopPublisher{}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = corrdom.DefaultTTL
	}
	return &Svc{d: d, auth: auth, cfg: cfg}
}

// bound is every port on one transaction
type bound struct {
	ledger ledgerdom.Tx
	corr   corrdom.Tx
	zones  allocdom.Tx
	gw     oracledom.Gateway
	rec    *evdom.Recorder
}

func (s *Svc) bind(q repokit.Queryer) bound {
	return bound{
		ledger: s.d.Ledger.Bind(q),
		corr:   s.d.Correlations.Bind(q),
		zones:  s.d.Zones.Bind(q),
		gw:     s.d.Gateway.Bind(q),
		rec:    evdom.Record(s.d.Outbox.Bind(q)),
	}
}
