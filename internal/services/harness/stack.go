package harness

import (
	"context"
	"time"

	"allocvault/internal/core/attest"
	"allocvault/internal/core/cipher"
	"allocvault/internal/core/cipher/mirror"
	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	allocrepo "allocvault/internal/services/allocation/repo"
	allocsvc "allocvault/internal/services/allocation/service"
	corrrepo "allocvault/internal/services/correlation/repo"
	corrsvc "allocvault/internal/services/correlation/service"
	decdom "allocvault/internal/services/decryption/domain"
	decsvc "allocvault/internal/services/decryption/service"
	evrepo "allocvault/internal/services/events/repo"
	evsvc "allocvault/internal/services/events/service"
	ledgerdom "allocvault/internal/services/ledger/domain"
	ledgerrepo "allocvault/internal/services/ledger/repo"
	ledgersvc "allocvault/internal/services/ledger/service"
	oracledom "allocvault/internal/services/oracle/domain"
	oraclerepo "allocvault/internal/services/oracle/repo"
	oraclesvc "allocvault/internal/services/oracle/service"
)

// OraclePrincipal is the principal the stack's oracle resolves as
const OraclePrincipal = "oracle"

// Config adjusts a Stack
type Config struct {
	TTL           time.Duration
	DefaultZone   string
	ZoneRevealers []string
}

// Stack is every service wired over one store with the mirror algebra
type Stack struct {
	Vault      *Vault
	Alg        mirror.Algebra
	Hub        *evsvc.Hub
	Events     *evsvc.Svc
	Ledger     *ledgersvc.Svc
	Zones      *allocsvc.Svc
	Corr       *corrsvc.Svc
	Gateway    *oraclesvc.Gateway
	Decryption *decsvc.Svc
	Sweeper    *decsvc.Sweeper
	Signer     *attest.Signer
	Oracle     *oraclesvc.Worker
}

// Tables is one binder per repo the stack writes through
type Tables struct {
	Ledger       repokit.Binder[ledgerrepo.Repo]
	Correlations repokit.Binder[corrrepo.Repo]
	Zones        repokit.Binder[allocrepo.Repo]
	Jobs         repokit.Binder[oraclerepo.Repo]
	Events       repokit.Binder[evrepo.Repo]
}

// Tables returns the in-memory binders
func (v *Vault) Tables() Tables {
	return Tables{Ledger: v.Ledger(), Correlations: v.Correlations(), Zones: v.Zones(), Jobs: v.Jobs(), Events: v.Events()}
}

// PGTables returns the Postgres binders
func PGTables() Tables {
	return Tables{
		Ledger:       ledgerrepo.NewPG(),
		Correlations: corrrepo.NewPG(),
		Zones:        allocrepo.NewPG(),
		Jobs:         oraclerepo.NewPG(),
		Events:       evrepo.NewPG(),
	}
}

// NewStack wires a fresh stack over an in-memory Vault
func NewStack(cfg Config) (*Stack, error) {
	v := New()
	s, err := Wire(v, v.Tables(), cfg)
	if err != nil {
		return nil, err
	}
	s.Vault = v
	return s, nil
}

// Wire builds every service over db with a random oracle key; Vault is left nil
func Wire(db repokit.TxRunner, t Tables, cfg Config) (*Stack, error) {
	alg := mirror.New()
	signer, err := attest.GenerateSigner()
	if err != nil {
		return nil, err
	}

	hub := evsvc.NewHub(64)
	events := evsvc.New(db, t.Events, hub)
	ledger := ledgersvc.New(db, t.Ledger, alg, events, events, ledgersvc.Config{DefaultZone: cfg.DefaultZone})
	zones := allocsvc.New(db, t.Zones, alg, events, events)
	corr := corrsvc.New(db, t.Correlations)
	gw := oraclesvc.NewGateway(db, t.Jobs, attest.VerifierFor(signer))

	dec := decsvc.New(decsvc.Deps{
		DB:           db,
		Ledger:       ledger,
		Correlations: corr,
		Zones:        zones,
		Gateway:      gw,
		Verifier:     gw,
		Outbox:       events,
		Publisher:    events,
	}, decdom.Authorizer{OraclePrincipal: OraclePrincipal, ZoneRevealers: cfg.ZoneRevealers}, decsvc.Config{TTL: cfg.TTL})

	s := &Stack{
		Alg:        alg,
		Hub:        hub,
		Events:     events,
		Ledger:     ledger,
		Zones:      zones,
		Corr:       corr,
		Gateway:    gw,
		Decryption: dec,
		Sweeper:    decsvc.NewSweeper(dec, decsvc.SweepConfig{Batch: 100}),
		Signer:     signer,
	}
	s.Oracle = oraclesvc.NewWorker(db, t.Jobs, alg, signer, direct{dec: dec}, oraclesvc.WorkerConfig{MaxAttempts: 3})
	return s, nil
}

// Submit encrypts demand and priority with the mirror and submits them as principal
func (s *Stack) Submit(ctx context.Context, principal string, demand, priority uint32, zone string) (ledgerdom.SubmitOutput, error) {
	d, _ := s.Alg.Encrypt(demand)
	p, _ := s.Alg.Encrypt(priority)
	return s.Ledger.Submit(ctx, principal, ledgerdom.SubmitInput{
		EncryptedDemand:   d.String(),
		EncryptedPriority: p.String(),
		Zone:              zone,
	})
}

// RequestCallback builds a correctly signed request callback
func (s *Stack) RequestCallback(callbackID string, demand, priority uint32) oracledom.Callback {
	plain, _ := attest.EncodeRequest(demand, priority)
	proof, _ := s.Signer.Sign(callbackID, plain)
	return oracledom.Callback{CallbackID: callbackID, Handler: oracledom.HandlerRequest, Cleartext: plain, Proof: proof}
}

// ZoneCallback builds a correctly signed zone callback
func (s *Stack) ZoneCallback(callbackID string, total uint32) oracledom.Callback {
	plain, _ := attest.EncodeZone(total)
	proof, _ := s.Signer.Sign(callbackID, plain)
	return oracledom.Callback{CallbackID: callbackID, Handler: oracledom.HandlerZone, Cleartext: plain, Proof: proof}
}

// Plain decrypts a mirror handle
func (s *Stack) Plain(h []byte) uint64 { return mirror.Value(cipher.Handle(h)) }

// direct hands oracle callbacks straight to the resolver
type direct struct{ dec *decsvc.Svc }

func (d direct) Deliver(ctx context.Context, cb oracledom.Callback) error {
	_, err := d.dec.Resolve(ctx, OraclePrincipal, cb)
	switch {
	case err == nil, perr.IsCode(err, perr.ErrorCodeAlreadyProcessed):
		return nil
	case perr.HTTPStatus(err) < 500:
		return perr.Wrapf(oracledom.ErrPermanent, perr.CodeOf(err), "%v", err)
	default:
		return err
	}
}
