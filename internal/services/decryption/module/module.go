// Package module wires the decryption flows into the API
package module

import (
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/modkit/module"
	allocmod "allocvault/internal/services/allocation/module"
	corrmod "allocvault/internal/services/correlation/module"
	"allocvault/internal/services/decryption/domain"
	dechttp "allocvault/internal/services/decryption/http"
	decsvc "allocvault/internal/services/decryption/service"
	evmod "allocvault/internal/services/events/module"
	ledgermod "allocvault/internal/services/ledger/module"
	oraclemod "allocvault/internal/services/oracle/module"
)

// Upstream is the port set this module composes; inject it with modkit.WithPorts
type Upstream struct {
	Events      evmod.Ports
	Ledger      ledgermod.Ports
	Allocation  allocmod.Ports
	Correlation corrmod.Ports
	Oracle      oraclemod.Ports
}

// Ports exposes the service and its expiry loop
type Ports struct {
	Service domain.ServicePort
	Sweeper *decsvc.Sweeper
}

// Module is the decryption module
type Module struct {
	modkit.Base
	sweeper *decsvc.Sweeper
}

// New builds the decryption module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("decryption")}, opts...)...)
	up := modkit.InjectedPorts[Upstream](b)
	if up.Events.Outbox == nil || up.Ledger.Tx == nil || up.Allocation.Tx == nil ||
		up.Correlation.Tx == nil || up.Oracle.Gateway == nil {
		panic("decryption module requires events, ledger, allocation, correlation and oracle ports")
	}
	o := FromConfig(deps.Cfg)

	svc := decsvc.New(decsvc.Deps{
		DB:           deps.PG,
		Ledger:       up.Ledger.Tx,
		Correlations: up.Correlation.Tx,
		Zones:        up.Allocation.Tx,
		Gateway:      up.Oracle.Gateway,
		Verifier:     up.Oracle.Verifier,
		Outbox:       up.Events.Outbox,
		Publisher:    up.Events.Publisher,
	}, o.Auth, decsvc.Config{TTL: o.TTL})
	sw := decsvc.NewSweeper(svc, decsvc.SweepConfig{Every: o.SweepEvery, Batch: o.SweepBatch})

	deps.Logger().Info().
		Str("oracle_principal", o.Auth.OraclePrincipal).
		Strs("zone_revealers", o.Auth.ZoneRevealers).
		Dur("ttl", o.TTL).
		Msg("decryption flows ready")

	m := &Module{sweeper: sw}
	m.Base = modkit.NewBase(b, Ports{Service: svc, Sweeper: sw}, func(r httpkit.Router) {
		dechttp.Register(r, svc)
	})
	module.Register(b.Name, m.Ports())
	return m
}

// Sweeper returns the expiry loop for the composition root to run
func (m *Module) Sweeper() *decsvc.Sweeper { return m.sweeper }
