// Package module wires the request ledger into the API
package module

import (
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/modkit/module"
	"allocvault/internal/modkit/repokit"
	evmod "allocvault/internal/services/events/module"
	"allocvault/internal/services/ledger/domain"
	ledgerhttp "allocvault/internal/services/ledger/http"
	ledgerrepo "allocvault/internal/services/ledger/repo"
	ledgersvc "allocvault/internal/services/ledger/service"
)

// Ports is what the decryption module takes from the ledger
type Ports struct {
	Service domain.ServicePort
	Tx      repokit.Binder[domain.Tx]
}

// Module is the ledger module
type Module struct{ modkit.Base }

// New builds the ledger module; it needs events.Ports injected via modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("ledger")}, opts...)...)
	ev := modkit.InjectedPorts[evmod.Ports](b)
	if ev.Outbox == nil {
		panic("ledger module requires events ports")
	}
	o := FromConfig(deps.Cfg)

	svc := ledgersvc.New(deps.PG, ledgerrepo.NewPG(), deps.Algebra, ev.Outbox, ev.Publisher,
		ledgersvc.Config{DefaultZone: o.TargetZone})
	m := &Module{}
	m.Base = modkit.NewBase(b, Ports{Service: svc, Tx: svc}, func(r httpkit.Router) {
		ledgerhttp.Register(r, svc)
	})
	module.Register(b.Name, m.Ports())
	return m
}
