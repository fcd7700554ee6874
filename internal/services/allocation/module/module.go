// Package module wires the zone accumulators into the API
package module

import (
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/modkit/module"
	"allocvault/internal/modkit/repokit"
	"allocvault/internal/services/allocation/domain"
	allochttp "allocvault/internal/services/allocation/http"
	allocrepo "allocvault/internal/services/allocation/repo"
	allocsvc "allocvault/internal/services/allocation/service"
	evmod "allocvault/internal/services/events/module"
)

// Ports is what the decryption module takes from allocation
type Ports struct {
	Service domain.ServicePort
	Tx      repokit.Binder[domain.Tx]
}

// Module is the allocation module
type Module struct{ modkit.Base }

// New builds the allocation module; it needs events.Ports injected via modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("allocation")}, opts...)...)
	ev := modkit.InjectedPorts[evmod.Ports](b)
	if ev.Outbox == nil {
		panic("allocation module requires events ports")
	}

	svc := allocsvc.New(deps.PG, allocrepo.NewPG(), deps.Algebra, ev.Outbox, ev.Publisher)
	m := &Module{}
	m.Base = modkit.NewBase(b, Ports{Service: svc, Tx: svc}, func(r httpkit.Router) {
		allochttp.Register(r, svc)
	})
	module.Register(b.Name, m.Ports())
	return m
}
