// Package module wires the events service into the API
package module

import (
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/modkit/module"
	"allocvault/internal/modkit/repokit"
	evdom "allocvault/internal/services/events/domain"
	evhttp "allocvault/internal/services/events/http"
	evrepo "allocvault/internal/services/events/repo"
	evsvc "allocvault/internal/services/events/service"
)

// Ports is what other modules take from events
type Ports struct {
	Outbox    repokit.Binder[evdom.Outbox]
	Publisher evdom.Publisher
	Reader    evdom.ReaderPort
	// Relay is nil when ClickHouse is disabled
	Relay *evsvc.Relay
}

// Module is the events module
type Module struct {
	modkit.Base
	svc *evsvc.Svc
}

// New builds the events module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("events")}, opts...)...)
	o := FromConfig(deps.Cfg)

	binder := evrepo.NewPG()
	svc := evsvc.New(deps.PG, binder, evsvc.NewHub(o.StreamBuffer))

	ports := Ports{Outbox: svc, Publisher: svc, Reader: svc}
	if deps.CH != nil {
		ports.Relay = evsvc.NewRelay(deps.PG, binder, deps.CH, evsvc.RelayConfig{Every: o.RelayEvery, Batch: o.RelayBatch})
	}

	m := &Module{svc: svc}
	m.Base = modkit.NewBase(b, ports, func(r httpkit.Router) {
		evhttp.Register(r, svc, evhttp.StreamConfig{PingEvery: o.PingEvery})
	})
	module.Register(b.Name, ports)
	return m
}
