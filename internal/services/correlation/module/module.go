// Package module wires the callback correlator into the API
package module

import (
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/modkit/module"
	"allocvault/internal/modkit/repokit"
	"allocvault/internal/services/correlation/domain"
	corrhttp "allocvault/internal/services/correlation/http"
	corrrepo "allocvault/internal/services/correlation/repo"
	corrsvc "allocvault/internal/services/correlation/service"
)

// Ports is what the decryption module takes from the correlator
type Ports struct {
	Service domain.ServicePort
	Tx      repokit.Binder[domain.Tx]
}

// Module is the correlation module
type Module struct{ modkit.Base }

// New builds the correlation module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("correlation")}, opts...)...)

	svc := corrsvc.New(deps.PG, corrrepo.NewPG())
	m := &Module{}
	m.Base = modkit.NewBase(b, Ports{Service: svc, Tx: svc}, func(r httpkit.Router) {
		corrhttp.Register(r, svc)
	})
	module.Register(b.Name, m.Ports())
	return m
}
