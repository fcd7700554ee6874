// Package module wires the meta endpoints into the API
package module

import (
	"time"

	"allocvault/internal/modkit"
	"allocvault/internal/modkit/httpkit"
	metahttp "allocvault/internal/services/api/meta/http"
)

// ServiceName is reported by /meta/version and /meta/service
const ServiceName = "allocvault-api"

// Module is the meta module
type Module struct {
	modkit.Base
}

// New builds the meta module; it has no ports and stays out of the registry
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	d := metahttp.Deps{ServiceName: ServiceName, StartedAt: time.Now()}
	if deps.PG != nil {
		d.PG = deps.PG
	}
	if deps.CH != nil {
		d.CH = deps.CH
	}
	if deps.Algebra != nil {
		d.Backend = deps.Algebra.Name()
	}

	m := &Module{}
	m.Base = modkit.NewBase(b, nil, func(r httpkit.Router) { metahttp.Register(r, d) })
	return m
}
