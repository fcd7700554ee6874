package modkit

import (
	"net/http"

	phttp "allocvault/internal/platform/net/http"
)

// Built is the resolved option set modules read from
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(phttp.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// InjectedPorts returns the injected port set as T, or the zero value
func InjectedPorts[T any](b Built) T {
	p, _ := b.Ports.(T)
	return p
}
