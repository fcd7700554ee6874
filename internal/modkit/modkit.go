// Package modkit provides module wiring and core deps
package modkit

import (
	"net/http"

	"allocvault/internal/modkit/module"
	phttp "allocvault/internal/platform/net/http"
)

// Module is the surface API modules expose to the composition root
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module

// Base carries the routing state every module shares; modules embed it and set Svc specific fields
type Base struct {
	name     string
	prefix   string
	mws      []func(http.Handler) http.Handler
	ports    any
	register func(phttp.Router)
}

// NewBase builds the shared module state from Built and the module's own route registration
// register runs before any external WithRegister hook
func NewBase(b Built, ports any, register func(phttp.Router)) Base {
	external := b.Register
	return Base{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  ports,
		register: func(r phttp.Router) {
			if register != nil {
				register(r)
			}
			if external != nil {
				external(r)
			}
		},
	}
}

// MountRoutes mounts the module under its prefix with its own middleware
func (m *Base) MountRoutes(r phttp.Router) {
	mount := func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	}
	if m.prefix == "" {
		r.Group(mount)
		return
	}
	r.Route(m.prefix, mount)
}

// Ports returns the module port set
func (m *Base) Ports() any { return m.ports }

// Name returns the module name
func (m *Base) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Base) Prefix() string { return m.prefix }
