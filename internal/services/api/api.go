// Package api composes the vault modules into the versioned HTTP API
package api

import (
	"time"

	"allocvault/internal/modkit"
	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/modkit/module"
	"allocvault/internal/modkit/swaggerkit"
	"allocvault/internal/platform/config"
	phttp "allocvault/internal/platform/net/http"

	allocmod "allocvault/internal/services/allocation/module"
	metamod "allocvault/internal/services/api/meta/module"
	corrmod "allocvault/internal/services/correlation/module"
	decmod "allocvault/internal/services/decryption/module"
	decsvc "allocvault/internal/services/decryption/service"
	evmod "allocvault/internal/services/events/module"
	evsvc "allocvault/internal/services/events/service"
	ledgermod "allocvault/internal/services/ledger/module"
	oraclemod "allocvault/internal/services/oracle/module"
)

// Options are the API options
type Options struct {
	Deps modkit.Deps
	// Tokens maps bearer tokens to principals
	Tokens         map[string]string
	CORSOrigins    []string
	SlowRequest    time.Duration
	EnableSwagger  bool
	EnableProfiler bool
}

// OptionsFrom reads CORE_API_* for everything but Deps
func OptionsFrom(cfg config.Conf, deps modkit.Deps) Options {
	c := cfg.Prefix("CORE_API_")
	return Options{
		Deps:           deps,
		Tokens:         c.MayPairs("TOKENS"),
		CORSOrigins:    c.MayCSV("CORS_ORIGINS", nil),
		SlowRequest:    c.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
		EnableSwagger:  c.MayBool("SWAGGER", true),
		EnableProfiler: c.MayBool("PROFILER", false),
	}
}

// Mounted hands the background loops back to the binary; Relay is nil without ClickHouse
type Mounted struct {
	Modules []module.Module
	Sweeper *decsvc.Sweeper
	Relay   *evsvc.Relay
}

// Mount builds every module and mounts them onto r
func Mount(r phttp.Router, opt Options) Mounted {
	deps := opt.Deps
	if len(opt.Tokens) == 0 {
		deps.Logger().Warn().Msg("CORE_API_TOKENS is empty; every protected route will answer 401")
	}

	// events first: everything else writes through its outbox
	events := evmod.New(deps)
	evPorts := module.MustPortsOf[evmod.Ports](events)

	ledger := ledgermod.New(deps, modkit.WithPorts(evPorts))
	allocation := allocmod.New(deps, modkit.WithPorts(evPorts))
	correlation := corrmod.New(deps)
	oracle := oraclemod.New(deps)

	decryption := decmod.New(deps, modkit.WithPorts(decmod.Upstream{
		Events:      evPorts,
		Ledger:      module.MustPortsOf[ledgermod.Ports](ledger),
		Allocation:  module.MustPortsOf[allocmod.Ports](allocation),
		Correlation: module.MustPortsOf[corrmod.Ports](correlation),
		Oracle:      module.MustPortsOf[oraclemod.Ports](oracle),
	}))

	public := []module.Module{metamod.New(deps), events, allocation}
	protected := []module.Module{ledger, decryption, correlation, oracle}
	auth := httpkit.NewTokenPort(opt.Tokens)

	r.Use(httpkit.Heartbeat())
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	stack := httpkit.CommonStack(httpkit.StackOptions{CORSOrigins: opt.CORSOrigins, SlowRequest: opt.SlowRequest})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range public {
			m.MountRoutes(api)
		}
		httpkit.Protected(api, auth, func(pr httpkit.Router) {
			for _, m := range protected {
				m.MountRoutes(pr)
			}
		})
	})

	return Mounted{
		Modules: append(public, protected...),
		Sweeper: module.MustPortsOf[decmod.Ports](decryption).Sweeper,
		Relay:   evPorts.Relay,
	}
}
