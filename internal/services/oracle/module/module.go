// Package module wires the oracle gateway into the API and builds the oracle worker
package module

import (
	"fmt"

	"allocvault/internal/core/attest"
	"allocvault/internal/core/cipher"
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/modkit/module"
	"allocvault/internal/modkit/repokit"
	"allocvault/internal/services/oracle/domain"
	oraclehttp "allocvault/internal/services/oracle/http"
	oraclerepo "allocvault/internal/services/oracle/repo"
	oraclesvc "allocvault/internal/services/oracle/service"
)

// Ports is what the decryption module takes from the gateway
type Ports struct {
	Gateway  repokit.Binder[domain.Gateway]
	Verifier domain.Verifier
}

// Module is the oracle gateway module
type Module struct{ modkit.Base }

// New builds the gateway module; a bad oracle address is a startup failure
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("oracle")}, opts...)...)

	o := GatewayFromConfig(deps.Cfg)
	v, err := attest.NewVerifier(o.OracleAddress)
	if err != nil {
		deps.Logger().Fatal().Err(err).Msg("invalid DECRYPTION_ORACLE_ADDRESS")
	}
	gw := oraclesvc.NewGateway(deps.PG, oraclerepo.NewPG(), v)
	deps.Logger().Info().Str("oracle", v.Oracle().Hex()).Msg("oracle gateway ready")

	m := &Module{}
	m.Base = modkit.NewBase(b, Ports{Gateway: gw, Verifier: gw}, func(r httpkit.Router) {
		oraclehttp.Register(r, gw)
	})
	module.Register(b.Name, m.Ports())
	return m
}

// NewWorker builds the oracle worker from ORACLE_* around dec
func NewWorker(deps modkit.Deps, dec cipher.Decrypter) (*oraclesvc.Worker, error) {
	o := WorkerFromConfig(deps.Cfg)
	signer, err := attest.NewSigner(o.SignerKey)
	if err != nil {
		return nil, fmt.Errorf("oracle signer: %w", err)
	}
	out := oraclesvc.NewHTTPDeliverer(o.CallbackURL, o.CallbackToken, o.Timeout)
	deps.Logger().Info().
		Str("oracle", signer.Address().Hex()).
		Str("callback_url", o.CallbackURL).
		Int("concurrency", o.Worker.Concurrency).
		Msg("oracle worker configured")
	return oraclesvc.NewWorker(deps.PG, oraclerepo.NewPG(), dec, signer, out, o.Worker), nil
}
