package module

import (
	"time"

	"allocvault/internal/platform/config"
	corrdom "allocvault/internal/services/correlation/domain"
	"allocvault/internal/services/decryption/domain"
)

// Options controls the decryption module
type Options struct {
	TTL        time.Duration
	SweepEvery time.Duration
	SweepBatch int
	Auth       domain.Authorizer
}

// FromConfig reads DECRYPTION_*; the oracle principal is required
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("DECRYPTION_")
	return Options{
		TTL:        c.MayDuration("TTL", corrdom.DefaultTTL),
		SweepEvery: c.MayDuration("SWEEP_EVERY", 30*time.Second),
		SweepBatch: c.MayInt("SWEEP_BATCH", 100),
		Auth: domain.Authorizer{
			OraclePrincipal: c.MustString("ORACLE_PRINCIPAL"),
			ZoneRevealers:   c.MayCSV("ZONE_REVEALERS", nil),
		},
	}
}
