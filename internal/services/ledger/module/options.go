package module

import "allocvault/internal/platform/config"

// Options controls the ledger module
type Options struct {
	TargetZone string
}

// FromConfig reads LEDGER_*
func FromConfig(cfg config.Conf) Options {
	return Options{TargetZone: cfg.Prefix("LEDGER_").MayString("TARGET_ZONE", "default")}
}
