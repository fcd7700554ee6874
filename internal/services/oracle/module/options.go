package module

import (
	"time"

	"allocvault/internal/core/attest"
	"allocvault/internal/platform/config"
	"allocvault/internal/services/oracle/service"
)

// GatewayOptions is the API side configuration
type GatewayOptions struct {
	OracleAddress string
}

// GatewayFromConfig reads DECRYPTION_ORACLE_ADDRESS; in dev a local ORACLE_SIGNER_KEY stands in for it
func GatewayFromConfig(cfg config.Conf) GatewayOptions {
	addr := cfg.Prefix("DECRYPTION_").MayString("ORACLE_ADDRESS", "")
	if addr == "" {
		if key := cfg.Prefix("ORACLE_").MayString("SIGNER_KEY", ""); key != "" {
			if s, err := attest.NewSigner(key); err == nil {
				addr = s.Address().Hex()
			}
		}
	}
	if addr == "" {
		addr = cfg.Prefix("DECRYPTION_").MustString("ORACLE_ADDRESS")
	}
	return GatewayOptions{OracleAddress: addr}
}

// WorkerOptions is the oracle process configuration
type WorkerOptions struct {
	SignerKey     string
	CallbackURL   string
	CallbackToken string
	Timeout       time.Duration
	Worker        service.WorkerConfig
}

// WorkerFromConfig reads ORACLE_*
func WorkerFromConfig(cfg config.Conf) WorkerOptions {
	c := cfg.Prefix("ORACLE_")
	return WorkerOptions{
		SignerKey:     c.MustString("SIGNER_KEY"),
		CallbackURL:   c.MustURL("CALLBACK_URL").String(),
		CallbackToken: c.MayString("CALLBACK_TOKEN", ""),
		Timeout:       c.MayDuration("CALLBACK_TIMEOUT", 10*time.Second),
		Worker: service.WorkerConfig{
			Every:       c.MayDuration("POLL_EVERY", 500*time.Millisecond),
			Concurrency: c.MayInt("CONCURRENCY", 4),
			TakeBatch:   c.MayInt("TAKE_BATCH", 16),
			Lease:       c.MayDuration("LEASE", time.Minute),
			RetryBase:   c.MayDuration("RETRY_BASE", 500*time.Millisecond),
			MaxAttempts: c.MayInt("MAX_ATTEMPTS", 8),
		},
	}
}
