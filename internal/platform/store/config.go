package store

import (
	"time"

	"allocvault/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string
	PG      PGConfig
	CH      CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
	// LockTimeout is applied per transaction by the binaries through repokit.LockTimeout
	LockTimeout time.Duration

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// ConfigFrom reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*; postgres is always required
func ConfigFrom(cfg config.Conf, role string) Config {
	pc := cfg.Prefix("SERVICE_PGSQL_")
	cc := cfg.Prefix("SERVICE_CLICKHOUSE_")
	out := Config{
		AppName: "allocvault-" + role,
		PG: PGConfig{
			Enabled:        true,
			URL:            pc.MustString("DBURL"),
			MaxConns:       int32(pc.MayInt("MAX_CONNS", 10)),
			LogSQL:         pc.MayBool("LOG_SQL", false),
			SlowQueryMs:    pc.MayInt("SLOW_MS", 250),
			LockTimeout:    pc.MayDuration("LOCK_TIMEOUT", 2*time.Second),
			ConnectRetries: pc.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled: cc.MayBool("ENABLED", false),
			Role:    role,
		},
	}
	if out.CH.Enabled {
		out.CH.URL = cc.MustString("DBURL")
	}
	return out
}
