package modkit

import (
	"allocvault/internal/core/cipher"
	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/config"
	"allocvault/internal/platform/logger"
	"allocvault/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// wiring only; CH is nil when ClickHouse is disabled
type Deps struct {
	Log     *logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	CH      store.Clickhouse
	Algebra cipher.Algebra
}

// Logger returns Log or the process logger
func (d Deps) Logger() *logger.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logger.Get()
}
