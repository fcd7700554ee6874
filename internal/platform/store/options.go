package store

import (
	"errors"

	"allocvault/internal/platform/logger"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithPG installs a ready postgres seam; Open then skips dialing even when PG is enabled
func WithPG(pg TxRunner) Option {
	return func(s *Store) error {
		if pg == nil {
			return errors.New("store: WithPG needs a non nil runner")
		}
		s.PG = pg
		return nil
	}
}

// WithClickhouse installs a ready clickhouse seam the same way
func WithClickhouse(ch Clickhouse) Option {
	return func(s *Store) error {
		if ch == nil {
			return errors.New("store: WithClickhouse needs a non nil client")
		}
		s.CH = ch
		return nil
	}
}
