package module

import (
	"time"

	"allocvault/internal/platform/config"
)

// Options controls the events module
type Options struct {
	RelayEvery   time.Duration
	RelayBatch   int
	StreamBuffer int
	PingEvery    time.Duration
}

// FromConfig reads EVENTS_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("EVENTS_")
	return Options{
		RelayEvery:   c.MayDuration("RELAY_EVERY", 2*time.Second),
		RelayBatch:   c.MayInt("RELAY_BATCH", 500),
		StreamBuffer: c.MayInt("STREAM_BUFFER", 64),
		PingEvery:    c.MayDuration("STREAM_PING", 30*time.Second),
	}
}
