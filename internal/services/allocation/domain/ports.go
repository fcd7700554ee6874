package domain

import (
	"context"

	"allocvault/internal/core/cipher"

	"github.com/ethereum/go-ethereum/common"
)

// Tx is the accumulator bound to one transaction
type Tx interface {
	// Contribute adds h to zone, creating it at zero first; created reports the lazy init
	Contribute(ctx context.Context, zone string, h cipher.Handle) (z Zone, created bool, err error)
	ReadEncrypted(ctx context.Context, zone string) (Zone, error)
	Lookup(ctx context.Context, hash common.Hash) (string, error)
	RecordReveal(ctx context.Context, callbackID, zone string, total uint32) (Reveal, error)
}

// ServicePort is the standalone accumulator surface
type ServicePort interface {
	Contribute(ctx context.Context, zone string, h cipher.Handle) (Zone, error)
	ReadEncrypted(ctx context.Context, zone string) (Zone, error)
	Registry(ctx context.Context) ([]RegistryEntry, error)
	Lookup(ctx context.Context, hash common.Hash) (string, error)
	LatestReveal(ctx context.Context, zone string) (Reveal, error)
}
