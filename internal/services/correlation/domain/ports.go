package domain

import (
	"context"
	"time"
)

// Tx is the correlator bound to one transaction
type Tx interface {
	// Register fails DuplicateCallback when the id exists and DecryptionPending when the request already has a live one
	Register(ctx context.Context, callbackID string, t Target, ttl time.Duration) (Correlation, error)
	// Resolve locks the correlation; unknown, expired or wrong flow fail InvalidRequest
	// resolved correlations are returned so the caller can answer AlreadyProcessed
	Resolve(ctx context.Context, callbackID string, flow Flow) (Correlation, error)
	// Live returns the pending request correlation, if any
	Live(ctx context.Context, requestID uint64) (Correlation, bool, error)
	MarkResolved(ctx context.Context, callbackID string) error
	Expire(ctx context.Context, callbackID string) error
	ExpireDue(ctx context.Context, limit int) ([]Correlation, error)
}

// ServicePort is the standalone correlator surface
type ServicePort interface {
	Register(ctx context.Context, callbackID string, t Target, ttl time.Duration) (Correlation, error)
	Resolve(ctx context.Context, callbackID string, flow Flow) (Correlation, error)
	MarkResolved(ctx context.Context, callbackID string) error
	ExpireDue(ctx context.Context, limit int) ([]Correlation, error)
	Get(ctx context.Context, callbackID string) (Correlation, error)
}
