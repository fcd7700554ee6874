package domain

import (
	"context"

	"allocvault/internal/core/cipher"
)

// Gateway submits ciphertexts for decryption inside the caller's transaction
// the returned callback id is opaque to callers
type Gateway interface {
	RequestDecryption(ctx context.Context, handles []cipher.Handle, h Handler) (callbackID string, err error)
	// Cancel withdraws a job that has not been delivered yet; unknown ids are ignored
	Cancel(ctx context.Context, callbackID, reason string) error
}

// Verifier checks an oracle proof over (callbackID, cleartext)
type Verifier interface {
	Verify(callbackID string, cleartext, proof []byte) bool
}

// Deliverer hands a signed callback to the resolution entry point
type Deliverer interface {
	Deliver(ctx context.Context, cb Callback) error
}
