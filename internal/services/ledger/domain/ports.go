package domain

import "context"

// ServicePort is the ledger surface served over HTTP
type ServicePort interface {
	Submit(ctx context.Context, principal string, in SubmitInput) (SubmitOutput, error)
	Read(ctx context.Context, id uint64) (Result, error)
	Get(ctx context.Context, id uint64) (RequestView, error)
}

// Tx is the ledger bound to one transaction, used by the decryption flow
type Tx interface {
	// Lock reads a request and holds its row until commit
	Lock(ctx context.Context, id uint64) (Request, error)
	BeginDecryption(ctx context.Context, id uint64) error
	CancelDecryption(ctx context.Context, id uint64) error
	MarkDecrypted(ctx context.Context, id uint64, demand, priority uint32) (Request, error)
}
