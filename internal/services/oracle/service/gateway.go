// Package service implements the decryption oracle: the in-transaction gateway and the worker that answers it
package service

import (
	"context"

	"allocvault/internal/core/attest"
	"allocvault/internal/core/cipher"
	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/services/oracle/domain"
	"allocvault/internal/services/oracle/repo"

	"github.com/google/uuid"
)

// Gateway binds job submission to a transaction and checks returned proofs
type Gateway struct {
	db       repokit.TxRunner
	binder   repokit.Binder[repo.Repo]
	verifier attest.Verifier
	newID    func() string
}

// NewGateway wires the gateway around the configured oracle address
func NewGateway(db repokit.TxRunner, binder repokit.Binder[repo.Repo], verifier attest.Verifier) *Gateway {
	if db == nil {
		panic("oracle.Gateway requires a non nil TxRunner")
	}
	if binder == nil {
		panic("oracle.Gateway requires a non nil Repo binder")
	}
	return &Gateway{db: db, binder: binder, verifier: verifier, newID: uuid.NewString}
}

// Bind returns gateway operations on q
func (g *Gateway) Bind(q repokit.Queryer) domain.Gateway {
	return gatewayOps{r: g.binder.Bind(q), newID: g.newID}
}

// Verify checks proof against the oracle address
func (g *Gateway) Verify(callbackID string, cleartext, proof []byte) bool {
	return g.verifier.Verify(callbackID, cleartext, proof)
}

// Job reads a queued job for operators
func (g *Gateway) Job(ctx context.Context, callbackID string) (domain.Job, error) {
	row, err := g.binder.Bind(g.db).Get(ctx, callbackID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Job{}, perr.NotFoundf("oracle job %q not found", callbackID)
		}
		return domain.Job{}, perr.FromPostgres(err, "get oracle job")
	}
	return toJob(row), nil
}

type gatewayOps struct {
	r     repo.Repo
	newID func() string
}

func (o gatewayOps) RequestDecryption(ctx context.Context, handles []cipher.Handle, h domain.Handler) (string, error) {
	if n := h.Arity(); n == 0 || len(handles) != n {
		return "", perr.InvalidArgf("handler %q takes %d handles, got %d", h, h.Arity(), len(handles))
	}
	raw := make([][]byte, len(handles))
	for i, hd := range handles {
		if len(hd) == 0 {
			return "", perr.InvalidArgf("handle %d is empty", i)
		}
		raw[i] = cipher.Serialize(hd)
	}
	id := o.newID()
	if err := o.r.Enqueue(ctx, id, string(h), raw); err != nil {
		return "", perr.FromPostgres(err, "enqueue oracle job")
	}
	return id, nil
}

func (o gatewayOps) Cancel(ctx context.Context, callbackID, reason string) error {
	return perr.FromPostgres(o.r.Cancel(ctx, callbackID, reason), "cancel oracle job")
}
