package service

import (
	"context"

	perr "allocvault/internal/platform/errors"
	"allocvault/internal/services/ledger/domain"
	"allocvault/internal/services/ledger/repo"
)

type txOps struct{ r repo.Repo }

func (t txOps) Lock(ctx context.Context, id uint64) (domain.Request, error) {
	key, err := rowID(id)
	if err != nil {
		return domain.Request{}, err
	}
	row, err := t.r.Lock(ctx, key)
	if err != nil {
		return domain.Request{}, notFound(err, id)
	}
	return toRequest(row), nil
}

func (t txOps) BeginDecryption(ctx context.Context, id uint64) error {
	return t.move(ctx, id, domain.StateCreated, domain.StateDecryptionRequested)
}

func (t txOps) CancelDecryption(ctx context.Context, id uint64) error {
	return t.move(ctx, id, domain.StateDecryptionRequested, domain.StateCreated)
}

func (t txOps) move(ctx context.Context, id uint64, from, to domain.State) error {
	key, err := rowID(id)
	if err != nil {
		return err
	}
	err = t.r.SetState(ctx, key, string(from), string(to))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.Conflictf("request %d is not %s", id, from)
	}
	return perr.FromPostgres(err, "update request state")
}

func (t txOps) MarkDecrypted(ctx context.Context, id uint64, demand, priority uint32) (domain.Request, error) {
	key, err := rowID(id)
	if err != nil {
		return domain.Request{}, err
	}
	row, err := t.r.MarkDecrypted(ctx, key, int64(demand), int64(priority))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Request{}, perr.AlreadyProcessedf("request %d is not awaiting decryption", id)
	}
	if err != nil {
		return domain.Request{}, perr.FromPostgres(err, "write request result")
	}
	return toRequest(row), nil
}
