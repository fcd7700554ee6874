package service

import (
	"context"
	"time"

	perr "allocvault/internal/platform/errors"
	"allocvault/internal/services/correlation/domain"
	"allocvault/internal/services/correlation/repo"

	"github.com/ethereum/go-ethereum/common"
)

type txOps struct{ r repo.Repo }

func (t txOps) Register(ctx context.Context, callbackID string, target domain.Target, ttl time.Duration) (domain.Correlation, error) {
	if callbackID == "" {
		return domain.Correlation{}, perr.WithField(perr.InvalidArgf("callback id is required"), "callback_id")
	}
	if err := target.Validate(); err != nil {
		return domain.Correlation{}, err
	}
	if ttl <= 0 {
		ttl = domain.DefaultTTL
	}

	row := repo.RowCorrelation{CallbackID: callbackID, Flow: string(target.Flow)}
	switch target.Flow {
	case domain.FlowRequest:
		id := int64(target.RequestID)
		row.RequestID = &id
	case domain.FlowZone:
		row.ZoneHash = target.ZoneHash.Bytes()
	}

	out, err := t.r.Insert(ctx, row, ttl)
	switch {
	case perr.IsDuplicateKeyOn(err, repo.PKey):
		return domain.Correlation{}, perr.DuplicateCallbackf("callback %s is already registered", callbackID)
	case perr.IsDuplicateKeyOn(err, repo.OneLiveIdx):
		return domain.Correlation{}, perr.DecryptionPendingf("request %d already has a decryption in flight", target.RequestID)
	case err != nil:
		return domain.Correlation{}, perr.FromPostgres(err, "insert correlation")
	}
	return toCorrelation(out), nil
}

func (t txOps) Resolve(ctx context.Context, callbackID string, flow domain.Flow) (domain.Correlation, error) {
	row, err := t.r.Lock(ctx, callbackID)
	if err != nil {
		return domain.Correlation{}, unknown(err, callbackID)
	}
	c := toCorrelation(row)
	switch {
	case c.Target.Flow != flow:
		return domain.Correlation{}, perr.InvalidRequestf("callback %s does not belong to the %s flow", callbackID, flow)
	case c.State == domain.StateExpired, c.State == domain.StatePending && c.Due:
		return domain.Correlation{}, perr.InvalidRequestf("callback %s has expired", callbackID)
	}
	return c, nil
}

func (t txOps) Live(ctx context.Context, requestID uint64) (domain.Correlation, bool, error) {
	row, err := t.r.LiveForRequest(ctx, int64(requestID))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Correlation{}, false, nil
	}
	if err != nil {
		return domain.Correlation{}, false, perr.FromPostgres(err, "read live correlation")
	}
	return toCorrelation(row), true, nil
}

func (t txOps) MarkResolved(ctx context.Context, callbackID string) error {
	return t.move(ctx, callbackID, domain.StateResolved)
}

func (t txOps) Expire(ctx context.Context, callbackID string) error {
	return t.move(ctx, callbackID, domain.StateExpired)
}

func (t txOps) move(ctx context.Context, callbackID string, to domain.State) error {
	err := t.r.SetState(ctx, callbackID, string(domain.StatePending), string(to))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.AlreadyProcessedf("callback %s is no longer pending", callbackID)
	}
	return perr.FromPostgres(err, "update correlation state")
}

func (t txOps) ExpireDue(ctx context.Context, limit int) ([]domain.Correlation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := t.r.ExpireDue(ctx, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "expire correlations")
	}
	out := make([]domain.Correlation, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCorrelation(r))
	}
	return out, nil
}

func unknown(err error, callbackID string) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.InvalidRequestf("callback %s is not registered", callbackID)
	}
	return perr.FromPostgres(err, "read correlation")
}

func toCorrelation(r repo.RowCorrelation) domain.Correlation {
	c := domain.Correlation{
		CallbackID: r.CallbackID,
		Target:     domain.Target{Flow: domain.Flow(r.Flow)},
		State:      domain.State(r.State),
		CreatedAt:  r.CreatedAt,
		ExpiresAt:  r.ExpiresAt,
		ResolvedAt: r.ResolvedAt,
		Due:        r.Due,
	}
	if r.RequestID != nil {
		c.Target.RequestID = uint64(*r.RequestID)
	}
	if len(r.ZoneHash) > 0 {
		c.Target.ZoneHash = common.BytesToHash(r.ZoneHash)
	}
	return c
}
