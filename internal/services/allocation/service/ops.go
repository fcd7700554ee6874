package service

import (
	"context"

	"allocvault/internal/core/cipher"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/services/allocation/domain"
	"allocvault/internal/services/allocation/repo"

	"github.com/ethereum/go-ethereum/common"
)

type txOps struct {
	r   repo.Repo
	alg cipher.Algebra
}

func (t txOps) Contribute(ctx context.Context, zone string, h cipher.Handle) (domain.Zone, bool, error) {
	name, err := domain.Canonical(zone)
	if err != nil {
		return domain.Zone{}, false, err
	}
	if !t.alg.IsInitialized(h) {
		return domain.Zone{}, false, perr.InvalidArgf("contribution is not a %s ciphertext", t.alg.Name())
	}

	created := false
	row, err := t.r.Lock(ctx, name)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		zero, zerr := t.alg.Zero()
		if zerr != nil {
			return domain.Zone{}, false, perr.Wrapf(zerr, perr.ErrorCodeUnknown, "zero ciphertext")
		}
		hash := domain.Hash(name)
		if created, err = t.r.Create(ctx, name, hash.Bytes(), zero); err != nil {
			return domain.Zone{}, false, perr.FromPostgres(err, "create zone")
		}
		row, err = t.r.Lock(ctx, name)
	}
	if err != nil {
		return domain.Zone{}, false, perr.FromPostgres(err, "lock zone")
	}
	if row.Contributions >= cipher.MaxTerms {
		return domain.Zone{}, false, perr.Conflictf("zone %q already holds %d contributions", name, row.Contributions)
	}

	sum, err := t.alg.Add(row.EncTotal, h)
	if err != nil {
		return domain.Zone{}, false, perr.Wrapf(err, perr.ErrorCodeUnknown, "add to zone %q", name)
	}
	row, err = t.r.SetTotal(ctx, name, sum)
	if err != nil {
		return domain.Zone{}, false, perr.FromPostgres(err, "update zone total")
	}
	return toZone(row), created, nil
}

func (t txOps) ReadEncrypted(ctx context.Context, zone string) (domain.Zone, error) {
	name, err := domain.Canonical(zone)
	if err != nil {
		return domain.Zone{}, err
	}
	row, err := t.r.Get(ctx, name)
	if err != nil {
		return domain.Zone{}, zoneErr(err, name)
	}
	return toZone(row), nil
}

// Lookup scans the registry in creation order, hashing each name
func (t txOps) Lookup(ctx context.Context, hash common.Hash) (string, error) {
	rows, err := t.r.ListNames(ctx)
	if err != nil {
		return "", perr.FromPostgres(err, "list zones")
	}
	for _, r := range rows {
		if domain.Hash(r.Name) == hash {
			return r.Name, nil
		}
	}
	return "", perr.ZoneNotFoundf("no zone hashes to %s", hash.Hex())
}

func (t txOps) RecordReveal(ctx context.Context, callbackID, zone string, total uint32) (domain.Reveal, error) {
	row, err := t.r.InsertReveal(ctx, callbackID, zone, int64(total))
	if perr.IsDuplicateKey(err) {
		return domain.Reveal{}, perr.AlreadyProcessedf("callback %s already revealed zone %q", callbackID, zone)
	}
	if err != nil {
		return domain.Reveal{}, perr.FromPostgres(err, "insert zone reveal")
	}
	if err := t.r.SetLastRevealed(ctx, zone, row.Total, row.RevealedAt); err != nil {
		return domain.Reveal{}, zoneErr(err, zone)
	}
	return toReveal(row), nil
}

func zoneErr(err error, name string) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.ZoneNotFoundf("zone %q is not registered", name)
	}
	return perr.FromPostgres(err, "read zone")
}

func toZone(r repo.RowZone) domain.Zone {
	z := domain.Zone{
		Name:           r.Name,
		Seq:            r.Seq,
		Hash:           common.BytesToHash(r.Hash),
		EncryptedTotal: cipher.Handle(r.EncTotal),
		Contributions:  r.Contributions,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.LastRevealedTotal != nil && r.LastRevealedAt != nil {
		z.LastReveal = &domain.Reveal{Zone: r.Name, Total: uint32(*r.LastRevealedTotal), RevealedAt: *r.LastRevealedAt}
	}
	return z
}

func toReveal(r repo.RowReveal) domain.Reveal {
	return domain.Reveal{CallbackID: r.CallbackID, Zone: r.Zone, Total: uint32(r.Total), RevealedAt: r.RevealedAt}
}
