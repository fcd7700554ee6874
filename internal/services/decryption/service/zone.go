package service

import (
	"context"

	"allocvault/internal/core/cipher"
	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/logger"
	"allocvault/internal/platform/store"
	allocdom "allocvault/internal/services/allocation/domain"
	corrdom "allocvault/internal/services/correlation/domain"
	"allocvault/internal/services/decryption/domain"
	evdom "allocvault/internal/services/events/domain"
	oracledom "allocvault/internal/services/oracle/domain"
)

// RequestZoneDecryption asks the oracle for a zone's current total
func (s *Svc) RequestZoneDecryption(ctx context.Context, principal, zone string) (domain.Ticket, error) {
	if principal == "" {
		return domain.Ticket{}, perr.Unauthorizedf("zone reveal requires an authenticated principal")
	}
	if !s.auth.CanRevealZone(principal) {
		return domain.Ticket{}, perr.Forbiddenf("principal %q may not reveal zones", principal)
	}
	name, err := allocdom.Canonical(zone)
	if err != nil {
		return domain.Ticket{}, err
	}

	var (
		out domain.Ticket
		rec *evdom.Recorder
	)
	err = store.RunTx(ctx, s.d.DB, txAttempts, func(q repokit.Queryer) error {
		b := s.bind(q)
		rec = b.rec

		z, err := b.zones.ReadEncrypted(ctx, name)
		if err != nil {
			return err
		}
		cb, err := b.gw.RequestDecryption(ctx, []cipher.Handle{z.EncryptedTotal}, oracledom.HandlerZone)
		if err != nil {
			return err
		}
		c, err := b.corr.Register(ctx, cb, corrdom.ZoneTarget(allocdom.Hash(z.Name)), s.cfg.TTL)
		if err != nil {
			return err
		}
		out = domain.Ticket{CallbackID: cb, Flow: corrdom.FlowZone, Zone: z.Name, ExpiresAt: c.ExpiresAt}
		return rec.Add(ctx, evdom.ZoneDecryptionRequested, evdom.ZoneSubject(z.Name),
			domain.RequestedPayload{Zone: z.Name, CallbackID: cb, ExpiresAt: c.ExpiresAt})
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	s.d.Publisher.Publish(rec.Events()...)
	logger.C(ctx).Info().Str("zone", out.Zone).Str("callback_id", out.CallbackID).Msg("zone decryption requested")
	return out, nil
}
