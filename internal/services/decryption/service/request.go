package service

import (
	"context"
	"time"

	"allocvault/internal/core/cipher"
	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/logger"
	"allocvault/internal/platform/store"
	corrdom "allocvault/internal/services/correlation/domain"
	"allocvault/internal/services/decryption/domain"
	evdom "allocvault/internal/services/events/domain"
	ledgerdom "allocvault/internal/services/ledger/domain"
	oracledom "allocvault/internal/services/oracle/domain"
)

// RequestDecryption asks the oracle for a request's demand and priority
// a live correlation blocks a second ask until it is resolved or expires
func (s *Svc) RequestDecryption(ctx context.Context, principal string, id uint64) (domain.Ticket, error) {
	if principal == "" {
		return domain.Ticket{}, perr.Unauthorizedf("decryption requires an authenticated principal")
	}
	var (
		out domain.Ticket
		rec *evdom.Recorder
	)
	err := store.RunTx(ctx, s.d.DB, txAttempts, func(q repokit.Queryer) error {
		b := s.bind(q)
		rec = b.rec

		// correlation row before request row, the order Resolve and the sweeper lock in
		live, hasLive, err := b.corr.Live(ctx, id)
		if err != nil {
			return err
		}
		req, err := b.ledger.Lock(ctx, id)
		if err != nil {
			return err
		}
		if !s.auth.CanRequest(principal, req.Submitter) {
			return perr.Forbiddenf("only the submitter may request decryption of request %d", id)
		}
		if req.Processed() {
			return perr.AlreadyProcessedf("request %d is already decrypted", id)
		}
		switch {
		case hasLive:
			if err := s.clearStale(ctx, b, live); err != nil {
				return err
			}
		case req.State == ledgerdom.StateDecryptionRequested:
			// a concurrent ask committed while this one waited on the request row
			return perr.DecryptionPendingf("request %d already has a decryption in flight", id)
		}

		cb, err := b.gw.RequestDecryption(ctx,
			[]cipher.Handle{req.EncryptedDemand, req.EncryptedPriority}, oracledom.HandlerRequest)
		if err != nil {
			return err
		}
		c, err := b.corr.Register(ctx, cb, corrdom.RequestTarget(id), s.cfg.TTL)
		if err != nil {
			return err
		}
		if err := b.ledger.BeginDecryption(ctx, id); err != nil {
			return err
		}
		out = domain.Ticket{CallbackID: cb, Flow: corrdom.FlowRequest, RequestID: id, ExpiresAt: c.ExpiresAt}
		return rec.Add(ctx, evdom.DecryptionRequested, evdom.RequestSubject(id),
			domain.RequestedPayload{RequestID: id, CallbackID: cb, ExpiresAt: c.ExpiresAt})
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	s.d.Publisher.Publish(rec.Events()...)
	logger.C(ctx).Info().Uint64("request_id", id).Str("callback_id", out.CallbackID).Msg("decryption requested")
	return out, nil
}

// clearStale expires a live correlation the sweeper has not reached yet; a fresh one is DecryptionPending
func (s *Svc) clearStale(ctx context.Context, b bound, live corrdom.Correlation) error {
	if !live.Due {
		return perr.DecryptionPendingf("request %d awaits callback %s until %s",
			live.Target.RequestID, live.CallbackID, live.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return s.cancel(ctx, b, live)
}

// cancel expires c and releases its target
func (s *Svc) cancel(ctx context.Context, b bound, c corrdom.Correlation) error {
	if err := b.corr.Expire(ctx, c.CallbackID); err != nil {
		return err
	}
	return s.release(ctx, b, c)
}

// release withdraws the oracle job of an expired correlation and puts a request back to created
func (s *Svc) release(ctx context.Context, b bound, c corrdom.Correlation) error {
	if err := b.gw.Cancel(ctx, c.CallbackID, "expired"); err != nil {
		return err
	}
	p := domain.CancelledPayload{CallbackID: c.CallbackID, Flow: c.Target.Flow}
	var subject string
	switch c.Target.Flow {
	case corrdom.FlowRequest:
		if err := b.ledger.CancelDecryption(ctx, c.Target.RequestID); err != nil {
			return err
		}
		p.RequestID = c.Target.RequestID
		subject = evdom.RequestSubject(c.Target.RequestID)
	default:
		p.ZoneHash = c.Target.ZoneHash.Hex()
		subject = evdom.ZoneSubject(p.ZoneHash)
		if name, err := b.zones.Lookup(ctx, c.Target.ZoneHash); err == nil {
			subject = evdom.ZoneSubject(name)
		}
	}
	return b.rec.Add(ctx, evdom.DecryptionCancelled, subject, p)
}
