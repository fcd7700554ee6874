package service

import (
	"context"

	"allocvault/internal/core/attest"
	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/logger"
	"allocvault/internal/platform/store"
	allocdom "allocvault/internal/services/allocation/domain"
	corrdom "allocvault/internal/services/correlation/domain"
	"allocvault/internal/services/decryption/domain"
	evdom "allocvault/internal/services/events/domain"
)

// Resolve applies an oracle callback
// checks run before any write: correlation, already processed, proof, cleartext shape
func (s *Svc) Resolve(ctx context.Context, principal string, in domain.CallbackInput) (domain.ResolveOutput, error) {
	if !s.auth.CanResolve(principal) {
		return domain.ResolveOutput{}, perr.Forbiddenf("principal %q may not resolve oracle callbacks", principal)
	}
	flow := corrdom.Flow(in.Handler)
	if !flow.Valid() {
		return domain.ResolveOutput{}, perr.WithField(perr.InvalidArgf("unknown handler %q", in.Handler), "handler")
	}

	var (
		out domain.ResolveOutput
		rec *evdom.Recorder
	)
	err := store.RunTx(ctx, s.d.DB, txAttempts, func(q repokit.Queryer) error {
		b := s.bind(q)
		rec = b.rec

		c, err := b.corr.Resolve(ctx, in.CallbackID, flow)
		if err != nil {
			return err
		}
		if flow == corrdom.FlowRequest {
			out, err = s.resolveRequest(ctx, b, c, in)
		} else {
			out, err = s.resolveZone(ctx, b, c, in)
		}
		return err
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("callback_id", in.CallbackID).Str("handler", string(in.Handler)).
			Msg("callback rejected")
		return domain.ResolveOutput{}, err
	}
	s.d.Publisher.Publish(rec.Events()...)
	return out, nil
}

func (s *Svc) resolveRequest(ctx context.Context, b bound, c corrdom.Correlation, in domain.CallbackInput) (domain.ResolveOutput, error) {
	id := c.Target.RequestID
	req, err := b.ledger.Lock(ctx, id)
	if err != nil {
		return domain.ResolveOutput{}, err
	}
	if req.Processed() || c.State == corrdom.StateResolved {
		return domain.ResolveOutput{}, perr.AlreadyProcessedf("request %d is already decrypted", id)
	}
	if !s.d.Verifier.Verify(in.CallbackID, in.Cleartext, in.Proof) {
		return domain.ResolveOutput{}, perr.InvalidProoff("proof for callback %s does not verify", in.CallbackID)
	}
	demand, priority, err := attest.DecodeRequest(in.Cleartext)
	if err != nil {
		return domain.ResolveOutput{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "decode request cleartext"), "cleartext")
	}

	if err := b.corr.MarkResolved(ctx, in.CallbackID); err != nil {
		return domain.ResolveOutput{}, err
	}
	req, err = b.ledger.MarkDecrypted(ctx, id, demand, priority)
	if err != nil {
		return domain.ResolveOutput{}, err
	}
	z, created, err := b.zones.Contribute(ctx, req.Zone, req.EncryptedDemand)
	if err != nil {
		return domain.ResolveOutput{}, err
	}

	if err := b.rec.Add(ctx, evdom.RequestDecrypted, evdom.RequestSubject(id),
		domain.DecryptedPayload{RequestID: id, Zone: z.Name, CallbackID: in.CallbackID}); err != nil {
		return domain.ResolveOutput{}, err
	}
	if err := b.rec.Add(ctx, evdom.ZoneAllocationUpdated, evdom.ZoneSubject(z.Name),
		allocdom.UpdatedPayload{Zone: z.Name, Contributions: z.Contributions, Created: created}); err != nil {
		return domain.ResolveOutput{}, err
	}
	return domain.ResolveOutput{CallbackID: in.CallbackID, Flow: corrdom.FlowRequest, RequestID: id, Zone: z.Name}, nil
}

func (s *Svc) resolveZone(ctx context.Context, b bound, c corrdom.Correlation, in domain.CallbackInput) (domain.ResolveOutput, error) {
	if c.State == corrdom.StateResolved {
		return domain.ResolveOutput{}, perr.AlreadyProcessedf("zone callback %s was already applied", in.CallbackID)
	}
	if !s.d.Verifier.Verify(in.CallbackID, in.Cleartext, in.Proof) {
		return domain.ResolveOutput{}, perr.InvalidProoff("proof for callback %s does not verify", in.CallbackID)
	}
	name, err := b.zones.Lookup(ctx, c.Target.ZoneHash)
	if err != nil {
		return domain.ResolveOutput{}, err
	}
	total, err := attest.DecodeZone(in.Cleartext)
	if err != nil {
		return domain.ResolveOutput{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "decode zone cleartext"), "cleartext")
	}

	if err := b.corr.MarkResolved(ctx, in.CallbackID); err != nil {
		return domain.ResolveOutput{}, err
	}
	rv, err := b.zones.RecordReveal(ctx, in.CallbackID, name, total)
	if err != nil {
		return domain.ResolveOutput{}, err
	}
	if err := b.rec.Add(ctx, evdom.ZoneRevealed, evdom.ZoneSubject(name),
		domain.RevealedPayload{Zone: name, CallbackID: in.CallbackID, RevealedAt: rv.RevealedAt}); err != nil {
		return domain.ResolveOutput{}, err
	}
	return domain.ResolveOutput{CallbackID: in.CallbackID, Flow: corrdom.FlowZone, Zone: name}, nil
}
