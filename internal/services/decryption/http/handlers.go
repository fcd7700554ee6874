// Package http provides http transport for the decryption flows
package http

import (
	stdhttp "net/http"

	"allocvault/internal/modkit/httpkit"
	allochttp "allocvault/internal/services/allocation/http"
	"allocvault/internal/services/decryption/domain"
	ledgerhttp "allocvault/internal/services/ledger/http"
)

// Register mounts the decryption endpoints
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Post(r, "/requests/{id}/decrypt", h.request)
	httpkit.Post(r, "/zones/{zone}/decrypt", h.zone)
	httpkit.PostJSON[domain.CallbackInput](r, "/oracle/callback", h.callback)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Ask the oracle to decrypt a request
// @Description Only the submitter may ask. A second ask while a callback is pending answers 409 decryption_pending.
// @Tags Decryption
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request id"
// @Success 202 {object} domain.Ticket
// @Failure 403 {object} httpkit.Envelope "forbidden"
// @Failure 404 {object} httpkit.Envelope "not_found"
// @Failure 409 {object} httpkit.Envelope "already_processed or decryption_pending"
// @Router /requests/{id}/decrypt [post]
func (h *handlers) request(r *stdhttp.Request) (any, error) {
	principal, err := httpkit.Principal(r)
	if err != nil {
		return nil, err
	}
	id, err := ledgerhttp.IDParam(r)
	if err != nil {
		return nil, err
	}
	t, err := h.svc.RequestDecryption(r.Context(), principal, id)
	if err != nil {
		return nil, err
	}
	return httpkit.Accepted(t), nil
}

// @Summary Ask the oracle to reveal a zone total
// @Tags Decryption
// @Produce json
// @Security BearerAuth
// @Param zone path string true "Zone name"
// @Success 202 {object} domain.Ticket
// @Failure 403 {object} httpkit.Envelope "forbidden"
// @Failure 404 {object} httpkit.Envelope "zone_not_found"
// @Router /zones/{zone}/decrypt [post]
func (h *handlers) zone(r *stdhttp.Request) (any, error) {
	principal, err := httpkit.Principal(r)
	if err != nil {
		return nil, err
	}
	t, err := h.svc.RequestZoneDecryption(r.Context(), principal, allochttp.ZoneParam(r))
	if err != nil {
		return nil, err
	}
	return httpkit.Accepted(t), nil
}

// @Summary Oracle callback
// @Description Resolution entry point for the decryption oracle. Cleartext and proof are base64.
// @Tags Oracle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.CallbackInput true "Signed oracle answer"
// @Success 200 {object} domain.ResolveOutput
// @Failure 404 {object} httpkit.Envelope "invalid_request"
// @Failure 409 {object} httpkit.Envelope "already_processed"
// @Failure 422 {object} httpkit.Envelope "invalid_proof"
// @Router /oracle/callback [post]
func (h *handlers) callback(r *stdhttp.Request, in domain.CallbackInput) (any, error) {
	principal, err := httpkit.Principal(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Resolve(r.Context(), principal, in)
}
