// Package http provides http transport for the request ledger
package http

import (
	stdhttp "net/http"
	"strconv"

	"allocvault/internal/modkit/httpkit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/services/ledger/domain"
)

// Register mounts the ledger endpoints
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.CreateJSON[domain.SubmitInput](r, "/requests", h.submit)
	httpkit.Get(r, "/requests/{id}", h.read)
	httpkit.Get(r, "/requests/{id}/detail", h.detail)
}

type handlers struct{ svc domain.ServicePort }

// IDParam parses the {id} path segment
func IDParam(r *stdhttp.Request) (uint64, error) {
	id, err := strconv.ParseUint(httpkit.Param(r, "id"), 10, 64)
	if err != nil {
		return 0, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "id must be a positive integer"), "id")
	}
	return id, nil
}

// @Summary Submit an encrypted request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.SubmitInput true "Encrypted demand and priority"
// @Success 201 {object} domain.SubmitOutput
// @Failure 422 {object} httpkit.Envelope "invalid_argument"
// @Router /requests [post]
func (h *handlers) submit(r *stdhttp.Request, in domain.SubmitInput) (any, error) {
	principal, err := httpkit.Principal(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Submit(r.Context(), principal, in)
}

// @Summary Decrypted result of a request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request id"
// @Success 200 {object} domain.Result
// @Failure 404 {object} httpkit.Envelope "not_found"
// @Router /requests/{id} [get]
func (h *handlers) read(r *stdhttp.Request) (any, error) {
	id, err := IDParam(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Read(r.Context(), id)
}

// @Summary Request detail and lifecycle state
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request id"
// @Success 200 {object} domain.RequestView
// @Failure 404 {object} httpkit.Envelope "not_found"
// @Router /requests/{id}/detail [get]
func (h *handlers) detail(r *stdhttp.Request) (any, error) {
	id, err := IDParam(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Get(r.Context(), id)
}
