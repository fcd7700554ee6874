// Package http provides http transport for callback correlations
package http

import (
	stdhttp "net/http"

	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/services/correlation/domain"
)

// Register mounts the correlation lookup
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/correlations/{callbackID}", h.get)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Correlation state for an oracle callback id
// @Tags Oracle
// @Produce json
// @Security BearerAuth
// @Param callbackID path string true "Oracle callback id"
// @Success 200 {object} domain.View
// @Failure 404 {object} httpkit.Envelope "invalid_request"
// @Router /correlations/{callbackID} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	c, err := h.svc.Get(r.Context(), httpkit.Param(r, "callbackID"))
	if err != nil {
		return nil, err
	}
	return c.View(), nil
}
