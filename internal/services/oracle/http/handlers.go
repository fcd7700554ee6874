// Package http exposes oracle job state to operators
package http

import (
	"context"
	stdhttp "net/http"

	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/services/oracle/domain"
)

// JobReader reads a job by callback id
type JobReader interface {
	Job(ctx context.Context, callbackID string) (domain.Job, error)
}

// Register mounts the job lookup
func Register(r httpkit.Router, s JobReader) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/oracle/jobs/{callbackID}", h.job)
}

type handlers struct{ svc JobReader }

// @Summary Oracle job state
// @Tags Oracle
// @Produce json
// @Security BearerAuth
// @Param callbackID path string true "Oracle callback id"
// @Success 200 {object} domain.JobView
// @Failure 404 {object} httpkit.Envelope "not_found"
// @Router /oracle/jobs/{callbackID} [get]
func (h *handlers) job(r *stdhttp.Request) (any, error) {
	j, err := h.svc.Job(r.Context(), httpkit.Param(r, "callbackID"))
	if err != nil {
		return nil, err
	}
	return j.View(), nil
}
