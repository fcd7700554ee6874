// Package http provides http transport for zone accumulators
package http

import (
	stdhttp "net/http"
	"net/url"

	"allocvault/internal/modkit/httpkit"
	"allocvault/internal/services/allocation/domain"
)

// Register mounts the zone read endpoints
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/zones", h.registry)
	httpkit.Get(r, "/zones/{zone}", h.encrypted)
	httpkit.Get(r, "/zones/{zone}/reveal", h.reveal)
}

type handlers struct{ svc domain.ServicePort }

// ZoneParam returns the decoded {zone} path segment
func ZoneParam(r *stdhttp.Request) string {
	raw := httpkit.Param(r, "zone")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

// @Summary Registered zones in creation order
// @Tags Zones
// @Produce json
// @Success 200 {array} domain.RegistryEntry
// @Router /zones [get]
func (h *handlers) registry(r *stdhttp.Request) (any, error) {
	return h.svc.Registry(r.Context())
}

// @Summary Encrypted running total of a zone
// @Tags Zones
// @Produce json
// @Param zone path string true "Zone name"
// @Success 200 {object} domain.ZoneView
// @Failure 404 {object} httpkit.Envelope "zone_not_found"
// @Router /zones/{zone} [get]
func (h *handlers) encrypted(r *stdhttp.Request) (any, error) {
	z, err := h.svc.ReadEncrypted(r.Context(), ZoneParam(r))
	if err != nil {
		return nil, err
	}
	return z.View(), nil
}

// @Summary Latest revealed total of a zone
// @Tags Zones
// @Produce json
// @Param zone path string true "Zone name"
// @Success 200 {object} domain.Reveal
// @Failure 404 {object} httpkit.Envelope "zone_not_found or not_found"
// @Router /zones/{zone}/reveal [get]
func (h *handlers) reveal(r *stdhttp.Request) (any, error) {
	return h.svc.LatestReveal(r.Context(), ZoneParam(r))
}
