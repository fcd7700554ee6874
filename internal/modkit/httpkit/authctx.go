package httpkit

import (
	"net/http"
	"strings"

	perr "allocvault/internal/platform/errors"
	pnet "allocvault/internal/platform/net"
)

// Principal returns the authenticated principal from the request context
func Principal(r *http.Request) (string, error) {
	p := pnet.Principal(r.Context())
	if p == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return p, nil
}

// BearerToken returns the raw bearer token from the Authorization header
func BearerToken(r *http.Request) (string, error) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(authz) < len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(authz[len(prefix):])
	if raw == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}
