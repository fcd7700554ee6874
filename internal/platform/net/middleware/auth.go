package middleware

import (
	"net/http"

	"allocvault/internal/platform/logger"
	pnet "allocvault/internal/platform/net"
)

// AuthPort resolves the caller principal from a request
type AuthPort interface {
	Principal(r *http.Request) (string, error)
}

// Auth rejects requests the port cannot resolve and stores the principal on the context
// a nil port lets every request through anonymously
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := p.Principal(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithPrincipal(r.Context(), principal)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
