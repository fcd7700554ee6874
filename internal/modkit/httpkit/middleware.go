package httpkit

import (
	"net/http"
	"time"

	phttp "allocvault/internal/platform/net/http"
	"allocvault/internal/platform/net/middleware"
)

// StackOptions tunes the common stack
type StackOptions struct {
	CORSOrigins []string
	SlowRequest time.Duration
}

// CommonStack is the baseline middleware for the versioned API
// no global timeout: the event stream holds its connection open
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.SlowRequest}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.StripSlashes(),
	}
}

// Heartbeat answers GET /health before routing; use it on the root router
func Heartbeat() func(http.Handler) http.Handler { return middleware.Heartbeat("/health") }

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}

// Protected groups routes behind bearer auth
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
