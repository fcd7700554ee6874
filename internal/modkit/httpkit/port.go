package httpkit

import (
	"crypto/subtle"
	"net/http"

	perr "allocvault/internal/platform/errors"
)

// TokenFunc maps a bearer token to a principal
type TokenFunc func(token string) (principal string, err error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a parser function
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// NewTokenPort builds a Port over a static token to principal table
func NewTokenPort(tokens map[string]string) *Port {
	table := make(map[string]string, len(tokens))
	for k, v := range tokens {
		if k != "" && v != "" {
			table[k] = v
		}
	}
	return NewPortFunc(func(token string) (string, error) {
		for k, principal := range table {
			if subtle.ConstantTimeCompare([]byte(k), []byte(token)) == 1 {
				return principal, nil
			}
		}
		return "", perr.Unauthorizedf("unknown token")
	})
}

// Principal resolves the bearer token to a principal
func (p *Port) Principal(r *http.Request) (string, error) {
	raw, err := BearerToken(r)
	if err != nil {
		return "", err
	}
	if p == nil || p.parse == nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	principal, err := p.parse(raw)
	if err != nil || principal == "" {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return principal, nil
}
