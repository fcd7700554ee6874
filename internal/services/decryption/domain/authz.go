package domain

import "slices"

// Authorizer decides who may drive the decryption flows
type Authorizer struct {
	// OraclePrincipal is the only principal allowed to resolve callbacks
	OraclePrincipal string
	// ZoneRevealers may request zone reveals; empty lets any authenticated principal
	ZoneRevealers []string
}

// CanRequest allows only the submitter of a request to ask for its decryption
func (a Authorizer) CanRequest(principal, submitter string) bool {
	return principal != "" && principal == submitter
}

// CanResolve allows only the oracle principal
func (a Authorizer) CanResolve(principal string) bool {
	return principal != "" && a.OraclePrincipal != "" && principal == a.OraclePrincipal
}

// CanRevealZone checks the revealer list
func (a Authorizer) CanRevealZone(principal string) bool {
	if principal == "" {
		return false
	}
	return len(a.ZoneRevealers) == 0 || slices.Contains(a.ZoneRevealers, principal)
}
