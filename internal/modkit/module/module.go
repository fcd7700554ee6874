// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "allocvault/internal/platform/net/http"
)

// Module is what the API composition mounts and cross wires
// kept apart from modkit so a module can export its own ports type without import knots
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
