// Package domain holds oracle callback correlation types and ports
package domain

import (
	"time"

	perr "allocvault/internal/platform/errors"

	"github.com/ethereum/go-ethereum/common"
)

// Flow tags which domain a callback belongs to; the two key spaces never mix
type Flow string

// Flows
const (
	FlowRequest Flow = "request"
	FlowZone    Flow = "zone"
)

// Valid reports whether f is a known flow
func (f Flow) Valid() bool { return f == FlowRequest || f == FlowZone }

// State is the correlation lifecycle
type State string

// States; resolved and expired are terminal
const (
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateExpired  State = "expired"
)

// DefaultTTL bounds how long a correlation waits for its callback
const DefaultTTL = 15 * time.Minute

// Target is the typed domain key a callback resolves to
type Target struct {
	Flow      Flow
	RequestID uint64
	ZoneHash  common.Hash
}

// RequestTarget keys a request decryption
func RequestTarget(id uint64) Target { return Target{Flow: FlowRequest, RequestID: id} }

// ZoneTarget keys a zone decryption
func ZoneTarget(hash common.Hash) Target { return Target{Flow: FlowZone, ZoneHash: hash} }

// Validate checks that exactly the key for the flow is set
func (t Target) Validate() error {
	switch t.Flow {
	case FlowRequest:
		if t.RequestID == 0 || t.ZoneHash != (common.Hash{}) {
			return perr.InvalidArgf("request correlation needs a request id and no zone hash")
		}
	case FlowZone:
		if t.ZoneHash == (common.Hash{}) || t.RequestID != 0 {
			return perr.InvalidArgf("zone correlation needs a zone hash and no request id")
		}
	default:
		return perr.InvalidArgf("unknown flow %q", t.Flow)
	}
	return nil
}

// Correlation maps an oracle callback id to its target
type Correlation struct {
	CallbackID string
	Target     Target
	State      State
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ResolvedAt *time.Time
	// Due is set when expires_at has passed, even if the sweeper has not run yet
	Due bool
}

// View is the JSON form of a correlation
type View struct {
	CallbackID string     `json:"callback_id"`
	Flow       Flow       `json:"flow" example:"request"`
	RequestID  uint64     `json:"request_id,omitempty" example:"1"`
	ZoneHash   string     `json:"zone_hash,omitempty"`
	State      State      `json:"state" example:"pending"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// View renders c for the API
func (c Correlation) View() View {
	v := View{
		CallbackID: c.CallbackID,
		Flow:       c.Target.Flow,
		RequestID:  c.Target.RequestID,
		State:      c.State,
		CreatedAt:  c.CreatedAt,
		ExpiresAt:  c.ExpiresAt,
		ResolvedAt: c.ResolvedAt,
	}
	if c.Target.Flow == FlowZone {
		v.ZoneHash = c.Target.ZoneHash.Hex()
	}
	return v
}
