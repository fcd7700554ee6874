// Package domain holds the decryption flow types, ports and authorization rules
package domain

import (
	"context"
	"time"

	corrdom "allocvault/internal/services/correlation/domain"
	oracledom "allocvault/internal/services/oracle/domain"
)

// CallbackInput is the oracle's answer as posted to the resolution entry point
type CallbackInput = oracledom.Callback

// Ticket is handed back when a decryption is queued
type Ticket struct {
	CallbackID string       `json:"callback_id" example:"5f0c2c7e-8f5a-4f9b-b5a4-0c6b3cfb4e1d"`
	Flow       corrdom.Flow `json:"flow" example:"request"`
	RequestID  uint64       `json:"request_id,omitempty" example:"1"`
	Zone       string       `json:"zone,omitempty" example:"north"`
	ExpiresAt  time.Time    `json:"expires_at"`
}

// ResolveOutput names what a callback resolved; plaintext is read through the ledger or zone endpoints
type ResolveOutput struct {
	CallbackID string       `json:"callback_id"`
	Flow       corrdom.Flow `json:"flow" example:"request"`
	RequestID  uint64       `json:"request_id,omitempty" example:"1"`
	Zone       string       `json:"zone,omitempty" example:"north"`
}

// ServicePort is the decryption surface
type ServicePort interface {
	RequestDecryption(ctx context.Context, principal string, id uint64) (Ticket, error)
	RequestZoneDecryption(ctx context.Context, principal, zone string) (Ticket, error)
	Resolve(ctx context.Context, principal string, in CallbackInput) (ResolveOutput, error)
}

// RequestedPayload is the DecryptionRequested and ZoneDecryptionRequested event body
type RequestedPayload struct {
	RequestID  uint64    `json:"request_id,omitempty"`
	Zone       string    `json:"zone,omitempty"`
	CallbackID string    `json:"callback_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DecryptedPayload is the RequestDecrypted event body
type DecryptedPayload struct {
	RequestID  uint64 `json:"request_id"`
	Zone       string `json:"zone"`
	CallbackID string `json:"callback_id"`
}

// RevealedPayload is the ZoneRevealed event body
type RevealedPayload struct {
	Zone       string    `json:"zone"`
	CallbackID string    `json:"callback_id"`
	RevealedAt time.Time `json:"revealed_at"`
}

// CancelledPayload is the DecryptionCancelled event body
type CancelledPayload struct {
	CallbackID string       `json:"callback_id"`
	Flow       corrdom.Flow `json:"flow"`
	RequestID  uint64       `json:"request_id,omitempty"`
	ZoneHash   string       `json:"zone_hash,omitempty"`
}
