// Package domain holds the notification types shared by every vault service
package domain

import (
	"encoding/json"
	"time"
)

// Kind names a state transition
type Kind string

// Notification kinds, one per successful transition
const (
	RequestSubmitted        Kind = "request_submitted"
	DecryptionRequested     Kind = "decryption_requested"
	RequestDecrypted        Kind = "request_decrypted"
	ZoneAllocationUpdated   Kind = "zone_allocation_updated"
	ZoneDecryptionRequested Kind = "zone_decryption_requested"
	ZoneRevealed            Kind = "zone_revealed"
	DecryptionCancelled     Kind = "decryption_cancelled"
)

// Event is one outbox row
type Event struct {
	Seq       int64           `json:"seq" example:"42"`
	Kind      Kind            `json:"kind" example:"request_submitted"`
	Subject   string          `json:"subject" example:"request/1"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
	CreatedAt time.Time       `json:"created_at"`
}

// PageInput is the query for GET /events
type PageInput struct {
	After int64 `json:"after" validate:"min=0"`
	Limit int   `json:"limit" validate:"min=0,max=500"`
}

// Page is a slice of the outbox plus the cursor for the next call
type Page struct {
	Events []Event `json:"events"`
	Next   int64   `json:"next"`
}
