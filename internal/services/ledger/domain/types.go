// Package domain holds request ledger types and ports
package domain

import (
	"time"

	"allocvault/internal/core/cipher"
)

// State is a request's place in the decryption lifecycle
type State string

// Lifecycle states; decrypted is terminal
const (
	StateCreated             State = "created"
	StateDecryptionRequested State = "decryption_requested"
	StateDecrypted           State = "decrypted"
)

// Request is one ledger entry with its result columns
type Request struct {
	ID                uint64
	Submitter         string
	EncryptedDemand   cipher.Handle
	EncryptedPriority cipher.Handle
	Zone              string
	State             State
	Demand            uint32
	Priority          uint32
	SubmittedAt       time.Time
	DecryptedAt       *time.Time
}

// Processed reports whether the result has been written
func (r Request) Processed() bool { return r.State == StateDecrypted }

// Result is the decrypted view of a request; zeros until processed
type Result struct {
	Demand    uint32 `json:"demand" example:"5"`
	Priority  uint32 `json:"priority" example:"2"`
	Processed bool   `json:"processed" example:"true"`
}

// Result projects the decrypted columns
func (r Request) Result() Result {
	return Result{Demand: r.Demand, Priority: r.Priority, Processed: r.Processed()}
}

// SubmitInput carries two base64 ciphertexts and an optional target zone
type SubmitInput struct {
	EncryptedDemand   string `json:"encrypted_demand" validate:"required,base64" example:"TQAAAAAAAAAF"`
	EncryptedPriority string `json:"encrypted_priority" validate:"required,base64" example:"TQAAAAAAAAAC"`
	Zone              string `json:"zone,omitempty" validate:"omitempty,zonename" example:"north"`
}

// SubmitOutput is the allocated id
type SubmitOutput struct {
	ID          uint64    `json:"id" example:"1"`
	Zone        string    `json:"zone" example:"north"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RequestView is the detail form of a request; ciphertexts are omitted
type RequestView struct {
	ID          uint64     `json:"id" example:"1"`
	Submitter   string     `json:"submitter" example:"alice"`
	Zone        string     `json:"zone" example:"north"`
	State       State      `json:"state" example:"created"`
	Result      Result     `json:"result"`
	SubmittedAt time.Time  `json:"submitted_at"`
	DecryptedAt *time.Time `json:"decrypted_at,omitempty"`
}

// View renders r for the API
func (r Request) View() RequestView {
	return RequestView{
		ID:          r.ID,
		Submitter:   r.Submitter,
		Zone:        r.Zone,
		State:       r.State,
		Result:      r.Result(),
		SubmittedAt: r.SubmittedAt,
		DecryptedAt: r.DecryptedAt,
	}
}

// SubmittedPayload is the RequestSubmitted event body
type SubmittedPayload struct {
	ID          uint64    `json:"id"`
	Zone        string    `json:"zone"`
	SubmittedAt time.Time `json:"submitted_at"`
}
