// Package domain holds the decryption oracle contract: jobs, callbacks and ports
package domain

import (
	"errors"

	"allocvault/internal/core/cipher"
)

// Handler names the resolution entry point a job's callback is meant for
// values match the correlation flows
type Handler string

// Handlers
const (
	HandlerRequest Handler = "request"
	HandlerZone    Handler = "zone"
)

// Arity is how many handles a handler decrypts
func (h Handler) Arity() int {
	switch h {
	case HandlerRequest:
		return 2
	case HandlerZone:
		return 1
	default:
		return 0
	}
}

// JobState is the oracle queue lifecycle
type JobState string

// Job states
const (
	JobQueued JobState = "queued"
	JobLeased JobState = "leased"
	JobDone   JobState = "done"
	JobFailed JobState = "failed"
)

// Job is one queued decryption
type Job struct {
	CallbackID string
	Handler    Handler
	Handles    []cipher.Handle
	State      JobState
	Attempts   int
	LastError  string
}

// JobView is the operator view of a job; handles are left out
type JobView struct {
	CallbackID string   `json:"callback_id"`
	Handler    Handler  `json:"handler"`
	State      JobState `json:"state"`
	Attempts   int      `json:"attempts"`
	LastError  string   `json:"last_error,omitempty"`
}

// View renders the job without its ciphertexts
func (j Job) View() JobView {
	return JobView{CallbackID: j.CallbackID, Handler: j.Handler, State: j.State, Attempts: j.Attempts, LastError: j.LastError}
}

// Callback is what the oracle posts back; byte fields travel as base64
type Callback struct {
	CallbackID string  `json:"callback_id" validate:"required,max=128" example:"5f0c2c7e-8f5a-4f9b-b5a4-0c6b3cfb4e1d"`
	Handler    Handler `json:"handler" validate:"required,oneof=request zone" example:"request"`
	Cleartext  []byte  `json:"cleartext" validate:"required" swaggertype:"string" format:"base64"`
	Proof      []byte  `json:"proof" validate:"required,len=65" swaggertype:"string" format:"base64"`
}

// ErrPermanent marks delivery failures a retry cannot fix
var ErrPermanent = errors.New("oracle: permanent delivery failure")
