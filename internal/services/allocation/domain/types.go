// Package domain holds zone accumulator types and ports
package domain

import (
	"strings"
	"time"

	"allocvault/internal/core/attest"
	"allocvault/internal/core/cipher"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/net/http/bind"
	ptime "allocvault/internal/platform/time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/text/unicode/norm"
)

// Canonical returns the stored form of a zone name
// NFC first, so visually identical names hash the same
func Canonical(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return "", perr.WithField(perr.InvalidArgf("zone name is required"), "zone")
	}
	if !bind.ZoneNameOK(n) {
		return "", perr.WithField(perr.InvalidArgf("zone name %q is not allowed", n), "zone")
	}
	return n, nil
}

// Hash is the correlation key for a canonical zone name
func Hash(name string) common.Hash { return attest.ZoneHash(name) }

// Zone is one accumulator
type Zone struct {
	Name           string
	Seq            int64
	Hash           common.Hash
	EncryptedTotal cipher.Handle
	Contributions  int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastReveal     *Reveal
}

// Reveal is a decrypted zone total
type Reveal struct {
	CallbackID string    `json:"callback_id" example:"5f0c2c7e-8f5a-4f9b-b5a4-0c6b3cfb4e1d"`
	Zone       string    `json:"zone" example:"north"`
	Total      uint32    `json:"total" example:"17"`
	RevealedAt time.Time `json:"revealed_at"`
}

// ZoneView is the JSON form of a zone
type ZoneView struct {
	Name              string     `json:"name" example:"north"`
	Hash              string     `json:"hash" example:"0x9c1e..."`
	EncryptedTotal    string     `json:"encrypted_total" example:"TQAAAAAAAAAF"`
	Contributions     int64      `json:"contributions" example:"3"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastRevealedTotal *uint32    `json:"last_revealed_total,omitempty"`
	LastRevealedAt    *time.Time `json:"last_revealed_at,omitempty"`
}

// View renders z for the API
func (z Zone) View() ZoneView {
	v := ZoneView{
		Name:           z.Name,
		Hash:           z.Hash.Hex(),
		EncryptedTotal: z.EncryptedTotal.String(),
		Contributions:  z.Contributions,
		CreatedAt:      z.CreatedAt,
		UpdatedAt:      z.UpdatedAt,
	}
	if z.LastReveal != nil {
		t := z.LastReveal.Total
		v.LastRevealedTotal, v.LastRevealedAt = &t, ptime.Ptr(z.LastReveal.RevealedAt)
	}
	return v
}

// RegistryEntry is one registered zone in creation order
type RegistryEntry struct {
	Name string `json:"name" example:"north"`
	Hash string `json:"hash"`
}

// UpdatedPayload is the ZoneAllocationUpdated event body
type UpdatedPayload struct {
	Zone          string `json:"zone"`
	Contributions int64  `json:"contributions"`
	Created       bool   `json:"created"`
}
