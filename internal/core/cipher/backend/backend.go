// Package backend picks the ciphertext algebra a process runs with
package backend

import (
	"fmt"

	"allocvault/internal/core/cipher"
	"allocvault/internal/core/cipher/bgv"
	"allocvault/internal/core/cipher/mirror"
	"allocvault/internal/platform/config"
)

// Backend names
const (
	BGV    = "bgv"
	Mirror = "mirror"
)

// Options selects a backend and its key files
type Options struct {
	Name          string
	PublicKeyFile string
	SecretKeyFile string
}

// FromConfig reads CIPHER_*; mirror is for development only
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CIPHER_")
	return Options{
		Name:          c.MayEnum("BACKEND", BGV, BGV, Mirror),
		PublicKeyFile: c.MayString("PUBLIC_KEY_FILE", "keys/"+bgv.PublicKeyFile),
		SecretKeyFile: c.MayString("SECRET_KEY_FILE", "keys/"+bgv.SecretKeyFile),
	}
}

// Algebra loads the encrypt and add side; the API needs only the public key
func Algebra(o Options) (cipher.Algebra, error) {
	switch o.Name {
	case Mirror:
		return mirror.New(), nil
	case BGV, "":
		pk, err := bgv.LoadPublicKey(o.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		return bgv.New(pk)
	default:
		return nil, fmt.Errorf("unknown cipher backend %q", o.Name)
	}
}

// Decrypter loads the oracle side from the secret key
func Decrypter(o Options) (cipher.Decrypter, error) {
	switch o.Name {
	case Mirror:
		return mirror.New(), nil
	case BGV, "":
		sk, err := bgv.LoadSecretKey(o.SecretKeyFile)
		if err != nil {
			return nil, err
		}
		return bgv.NewDecrypter(sk)
	default:
		return nil, fmt.Errorf("unknown cipher backend %q", o.Name)
	}
}
