package backend

import (
	"path/filepath"
	"testing"

	"allocvault/internal/core/cipher/mirror"
	"allocvault/internal/platform/config"
)

func TestMirrorRoundTrip(t *testing.T) {
	o := Options{Name: Mirror}
	alg, err := Algebra(o)
	if err != nil {
		t.Fatalf("algebra: %v", err)
	}
	dec, err := Decrypter(o)
	if err != nil {
		t.Fatalf("decrypter: %v", err)
	}
	h, _ := alg.Encrypt(9)
	if v, err := dec.Decrypt(h); err != nil || v != 9 {
		t.Fatalf("decrypt = %d, %v", v, err)
	}
	if _, ok := alg.(mirror.Algebra); !ok {
		t.Fatalf("algebra = %T", alg)
	}
}

func TestBGVNeedsKeyFiles(t *testing.T) {
	dir := t.TempDir()
	o := Options{Name: BGV, PublicKeyFile: filepath.Join(dir, "missing.pk"), SecretKeyFile: filepath.Join(dir, "missing.sk")}
	if _, err := Algebra(o); err == nil {
		t.Fatalf("missing public key accepted")
	}
	if _, err := Decrypter(o); err == nil {
		t.Fatalf("missing secret key accepted")
	}
	if _, err := Algebra(Options{Name: "paillier"}); err == nil {
		t.Fatalf("unknown backend accepted")
	}
}

func TestFromConfigDefaults(t *testing.T) {
	t.Setenv("CIPHER_BACKEND", "Mirror")
	o := FromConfig(config.New())
	if o.Name != Mirror || o.PublicKeyFile != "keys/bgv.pk" || o.SecretKeyFile != "keys/bgv.sk" {
		t.Fatalf("options = %+v", o)
	}
}
