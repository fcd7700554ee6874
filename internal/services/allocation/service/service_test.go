package service_test

import (
	"context"
	"testing"
	"time"

	"allocvault/internal/core/cipher"
	"allocvault/internal/core/cipher/mirror"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/services/allocation/domain"
	"allocvault/internal/services/allocation/service"
	evsvc "allocvault/internal/services/events/service"
	"allocvault/internal/services/harness"

	"github.com/ethereum/go-ethereum/crypto"
)

func setup() (*harness.Vault, *service.Svc) {
	v := harness.New()
	events := evsvc.New(v, v.Events(), nil)
	return v, service.New(v, v.Zones(), mirror.New(), events, events)
}

func TestContributeCreatesLazilyAndSums(t *testing.T) {
	v, svc := setup()
	ctx := context.Background()

	for _, n := range []uint64{5, 7, 9} {
		if _, err := svc.Contribute(ctx, "north", mirror.Of(n)); err != nil {
			t.Fatalf("contribute: %v", err)
		}
	}
	z, err := svc.ReadEncrypted(ctx, "north")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if mirror.Value(z.EncryptedTotal) != 21 || z.Contributions != 3 || z.Seq != 1 {
		t.Fatalf("zone = %+v", z)
	}
	if z.Hash != crypto.Keccak256Hash([]byte("north")) {
		t.Fatalf("hash = %s", z.Hash.Hex())
	}

	outbox := v.Outbox()
	if len(outbox) != 3 || string(outbox[0].Payload) != `{"zone":"north","contributions":1,"created":true}` {
		t.Fatalf("outbox = %+v", outbox)
	}
	if string(outbox[1].Payload) != `{"zone":"north","contributions":2,"created":false}` {
		t.Fatalf("second payload = %s", outbox[1].Payload)
	}
}

func TestContributeRejectsForeignHandles(t *testing.T) {
	v, svc := setup()
	ctx := context.Background()
	if _, err := svc.Contribute(ctx, "north", []byte{1, 2, 3}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("foreign handle: %v", err)
	}
	if _, err := svc.Contribute(ctx, "", mirror.Of(1)); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty zone: %v", err)
	}
	if _, ok := v.Zone("north"); ok {
		t.Fatalf("rejected contribution registered a zone")
	}
}

func TestContributeStopsAtMaxTerms(t *testing.T) {
	v, svc := setup()
	ctx := context.Background()
	if _, err := svc.Contribute(ctx, "north", mirror.Of(7)); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	v.SetContributions("north", cipher.MaxTerms-1)
	if _, err := svc.Contribute(ctx, "north", mirror.Of(1)); err != nil {
		t.Fatalf("last slot: %v", err)
	}

	_, err := svc.Contribute(ctx, "north", mirror.Of(1))
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("over cap: %v", err)
	}
	z, _ := v.Zone("north")
	if z.Contributions != cipher.MaxTerms || mirror.Value(z.EncTotal) != 8 {
		t.Fatalf("zone after refusal = %d contributions, total %d", z.Contributions, mirror.Value(z.EncTotal))
	}
}

func TestReadEncryptedUnknownZone(t *testing.T) {
	_, svc := setup()
	if _, err := svc.ReadEncrypted(context.Background(), "nowhere"); !perr.IsCode(err, perr.ErrorCodeZoneNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistryAndLookup(t *testing.T) {
	_, svc := setup()
	ctx := context.Background()
	for _, z := range []string{"west", "east", "west", "north"} {
		if _, err := svc.Contribute(ctx, z, mirror.Of(1)); err != nil {
			t.Fatalf("contribute %s: %v", z, err)
		}
	}

	reg, err := svc.Registry(ctx)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	want := []string{"west", "east", "north"}
	if len(reg) != len(want) {
		t.Fatalf("registry = %+v", reg)
	}
	for i, name := range want {
		if reg[i].Name != name || reg[i].Hash != domain.Hash(name).Hex() {
			t.Fatalf("registry[%d] = %+v", i, reg[i])
		}
	}

	name, err := svc.Lookup(ctx, domain.Hash("east"))
	if err != nil || name != "east" {
		t.Fatalf("lookup = %q, %v", name, err)
	}
	if _, err := svc.Lookup(ctx, domain.Hash("south")); !perr.IsCode(err, perr.ErrorCodeZoneNotFound) {
		t.Fatalf("unmatched hash: %v", err)
	}
}

func TestCanonicalNormalizesBeforeHashing(t *testing.T) {
	composed, err := domain.Canonical("caf\u00e9")
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	decomposed, err := domain.Canonical(" cafe\u0301 ")
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	if composed != decomposed || domain.Hash(composed) != domain.Hash(decomposed) {
		t.Fatalf("NFC forms differ: %q vs %q", composed, decomposed)
	}
	if _, err := domain.Canonical("a/b"); err == nil {
		t.Fatalf("slash accepted")
	}
}

func TestRevealsAreRecordedOncePerCallback(t *testing.T) {
	v, svc := setup()
	ctx := context.Background()
	if _, err := svc.Contribute(ctx, "north", mirror.Of(4)); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := svc.LatestReveal(ctx, "north"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unrevealed: %v", err)
	}
	if _, err := svc.LatestReveal(ctx, "south"); !perr.IsCode(err, perr.ErrorCodeZoneNotFound) {
		t.Fatalf("unknown zone: %v", err)
	}

	tx := svc.Bind(v)
	if _, err := tx.RecordReveal(ctx, "cb-1", "north", 4); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if _, err := tx.RecordReveal(ctx, "cb-1", "north", 4); !perr.IsCode(err, perr.ErrorCodeAlreadyProcessed) {
		t.Fatalf("replayed reveal: %v", err)
	}
	v.Advance(time.Second)
	if _, err := tx.RecordReveal(ctx, "cb-2", "north", 9); err != nil {
		t.Fatalf("second reveal: %v", err)
	}

	r, err := svc.LatestReveal(ctx, "north")
	if err != nil || r.Total != 9 || r.CallbackID != "cb-2" {
		t.Fatalf("latest = %+v, %v", r, err)
	}
	z, _ := svc.ReadEncrypted(ctx, "north")
	view := z.View()
	if view.LastRevealedTotal == nil || *view.LastRevealedTotal != 9 {
		t.Fatalf("view = %+v", view)
	}
}
