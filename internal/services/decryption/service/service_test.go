package service_test

import (
	"context"
	"testing"
	"time"

	"allocvault/internal/core/attest"
	perr "allocvault/internal/platform/errors"
	allocdom "allocvault/internal/services/allocation/domain"
	"allocvault/internal/services/harness"
	ledgerdom "allocvault/internal/services/ledger/domain"
	oracledom "allocvault/internal/services/oracle/domain"
)

const ttl = 10 * time.Minute

func stack(t *testing.T, revealers ...string) *harness.Stack {
	t.Helper()
	s, err := harness.NewStack(harness.Config{TTL: ttl, ZoneRevealers: revealers})
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	return s
}

func submit(t *testing.T, s *harness.Stack, who string, demand, priority uint32, zone string) uint64 {
	t.Helper()
	out, err := s.Submit(context.Background(), who, demand, priority, zone)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return out.ID
}

func mustCode(t *testing.T, err error, code perr.ErrorCode) {
	t.Helper()
	if !perr.IsCode(err, code) {
		t.Fatalf("err = %v, want %s", err, code)
	}
}

func read(t *testing.T, s *harness.Stack, id uint64) ledgerdom.Result {
	t.Helper()
	r, err := s.Ledger.Read(context.Background(), id)
	if err != nil {
		t.Fatalf("read %d: %v", id, err)
	}
	return r
}

func TestSubmitAssignsSequentialIDs(t *testing.T) {
	s := stack(t)
	for want := uint64(1); want <= 3; want++ {
		if got := submit(t, s, "alice", uint32(want), 1, ""); got != want {
			t.Fatalf("id = %d, want %d", got, want)
		}
	}
}

func TestReadBeforeResolutionAndUnknownIDs(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 9, 4, "")

	if r := read(t, s, id); r != (ledgerdom.Result{}) {
		t.Fatalf("read before resolution = %+v", r)
	}
	for _, bad := range []uint64{0, 2, 99} {
		_, err := s.Ledger.Read(ctx, bad)
		mustCode(t, err, perr.ErrorCodeNotFound)
	}
}

func TestRequestScenarioRevealsDemandAndMergesZone(t *testing.T) {
	s := stack(t)
	ctx := context.Background()

	id := submit(t, s, "alice", 5, 2, "north")
	if id != 1 {
		t.Fatalf("id = %d", id)
	}
	tk, err := s.Decryption.RequestDecryption(ctx, "alice", id)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if tk.CallbackID == "" || tk.RequestID != id || !tk.ExpiresAt.Equal(harness.Epoch.Add(ttl)) {
		t.Fatalf("ticket = %+v", tk)
	}
	if job, ok := s.Vault.Job(tk.CallbackID); !ok || job.State != "queued" || len(job.Handles) != 2 {
		t.Fatalf("oracle job = %+v ok=%v", job, ok)
	}

	out, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(tk.CallbackID, 5, 2))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.RequestID != id || out.Zone != "north" {
		t.Fatalf("resolve out = %+v", out)
	}
	if r := read(t, s, id); r != (ledgerdom.Result{Demand: 5, Priority: 2, Processed: true}) {
		t.Fatalf("read after = %+v", r)
	}
	z, ok := s.Vault.Zone("north")
	if !ok || s.Plain(z.EncTotal) != 5 || z.Contributions != 1 {
		t.Fatalf("zone north = %+v ok=%v", z, ok)
	}

	want := []string{"request_submitted", "decryption_requested", "request_decrypted", "zone_allocation_updated"}
	got := s.Vault.Kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestForgedProofLeavesRequestUntouched(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	submit(t, s, "alice", 5, 2, "")
	id := submit(t, s, "alice", 3, 1, "")
	tk, err := s.Decryption.RequestDecryption(ctx, "alice", id)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	before := len(s.Vault.Outbox())

	forger, _ := attest.GenerateSigner()
	cb := s.RequestCallback(tk.CallbackID, 3, 1)
	cb.Proof, _ = forger.Sign(tk.CallbackID, cb.Cleartext)

	_, err = s.Decryption.Resolve(ctx, harness.OraclePrincipal, cb)
	mustCode(t, err, perr.ErrorCodeInvalidProof)
	if r := read(t, s, id); r != (ledgerdom.Result{}) {
		t.Fatalf("read after forged proof = %+v", r)
	}
	if c, _ := s.Vault.Correlation(tk.CallbackID); c.State != "pending" {
		t.Fatalf("correlation state = %s", c.State)
	}
	if _, ok := s.Vault.Zone("default"); ok {
		t.Fatalf("zone should not exist after a rejected callback")
	}
	if n := len(s.Vault.Outbox()); n != before {
		t.Fatalf("outbox grew from %d to %d", before, n)
	}

	// the genuine answer still lands
	if _, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(tk.CallbackID, 3, 1)); err != nil {
		t.Fatalf("genuine resolve: %v", err)
	}
}

func TestUnregisteredCallbackIsInvalidRequest(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 5, 2, "")
	before := len(s.Vault.Outbox())

	_, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback("never-issued", 5, 2))
	mustCode(t, err, perr.ErrorCodeInvalidRequest)
	if r := read(t, s, id); r != (ledgerdom.Result{}) {
		t.Fatalf("read = %+v", r)
	}
	if n := len(s.Vault.Outbox()); n != before {
		t.Fatalf("outbox grew")
	}
}

func TestSecondResolveIsAlreadyProcessed(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 7, 3, "east")
	tk, _ := s.Decryption.RequestDecryption(ctx, "alice", id)
	cb := s.RequestCallback(tk.CallbackID, 7, 3)
	if _, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, cb); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	after := read(t, s, id)
	zone, _ := s.Vault.Zone("east")
	events := len(s.Vault.Outbox())

	_, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, cb)
	mustCode(t, err, perr.ErrorCodeAlreadyProcessed)

	if r := read(t, s, id); r != after {
		t.Fatalf("read changed: %+v vs %+v", r, after)
	}
	z, _ := s.Vault.Zone("east")
	if s.Plain(z.EncTotal) != s.Plain(zone.EncTotal) || z.Contributions != zone.Contributions {
		t.Fatalf("zone changed on replay")
	}
	if len(s.Vault.Outbox()) != events {
		t.Fatalf("replay appended events")
	}

	_, err = s.Decryption.RequestDecryption(ctx, "alice", id)
	mustCode(t, err, perr.ErrorCodeAlreadyProcessed)
}

func TestZoneTotalsMatchPlaintextMirror(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	subs := []struct {
		demand uint32
		zone   string
	}{
		{5, "north"}, {11, "south"}, {0, "north"}, {4_000_000_000, "south"}, {9, "north"}, {1, "west"},
	}
	want := map[string]uint64{}
	for _, sub := range subs {
		id := submit(t, s, "alice", sub.demand, 1, sub.zone)
		tk, err := s.Decryption.RequestDecryption(ctx, "alice", id)
		if err != nil {
			t.Fatalf("request %d: %v", id, err)
		}
		if _, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(tk.CallbackID, sub.demand, 1)); err != nil {
			t.Fatalf("resolve %d: %v", id, err)
		}
		want[sub.zone] += uint64(sub.demand)
	}
	// one request left unresolved contributes nothing
	submit(t, s, "alice", 100, 1, "north")

	for zone, sum := range want {
		z, ok := s.Vault.Zone(zone)
		if !ok {
			t.Fatalf("zone %s missing", zone)
		}
		if got := s.Plain(z.EncTotal); got != sum {
			t.Fatalf("zone %s total = %d, want %d", zone, got, sum)
		}
	}

	reg, err := s.Zones.Registry(ctx)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	order := []string{"north", "south", "west"}
	if len(reg) != len(order) {
		t.Fatalf("registry = %+v", reg)
	}
	for i, e := range reg {
		if e.Name != order[i] {
			t.Fatalf("registry order = %+v", reg)
		}
	}
}

func TestZoneHashReverseMaps(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	for _, z := range []string{"north", "south"} {
		id := submit(t, s, "alice", 1, 1, z)
		tk, _ := s.Decryption.RequestDecryption(ctx, "alice", id)
		if _, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(tk.CallbackID, 1, 1)); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	for _, z := range []string{"north", "south"} {
		got, err := s.Zones.Lookup(ctx, allocdom.Hash(z))
		if err != nil || got != z {
			t.Fatalf("Lookup(%s) = %q, %v", z, got, err)
		}
	}
	_, err := s.Zones.Lookup(ctx, allocdom.Hash("nowhere"))
	mustCode(t, err, perr.ErrorCodeZoneNotFound)
}

func TestZoneRevealPersistsAndIsSingleUse(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	for _, d := range []uint32{4, 6} {
		id := submit(t, s, "alice", d, 1, "north")
		tk, _ := s.Decryption.RequestDecryption(ctx, "alice", id)
		if _, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(tk.CallbackID, d, 1)); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}

	_, err := s.Decryption.RequestZoneDecryption(ctx, "auditor", "nowhere")
	mustCode(t, err, perr.ErrorCodeZoneNotFound)

	tk, err := s.Decryption.RequestZoneDecryption(ctx, "auditor", "north")
	if err != nil {
		t.Fatalf("zone request: %v", err)
	}
	job, _ := s.Vault.Job(tk.CallbackID)
	if len(job.Handles) != 1 || s.Plain(job.Handles[0]) != 10 {
		t.Fatalf("zone job = %+v", job)
	}

	cb := s.ZoneCallback(tk.CallbackID, 10)
	out, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, cb)
	if err != nil || out.Zone != "north" {
		t.Fatalf("zone resolve = %+v, %v", out, err)
	}
	rv, err := s.Zones.LatestReveal(ctx, "north")
	if err != nil || rv.Total != 10 || rv.CallbackID != tk.CallbackID {
		t.Fatalf("latest reveal = %+v, %v", rv, err)
	}
	z, _ := s.Zones.ReadEncrypted(ctx, "north")
	if z.LastReveal == nil || z.LastReveal.Total != 10 {
		t.Fatalf("zone last reveal = %+v", z.LastReveal)
	}

	_, err = s.Decryption.Resolve(ctx, harness.OraclePrincipal, cb)
	mustCode(t, err, perr.ErrorCodeAlreadyProcessed)
}

func TestFlowMismatchIsInvalidRequest(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 2, 2, "north")
	tk, _ := s.Decryption.RequestDecryption(ctx, "alice", id)

	_, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.ZoneCallback(tk.CallbackID, 2))
	mustCode(t, err, perr.ErrorCodeInvalidRequest)
	if c, _ := s.Vault.Correlation(tk.CallbackID); c.State != "pending" {
		t.Fatalf("correlation state = %s", c.State)
	}
}

func TestAuthorization(t *testing.T) {
	s := stack(t, "auditor")
	ctx := context.Background()
	id := submit(t, s, "alice", 2, 2, "north")

	_, err := s.Decryption.RequestDecryption(ctx, "mallory", id)
	mustCode(t, err, perr.ErrorCodeForbidden)
	_, err = s.Decryption.RequestDecryption(ctx, "", id)
	mustCode(t, err, perr.ErrorCodeUnauthorized)

	tk, err := s.Decryption.RequestDecryption(ctx, "alice", id)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_, err = s.Decryption.Resolve(ctx, "alice", s.RequestCallback(tk.CallbackID, 2, 2))
	mustCode(t, err, perr.ErrorCodeForbidden)
	if r := read(t, s, id); r.Processed {
		t.Fatalf("non oracle principal resolved a request")
	}

	_, err = s.Decryption.RequestZoneDecryption(ctx, "alice", "north")
	mustCode(t, err, perr.ErrorCodeForbidden)
}

func TestSecondRequestWhilePendingThenInlineExpiry(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 5, 2, "")

	first, err := s.Decryption.RequestDecryption(ctx, "alice", id)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_, err = s.Decryption.RequestDecryption(ctx, "alice", id)
	mustCode(t, err, perr.ErrorCodeDecryptionPending)

	s.Vault.Advance(ttl + time.Second)

	// overdue but not yet swept: a late callback is refused
	_, err = s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(first.CallbackID, 5, 2))
	mustCode(t, err, perr.ErrorCodeInvalidRequest)

	second, err := s.Decryption.RequestDecryption(ctx, "alice", id)
	if err != nil {
		t.Fatalf("re-request after expiry: %v", err)
	}
	if second.CallbackID == first.CallbackID {
		t.Fatalf("callback id reused")
	}
	if c, _ := s.Vault.Correlation(first.CallbackID); c.State != "expired" {
		t.Fatalf("first correlation = %s", c.State)
	}
	if j, _ := s.Vault.Job(first.CallbackID); j.State != "failed" || j.LastError != "expired" {
		t.Fatalf("first job = %+v", j)
	}
	if _, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(second.CallbackID, 5, 2)); err != nil {
		t.Fatalf("resolve second: %v", err)
	}
}

func TestRowLocksTakeCorrelationBeforeRequest(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 5, 2, "north")

	if _, err := s.Decryption.RequestDecryption(ctx, "alice", id); err != nil {
		t.Fatalf("request: %v", err)
	}
	_, _ = s.Decryption.RequestDecryption(ctx, "alice", id)
	s.Vault.Advance(ttl + time.Second)
	second, err := s.Decryption.RequestDecryption(ctx, "alice", id)
	if err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if _, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(second.CallbackID, 5, 2)); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	other := submit(t, s, "bob", 1, 1, "")
	if _, err := s.Decryption.RequestDecryption(ctx, "bob", other); err != nil {
		t.Fatalf("request: %v", err)
	}
	s.Vault.Advance(ttl)
	if n, err := s.Sweeper.Once(ctx); err != nil || n != 1 {
		t.Fatalf("sweep = %d, %v", n, err)
	}

	both := 0
	var held []string
	for _, l := range append(s.Vault.Locks(), "tx") {
		switch l {
		case "tx":
			if len(held) > 1 && held[0] == "correlations" && held[1] == "requests" {
				both++
			}
			held = held[:0]
		case "correlations":
			for _, h := range held {
				if h == "requests" {
					t.Fatalf("correlation locked after request in %v", s.Vault.Locks())
				}
			}
			held = append(held, l)
		default:
			held = append(held, l)
		}
	}
	if both < 4 {
		t.Fatalf("only %d transactions locked correlation then request: %v", both, s.Vault.Locks())
	}
}

func TestInFlightRequestWithoutLiveCorrelationIsPending(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 5, 2, "")
	tk, err := s.Decryption.RequestDecryption(ctx, "alice", id)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	// the row state a concurrent ask leaves visible before its correlation is
	if err := s.Corr.Bind(s.Vault).Expire(ctx, tk.CallbackID); err != nil {
		t.Fatalf("expire: %v", err)
	}

	_, err = s.Decryption.RequestDecryption(ctx, "alice", id)
	mustCode(t, err, perr.ErrorCodeDecryptionPending)
}

func TestSweeperReturnsRequestToCreated(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 5, 2, "")
	tk, _ := s.Decryption.RequestDecryption(ctx, "alice", id)

	if n, err := s.Sweeper.Once(ctx); err != nil || n != 0 {
		t.Fatalf("early sweep = %d, %v", n, err)
	}
	s.Vault.Advance(ttl)
	n, err := s.Sweeper.Once(ctx)
	if err != nil || n != 1 {
		t.Fatalf("sweep = %d, %v", n, err)
	}

	v, err := s.Ledger.Get(ctx, id)
	if err != nil || v.State != ledgerdom.StateCreated {
		t.Fatalf("state after sweep = %+v, %v", v, err)
	}
	kinds := s.Vault.Kinds()
	if kinds[len(kinds)-1] != "decryption_cancelled" {
		t.Fatalf("events = %v", kinds)
	}
	_, err = s.Decryption.Resolve(ctx, harness.OraclePrincipal, s.RequestCallback(tk.CallbackID, 5, 2))
	mustCode(t, err, perr.ErrorCodeInvalidRequest)

	if _, err := s.Decryption.RequestDecryption(ctx, "alice", id); err != nil {
		t.Fatalf("re-request: %v", err)
	}
}

func TestMalformedCleartextIsRejectedBeforeWrites(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 5, 2, "")
	tk, _ := s.Decryption.RequestDecryption(ctx, "alice", id)

	short := []byte{0, 0, 0, 5}
	proof, _ := s.Signer.Sign(tk.CallbackID, short)
	_, err := s.Decryption.Resolve(ctx, harness.OraclePrincipal, oracledom.Callback{
		CallbackID: tk.CallbackID, Handler: oracledom.HandlerRequest, Cleartext: short, Proof: proof,
	})
	mustCode(t, err, perr.ErrorCodeInvalidArgument)
	if c, _ := s.Vault.Correlation(tk.CallbackID); c.State != "pending" {
		t.Fatalf("correlation consumed by a malformed callback")
	}
	if r := read(t, s, id); r.Processed {
		t.Fatalf("request processed by a malformed callback")
	}
}

func TestOracleWorkerAnswersEndToEnd(t *testing.T) {
	s := stack(t)
	ctx := context.Background()
	id := submit(t, s, "alice", 12, 7, "north")
	tk, _ := s.Decryption.RequestDecryption(ctx, "alice", id)

	n, err := s.Oracle.Once(ctx)
	if err != nil || n != 1 {
		t.Fatalf("oracle once = %d, %v", n, err)
	}
	if r := read(t, s, id); r != (ledgerdom.Result{Demand: 12, Priority: 7, Processed: true}) {
		t.Fatalf("read = %+v", r)
	}
	if j, _ := s.Vault.Job(tk.CallbackID); j.State != "done" || j.Attempts != 1 {
		t.Fatalf("job = %+v", j)
	}
	if n, _ := s.Oracle.Once(ctx); n != 0 {
		t.Fatalf("done job leased again")
	}

	ztk, err := s.Decryption.RequestZoneDecryption(ctx, "alice", "north")
	if err != nil {
		t.Fatalf("zone request: %v", err)
	}
	if _, err := s.Oracle.Once(ctx); err != nil {
		t.Fatalf("oracle zone: %v", err)
	}
	rv, err := s.Zones.LatestReveal(ctx, "north")
	if err != nil || rv.Total != 12 || rv.CallbackID != ztk.CallbackID {
		t.Fatalf("reveal = %+v, %v", rv, err)
	}
}
