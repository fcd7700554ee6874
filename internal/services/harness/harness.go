// Package harness is an in-memory stand-in for the Postgres repos so service flows can run in unit tests
// Tx never rolls back: a failed operation leaves whatever it wrote, which makes check-then-act ordering observable
package harness

import (
	"context"
	"sort"
	"sync"
	"time"

	"allocvault/internal/modkit/repokit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/store"
	ptime "allocvault/internal/platform/time"
	allocrepo "allocvault/internal/services/allocation/repo"
	corrrepo "allocvault/internal/services/correlation/repo"
	evrepo "allocvault/internal/services/events/repo"
	ledgerrepo "allocvault/internal/services/ledger/repo"
	oraclerepo "allocvault/internal/services/oracle/repo"

	"github.com/jackc/pgx/v5/pgconn"
)

// Epoch is where every Vault clock starts
var Epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Vault holds every table in memory
type Vault struct {
	mu  sync.Mutex
	now time.Time

	nextID   int64
	requests map[int64]ledgerrepo.RowRequest

	corrs map[string]corrrepo.RowCorrelation

	zoneSeq int64
	zones   map[string]allocrepo.RowZone
	reveals []allocrepo.RowReveal

	jobs    []*job
	events  []evrepo.RowEvent
	relayed map[int64]bool

	txs   int
	locks []string
}

type job struct {
	row        oraclerepo.RowJob
	owner      string
	leaseUntil time.Time
	next       time.Time
}

// New returns an empty vault with its clock at Epoch
func New() *Vault {
	return &Vault{
		now:      Epoch,
		requests: map[int64]ledgerrepo.RowRequest{},
		corrs:    map[string]corrrepo.RowCorrelation{},
		zones:    map[string]allocrepo.RowZone{},
		relayed:  map[int64]bool{},
	}
}

// Now reads the vault clock
func (v *Vault) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Advance moves the clock forward
func (v *Vault) Advance(d time.Duration) {
	v.mu.Lock()
	v.now = v.now.Add(d)
	v.mu.Unlock()
}

// Tx runs fn against the vault itself
func (v *Vault) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	v.mu.Lock()
	v.txs++
	v.locks = append(v.locks, "tx")
	v.mu.Unlock()
	return fn(v)
}

// Locks traces row locks in call order; each transaction starts with "tx"
func (v *Vault) Locks() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.locks...)
}

func (v *Vault) lock(table string) {
	v.mu.Lock()
	v.locks = append(v.locks, table)
	v.mu.Unlock()
}

// Txs counts transactions started
func (v *Vault) Txs() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.txs
}

// Exec rejects raw SQL; repos are bound through the vault binders instead
func (v *Vault) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return nil, perr.Internalf("harness: raw SQL is not supported")
}

// Query rejects raw SQL
func (v *Vault) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, perr.Internalf("harness: raw SQL is not supported")
}

// QueryRow rejects raw SQL
func (v *Vault) QueryRow(context.Context, string, ...any) store.Row { return errRow{} }

type errRow struct{}

func (errRow) Scan(...any) error { return perr.Internalf("harness: raw SQL is not supported") }

// Ledger binds the request repo
func (v *Vault) Ledger() repokit.Binder[ledgerrepo.Repo] {
	return repokit.BindFunc[ledgerrepo.Repo](func(repokit.Queryer) ledgerrepo.Repo { return ledgerTable{v} })
}

// Correlations binds the correlation repo
func (v *Vault) Correlations() repokit.Binder[corrrepo.Repo] {
	return repokit.BindFunc[corrrepo.Repo](func(repokit.Queryer) corrrepo.Repo { return corrTable{v} })
}

// Zones binds the zone repo
func (v *Vault) Zones() repokit.Binder[allocrepo.Repo] {
	return repokit.BindFunc[allocrepo.Repo](func(repokit.Queryer) allocrepo.Repo { return zoneTable{v} })
}

// Jobs binds the oracle job repo
func (v *Vault) Jobs() repokit.Binder[oraclerepo.Repo] {
	return repokit.BindFunc[oraclerepo.Repo](func(repokit.Queryer) oraclerepo.Repo { return jobTable{v} })
}

// Events binds the outbox repo
func (v *Vault) Events() repokit.Binder[evrepo.Repo] {
	return repokit.BindFunc[evrepo.Repo](func(repokit.Queryer) evrepo.Repo { return eventTable{v} })
}

// Request returns a stored request
func (v *Vault) Request(id int64) (ledgerrepo.RowRequest, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.requests[id]
	return r, ok
}

// Zone returns a stored zone
func (v *Vault) Zone(name string) (allocrepo.RowZone, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	z, ok := v.zones[name]
	return z, ok
}

// SetContributions overwrites a zone's contribution count
func (v *Vault) SetContributions(name string, n int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if z, ok := v.zones[name]; ok {
		z.Contributions = n
		v.zones[name] = z
	}
}

// Correlation returns a stored correlation
func (v *Vault) Correlation(callbackID string) (corrrepo.RowCorrelation, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.corrs[callbackID]
	return v.due(c), ok
}

// Job returns a queued oracle job
func (v *Vault) Job(callbackID string) (oraclerepo.RowJob, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, j := range v.jobs {
		if j.row.CallbackID == callbackID {
			return j.row, true
		}
	}
	return oraclerepo.RowJob{}, false
}

// JobIDs lists callback ids in enqueue order
func (v *Vault) JobIDs() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.jobs))
	for _, j := range v.jobs {
		out = append(out, j.row.CallbackID)
	}
	return out
}

// Outbox returns every appended event in order
func (v *Vault) Outbox() []evrepo.RowEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]evrepo.RowEvent(nil), v.events...)
}

// Kinds lists appended event kinds in order
func (v *Vault) Kinds() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.events))
	for _, e := range v.events {
		out = append(out, e.Kind)
	}
	return out
}

func dup(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func (v *Vault) due(c corrrepo.RowCorrelation) corrrepo.RowCorrelation {
	c.Due = c.State == "pending" && ptime.Due(v.now, c.ExpiresAt)
	return c
}

type ledgerTable struct{ v *Vault }

func (t ledgerTable) NextID(context.Context) (int64, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	t.v.nextID++
	return t.v.nextID, nil
}

func (t ledgerTable) Insert(_ context.Context, r ledgerrepo.RowRequest) (time.Time, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if _, ok := t.v.requests[r.ID]; ok {
		return time.Time{}, dup("requests_pkey")
	}
	r.State = "created"
	r.Demand, r.Priority = 0, 0
	r.SubmittedAt = t.v.now
	r.DecryptedAt = nil
	t.v.requests[r.ID] = r
	return r.SubmittedAt, nil
}

func (t ledgerTable) Get(_ context.Context, id int64) (ledgerrepo.RowRequest, error) {
	r, err := t.row(id)
	r.EncDemand, r.EncPriority = nil, nil
	return r, err
}

func (t ledgerTable) Lock(_ context.Context, id int64) (ledgerrepo.RowRequest, error) {
	t.v.lock("requests")
	return t.row(id)
}

func (t ledgerTable) row(id int64) (ledgerrepo.RowRequest, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	r, ok := t.v.requests[id]
	if !ok {
		return ledgerrepo.RowRequest{}, perr.ErrNotFound
	}
	return r, nil
}

func (t ledgerTable) SetState(_ context.Context, id int64, from, to string) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	r, ok := t.v.requests[id]
	if !ok || r.State != from {
		return perr.ErrNotFound
	}
	r.State = to
	t.v.requests[id] = r
	return nil
}

func (t ledgerTable) MarkDecrypted(_ context.Context, id, demand, priority int64) (ledgerrepo.RowRequest, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	r, ok := t.v.requests[id]
	if !ok || r.State != "decryption_requested" {
		return ledgerrepo.RowRequest{}, perr.ErrNotFound
	}
	at := t.v.now
	r.State, r.Demand, r.Priority, r.DecryptedAt = "decrypted", demand, priority, &at
	t.v.requests[id] = r
	return r, nil
}

type corrTable struct{ v *Vault }

func (t corrTable) Insert(_ context.Context, c corrrepo.RowCorrelation, ttl time.Duration) (corrrepo.RowCorrelation, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if _, ok := t.v.corrs[c.CallbackID]; ok {
		return corrrepo.RowCorrelation{}, dup(corrrepo.PKey)
	}
	if c.Flow == "request" && c.RequestID != nil {
		for _, o := range t.v.corrs {
			if o.Flow == "request" && o.State == "pending" && o.RequestID != nil && *o.RequestID == *c.RequestID {
				return corrrepo.RowCorrelation{}, dup(corrrepo.OneLiveIdx)
			}
		}
	}
	c.State = "pending"
	c.CreatedAt = t.v.now
	c.ExpiresAt = t.v.now.Add(ttl)
	c.ResolvedAt = nil
	t.v.corrs[c.CallbackID] = c
	return t.v.due(c), nil
}

func (t corrTable) Get(_ context.Context, callbackID string) (corrrepo.RowCorrelation, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	c, ok := t.v.corrs[callbackID]
	if !ok {
		return corrrepo.RowCorrelation{}, perr.ErrNotFound
	}
	return t.v.due(c), nil
}

func (t corrTable) Lock(ctx context.Context, callbackID string) (corrrepo.RowCorrelation, error) {
	t.v.lock("correlations")
	return t.Get(ctx, callbackID)
}

func (t corrTable) LiveForRequest(_ context.Context, requestID int64) (corrrepo.RowCorrelation, error) {
	t.v.lock("correlations")
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	for _, c := range t.v.corrs {
		if c.Flow == "request" && c.State == "pending" && c.RequestID != nil && *c.RequestID == requestID {
			return t.v.due(c), nil
		}
	}
	return corrrepo.RowCorrelation{}, perr.ErrNotFound
}

func (t corrTable) SetState(_ context.Context, callbackID, from, to string) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	c, ok := t.v.corrs[callbackID]
	if !ok || c.State != from {
		return perr.ErrNotFound
	}
	c.State = to
	if to == "resolved" {
		c.ResolvedAt = ptime.Ptr(t.v.now)
	}
	t.v.corrs[callbackID] = c
	return nil
}

func (t corrTable) ExpireDue(_ context.Context, limit int) ([]corrrepo.RowCorrelation, error) {
	t.v.lock("correlations")
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	var due []corrrepo.RowCorrelation
	for _, c := range t.v.corrs {
		if t.v.due(c).Due {
			due = append(due, c)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].ExpiresAt.Equal(due[j].ExpiresAt) {
			return due[i].CallbackID < due[j].CallbackID
		}
		return due[i].ExpiresAt.Before(due[j].ExpiresAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	for i, c := range due {
		c.State = "expired"
		t.v.corrs[c.CallbackID] = c
		c.Due = false
		due[i] = c
	}
	return due, nil
}

type zoneTable struct{ v *Vault }

func (t zoneTable) Get(_ context.Context, name string) (allocrepo.RowZone, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	z, ok := t.v.zones[name]
	if !ok {
		return allocrepo.RowZone{}, perr.ErrNotFound
	}
	return z, nil
}

func (t zoneTable) Lock(ctx context.Context, name string) (allocrepo.RowZone, error) {
	t.v.lock("zones")
	return t.Get(ctx, name)
}

func (t zoneTable) Create(_ context.Context, name string, hash, zero []byte) (bool, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if _, ok := t.v.zones[name]; ok {
		return false, nil
	}
	for _, z := range t.v.zones {
		if string(z.Hash) == string(hash) {
			return false, dup("zones_hash_key")
		}
	}
	t.v.zoneSeq++
	t.v.zones[name] = allocrepo.RowZone{
		Name:      name,
		Seq:       t.v.zoneSeq,
		Hash:      append([]byte(nil), hash...),
		EncTotal:  append([]byte(nil), zero...),
		CreatedAt: t.v.now,
		UpdatedAt: t.v.now,
	}
	return true, nil
}

func (t zoneTable) SetTotal(_ context.Context, name string, total []byte) (allocrepo.RowZone, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	z, ok := t.v.zones[name]
	if !ok {
		return allocrepo.RowZone{}, perr.ErrNotFound
	}
	z.EncTotal = append([]byte(nil), total...)
	z.Contributions++
	z.UpdatedAt = t.v.now
	t.v.zones[name] = z
	return z, nil
}

func (t zoneTable) ListNames(context.Context) ([]allocrepo.RowName, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	out := make([]allocrepo.RowName, 0, len(t.v.zones))
	for _, z := range t.v.zones {
		out = append(out, allocrepo.RowName{Name: z.Name, Seq: z.Seq, Hash: z.Hash})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (t zoneTable) InsertReveal(_ context.Context, callbackID, zone string, total int64) (allocrepo.RowReveal, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	for _, r := range t.v.reveals {
		if r.CallbackID == callbackID {
			return allocrepo.RowReveal{}, dup("zone_reveals_pkey")
		}
	}
	if _, ok := t.v.zones[zone]; !ok {
		return allocrepo.RowReveal{}, &pgconn.PgError{Code: "23503", ConstraintName: "zone_reveals_zone_fkey"}
	}
	r := allocrepo.RowReveal{CallbackID: callbackID, Zone: zone, Total: total, RevealedAt: t.v.now}
	t.v.reveals = append(t.v.reveals, r)
	return r, nil
}

func (t zoneTable) SetLastRevealed(_ context.Context, name string, total int64, at time.Time) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	z, ok := t.v.zones[name]
	if !ok {
		return perr.ErrNotFound
	}
	z.LastRevealedTotal, z.LastRevealedAt = &total, &at
	t.v.zones[name] = z
	return nil
}

func (t zoneTable) LatestReveal(_ context.Context, zone string) (allocrepo.RowReveal, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	var (
		best  allocrepo.RowReveal
		found bool
	)
	for _, r := range t.v.reveals {
		if r.Zone != zone {
			continue
		}
		if !found || !r.RevealedAt.Before(best.RevealedAt) {
			best, found = r, true
		}
	}
	if !found {
		return allocrepo.RowReveal{}, perr.ErrNotFound
	}
	return best, nil
}

type jobTable struct{ v *Vault }

func (t jobTable) find(callbackID string) *job {
	for _, j := range t.v.jobs {
		if j.row.CallbackID == callbackID {
			return j
		}
	}
	return nil
}

func (t jobTable) Enqueue(_ context.Context, callbackID, handler string, handles [][]byte) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if t.find(callbackID) != nil {
		return dup("oracle_jobs_pkey")
	}
	hs := make([][]byte, len(handles))
	for i, h := range handles {
		hs[i] = append([]byte(nil), h...)
	}
	t.v.jobs = append(t.v.jobs, &job{
		row:  oraclerepo.RowJob{CallbackID: callbackID, Handler: handler, Handles: hs, State: "queued"},
		next: t.v.now,
	})
	return nil
}

func (t jobTable) Lease(_ context.Context, owner string, limit int, lease time.Duration) ([]oraclerepo.RowJob, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	var ready []*job
	for _, j := range t.v.jobs {
		queued := j.row.State == "queued" && !j.next.After(t.v.now)
		stale := j.row.State == "leased" && !j.leaseUntil.After(t.v.now)
		if queued || stale {
			ready = append(ready, j)
		}
	}
	sort.SliceStable(ready, func(a, b int) bool { return ready[a].next.Before(ready[b].next) })
	if len(ready) > limit {
		ready = ready[:limit]
	}
	out := make([]oraclerepo.RowJob, 0, len(ready))
	for _, j := range ready {
		j.row.State = "leased"
		j.row.Attempts++
		j.owner = owner
		j.leaseUntil = t.v.now.Add(lease)
		out = append(out, j.row)
	}
	return out, nil
}

func (t jobTable) owned(callbackID, owner string) (*job, error) {
	j := t.find(callbackID)
	if j == nil || j.row.State != "leased" || j.owner != owner {
		return nil, perr.ErrNotFound
	}
	return j, nil
}

func (t jobTable) Done(_ context.Context, callbackID, owner string) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	j, err := t.owned(callbackID, owner)
	if err != nil {
		return err
	}
	j.row.State, j.row.LastError, j.owner = "done", "", ""
	return nil
}

func (t jobTable) Retry(_ context.Context, callbackID, owner, lastErr string, delay time.Duration) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	j, err := t.owned(callbackID, owner)
	if err != nil {
		return err
	}
	j.row.State, j.row.LastError, j.owner = "queued", lastErr, ""
	j.next = t.v.now.Add(delay)
	return nil
}

func (t jobTable) Fail(_ context.Context, callbackID, owner, lastErr string) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	j, err := t.owned(callbackID, owner)
	if err != nil {
		return err
	}
	j.row.State, j.row.LastError, j.owner = "failed", lastErr, ""
	return nil
}

func (t jobTable) Cancel(_ context.Context, callbackID, reason string) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if j := t.find(callbackID); j != nil && (j.row.State == "queued" || j.row.State == "leased") {
		j.row.State, j.row.LastError, j.owner = "failed", reason, ""
	}
	return nil
}

func (t jobTable) Get(_ context.Context, callbackID string) (oraclerepo.RowJob, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if j := t.find(callbackID); j != nil {
		return j.row, nil
	}
	return oraclerepo.RowJob{}, perr.ErrNotFound
}

type eventTable struct{ v *Vault }

func (t eventTable) Append(_ context.Context, kind, subject string, payload []byte) (evrepo.RowEvent, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	e := evrepo.RowEvent{
		Seq:       int64(len(t.v.events) + 1),
		Kind:      kind,
		Subject:   subject,
		Payload:   append([]byte(nil), payload...),
		CreatedAt: t.v.now,
	}
	t.v.events = append(t.v.events, e)
	return e, nil
}

func (t eventTable) After(_ context.Context, after int64, limit int) ([]evrepo.RowEvent, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	var out []evrepo.RowEvent
	for _, e := range t.v.events {
		if e.Seq > after && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t eventTable) TakeUnrelayed(_ context.Context, limit int) ([]evrepo.RowEvent, error) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	var out []evrepo.RowEvent
	for _, e := range t.v.events {
		if !t.v.relayed[e.Seq] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t eventTable) MarkRelayed(_ context.Context, seqs []int64) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	for _, s := range seqs {
		t.v.relayed[s] = true
	}
	return nil
}

// Relayed reports whether seq was marked relayed
func (v *Vault) Relayed(seq int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.relayed[seq]
}
