package store

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "allocvault/internal/platform/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeTag int64

func (f fakeTag) String() string      { return "UPDATE" }
func (f fakeTag) RowsAffected() int64 { return int64(f) }

type scanRow struct {
	v   any
	err error
}

func (r scanRow) Scan(dst ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dst[0].(*int64)) = r.v.(int64)
	return nil
}

type fakeQ struct {
	affected int64
	row      scanRow
	txErrs   []error
	txCalls  int
}

func (f *fakeQ) Exec(context.Context, string, ...any) (CommandTag, error) {
	return fakeTag(f.affected), nil
}
func (f *fakeQ) Query(context.Context, string, ...any) (Rows, error) {
	return nil, errors.New("unused")
}
func (f *fakeQ) QueryRow(context.Context, string, ...any) Row { return f.row }
func (f *fakeQ) Tx(_ context.Context, fn func(RowQuerier) error) error {
	f.txCalls++
	if len(f.txErrs) > 0 {
		err := f.txErrs[0]
		f.txErrs = f.txErrs[1:]
		return err
	}
	return fn(f)
}

func TestExecOne(t *testing.T) {
	ctx := context.Background()
	if err := ExecOne(ctx, &fakeQ{affected: 1}, "x"); err != nil {
		t.Fatal(err)
	}
	if err := ExecOne(ctx, &fakeQ{affected: 0}, "x"); !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("zero rows err = %v", err)
	}
	if err := ExecOne(ctx, &fakeQ{affected: 2}, "x"); err == nil {
		t.Fatalf("two rows should fail")
	}
}

func TestScalarMapsNoRows(t *testing.T) {
	ctx := context.Background()
	v, err := Scalar[int64](ctx, &fakeQ{row: scanRow{v: int64(41)}}, "x")
	if err != nil || v != 41 {
		t.Fatalf("v=%d err=%v", v, err)
	}
	_, err = Scalar[int64](ctx, &fakeQ{row: scanRow{err: pgx.ErrNoRows}}, "x")
	if !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunTxRetriesTransientFailures(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001"}
	f := &fakeQ{txErrs: []error{serialization, serialization}}
	calls := 0
	err := RunTx(context.Background(), f, 3, func(RowQuerier) error { calls++; return nil })
	if err != nil || f.txCalls != 3 || calls != 1 {
		t.Fatalf("err=%v txCalls=%d calls=%d", err, f.txCalls, calls)
	}

	f = &fakeQ{txErrs: []error{perr.ErrAlreadyProcessed}}
	err = RunTx(context.Background(), f, 3, func(RowQuerier) error { return nil })
	if !errors.Is(err, perr.ErrAlreadyProcessed) || f.txCalls != 1 {
		t.Fatalf("domain errors must not retry: err=%v calls=%d", err, f.txCalls)
	}
}

func TestRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry(ctx, 5, time.Millisecond, time.Millisecond, func() error { return errors.New("down") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestGuardNilBackends(t *testing.T) {
	var s *Store
	if s.Guard(context.Background()) == nil {
		t.Fatalf("nil store should fail guard")
	}
	if err := (&Store{}).Guard(context.Background()); err != nil {
		t.Fatalf("empty store guard = %v", err)
	}
}

type migrating struct {
	fakeQ
	ran bool
}

func (m *migrating) Migrate(context.Context) error { m.ran = true; return nil }

func TestMigrateNeedsPostgres(t *testing.T) {
	if err := (&Store{}).Migrate(context.Background()); err == nil {
		t.Fatalf("migrate without postgres should fail")
	}
	m := &migrating{}
	if err := (&Store{PG: m}).Migrate(context.Background()); err != nil || !m.ran {
		t.Fatalf("migrate = %v ran=%v", err, m.ran)
	}
}

func TestOpenKeepsInjectedSeams(t *testing.T) {
	m := &migrating{}
	s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true}}, WithPG(m))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.PG != TxRunner(m) || s.CH != nil {
		t.Fatalf("seams = %v / %v", s.PG, s.CH)
	}
	if err := s.Migrate(context.Background()); err != nil || !m.ran {
		t.Fatalf("migrate through injected seam = %v", err)
	}
	if _, err := Open(context.Background(), Config{}, WithPG(nil)); err == nil {
		t.Fatalf("nil runner should be rejected")
	}
	if _, err := Open(context.Background(), Config{}, WithClickhouse(nil)); err == nil {
		t.Fatalf("nil clickhouse should be rejected")
	}
}
