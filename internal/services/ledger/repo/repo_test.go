package repo

import (
	"context"
	"strings"
	"testing"

	"allocvault/internal/platform/store"
)

type recRow struct{ n int }

func (r *recRow) Scan(dst ...any) error {
	r.n = len(dst)
	*(dst[0].(*int64)) = 7
	*(dst[1].(*string)) = "alice"
	return nil
}

type recQ struct {
	sql []string
	row recRow
}

func (q *recQ) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (q *recQ) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (q *recQ) QueryRow(_ context.Context, sql string, _ ...any) store.Row {
	q.sql = append(q.sql, sql)
	return &q.row
}

func TestGetSkipsCiphertexts(t *testing.T) {
	q := &recQ{}
	r, err := NewPG().Bind(q).Get(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(q.sql[0], "enc_") {
		t.Fatalf("get selects ciphertexts: %s", q.sql[0])
	}
	if q.row.n != strings.Count(detailCols, ",")+1 {
		t.Fatalf("scanned %d columns for %q", q.row.n, detailCols)
	}
	if r.ID != 7 || r.Submitter != "alice" || r.EncDemand != nil {
		t.Fatalf("row = %+v", r)
	}
}

func TestLockReadsFullRow(t *testing.T) {
	q := &recQ{}
	if _, err := NewPG().Bind(q).Lock(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q.sql[0], "enc_demand, enc_priority") || !strings.HasSuffix(q.sql[0], "FOR UPDATE") {
		t.Fatalf("lock sql = %s", q.sql[0])
	}
	if q.row.n != strings.Count(requestCols, ",")+1 {
		t.Fatalf("scanned %d columns", q.row.n)
	}
}
