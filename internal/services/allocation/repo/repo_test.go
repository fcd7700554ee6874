package repo

import (
	"context"
	"strings"
	"testing"

	"allocvault/internal/platform/store"
)

type nameRows struct {
	names []string
	i     int
	cols  int
}

func (r *nameRows) Next() bool { r.i++; return r.i <= len(r.names) }
func (r *nameRows) Err() error { return nil }
func (r *nameRows) Close()     {}
func (r *nameRows) Scan(dst ...any) error {
	r.cols = len(dst)
	*(dst[0].(*string)) = r.names[r.i-1]
	*(dst[1].(*int64)) = int64(r.i)
	*(dst[2].(*[]byte)) = []byte{byte(r.i)}
	return nil
}

type recQ struct {
	sql  []string
	rows *nameRows
}

func (q *recQ) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (q *recQ) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (q *recQ) Query(_ context.Context, sql string, _ ...any) (store.Rows, error) {
	q.sql = append(q.sql, sql)
	return q.rows, nil
}

func TestListNamesSkipsCiphertexts(t *testing.T) {
	q := &recQ{rows: &nameRows{names: []string{"west", "east"}}}
	got, err := NewPG().Bind(q).ListNames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(q.sql[0], "enc_total") {
		t.Fatalf("registry selects ciphertexts: %s", q.sql[0])
	}
	if q.rows.cols != 3 {
		t.Fatalf("scanned %d columns", q.rows.cols)
	}
	if len(got) != 2 || got[0].Name != "west" || got[1].Seq != 2 || got[1].Hash[0] != 2 {
		t.Fatalf("rows = %+v", got)
	}
}
