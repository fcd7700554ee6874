package service_test

import (
	"context"
	"errors"
	"testing"

	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/store"
	"allocvault/internal/platform/testkit"
	"allocvault/internal/services/events/domain"
	"allocvault/internal/services/events/service"
	"allocvault/internal/services/harness"
)

func TestHubFanOutAndDrops(t *testing.T) {
	h := service.NewHub(1)
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelB()
	if h.Subscribers() != 2 {
		t.Fatalf("subscribers = %d", h.Subscribers())
	}

	h.Publish(domain.Event{Seq: 1}, domain.Event{Seq: 2})
	if ev := <-a; ev.Seq != 1 {
		t.Fatalf("a got %d", ev.Seq)
	}
	if ev := <-b; ev.Seq != 1 {
		t.Fatalf("b got %d", ev.Seq)
	}
	if h.Dropped() != 2 {
		t.Fatalf("dropped = %d, want one per subscriber", h.Dropped())
	}

	cancelA()
	cancelA()
	if _, open := <-a; open {
		t.Fatalf("cancelled channel still open")
	}
	if h.Subscribers() != 1 {
		t.Fatalf("subscribers after cancel = %d", h.Subscribers())
	}
	h.Publish()
}

func TestOutboxAppendAndPage(t *testing.T) {
	v := harness.New()
	svc := service.New(v, v.Events(), service.NewHub(8))
	ctx := context.Background()

	var rec *domain.Recorder
	err := v.Tx(ctx, func(q repokit.Queryer) error {
		rec = domain.Record(svc.Bind(q))
		for i := 1; i <= 3; i++ {
			if err := rec.Add(ctx, domain.RequestSubmitted, domain.RequestSubject(uint64(i)), map[string]int{"id": i}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if len(rec.Events()) != 3 || rec.Events()[2].Subject != "request/3" {
		t.Fatalf("recorded = %+v", rec.Events())
	}

	ch, cancel := svc.Subscribe()
	defer cancel()
	svc.Publish(rec.Events()...)
	if ev := <-ch; ev.Seq != 1 || string(ev.Payload) != `{"id":1}` {
		t.Fatalf("published = %+v", ev)
	}

	page, err := svc.Page(ctx, domain.PageInput{After: 1, Limit: 1})
	if err != nil || len(page.Events) != 1 || page.Events[0].Seq != 2 || page.Next != 2 {
		t.Fatalf("page = %+v, %v", page, err)
	}
	page, _ = svc.Page(ctx, domain.PageInput{After: 3})
	if len(page.Events) != 0 || page.Next != 3 {
		t.Fatalf("empty page = %+v", page)
	}
	if _, err := svc.Page(ctx, domain.PageInput{After: -1}); err == nil {
		t.Fatalf("negative cursor accepted")
	}
}

func TestRecorderNilSafe(t *testing.T) {
	var r *domain.Recorder
	if r.Events() != nil {
		t.Fatalf("nil recorder has events")
	}
	if domain.ZoneSubject("north") != "zone/north" {
		t.Fatalf("zone subject")
	}
}

type fakeCH struct {
	execs   []string
	inserts [][][]any
	fail    error
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	if f.fail != nil {
		return f.fail
	}
	if table != service.RelayTable {
		return errors.New("wrong table " + table)
	}
	f.inserts = append(f.inserts, rows)
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeCH) Close() error                                              { return nil }

func TestRelayCopiesUnrelayedRowsOnce(t *testing.T) {
	v := harness.New()
	svc := service.New(v, v.Events(), nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Bind(v).Append(ctx, domain.ZoneAllocationUpdated, "zone/north", struct{}{}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	ch := &fakeCH{fail: errors.New("clickhouse down")}
	relay := service.NewRelay(v, v.Events(), ch, service.RelayConfig{Batch: 2})
	if err := relay.Ensure(ctx); err != nil || len(ch.execs) != 1 {
		t.Fatalf("ensure: %v %d", err, len(ch.execs))
	}
	testkit.MustContain(t, ch.execs[0], "ReplacingMergeTree")

	if _, err := relay.Once(ctx); err == nil {
		t.Fatalf("insert failure not reported")
	}
	if v.Relayed(1) {
		t.Fatalf("row marked relayed after a failed insert")
	}

	ch.fail = nil
	n, err := relay.Once(ctx)
	if err != nil || n != 2 {
		t.Fatalf("first batch = %d, %v", n, err)
	}
	row := ch.inserts[0][0]
	if row[0] != uint64(1) || row[1] != "zone_allocation_updated" || row[3] != "{}" {
		t.Fatalf("row = %#v", row)
	}
	if n, _ := relay.Once(ctx); n != 1 {
		t.Fatalf("second batch = %d", n)
	}
	if n, _ := relay.Once(ctx); n != 0 {
		t.Fatalf("relayed twice")
	}
}

func TestRelayPanicsWithoutClickhouse(t *testing.T) {
	v := harness.New()
	testkit.MustPanic(t, func() { service.NewRelay(v, v.Events(), nil, service.RelayConfig{}) })
}
