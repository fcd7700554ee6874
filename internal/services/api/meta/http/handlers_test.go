package http

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestReadyRollsUpChecks(t *testing.T) {
	cases := []struct {
		name   string
		pg, ch any
		want   string
	}{
		{"all ok", pinger{}, pinger{}, "ok"},
		{"clickhouse disabled", pinger{}, nil, "ok"},
		{"unpingable seam", struct{}{}, nil, "degraded"},
		{"pg down", pinger{err: errors.New("refused")}, pinger{}, "fail"},
	}
	for _, c := range cases {
		h := &handlers{deps: Deps{PG: c.pg, CH: c.ch, Now: time.Now}}
		out, err := h.ready(httptest.NewRequest("GET", "/meta/ready", nil))
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got := out.(ReadyResponse).Status; got != c.want {
			t.Fatalf("%s: status = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestServiceReportsUptime(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h := &handlers{deps: Deps{
		ServiceName: "allocvault-api",
		Backend:     "bgv",
		StartedAt:   start,
		Now:         func() time.Time { return start.Add(90 * time.Second) },
	}}
	out, _ := h.service(nil)
	s := out.(ServiceResponse)
	if s.Uptime != 90 || s.Backend != "bgv" || s.Build.Service != "allocvault-api" {
		t.Fatalf("service = %+v", s)
	}
}
