package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"allocvault/internal/modkit/httpkit"
	phttp "allocvault/internal/platform/net/http"
	"allocvault/internal/services/events/domain"
	evsvc "allocvault/internal/services/events/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type hubOnly struct{ *evsvc.Hub }

func (hubOnly) Page(context.Context, domain.PageInput) (domain.Page, error) {
	return domain.Page{}, nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStreamDeliversHubEventsThroughCommonStack(t *testing.T) {
	hub := evsvc.NewHub(4)
	mux := chi.NewRouter()
	mux.Use(httpkit.CommonStack(httpkit.StackOptions{})...)
	Register(phttp.AdaptChi(mux), hubOnly{hub}, StreamConfig{PingEvery: time.Hour})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != stdhttp.StatusSwitchingProtocols {
		t.Fatalf("handshake status = %d", resp.StatusCode)
	}
	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })

	hub.Publish(domain.Event{
		Seq:     3,
		Kind:    domain.RequestSubmitted,
		Subject: domain.RequestSubject(1),
		Payload: json.RawMessage(`{"id":1}`),
	})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got domain.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if got.Seq != 3 || got.Kind != domain.RequestSubmitted || string(got.Payload) != `{"id":1}` {
		t.Fatalf("frame = %+v", got)
	}

	_ = conn.Close()
	waitFor(t, "subscriber release", func() bool { return hub.Subscribers() == 0 })
}

func TestStreamRejectsPlainGET(t *testing.T) {
	hub := evsvc.NewHub(1)
	mux := chi.NewRouter()
	mux.Use(httpkit.CommonStack(httpkit.StackOptions{})...)
	Register(phttp.AdaptChi(mux), hubOnly{hub}, StreamConfig{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/events/stream", nil))
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if hub.Subscribers() != 0 {
		t.Fatalf("failed upgrade left a subscriber")
	}
}
