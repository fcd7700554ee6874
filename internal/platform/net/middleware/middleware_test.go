package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "allocvault/internal/platform/errors"
	pnet "allocvault/internal/platform/net"
)

type portFunc func(*http.Request) (string, error)

func (f portFunc) Principal(r *http.Request) (string, error) { return f(r) }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAuthStoresPrincipal(t *testing.T) {
	var seen string
	h := Auth(portFunc(func(*http.Request) (string, error) { return "alice", nil }), writeJSON)(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { seen = pnet.Principal(r.Context()) }),
	)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if seen != "alice" {
		t.Fatalf("principal = %q", seen)
	}
}

func TestAuthRejects(t *testing.T) {
	called := false
	h := Auth(portFunc(func(*http.Request) (string, error) { return "", perr.Unauthorizedf("no token") }), writeJSON)(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("called=%v status=%d", called, rec.Code)
	}
}

func TestAuthNilPortPassesThrough(t *testing.T) {
	called := false
	h := Auth(nil, writeJSON)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !called {
		t.Fatalf("handler not called")
	}
}

func TestRecoverJSON(t *testing.T) {
	h := RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var w pnet.Wire
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Kind != "panic" {
		t.Fatalf("kind = %q", w.Kind)
	}
}

func TestAccessLogCapturesStatus(t *testing.T) {
	var cw *captureWriter
	h := AccessLogZerolog(AccessLogOptions{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		cw = w.(*captureWriter)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("abc"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if cw.status != http.StatusTeapot || cw.bytes != 3 {
		t.Fatalf("captured %d/%d", cw.status, cw.bytes)
	}
	if _, _, err := cw.Hijack(); err == nil {
		t.Fatalf("recorder should not be hijackable")
	}
}
