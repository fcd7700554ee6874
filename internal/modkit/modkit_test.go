package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "allocvault/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type ledgerPorts struct{ Name string }

func TestBuildAppliesOptionsInOrder(t *testing.T) {
	b := Build(
		WithName("ledger"),
		WithPrefix("/requests"),
		WithName("ledger2"),
		WithPorts(ledgerPorts{Name: "x"}),
	)
	if b.Name != "ledger2" || b.Prefix != "/requests" {
		t.Fatalf("built = %+v", b)
	}
	if InjectedPorts[ledgerPorts](b).Name != "x" {
		t.Fatalf("ports not injected")
	}
	if InjectedPorts[int](b) != 0 {
		t.Fatalf("mismatched ports should be zero")
	}
}

func TestBaseMountsUnderPrefixWithMiddleware(t *testing.T) {
	var order []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "mw")
			next.ServeHTTP(w, r)
		})
	}
	b := Build(
		WithName("zones"),
		WithPrefix("/zones"),
		WithMiddlewares(mw),
		WithRegister(func(r phttp.Router) {
			r.Get("/extra", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
		}),
	)
	base := NewBase(b, "ports", func(r phttp.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, "handler")
			w.WriteHeader(http.StatusOK)
		})
	})

	m := chi.NewRouter()
	base.MountRoutes(phttp.AdaptChi(m))

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/zones/", nil))
	if rec.Code != http.StatusOK || len(order) != 2 || order[0] != "mw" {
		t.Fatalf("status=%d order=%v", rec.Code, order)
	}

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/zones/extra", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("extra status = %d", rec.Code)
	}
	if base.Name() != "zones" || base.Ports() != "ports" {
		t.Fatalf("name/ports = %s/%v", base.Name(), base.Ports())
	}
}
