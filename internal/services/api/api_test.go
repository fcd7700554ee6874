package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"allocvault/internal/core/cipher/mirror"
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/module"
	"allocvault/internal/platform/config"
	phttp "allocvault/internal/platform/net/http"
	"allocvault/internal/services/harness"

	"github.com/go-chi/chi/v5"
)

func mounted(t *testing.T) (*chi.Mux, Mounted) {
	t.Helper()
	t.Cleanup(module.Reset)
	t.Setenv("DECRYPTION_ORACLE_PRINCIPAL", "oracle")
	t.Setenv("DECRYPTION_ORACLE_ADDRESS", "0x00000000000000000000000000000000000000aa")

	m := chi.NewRouter()
	out := Mount(phttp.AdaptChi(m), Options{
		Deps:          modkit.Deps{Cfg: config.New(), PG: harness.New(), Algebra: mirror.New()},
		Tokens:        map[string]string{"t-alice": "alice"},
		EnableSwagger: true,
	})
	return m, out
}

func serve(m http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, req)
	return rec
}

func TestMountWiresModulesAndLoops(t *testing.T) {
	_, out := mounted(t)
	if len(out.Modules) != 7 {
		t.Fatalf("modules = %d", len(out.Modules))
	}
	if out.Sweeper == nil {
		t.Fatalf("sweeper not exposed")
	}
	if out.Relay != nil {
		t.Fatalf("relay built without clickhouse")
	}
	for _, name := range []string{"events", "ledger", "allocation", "correlation", "oracle", "decryption"} {
		if _, ok := module.PortsAs[any](name); !ok {
			t.Fatalf("%s ports not registered", name)
		}
	}
}

func TestRoutingAndAuth(t *testing.T) {
	m, _ := mounted(t)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"heartbeat", "GET", "/health", "", http.StatusOK},
		{"docs", "GET", "/api/docs/doc.json", "", http.StatusOK},
		{"submit anonymous", "POST", "/api/v1/requests", "", http.StatusUnauthorized},
		{"read unknown token", "GET", "/api/v1/requests/1", "nope", http.StatusUnauthorized},
		{"decrypt anonymous", "POST", "/api/v1/requests/1/decrypt", "", http.StatusUnauthorized},
		{"callback anonymous", "POST", "/api/v1/oracle/callback", "", http.StatusUnauthorized},
		{"bad id", "GET", "/api/v1/requests/abc", "t-alice", http.StatusBadRequest},
		{"version", "GET", "/api/v1/meta/version", "", http.StatusOK},
		{"ready", "GET", "/api/v1/meta/ready", "", http.StatusOK},
		{"unmounted", "GET", "/api/v2/requests/1", "t-alice", http.StatusNotFound},
	}
	for _, c := range cases {
		rec := serve(m, c.method, c.path, c.token)
		if rec.Code != c.want {
			t.Fatalf("%s: status = %d, want %d body=%s", c.name, rec.Code, c.want, rec.Body.String())
		}
	}

	rec := serve(m, "POST", "/api/v1/requests", "")
	if !strings.Contains(rec.Body.String(), `"kind":"unauthorized"`) {
		t.Fatalf("401 body = %s", rec.Body.String())
	}

	rec = serve(m, "GET", "/api/v1/meta/service", "")
	if !strings.Contains(rec.Body.String(), `"cipher_backend":"mirror"`) {
		t.Fatalf("service body = %s", rec.Body.String())
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("CORE_API_TOKENS", "t-alice=alice, t-oracle=oracle")
	t.Setenv("CORE_API_PROFILER", "true")
	o := OptionsFrom(config.New(), modkit.Deps{})
	if o.Tokens["t-oracle"] != "oracle" || len(o.Tokens) != 2 {
		t.Fatalf("tokens = %v", o.Tokens)
	}
	if !o.EnableSwagger || !o.EnableProfiler {
		t.Fatalf("flags = %+v", o)
	}
}
