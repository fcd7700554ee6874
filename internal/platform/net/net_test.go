package net

import (
	"context"
	"net/http"
	"testing"

	perr "allocvault/internal/platform/errors"
)

func TestContextValues(t *testing.T) {
	ctx := WithPrincipal(WithRequest(context.Background(), "req-1"), "alice")
	if RequestID(ctx) != "req-1" {
		t.Fatalf("RequestID = %q", RequestID(ctx))
	}
	if Principal(ctx) != "alice" {
		t.Fatalf("Principal = %q", Principal(ctx))
	}

	empty := WithPrincipal(WithRequest(context.Background(), ""), "")
	if RequestID(empty) != "" || Principal(empty) != "" {
		t.Fatalf("empty values should not be stored")
	}
}

func TestErrorEnvelope(t *testing.T) {
	status, w := Error(perr.ZoneNotFoundf("zone %q", "north"), "r")
	if status != http.StatusNotFound || w.StatusCode != status {
		t.Fatalf("status = %d/%d", status, w.StatusCode)
	}
	if w.Code != perr.ErrorCodeZoneNotFound || w.Kind != "zone_not_found" || w.RequestID != "r" {
		t.Fatalf("wire = %+v", w)
	}

	status, w = Error(nil, "r")
	if status != http.StatusOK || w.Error != "" {
		t.Fatalf("nil error = %d %+v", status, w)
	}
}
