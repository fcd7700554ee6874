package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeZoneNotFound, http.StatusNotFound},
		{ErrorCodeInvalidRequest, http.StatusNotFound},
		{ErrorCodeInvalidProof, http.StatusUnprocessableEntity},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeAlreadyProcessed, http.StatusConflict},
		{ErrorCodeDuplicateCallback, http.StatusConflict},
		{ErrorCodeDecryptionPending, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestSentinelsMatchWrappedAndFormattedErrors(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("resolve: %w", ZoneNotFoundf("zone %q", "north"))
	if !stderrs.Is(err, ErrZoneNotFound) {
		t.Fatalf("formatted zone error should match sentinel")
	}
	if stderrs.Is(err, ErrInvalidRequest) {
		t.Fatalf("zone error must not match another sentinel")
	}
	if !IsCode(err, ErrorCodeZoneNotFound) {
		t.Fatalf("IsCode = false")
	}
	if IsCode(nil, ErrorCodeUnknown) {
		t.Fatalf("nil error must not carry a code")
	}
}

func TestWireAndMutators(t *testing.T) {
	t.Parallel()

	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil render = %q", nilErr.Error())
	}

	e := WithOp(WithField(InvalidArgf("bad %s", "handle"), "encrypted_demand"), "ledger.submit")
	pe, ok := As(e)
	if !ok {
		t.Fatalf("As failed")
	}
	if pe.Field() != "encrypted_demand" || pe.Op() != "ledger.submit" {
		t.Fatalf("field/op = %q/%q", pe.Field(), pe.Op())
	}
	w := WireFrom(e)
	if w.Kind != "invalid_argument" || w.Message != "bad handle" || w.Field != "encrypted_demand" {
		t.Fatalf("wire = %+v", w)
	}

	foreign := stderrs.New("plain")
	if WithField(foreign, "x") != foreign {
		t.Fatalf("foreign errors should pass through")
	}
	if w := WireFrom(foreign); w.Code != ErrorCodeUnknown || w.Message != "plain" {
		t.Fatalf("foreign wire = %+v", w)
	}
	if status, w := HTTP(nil); status != http.StatusOK || w != (Wire{}) {
		t.Fatalf("HTTP(nil) = %d %+v", status, w)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	root := stderrs.New("root")
	err := Wrapf(root, ErrorCodeDB, "insert %d", 7)
	if err.Error() != "insert 7: root" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if Root(err) != root {
		t.Fatalf("Root did not return cause")
	}
}

func TestCodeString(t *testing.T) {
	if ErrorCodeAlreadyProcessed.String() != "already_processed" {
		t.Fatalf("String = %q", ErrorCodeAlreadyProcessed.String())
	}
	if ErrorCode(4242).String() != "code_4242" {
		t.Fatalf("unknown code String = %q", ErrorCode(4242).String())
	}
}

func pg(code, col, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ColumnName: col, ConstraintName: constraint}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeInvalidArgument},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"22P02", ErrorCodeInvalidArgument},
		{"40001", ErrorCodeDB},
		{"57P03", ErrorCodeUnavailable},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(fmt.Errorf("wrapped: %w", pg(c.code, "", "")))
		if !ok || got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v,%v want %v", c.code, got, ok, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("non pg error should not map")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("nil should stay nil")
	}
	err := FromPostgres(pg("23502", "target_zone", ""), "insert request")
	if CodeOf(err) != ErrorCodeValidation {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if pe, _ := As(err); pe.Field() != "target_zone" {
		t.Fatalf("field = %q", pe.Field())
	}
	domain := ErrAlreadyProcessed
	if FromPostgres(domain, "x") != domain {
		t.Fatalf("domain errors should pass through unchanged")
	}
	if !IsDuplicateKeyOn(pg("23505", "", "correlations_pkey"), "correlations_pkey") {
		t.Fatalf("IsDuplicateKeyOn false")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization", pg("40001", "", ""), true},
		{"deadlock", pg("40P01", "", ""), true},
		{"unique", pg("23505", "", ""), false},
		{"commit text", stderrs.New("commit unexpectedly resulted in rollback"), true},
		{"plain", stderrs.New("boom"), false},
	}
	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Fatalf("%s: IsRetryable = %v, want %v", c.name, got, c.want)
		}
	}
}
