package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "allocvault/internal/platform/errors"
)

type submitBody struct {
	Demand []byte `json:"encrypted_demand" validate:"required"`
	Zone   string `json:"zone,omitempty" validate:"omitempty,zonename"`
}

func req(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		code  perr.ErrorCode
		field string
	}{
		{"ok", `{"encrypted_demand":"AQI=","zone":"north-1"}`, 0, ""},
		{"empty", ``, perr.ErrorCodeJSON, ""},
		{"malformed", `{"encrypted_demand":`, perr.ErrorCodeJSON, ""},
		{"unknown field", `{"encrypted_demand":"AQI=","x":1}`, perr.ErrorCodeJSON, ""},
		{"trailing", `{"encrypted_demand":"AQI="} {}`, perr.ErrorCodeJSON, ""},
		{"missing required", `{"zone":"north"}`, perr.ErrorCodeValidation, "encrypted_demand"},
		{"bad zone", `{"encrypted_demand":"AQI=","zone":"no/slash"}`, perr.ErrorCodeValidation, "zone"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseJSON[submitBody](req(c.body))
			if c.code == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(got.Demand) != "\x01\x02" || got.Zone != "north-1" {
					t.Fatalf("decoded = %+v", got)
				}
				return
			}
			if !perr.IsCode(err, c.code) {
				t.Fatalf("err = %v, want code %v", err, c.code)
			}
			if c.field != "" {
				if pe, _ := perr.As(err); pe.Field() != c.field {
					t.Fatalf("field = %q, want %q", pe.Field(), c.field)
				}
			}
		})
	}
}

func TestZoneNameOK(t *testing.T) {
	for s, want := range map[string]bool{
		"default":               true,
		"zone 7":                true,
		"zürich_a.b":            true,
		"":                      false,
		" padded":               false,
		"a/b":                   false,
		strings.Repeat("z", 65): false,
	} {
		if ZoneNameOK(s) != want {
			t.Fatalf("ZoneNameOK(%q) != %v", s, want)
		}
	}
}
