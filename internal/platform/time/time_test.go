package time

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	if Ptr(time.Time{}) != nil {
		t.Fatalf("zero time should map to nil")
	}
	now := time.Unix(1700000000, 0)
	if p := Ptr(now); p == nil || !p.Equal(now) {
		t.Fatalf("Ptr = %v", p)
	}
}

func TestDue(t *testing.T) {
	at := time.Unix(1700000000, 0)
	if Due(at.Add(-time.Second), at) {
		t.Fatalf("not yet due")
	}
	if !Due(at, at) || !Due(at.Add(time.Second), at) {
		t.Fatalf("deadline reached should be due")
	}
}
