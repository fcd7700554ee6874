package domain

import (
	"context"
	"strconv"
)

// Recorder appends through an Outbox and keeps what it wrote so the caller can publish after commit
// build one per transaction attempt
type Recorder struct {
	ob  Outbox
	evs []Event
}

// Record starts a Recorder over ob
func Record(ob Outbox) *Recorder { return &Recorder{ob: ob} }

// Add appends one event
func (r *Recorder) Add(ctx context.Context, kind Kind, subject string, payload any) error {
	ev, err := r.ob.Append(ctx, kind, subject, payload)
	if err != nil {
		return err
	}
	r.evs = append(r.evs, ev)
	return nil
}

// Events returns what was appended, in order
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	return r.evs
}

// RequestSubject is the subject for request scoped events
func RequestSubject(id uint64) string { return "request/" + strconv.FormatUint(id, 10) }

// ZoneSubject is the subject for zone scoped events
func ZoneSubject(name string) string { return "zone/" + name }
