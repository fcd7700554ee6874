package domain

import "context"

// Outbox appends events inside the caller's transaction
type Outbox interface {
	Append(ctx context.Context, kind Kind, subject string, payload any) (Event, error)
}

// Publisher fans committed events out to live subscribers
type Publisher interface {
	Publish(evs ...Event)
}

// ReaderPort pages through the outbox
type ReaderPort interface {
	Page(ctx context.Context, in PageInput) (Page, error)
}

// Subscriber hands out live event channels; cancel releases the channel
type Subscriber interface {
	Subscribe() (ch <-chan Event, cancel func())
}

// NopPublisher drops everything
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(...Event) {}
