package events

import (
	"context"
	"encoding/json"
	"time"
)

type Type string

const (
	Saved      Type = "saved"
	Opened     Type = "opened"
	Imported   Type = "imported"
	New        Type = "new"
	Downloaded Type = "downloaded"
	Autosaved  Type = "autosaved"
)

// Event announces a completed persistence action. Handle is empty when the
// intake is not bound to a file.
type Event struct {
	Type     Type      `json:"type"`
	Handle   string    `json:"handle,omitempty"`
	Customer string    `json:"customer,omitempty"`
	At       time.Time `json:"at"`
}

func (e Event) Marshal() ([]byte, error) { return json.Marshal(e) }

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	ch chan Event
}

func NewRecorder(size int) *Recorder { return &Recorder{ch: make(chan Event, size)} }

// Publish never blocks; events beyond the buffer are dropped.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	select {
	case r.ch <- e:
	default:
	}
	return nil
}

func (r *Recorder) Events() <-chan Event { return r.ch }
