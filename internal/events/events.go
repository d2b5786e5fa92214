// Package events defines the message emitted after an entry is recorded and
// the ports used to publish and consume it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"controle/internal/core"
)

// EntryRecorded is published once per successful append.
type EntryRecorded struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Ref         string    `json:"ref"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher sends EntryRecorded messages to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev EntryRecorded) error
}

// Handler processes one consumed message. A non-nil error asks the broker
// to redeliver.
type Handler func(ctx context.Context, ev EntryRecorded) error

// Nop discards every message.
type Nop struct{}

func (Nop) Publish(context.Context, EntryRecorded) error { return nil }

// NewEntryRecorded builds the message for an entry stored under ref.
func NewEntryRecorded(e core.Entry, ref string) EntryRecorded {
	return EntryRecorded{
		ID:          uuid.New(),
		Date:        e.Date.ISO(),
		Kind:        kindName(e.Kind),
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Ref:         ref,
		Timestamp:   time.Now().UTC(),
	}
}

// Entry rebuilds and validates the recorded entry.
func (ev EntryRecorded) Entry() (core.Entry, error) {
	d, err := core.ParseDate(ev.Date)
	if err != nil {
		return core.Entry{}, err
	}
	k, err := core.ParseKind(ev.Kind)
	if err != nil {
		return core.Entry{}, err
	}
	e := core.Entry{Date: d, Kind: k, Description: ev.Description, Amount: core.Money{Cents: ev.AmountCents}}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

// PartitionKey groups messages of the same month, e.g. "2024-03".
func (ev EntryRecorded) PartitionKey() string {
	if len(ev.Date) >= 7 {
		return ev.Date[:7]
	}
	return ev.Date
}

// ToJSON converts the message to JSON bytes
func (ev EntryRecorded) ToJSON() ([]byte, error) {
	return json.Marshal(ev)
}

// EntryRecordedFromJSON decodes a message and rejects ones without an id.
func EntryRecordedFromJSON(data []byte) (EntryRecorded, error) {
	var ev EntryRecorded
	if err := json.Unmarshal(data, &ev); err != nil {
		return EntryRecorded{}, err
	}
	if ev.ID == uuid.Nil {
		return EntryRecorded{}, fmt.Errorf("message without id")
	}
	return ev, nil
}

func kindName(k core.Kind) string {
	switch k {
	case core.Income:
		return "income"
	case core.Expense:
		return "expense"
	}
	return ""
}
