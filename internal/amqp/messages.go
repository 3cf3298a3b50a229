package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"finanzas/internal/core"
)

// Event types carried in Envelope.Type.
const (
	EventTransactionPosted    = "transaction.posted"
	EventTransactionUpdated   = "transaction.updated"
	EventTransactionDeleted   = "transaction.deleted"
	EventServiceStatusChanged = "service.status_changed"
)

// Envelope is the body of every message on the exchange.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// LedgerEvent is the payload of transaction.* events. It carries the full
// record so consumers never need to read the store; Previous is set on
// updates.
type LedgerEvent struct {
	Transaction core.Transaction  `json:"transaction"`
	Previous    *core.Transaction `json:"previous,omitempty"`
}

// ServiceEvent is the payload of service.status_changed.
type ServiceEvent struct {
	ServiceID string             `json:"service_id"`
	Name      string             `json:"name"`
	From      core.ServiceStatus `json:"from"`
	To        core.ServiceStatus `json:"to"`
}

func newEnvelope(eventType string, payload any) (*Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Payload: b}, nil
}

func NewLedgerEnvelope(eventType string, ev LedgerEvent) (*Envelope, error) {
	return newEnvelope(eventType, ev)
}

func NewServiceEnvelope(ev ServiceEvent) (*Envelope, error) {
	return newEnvelope(EventServiceStatusChanged, ev)
}

// IsLedger reports whether the envelope carries a LedgerEvent.
func (e *Envelope) IsLedger() bool {
	switch e.Type {
	case EventTransactionPosted, EventTransactionUpdated, EventTransactionDeleted:
		return true
	}
	return false
}

func (e *Envelope) Ledger() (LedgerEvent, error) {
	var ev LedgerEvent
	if !e.IsLedger() {
		return ev, fmt.Errorf("envelope type %q is not a ledger event", e.Type)
	}
	err := json.Unmarshal(e.Payload, &ev)
	return ev, err
}

func (e *Envelope) Service() (ServiceEvent, error) {
	var ev ServiceEvent
	if e.Type != EventServiceStatusChanged {
		return ev, fmt.Errorf("envelope type %q is not a service event", e.Type)
	}
	err := json.Unmarshal(e.Payload, &ev)
	return ev, err
}

// ToJSON converts the message to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON parses a message body.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Type == "" {
		return nil, fmt.Errorf("envelope without type")
	}
	return &e, nil
}
