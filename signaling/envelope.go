package signaling

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies the negotiation payload carried by an envelope.
type Type string

const (
	// TypeOffer carries a session description proposing a connection.
	TypeOffer Type = "offer"
	// TypeAnswer carries the session description accepting an offer.
	TypeAnswer Type = "answer"
	// TypeCandidate carries one discovered connectivity candidate.
	TypeCandidate Type = "candidate"
)

// Valid reports whether t is one of the known envelope types.
func (t Type) Valid() bool {
	switch t {
	case TypeOffer, TypeAnswer, TypeCandidate:
		return true
	}
	return false
}

// Envelope is a single addressed signaling message. Envelopes are created on
// send, consumed by the addressed recipient's active listener and never
// updated. Stale envelopes from a previous call instance are purged from the
// channel before a new join.
type Envelope struct {
	ID        string          `json:"id" firestore:"id"`
	Type      Type            `json:"type" firestore:"type"`
	From      string          `json:"from" firestore:"from"`
	To        string          `json:"to" firestore:"to"`
	Payload   json.RawMessage `json:"payload" firestore:"payload"`
	CreatedAt time.Time       `json:"createdAt" firestore:"createdAt"`
}

// NewEnvelope builds an envelope of the given type, marshaling payload to
// JSON. The envelope ID is used by receivers to de-duplicate redelivered
// messages.
func NewEnvelope(typ Type, from, to string, payload any) (*Envelope, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Type:      typ,
		From:      from,
		To:        to,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the envelope payload into v.
func (e *Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload from %s: %w", e.Type, e.From, err)
	}
	return nil
}
