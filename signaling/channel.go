package signaling

import "context"

// Handler receives envelopes addressed to the subscriber. Handlers may be
// invoked more than once for the same envelope and must be idempotent.
type Handler func(*Envelope)

// Channel is the shared per-group signaling relay. Implementations must
// preserve publish order for envelopes from a single sender to a single
// recipient; no ordering is guaranteed across senders.
type Channel interface {
	// Publish appends an envelope to the group's stream.
	Publish(ctx context.Context, groupID string, env *Envelope) error

	// Subscribe registers a handler for envelopes in the group addressed to
	// selfID. The returned function cancels the subscription; it is safe to
	// call more than once.
	Subscribe(ctx context.Context, groupID, selfID string, h Handler) (func(), error)

	// Purge removes every envelope currently stored for the group. Called
	// before each new join attempt so stale negotiation data from a previous
	// call instance is never replayed.
	Purge(ctx context.Context, groupID string) error
}
