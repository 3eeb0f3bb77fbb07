// Package signaling defines the envelope-based message relay used to
// negotiate peer connections between call participants.
//
// A signaling channel is an append-only, per-group stream of envelopes.
// Each envelope is addressed to exactly one recipient; subscriptions filter
// the group stream down to envelopes whose To field matches the subscriber.
// Delivery is at-least-once and per-sender ordered: an offer published before
// its candidates is observed before them by the recipient, but no ordering is
// assumed across different senders. Handlers must therefore tolerate
// duplicate delivery.
//
// The package ships an in-memory channel suitable for tests and
// single-process use. The production channel backed by a shared document
// store lives in the firebase package.
package signaling
