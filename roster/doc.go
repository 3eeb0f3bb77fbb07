// Package roster defines the shared, group-scoped record of who is currently
// in a call.
//
// The call document is concurrently mutable by every participant: anyone may
// join, leave, or update their own video flag at any time. Implementations
// must apply mutations as targeted add/remove/update of a single entry rather
// than whole-document overwrites, so concurrent joins do not lose updates.
// Join is idempotent, keeping at most one entry per user, and the last
// leaver deactivates the document.
//
// An in-memory store is provided for tests and single-process use; the
// Firestore-backed store lives in the firebase package.
package roster
