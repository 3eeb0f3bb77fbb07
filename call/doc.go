// Package call implements the group call session controller.
//
// A Manager owns at most one live session at a time and drives it through the
// Idle, RequestingMedia, Joining, Active and Leaving states. It coordinates
// the collaborators injected at construction: local media capture, the shared
// membership store, the signaling channel, the ICE configuration provider and
// the peer connection registry built per session.
//
// Glare prevention is deterministic: the side that discovers a new
// participant through the membership watch initiates the connection. A joiner
// records the participants present before its own join and never initiates
// toward them; each of those members sees the joiner appear in its watch and
// offers to it. Departures are forgotten, so a participant that leaves and
// rejoins is treated as a new arrival.
//
// Events produced by collaborators arrive on their own goroutines. Every
// continuation re-checks the session generation before touching shared state,
// which makes stale events from an ended session harmless.
package call
