// Package rtc owns the WebRTC peer connections of a call session, one per
// remote participant.
//
// The Registry is keyed by remote user ID. Connections are created lazily on
// first contact: explicitly by the session controller for participants it
// must initiate toward, or implicitly when an offer arrives from a remote
// initiator. Each connection carries a fixed initiator flag decided at
// creation; the offer-direction policy that prevents glare lives in the call
// package, the registry only honors the flag it was given.
//
// Out-of-order signaling is expected. Connectivity candidates arriving before
// the corresponding remote description are buffered and replayed once the
// description is applied; answers or candidates for a peer that already left
// are logged and ignored rather than failing the session.
package rtc
