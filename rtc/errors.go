package rtc

import "errors"

// Sentinel errors for registry operations. These enable reliable error
// classification using errors.Is().
var (
	// ErrSignalerRequired indicates the registry was configured without a
	// signaler to publish negotiation messages through.
	ErrSignalerRequired = errors.New("signaler cannot be nil")

	// ErrRegistryClosed indicates the registry has been shut down.
	ErrRegistryClosed = errors.New("registry is closed")

	// ErrUnknownPeer indicates no connection exists for the remote user.
	ErrUnknownPeer = errors.New("no connection for remote user")
)
