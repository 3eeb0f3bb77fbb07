package signaling

import "errors"

// Sentinel errors for signaling operations. These enable reliable error
// classification using errors.Is().
var (
	// ErrInvalidType indicates an unknown envelope type.
	ErrInvalidType = errors.New("invalid envelope type")

	// ErrChannelClosed indicates the channel has been shut down.
	ErrChannelClosed = errors.New("signaling channel closed")
)
