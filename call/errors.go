package call

import "errors"

var (
	// ErrCallAlreadyActive indicates StartCall was invoked while a session
	// already exists.
	ErrCallAlreadyActive = errors.New("a call session is already active")

	// ErrNoActiveCall indicates an operation that requires a live session was
	// invoked while idle.
	ErrNoActiveCall = errors.New("no active call session")

	// ErrSessionSuperseded indicates an in-flight join was abandoned because
	// the session ended before it completed.
	ErrSessionSuperseded = errors.New("call session superseded before join completed")

	// ErrInvalidMode indicates an unknown call mode was requested.
	ErrInvalidMode = errors.New("invalid call mode")

	// ErrMediaAccess indicates local media could not be acquired.
	ErrMediaAccess = errors.New("failed to access local media")
)
