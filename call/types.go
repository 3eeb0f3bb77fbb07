package call

import (
	"time"

	"github.com/RaeezAli/Chat-App/roster"
)

// State identifies where a session is in its lifecycle.
type State int

const (
	// StateIdle means no session exists.
	StateIdle State = iota
	// StateRequestingMedia means local capture devices are being acquired.
	StateRequestingMedia
	// StateJoining means membership and signaling setup is in progress.
	StateJoining
	// StateActive means the session is established.
	StateActive
	// StateLeaving means teardown is in progress.
	StateLeaving
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingMedia:
		return "requesting_media"
	case StateJoining:
		return "joining"
	case StateActive:
		return "active"
	case StateLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// Mode selects the media acquired when a session starts.
type Mode string

const (
	// ModeVoice acquires audio only.
	ModeVoice Mode = "voice"
	// ModeVideo acquires audio and video.
	ModeVideo Mode = "video"
)

// Valid reports whether the mode is one of the defined values.
func (m Mode) Valid() bool { return m == ModeVoice || m == ModeVideo }

// Severity grades user-facing notifications.
type Severity int

const (
	// SeverityInfo is informational.
	SeverityInfo Severity = iota
	// SeverityWarning signals a degraded but usable session.
	SeverityWarning
	// SeverityError signals a failed operation.
	SeverityError
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// SessionInfo is an immutable snapshot of the current session, delivered
// through the state change callback and returned by Manager.Info.
type SessionInfo struct {
	GroupID      string
	State        State
	Mode         Mode
	Muted        bool
	VideoEnabled bool
	SpeakerOn    bool
	Minimized    bool

	// Connecting is true while at least one remote participant is listed in
	// the membership document and no connection has been established yet.
	Connecting bool

	StartedAt    time.Time
	Participants []roster.Participant
}

// Duration reports how long the session has been running. Zero before the
// session clock starts.
func (s SessionInfo) Duration() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.StartedAt)
}
