package roster

import (
	"context"
	"time"
)

// Participant is one entry in a call document's participant list. The video
// flag is mirrored here so remote UIs can reflect it; all other media state
// stays local to each process.
type Participant struct {
	UserID       string    `json:"userId" firestore:"userId"`
	DisplayName  string    `json:"displayName" firestore:"displayName"`
	AvatarRef    string    `json:"avatarRef" firestore:"avatarRef"`
	JoinedAt     time.Time `json:"joinedAt" firestore:"joinedAt"`
	VideoEnabled bool      `json:"isVideoEnabled" firestore:"isVideoEnabled"`
}

// CallDoc is the group's shared call membership document.
type CallDoc struct {
	Active       bool          `json:"active" firestore:"active"`
	StartedBy    string        `json:"startedBy" firestore:"startedBy"`
	Participants []Participant `json:"participants" firestore:"participants"`
}

// Has reports whether userID appears in the participant list.
func (d *CallDoc) Has(userID string) bool {
	if d == nil {
		return false
	}
	for _, p := range d.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Others returns the participants other than userID.
func (d *CallDoc) Others(userID string) []Participant {
	if d == nil {
		return nil
	}
	out := make([]Participant, 0, len(d.Participants))
	for _, p := range d.Participants {
		if p.UserID != userID {
			out = append(out, p)
		}
	}
	return out
}

// clone returns a deep copy so watchers never share slices with the store.
func (d *CallDoc) clone() *CallDoc {
	if d == nil {
		return nil
	}
	cp := &CallDoc{Active: d.Active, StartedBy: d.StartedBy}
	cp.Participants = append([]Participant(nil), d.Participants...)
	return cp
}

// WatchFunc receives the call document after every change.
type WatchFunc func(*CallDoc)

// Store is the external membership store interface. It is injected into the
// call controller so the controller stays testable against a fake.
type Store interface {
	// Current returns the group's call document. A group with no call yet
	// yields an inactive document with no participants, not an error.
	Current(ctx context.Context, groupID string) (*CallDoc, error)

	// Join adds p to the call, activating it when it was inactive and
	// recording p as the starter. Joining twice is a no-op for the second
	// call. The returned document reflects the state from BEFORE the join,
	// so the caller knows which participants were already present.
	Join(ctx context.Context, groupID string, p Participant) (*CallDoc, error)

	// Leave removes userID's entry. When the resulting participant list is
	// empty the call is marked inactive and the starter cleared. Removing an
	// absent user is a no-op.
	Leave(ctx context.Context, groupID, userID string) error

	// SetVideoEnabled updates the video flag on userID's entry so remote
	// participants can reflect it.
	SetVideoEnabled(ctx context.Context, groupID, userID string, enabled bool) error

	// Watch invokes fn with the current document and after every subsequent
	// change until the returned cancel function is called.
	Watch(ctx context.Context, groupID string, fn WatchFunc) (func(), error)
}
