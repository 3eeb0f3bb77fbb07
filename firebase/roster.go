package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/RaeezAli/Chat-App/roster"
)

// groupDoc is the slice of the group document the call system touches. Other
// group fields (name, members, avatar) belong to the chat layer and are left
// untouched by the merge writes below.
type groupDoc struct {
	CurrentCall *roster.CallDoc `firestore:"currentCall"`
}

// Roster implements roster.Store on the group document's currentCall field.
type Roster struct {
	fs *firestore.Client
}

func (r *Roster) groupRef(groupID string) *firestore.DocumentRef {
	return r.fs.Collection("groups").Doc(groupID)
}

func decodeCallDoc(snap *firestore.DocumentSnapshot, err error) (*roster.CallDoc, error) {
	if status.Code(err) == codes.NotFound {
		return &roster.CallDoc{}, nil
	}
	if err != nil {
		return nil, err
	}
	var g groupDoc
	if err := snap.DataTo(&g); err != nil {
		return nil, fmt.Errorf("decode group document: %w", err)
	}
	if g.CurrentCall == nil {
		return &roster.CallDoc{}, nil
	}
	return g.CurrentCall, nil
}

func copyDoc(d *roster.CallDoc) *roster.CallDoc {
	cp := &roster.CallDoc{Active: d.Active, StartedBy: d.StartedBy}
	cp.Participants = append([]roster.Participant(nil), d.Participants...)
	return cp
}

func (r *Roster) write(tx *firestore.Transaction, groupID string, doc *roster.CallDoc) error {
	return tx.Set(r.groupRef(groupID), map[string]any{"currentCall": doc}, firestore.MergeAll)
}

// Current returns the group's call document. A group without one yields an
// empty inactive document.
func (r *Roster) Current(ctx context.Context, groupID string) (*roster.CallDoc, error) {
	snap, err := r.groupRef(groupID).Get(ctx)
	doc, err := decodeCallDoc(snap, err)
	if err != nil {
		return nil, fmt.Errorf("read call document for group %s: %w", groupID, err)
	}
	return doc, nil
}

// Join adds p inside a transaction, activating the call on first join, and
// returns the document state from before the mutation.
func (r *Roster) Join(ctx context.Context, groupID string, p roster.Participant) (*roster.CallDoc, error) {
	var prior *roster.CallDoc
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := decodeCallDoc(tx.Get(r.groupRef(groupID)))
		if err != nil {
			return err
		}
		prior = copyDoc(doc)
		if doc.Has(p.UserID) {
			return nil
		}
		next := copyDoc(doc)
		if !next.Active {
			next.Active = true
			next.StartedBy = p.UserID
		}
		next.Participants = append(next.Participants, p)
		return r.write(tx, groupID, next)
	})
	if err != nil {
		return nil, fmt.Errorf("join call in group %s: %w", groupID, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Join",
		"group_id": groupID,
		"user_id":  p.UserID,
	}).Info("Joined call document")
	return prior, nil
}

// Leave removes userID's entry, deactivating the call when the participant
// list becomes empty. Removing an absent user is a no-op.
func (r *Roster) Leave(ctx context.Context, groupID, userID string) error {
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := decodeCallDoc(tx.Get(r.groupRef(groupID)))
		if err != nil {
			return err
		}
		if !doc.Has(userID) {
			return nil
		}
		next := &roster.CallDoc{Active: doc.Active, StartedBy: doc.StartedBy}
		for _, p := range doc.Participants {
			if p.UserID != userID {
				next.Participants = append(next.Participants, p)
			}
		}
		if len(next.Participants) == 0 {
			next.Active = false
			next.StartedBy = ""
			next.Participants = []roster.Participant{}
		}
		return r.write(tx, groupID, next)
	})
	if err != nil {
		return fmt.Errorf("leave call in group %s: %w", groupID, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Leave",
		"group_id": groupID,
		"user_id":  userID,
	}).Info("Left call document")
	return nil
}

// SetVideoEnabled updates the video flag on userID's participant entry.
func (r *Roster) SetVideoEnabled(ctx context.Context, groupID, userID string, enabled bool) error {
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := decodeCallDoc(tx.Get(r.groupRef(groupID)))
		if err != nil {
			return err
		}
		next := copyDoc(doc)
		changed := false
		for i := range next.Participants {
			if next.Participants[i].UserID == userID && next.Participants[i].VideoEnabled != enabled {
				next.Participants[i].VideoEnabled = enabled
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return r.write(tx, groupID, next)
	})
	if err != nil {
		return fmt.Errorf("set video flag in group %s: %w", groupID, err)
	}
	return nil
}

// Watch streams the group document and invokes fn with the currentCall slice
// after every change, including the initial snapshot. The returned function
// stops the stream.
func (r *Roster) Watch(ctx context.Context, groupID string, fn roster.WatchFunc) (func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)
	iter := r.groupRef(groupID).Snapshots(watchCtx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					logrus.WithFields(logrus.Fields{
						"function": "Watch",
						"group_id": groupID,
						"error":    err.Error(),
					}).Warn("Call document watch terminated")
				}
				return
			}
			var doc *roster.CallDoc
			if !snap.Exists() {
				doc = &roster.CallDoc{}
			} else if doc, err = decodeCallDoc(snap, nil); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Watch",
					"group_id": groupID,
					"error":    err.Error(),
				}).Error("Failed to decode call document update")
				continue
			}
			fn(doc)
		}
	}()

	return cancel, nil
}
