package firebase

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"github.com/RaeezAli/Chat-App/signaling"
)

// Channel implements signaling.Channel on the group's calls subcollection.
// Firestore snapshot listeners may redeliver documents, so envelopes are
// de-duplicated by ID per subscription; delivery stays at-least-once for the
// channel contract.
type Channel struct {
	fs *firestore.Client
}

// NewChannel builds a channel over the given Firestore connection.
func NewChannel(fs *firestore.Client) *Channel {
	return &Channel{fs: fs}
}

func (c *Channel) calls(groupID string) *firestore.CollectionRef {
	return c.fs.Collection("groups").Doc(groupID).Collection("calls")
}

// Publish writes the envelope as a new document in the subcollection.
func (c *Channel) Publish(ctx context.Context, groupID string, env *signaling.Envelope) error {
	if _, err := c.calls(groupID).Doc(env.ID).Set(ctx, env); err != nil {
		return fmt.Errorf("publish %s envelope to group %s: %w", env.Type, groupID, err)
	}
	return nil
}

// Subscribe listens for envelopes addressed to selfID. Per-sender order is
// preserved by ordering on the envelope creation time.
func (c *Channel) Subscribe(ctx context.Context, groupID, selfID string, h signaling.Handler) (func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)
	query := c.calls(groupID).
		Where("to", "==", selfID).
		OrderBy("createdAt", firestore.Asc)
	snaps := query.Snapshots(watchCtx)

	go func() {
		defer snaps.Stop()
		seen := make(map[string]struct{})
		for {
			snap, err := snaps.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					logrus.WithFields(logrus.Fields{
						"function": "Subscribe",
						"group_id": groupID,
						"error":    err.Error(),
					}).Warn("Signaling listener terminated")
				}
				return
			}
			for _, change := range snap.Changes {
				if change.Kind != firestore.DocumentAdded {
					continue
				}
				var env signaling.Envelope
				if err := change.Doc.DataTo(&env); err != nil {
					logrus.WithFields(logrus.Fields{
						"function": "Subscribe",
						"group_id": groupID,
						"doc_id":   change.Doc.Ref.ID,
						"error":    err.Error(),
					}).Error("Failed to decode signaling envelope")
					continue
				}
				if env.ID == "" {
					env.ID = change.Doc.Ref.ID
				}
				if _, dup := seen[env.ID]; dup {
					continue
				}
				seen[env.ID] = struct{}{}
				h(&env)
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// Purge deletes every envelope stored for the group. Called before a join so
// negotiation data from a previous call instance is never replayed.
func (c *Channel) Purge(ctx context.Context, groupID string) error {
	bw := c.fs.BulkWriter(ctx)
	docs := c.calls(groupID).DocumentRefs(ctx)

	n := 0
	for {
		ref, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return fmt.Errorf("list stale envelopes in group %s: %w", groupID, err)
		}
		if _, err := bw.Delete(ref); err != nil {
			bw.End()
			return fmt.Errorf("delete stale envelope %s: %w", ref.ID, err)
		}
		n++
	}
	bw.End()

	if n > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Purge",
			"group_id": groupID,
			"purged":   n,
		}).Debug("Dropped stale signaling envelopes")
	}
	return nil
}
