package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// Announcer posts call lifecycle events as system messages in the group's
// chat history.
type Announcer struct {
	fs *firestore.Client
}

// Announce appends one system message to the messages collection.
func (a *Announcer) Announce(ctx context.Context, groupID, text string) error {
	_, _, err := a.fs.Collection("messages").Add(ctx, map[string]any{
		"groupId":    groupID,
		"senderId":   "system",
		"senderName": "System",
		"text":       text,
		"type":       "system",
		"createdAt":  firestore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("post system message to group %s: %w", groupID, err)
	}
	return nil
}
