package chatapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaeezAli/Chat-App/call"
	"github.com/RaeezAli/Chat-App/media"
	"github.com/RaeezAli/Chat-App/roster"
	"github.com/RaeezAli/Chat-App/signaling"
)

type nopCapture struct{}

func (nopCapture) Request(context.Context, media.Constraints) (*media.Stream, error) {
	return media.NewStream(), nil
}

type nopAnnouncer struct{}

func (nopAnnouncer) Announce(context.Context, string, string) error { return nil }

func TestNewRequiresIdentity(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func TestClientLifecycleWithInjectedCollaborators(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, Options{
		Self:      roster.Participant{UserID: "alice", DisplayName: "Alice"},
		Capture:   nopCapture{},
		Roster:    roster.NewMemory(),
		Channel:   signaling.NewMemory(),
		Announcer: nopAnnouncer{},
	})
	require.NoError(t, err)
	require.NotNil(t, client.Calls())

	require.NoError(t, client.Calls().StartCall(ctx, "group-1", call.ModeVoice))
	assert.Equal(t, call.StateActive, client.Calls().Info().State)

	// Close ends the running session before releasing resources.
	require.NoError(t, client.Close())
	assert.Equal(t, call.StateIdle, client.Calls().Info().State)
}
