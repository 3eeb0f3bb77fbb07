package signaling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEnvelope(t *testing.T, typ Type, from, to string, payload any) *Envelope {
	t.Helper()
	env, err := NewEnvelope(typ, from, to, payload)
	require.NoError(t, err)
	return env
}

func TestMemoryDeliversOnlyToAddressee(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	var got []*Envelope
	cancel, err := ch.Subscribe(ctx, "g1", "u2", func(env *Envelope) {
		got = append(got, env)
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeOffer, "u1", "u2", map[string]string{"sdp": "x"})))
	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeOffer, "u1", "u3", map[string]string{"sdp": "y"})))

	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].To)
	assert.Equal(t, TypeOffer, got[0].Type)
}

func TestMemoryPreservesSenderOrder(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	var order []Type
	cancel, err := ch.Subscribe(ctx, "g1", "u2", func(env *Envelope) {
		order = append(order, env.Type)
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeOffer, "u1", "u2", struct{}{})))
	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeCandidate, "u1", "u2", struct{}{})))
	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeCandidate, "u1", "u2", struct{}{})))

	assert.Equal(t, []Type{TypeOffer, TypeCandidate, TypeCandidate}, order)
}

func TestMemoryReplaysBacklogToLateSubscriber(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeOffer, "u1", "u2", struct{}{})))

	var got []*Envelope
	cancel, err := ch.Subscribe(ctx, "g1", "u2", func(env *Envelope) {
		got = append(got, env)
	})
	require.NoError(t, err)
	defer cancel()

	require.Len(t, got, 1)
	assert.Equal(t, TypeOffer, got[0].Type)
}

func TestMemoryPurgeDropsBacklog(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeOffer, "u1", "u2", struct{}{})))
	require.NoError(t, ch.Purge(ctx, "g1"))

	var got []*Envelope
	cancel, err := ch.Subscribe(ctx, "g1", "u2", func(env *Envelope) {
		got = append(got, env)
	})
	require.NoError(t, err)
	defer cancel()

	assert.Empty(t, got)
}

func TestMemoryUnsubscribeStopsDelivery(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	count := 0
	cancel, err := ch.Subscribe(ctx, "g1", "u2", func(*Envelope) { count++ })
	require.NoError(t, err)

	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeOffer, "u1", "u2", struct{}{})))
	cancel()
	cancel() // safe to call twice
	require.NoError(t, ch.Publish(ctx, "g1", mustEnvelope(t, TypeAnswer, "u1", "u2", struct{}{})))

	assert.Equal(t, 1, count)
}

func TestNewEnvelopeRejectsUnknownType(t *testing.T) {
	_, err := NewEnvelope(Type("hangup"), "u1", "u2", struct{}{})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestEnvelopeDecodeRoundTrip(t *testing.T) {
	type desc struct {
		SDP string `json:"sdp"`
	}
	env := mustEnvelope(t, TypeAnswer, "u1", "u2", desc{SDP: "v=0"})

	var out desc
	require.NoError(t, env.Decode(&out))
	assert.Equal(t, "v=0", out.SDP)
	assert.NotEmpty(t, env.ID)
	assert.False(t, env.CreatedAt.IsZero())
}
