package media

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func audioTrack(t *testing.T) *Track {
	t.Helper()
	local, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "local")
	require.NoError(t, err)
	return NewTrack(local, nil)
}

func videoTrack(t *testing.T, closeFn func() error) *Track {
	t.Helper()
	local, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "local")
	require.NoError(t, err)
	return NewTrack(local, closeFn)
}

func TestStreamKindSelectors(t *testing.T) {
	audio := audioTrack(t)
	video := videoTrack(t, nil)
	s := NewStream(audio, video)

	assert.Same(t, audio, s.Audio())
	assert.Same(t, video, s.Video())
	assert.Len(t, s.Tracks(), 2)
}

func TestStreamAudioOnlyHasNoVideo(t *testing.T) {
	s := NewStream(audioTrack(t))
	assert.Nil(t, s.Video())
	require.NotNil(t, s.Audio())
	assert.Equal(t, webrtc.RTPCodecTypeAudio, s.Audio().Kind())
}

func TestTrackEnabledFlag(t *testing.T) {
	tr := audioTrack(t)
	assert.True(t, tr.Enabled(), "tracks start enabled")
	tr.SetEnabled(false)
	assert.False(t, tr.Enabled())
	tr.SetEnabled(true)
	assert.True(t, tr.Enabled())
}

func TestStopClosesEveryTrackOnce(t *testing.T) {
	closed := 0
	tr := videoTrack(t, func() error {
		closed++
		return nil
	})
	s := NewStream(audioTrack(t), tr)

	s.Stop()
	s.Stop()
	assert.Equal(t, 1, closed, "close functions run exactly once")
}

func TestAddTrackUpgradesStream(t *testing.T) {
	s := NewStream(audioTrack(t))
	require.Nil(t, s.Video())

	s.AddTrack(videoTrack(t, nil))
	assert.NotNil(t, s.Video())
	assert.Len(t, s.Tracks(), 2)
}
