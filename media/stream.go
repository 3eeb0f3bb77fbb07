package media

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"
)

// Sentinel errors for media acquisition.
var (
	// ErrUnsupportedPlatform indicates device capture is not built for this OS.
	ErrUnsupportedPlatform = errors.New("device capture not supported on this platform")

	// ErrNoDevice indicates no usable capture device was found.
	ErrNoDevice = errors.New("no capture device available")
)

// Constraints selects which kinds of media to acquire.
type Constraints struct {
	Audio bool
	Video bool
}

// Capture acquires local media. Implementations must return every acquired
// track inside a single Stream so failure cleanup can release them together.
type Capture interface {
	Request(ctx context.Context, c Constraints) (*Stream, error)
}

// Track wraps a pion local track together with the enabled flag the session
// toggles flip. Disabling a track does not stop the device; the peer
// connection registry detaches it from senders so the remote side receives
// silence or a frozen frame.
type Track struct {
	local   webrtc.TrackLocal
	enabled atomic.Bool

	closeOnce sync.Once
	closeFn   func() error
}

// NewTrack wraps local with an optional close function releasing the
// underlying device resources. The track starts enabled.
func NewTrack(local webrtc.TrackLocal, closeFn func() error) *Track {
	t := &Track{local: local, closeFn: closeFn}
	t.enabled.Store(true)
	return t
}

// Local returns the wrapped pion track for attachment to a peer connection.
func (t *Track) Local() webrtc.TrackLocal { return t.local }

// Kind returns the track's media kind (audio or video).
func (t *Track) Kind() webrtc.RTPCodecType { return t.local.Kind() }

// Enabled reports whether the track is currently enabled.
func (t *Track) Enabled() bool { return t.enabled.Load() }

// SetEnabled flips the enablement flag.
func (t *Track) SetEnabled(enabled bool) { t.enabled.Store(enabled) }

// Close releases the underlying device resources. Idempotent.
func (t *Track) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.closeFn != nil {
			err = t.closeFn()
		}
	})
	return err
}

// Stream is the set of local tracks acquired for one call session.
type Stream struct {
	mu     sync.RWMutex
	tracks []*Track
}

// NewStream builds a stream from the given tracks.
func NewStream(tracks ...*Track) *Stream {
	return &Stream{tracks: tracks}
}

// AddTrack appends a later-acquired track (audio-only call upgrading to
// video).
func (s *Stream) AddTrack(t *Track) {
	s.mu.Lock()
	s.tracks = append(s.tracks, t)
	s.mu.Unlock()
}

// Tracks returns all tracks in the stream.
func (s *Stream) Tracks() []*Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Track(nil), s.tracks...)
}

// Audio returns the first audio track, or nil.
func (s *Stream) Audio() *Track { return s.first(webrtc.RTPCodecTypeAudio) }

// Video returns the first video track, or nil.
func (s *Stream) Video() *Track { return s.first(webrtc.RTPCodecTypeVideo) }

func (s *Stream) first(kind webrtc.RTPCodecType) *Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if t.Kind() == kind {
			return t
		}
	}
	return nil
}

// Stop closes every track in the stream. Safe to call repeatedly.
func (s *Stream) Stop() {
	for _, t := range s.Tracks() {
		if err := t.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Stop",
				"kind":     t.Kind().String(),
				"error":    err.Error(),
			}).Warn("Failed to close local track")
		}
	}
}
