package rtc

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/RaeezAli/Chat-App/media"
)

// Conn is one bidirectional media connection to a remote participant. It is
// exclusively owned by the Registry and never crosses process boundaries;
// only signaling payloads do.
type Conn struct {
	remoteUserID string
	initiator    bool
	pc           *webrtc.PeerConnection

	mu           sync.Mutex
	remoteSet    bool
	pending      []webrtc.ICECandidateInit
	remoteTracks []*webrtc.TrackRemote
	senders      map[webrtc.RTPCodecType]*webrtc.RTPSender
}

// RemoteUserID returns the identity of the peer this connection reaches.
func (c *Conn) RemoteUserID() string { return c.remoteUserID }

// Initiator reports whether the local side created the offer for this
// connection. Fixed at creation.
func (c *Conn) Initiator() bool { return c.initiator }

// State returns the current transport state of the connection.
func (c *Conn) State() webrtc.PeerConnectionState {
	return c.pc.ConnectionState()
}

// RemoteTracks returns the remote tracks received so far.
func (c *Conn) RemoteTracks() []*webrtc.TrackRemote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*webrtc.TrackRemote(nil), c.remoteTracks...)
}

// attachLocal adds every track of the stream to the connection, remembering
// the sender per media kind for later mute/unmute swaps.
func (c *Conn) attachLocal(stream *media.Stream) error {
	if stream == nil {
		return nil
	}
	for _, track := range stream.Tracks() {
		if err := c.addLocal(track); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) addLocal(track *media.Track) error {
	sender, err := c.pc.AddTrack(track.Local())
	if err != nil {
		return fmt.Errorf("add %s track for %s: %w", track.Kind(), c.remoteUserID, err)
	}
	c.mu.Lock()
	c.senders[track.Kind()] = sender
	c.mu.Unlock()

	if !track.Enabled() {
		// Track was toggled off before this connection existed; detach so the
		// remote side starts out silent.
		if err := sender.ReplaceTrack(nil); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":       "addLocal",
				"remote_user_id": c.remoteUserID,
				"kind":           track.Kind().String(),
				"error":          err.Error(),
			}).Warn("Failed to detach disabled track")
		}
	}
	return nil
}

// setTrackEnabled swaps the sender's track in or out. A nil sender for the
// kind means the track was never attached (audio-only call, video toggle
// before upgrade), which is a no-op here.
func (c *Conn) setTrackEnabled(track *media.Track, enabled bool) error {
	c.mu.Lock()
	sender := c.senders[track.Kind()]
	c.mu.Unlock()
	if sender == nil {
		return nil
	}
	if enabled {
		return sender.ReplaceTrack(track.Local())
	}
	return sender.ReplaceTrack(nil)
}

// applyRemoteDescription sets the remote offer or answer and replays any
// candidates that arrived before it.
func (c *Conn) applyRemoteDescription(desc webrtc.SessionDescription) error {
	if err := c.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote %s from %s: %w", desc.Type, c.remoteUserID, err)
	}

	c.mu.Lock()
	c.remoteSet = true
	buffered := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, cand := range buffered {
		if err := c.pc.AddICECandidate(cand); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":       "applyRemoteDescription",
				"remote_user_id": c.remoteUserID,
				"error":          err.Error(),
			}).Warn("Failed to apply buffered candidate")
		}
	}
	if len(buffered) > 0 {
		logrus.WithFields(logrus.Fields{
			"function":       "applyRemoteDescription",
			"remote_user_id": c.remoteUserID,
			"replayed":       len(buffered),
		}).Debug("Replayed buffered candidates")
	}
	return nil
}

// addCandidate applies a remote candidate, buffering it when the remote
// description has not been set yet. Candidates may legitimately arrive before
// the offer/answer exchange completes; they must not be dropped.
func (c *Conn) addCandidate(cand webrtc.ICECandidateInit) error {
	c.mu.Lock()
	if !c.remoteSet {
		c.pending = append(c.pending, cand)
		n := len(c.pending)
		c.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function":       "addCandidate",
			"remote_user_id": c.remoteUserID,
			"buffered":       n,
		}).Debug("Buffered early candidate")
		return nil
	}
	c.mu.Unlock()
	return c.pc.AddICECandidate(cand)
}

// close releases the connection's resources.
func (c *Conn) close() {
	if err := c.pc.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":       "close",
			"remote_user_id": c.remoteUserID,
			"error":          err.Error(),
		}).Warn("Error closing peer connection")
	}
	c.mu.Lock()
	c.remoteTracks = nil
	c.pending = nil
	c.mu.Unlock()
}
