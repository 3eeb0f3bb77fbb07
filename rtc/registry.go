package rtc

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/RaeezAli/Chat-App/media"
)

// Signaler delivers negotiation material to a specific remote participant.
// Delivery need only be eventual and per-sender ordered; the Registry buffers
// whatever arrives out of phase.
type Signaler interface {
	SendOffer(to string, sdp webrtc.SessionDescription) error
	SendAnswer(to string, sdp webrtc.SessionDescription) error
	SendCandidate(to string, cand webrtc.ICECandidateInit) error
}

// Events carries the Registry's upward callbacks. Fields may be nil; nil
// callbacks are skipped. Callbacks fire on pion's internal goroutines and
// must not call back into the Registry synchronously.
type Events struct {
	// RemoteTrack fires once per inbound media track.
	RemoteTrack func(remoteUserID string, track *webrtc.TrackRemote)
	// StateChange fires on every transport state transition.
	StateChange func(remoteUserID string, state webrtc.PeerConnectionState)
}

// Config assembles a Registry.
type Config struct {
	// ICEServers seeds every peer connection built by the registry.
	ICEServers []webrtc.ICEServer
	// Signaler is required.
	Signaler Signaler
	// Events is optional.
	Events Events
	// API overrides the webrtc API used to build connections. Nil selects
	// the package default, which is appropriate outside capture pipelines.
	API *webrtc.API
}

// Registry owns every peer connection of the current call session, keyed by
// remote user ID. One registry lives exactly as long as one session.
type Registry struct {
	signaler Signaler
	events   Events
	api      *webrtc.API
	ice      []webrtc.ICEServer

	mu     sync.Mutex
	conns  map[string]*Conn
	stream *media.Stream
	closed bool
}

// NewRegistry creates an empty Registry.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Signaler == nil {
		return nil, ErrSignalerRequired
	}
	api := cfg.API
	if api == nil {
		m := &webrtc.MediaEngine{}
		if err := m.RegisterDefaultCodecs(); err != nil {
			return nil, fmt.Errorf("register codecs: %w", err)
		}
		api = webrtc.NewAPI(webrtc.WithMediaEngine(m))
	}
	logrus.WithFields(logrus.Fields{
		"function":    "NewRegistry",
		"ice_servers": len(cfg.ICEServers),
	}).Debug("Creating peer connection registry")
	return &Registry{
		signaler: cfg.Signaler,
		events:   cfg.Events,
		api:      api,
		ice:      cfg.ICEServers,
		conns:    make(map[string]*Conn),
	}, nil
}

// SetLocalStream records the stream whose tracks are attached to every
// connection created from now on. Existing connections are unaffected; use
// Create before or after as the session requires.
func (r *Registry) SetLocalStream(stream *media.Stream) {
	r.mu.Lock()
	r.stream = stream
	r.mu.Unlock()
}

// Create ensures a connection to remoteUserID exists and returns it. The
// initiator flag only matters on first creation; an existing connection keeps
// the role it was born with. When initiator is true the registry produces and
// sends an offer as soon as negotiation is needed.
func (r *Registry) Create(remoteUserID string, initiator bool) (*Conn, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if existing, ok := r.conns[remoteUserID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	stream := r.stream
	r.mu.Unlock()

	pc, err := r.api.NewPeerConnection(webrtc.Configuration{ICEServers: r.ice})
	if err != nil {
		return nil, fmt.Errorf("new peer connection for %s: %w", remoteUserID, err)
	}

	conn := &Conn{
		remoteUserID: remoteUserID,
		initiator:    initiator,
		pc:           pc,
		senders:      make(map[webrtc.RTPCodecType]*webrtc.RTPSender),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.close()
		return nil, ErrRegistryClosed
	}
	if raced, ok := r.conns[remoteUserID]; ok {
		r.mu.Unlock()
		conn.close()
		return raced, nil
	}
	r.conns[remoteUserID] = conn
	r.mu.Unlock()

	r.wireHooks(conn)

	if err := conn.attachLocal(stream); err != nil {
		r.Close(remoteUserID)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Create",
		"remote_user_id": remoteUserID,
		"initiator":      initiator,
	}).Info("Created peer connection")
	return conn, nil
}

func (r *Registry) wireHooks(conn *Conn) {
	remote := conn.remoteUserID

	conn.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			return
		}
		if err := r.signaler.SendCandidate(remote, cand.ToJSON()); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":       "OnICECandidate",
				"remote_user_id": remote,
				"error":          err.Error(),
			}).Warn("Failed to send candidate")
		}
	})

	conn.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		conn.mu.Lock()
		conn.remoteTracks = append(conn.remoteTracks, track)
		conn.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function":       "OnTrack",
			"remote_user_id": remote,
			"kind":           track.Kind().String(),
		}).Info("Received remote track")
		if r.events.RemoteTrack != nil {
			r.events.RemoteTrack(remote, track)
		}
	})

	conn.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logrus.WithFields(logrus.Fields{
			"function":       "OnConnectionStateChange",
			"remote_user_id": remote,
			"state":          state.String(),
		}).Info("Peer connection state changed")
		if r.events.StateChange != nil {
			r.events.StateChange(remote, state)
		}
	})

	if conn.initiator {
		conn.pc.OnNegotiationNeeded(func() {
			if err := r.negotiate(conn); err != nil {
				logrus.WithFields(logrus.Fields{
					"function":       "OnNegotiationNeeded",
					"remote_user_id": remote,
					"error":          err.Error(),
				}).Error("Negotiation failed")
			}
		})
	}
}

// negotiate produces a local offer and hands it to the signaler.
func (r *Registry) negotiate(conn *Conn) error {
	offer, err := conn.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer for %s: %w", conn.remoteUserID, err)
	}
	if err := conn.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local offer for %s: %w", conn.remoteUserID, err)
	}
	if err := r.signaler.SendOffer(conn.remoteUserID, offer); err != nil {
		return fmt.Errorf("send offer to %s: %w", conn.remoteUserID, err)
	}
	logrus.WithFields(logrus.Fields{
		"function":       "negotiate",
		"remote_user_id": conn.remoteUserID,
	}).Debug("Sent offer")
	return nil
}

// HandleOffer answers an inbound offer, creating the responder connection if
// it does not exist yet.
func (r *Registry) HandleOffer(from string, sdp webrtc.SessionDescription) error {
	conn, err := r.Create(from, false)
	if err != nil {
		return err
	}
	if err := conn.applyRemoteDescription(sdp); err != nil {
		return err
	}
	answer, err := conn.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer for %s: %w", from, err)
	}
	if err := conn.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("set local answer for %s: %w", from, err)
	}
	if err := r.signaler.SendAnswer(from, answer); err != nil {
		return fmt.Errorf("send answer to %s: %w", from, err)
	}
	logrus.WithFields(logrus.Fields{
		"function":       "HandleOffer",
		"remote_user_id": from,
	}).Info("Answered offer")
	return nil
}

// HandleAnswer applies an inbound answer. An answer for an unknown peer or a
// connection already in stable state is logged and dropped; stale signaling
// from a previous session must not disturb the current one.
func (r *Registry) HandleAnswer(from string, sdp webrtc.SessionDescription) error {
	conn := r.get(from)
	if conn == nil {
		logrus.WithFields(logrus.Fields{
			"function":       "HandleAnswer",
			"remote_user_id": from,
		}).Warn("Answer for unknown peer ignored")
		return nil
	}
	if conn.pc.SignalingState() == webrtc.SignalingStateStable {
		logrus.WithFields(logrus.Fields{
			"function":       "HandleAnswer",
			"remote_user_id": from,
		}).Debug("Duplicate answer ignored")
		return nil
	}
	return conn.applyRemoteDescription(sdp)
}

// HandleCandidate applies or buffers an inbound candidate. Candidates for
// unknown peers are dropped with a log line.
func (r *Registry) HandleCandidate(from string, cand webrtc.ICECandidateInit) error {
	conn := r.get(from)
	if conn == nil {
		logrus.WithFields(logrus.Fields{
			"function":       "HandleCandidate",
			"remote_user_id": from,
		}).Debug("Candidate for unknown peer ignored")
		return nil
	}
	return conn.addCandidate(cand)
}

// AddLocalTrack attaches a new local track to every existing connection.
// Initiator connections renegotiate automatically through their
// OnNegotiationNeeded hook; responder connections pick the track up on the
// next inbound offer.
func (r *Registry) AddLocalTrack(track *media.Track) error {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.addLocal(track); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetTrackEnabled mutes or unmutes the given track across all connections by
// swapping the sender payload. The remote side keeps its transceiver and
// simply stops receiving media while disabled.
func (r *Registry) SetTrackEnabled(track *media.Track, enabled bool) error {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.setTrackEnabled(track, enabled); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Has reports whether a connection to remoteUserID exists.
func (r *Registry) Has(remoteUserID string) bool {
	return r.get(remoteUserID) != nil
}

// State returns the transport state of the connection to remoteUserID.
func (r *Registry) State(remoteUserID string) (webrtc.PeerConnectionState, error) {
	conn := r.get(remoteUserID)
	if conn == nil {
		return webrtc.PeerConnectionStateUnknown, ErrUnknownPeer
	}
	return conn.State(), nil
}

// Initiator reports whether the local side initiated toward remoteUserID.
func (r *Registry) Initiator(remoteUserID string) (bool, error) {
	conn := r.get(remoteUserID)
	if conn == nil {
		return false, ErrUnknownPeer
	}
	return conn.Initiator(), nil
}

// AnyConnected reports whether at least one connection reached the connected
// state.
func (r *Registry) AnyConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.State() == webrtc.PeerConnectionStateConnected {
			return true
		}
	}
	return false
}

// Peers lists the remote user IDs with a live connection.
func (r *Registry) Peers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	peers := make([]string, 0, len(r.conns))
	for id := range r.conns {
		peers = append(peers, id)
	}
	return peers
}

// Close tears down the connection to remoteUserID. Closing an unknown peer is
// a no-op.
func (r *Registry) Close(remoteUserID string) {
	r.mu.Lock()
	conn, ok := r.conns[remoteUserID]
	if ok {
		delete(r.conns, remoteUserID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	conn.close()
	logrus.WithFields(logrus.Fields{
		"function":       "Close",
		"remote_user_id": remoteUserID,
	}).Info("Closed peer connection")
}

// CloseAll tears down every connection and marks the registry closed. A
// closed registry rejects further Create calls; one registry serves exactly
// one call session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Conn)
	r.closed = true
	r.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
	if len(conns) > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "CloseAll",
			"count":    len(conns),
		}).Info("Closed all peer connections")
	}
}

func (r *Registry) get(remoteUserID string) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns[remoteUserID]
}
