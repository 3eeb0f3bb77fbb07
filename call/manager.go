package call

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/RaeezAli/Chat-App/ice"
	"github.com/RaeezAli/Chat-App/media"
	"github.com/RaeezAli/Chat-App/roster"
	"github.com/RaeezAli/Chat-App/rtc"
	"github.com/RaeezAli/Chat-App/signaling"
)

// ICEProvider supplies ICE server configuration for a session. Implemented by
// ice.Provider.
type ICEProvider interface {
	Servers(ctx context.Context) []ice.Server
	Invalidate()
}

// Announcer posts system messages to the group's chat. Announcements are
// fire-and-forget; a failed announcement never fails the call operation.
type Announcer interface {
	Announce(ctx context.Context, groupID, text string) error
}

// peers is the slice of rtc.Registry the manager drives. Narrowed to an
// interface so session logic can be tested without real peer connections.
type peers interface {
	SetLocalStream(stream *media.Stream)
	Create(remoteUserID string, initiator bool) (*rtc.Conn, error)
	HandleOffer(from string, sdp webrtc.SessionDescription) error
	HandleAnswer(from string, sdp webrtc.SessionDescription) error
	HandleCandidate(from string, cand webrtc.ICECandidateInit) error
	AddLocalTrack(track *media.Track) error
	SetTrackEnabled(track *media.Track, enabled bool) error
	AnyConnected() bool
	Has(remoteUserID string) bool
	State(remoteUserID string) (webrtc.PeerConnectionState, error)
	Initiator(remoteUserID string) (bool, error)
	Peers() []string
	Close(remoteUserID string)
	CloseAll()
}

// Config assembles a Manager. Self, Capture, Roster and Channel are required.
type Config struct {
	// Self identifies the local participant.
	Self roster.Participant
	// Capture acquires local media.
	Capture media.Capture
	// Roster is the shared call membership store.
	Roster roster.Store
	// Channel carries signaling envelopes between participants.
	Channel signaling.Channel
	// ICE supplies server configuration. Nil falls back to the public STUN
	// defaults.
	ICE ICEProvider
	// Announcer posts join/leave system messages. Optional.
	Announcer Announcer
	// API overrides the webrtc API used for peer connections. Required when
	// local capture needs its codecs registered on the connection side.
	API *webrtc.API

	// newPeers is a test seam; nil selects the real registry.
	newPeers func(cfg rtc.Config) (peers, error)
}

// session is the per-call state, created by StartCall and destroyed by
// teardown. Exclusively owned by the Manager.
type session struct {
	gen     uint64
	groupID string
	mode    Mode

	state        State
	muted        bool
	videoEnabled bool
	speakerOn    bool
	minimized    bool
	startedAt    time.Time

	doc         *roster.CallDoc
	knownAtJoin map[string]struct{}

	stream   *media.Stream
	registry peers

	unsubSignal func()
	unsubWatch  func()
}

// Manager drives at most one call session at a time.
type Manager struct {
	cfg Config

	mu   sync.Mutex
	gen  uint64
	sess *session

	onState  func(SessionInfo)
	onTrack  func(remoteUserID string, track *webrtc.TrackRemote)
	onNotify func(message string, severity Severity)
}

// NewManager validates the configuration and returns an idle Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Self.UserID == "" {
		return nil, fmt.Errorf("call manager requires a local participant identity")
	}
	if cfg.Capture == nil {
		return nil, fmt.Errorf("call manager requires a media capture implementation")
	}
	if cfg.Roster == nil {
		return nil, fmt.Errorf("call manager requires a membership store")
	}
	if cfg.Channel == nil {
		return nil, fmt.Errorf("call manager requires a signaling channel")
	}
	if cfg.ICE == nil {
		cfg.ICE = staticICE{}
	}
	if cfg.newPeers == nil {
		cfg.newPeers = func(rc rtc.Config) (peers, error) { return rtc.NewRegistry(rc) }
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewManager",
		"user_id":  cfg.Self.UserID,
	}).Debug("Creating call manager")
	return &Manager{cfg: cfg}, nil
}

// staticICE serves the public STUN defaults when no provider is configured.
type staticICE struct{}

func (staticICE) Servers(context.Context) []ice.Server { return ice.DefaultServers() }
func (staticICE) Invalidate()                          {}

// OnStateChange registers the callback invoked with a session snapshot after
// every observable change. Register before StartCall.
func (m *Manager) OnStateChange(cb func(SessionInfo)) {
	m.mu.Lock()
	m.onState = cb
	m.mu.Unlock()
}

// OnRemoteTrack registers the callback invoked for every inbound media track.
func (m *Manager) OnRemoteTrack(cb func(remoteUserID string, track *webrtc.TrackRemote)) {
	m.mu.Lock()
	m.onTrack = cb
	m.mu.Unlock()
}

// OnNotify registers the callback for user-facing notifications.
func (m *Manager) OnNotify(cb func(message string, severity Severity)) {
	m.mu.Lock()
	m.onNotify = cb
	m.mu.Unlock()
}

// Info returns a snapshot of the current session. The zero SessionInfo with
// StateIdle is returned when no session exists.
func (m *Manager) Info() SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() SessionInfo {
	s := m.sess
	if s == nil {
		return SessionInfo{State: StateIdle}
	}
	info := SessionInfo{
		GroupID:      s.groupID,
		State:        s.state,
		Mode:         s.mode,
		Muted:        s.muted,
		VideoEnabled: s.videoEnabled,
		SpeakerOn:    s.speakerOn,
		Minimized:    s.minimized,
		StartedAt:    s.startedAt,
	}
	if s.doc != nil {
		info.Participants = append(info.Participants, s.doc.Participants...)
	}
	info.Connecting = m.connectingLocked(s)
	return info
}

// connectingLocked reports whether the session is waiting for its first
// established connection. Alone in the call means there is nothing to connect
// to, so Connecting stays false.
func (m *Manager) connectingLocked(s *session) bool {
	if s.state != StateActive || s.doc == nil || s.registry == nil {
		return false
	}
	if len(s.doc.Others(m.cfg.Self.UserID)) == 0 {
		return false
	}
	return !s.registry.AnyConnected()
}

// emitState delivers a snapshot to the state callback. Never called with the
// manager lock held.
func (m *Manager) emitState() {
	m.mu.Lock()
	cb := m.onState
	info := m.snapshotLocked()
	m.mu.Unlock()
	if cb != nil {
		cb(info)
	}
}

func (m *Manager) notify(message string, severity Severity) {
	m.mu.Lock()
	cb := m.onNotify
	m.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"function": "notify",
		"severity": severity.String(),
		"message":  message,
	}).Info("Session notification")
	if cb != nil {
		cb(message, severity)
	}
}

// StartCall acquires local media, registers the local participant in the
// group's call document and brings up signaling. It is only valid while idle.
// Connections to participants already in the call are not initiated here;
// they offer to us once their membership watch reports our arrival.
func (m *Manager) StartCall(ctx context.Context, groupID string, mode Mode) error {
	if groupID == "" {
		return fmt.Errorf("start call: group id must not be empty")
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	m.mu.Lock()
	if m.sess != nil {
		m.mu.Unlock()
		return ErrCallAlreadyActive
	}
	m.gen++
	gen := m.gen
	s := &session{
		gen:          gen,
		groupID:      groupID,
		mode:         mode,
		state:        StateRequestingMedia,
		videoEnabled: mode == ModeVideo,
		speakerOn:    true,
		knownAtJoin:  make(map[string]struct{}),
	}
	m.sess = s
	m.mu.Unlock()
	m.emitState()

	logrus.WithFields(logrus.Fields{
		"function": "StartCall",
		"group_id": groupID,
		"mode":     string(mode),
	}).Info("Starting call session")

	stream, err := m.cfg.Capture.Request(ctx, media.Constraints{
		Audio: true,
		Video: mode == ModeVideo,
	})
	if err != nil {
		m.abandonStart(gen, nil)
		m.notify("Could not access microphone or camera", SeverityError)
		return fmt.Errorf("%w: %v", ErrMediaAccess, err)
	}

	if !m.stillWanted(gen) {
		stream.Stop()
		return ErrSessionSuperseded
	}

	m.mu.Lock()
	s.stream = stream
	s.state = StateJoining
	m.mu.Unlock()
	m.emitState()

	// Fresh TURN credentials per session; stale cached ones may be expired.
	m.cfg.ICE.Invalidate()
	servers := m.cfg.ICE.Servers(ctx)

	if err := m.cfg.Channel.Purge(ctx, groupID); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "StartCall",
			"group_id": groupID,
			"error":    err.Error(),
		}).Warn("Failed to purge stale signaling")
	}

	prior, err := m.cfg.Roster.Join(ctx, groupID, m.selfParticipant(mode))
	if err != nil {
		m.abandonStart(gen, stream)
		m.notify("Could not join the call", SeverityError)
		return fmt.Errorf("join call membership for group %s: %w", groupID, err)
	}
	started := prior == nil || !prior.Active

	registry, err := m.cfg.newPeers(rtc.Config{
		ICEServers: ice.WebRTC(servers),
		Signaler:   &sessionSignaler{m: m, gen: gen, groupID: groupID},
		Events: rtc.Events{
			RemoteTrack: func(remote string, track *webrtc.TrackRemote) {
				m.handleRemoteTrack(gen, remote, track)
			},
			StateChange: func(remote string, state webrtc.PeerConnectionState) {
				m.handlePeerState(gen, remote, state)
			},
		},
		API: m.cfg.API,
	})
	if err != nil {
		m.abandonStart(gen, stream)
		_ = m.cfg.Roster.Leave(ctx, groupID, m.cfg.Self.UserID)
		return fmt.Errorf("create peer registry for group %s: %w", groupID, err)
	}
	registry.SetLocalStream(stream)

	// The registry must be visible to the signaling handler before the
	// subscription starts: an existing member can publish its offer the
	// moment our join is visible, and the subscription may replay it
	// synchronously. A handler that finds no registry would drop it.
	m.mu.Lock()
	if m.sess != s || s.gen != m.gen {
		m.mu.Unlock()
		registry.CloseAll()
		stream.Stop()
		_ = m.cfg.Roster.Leave(ctx, groupID, m.cfg.Self.UserID)
		return ErrSessionSuperseded
	}
	s.registry = registry
	m.mu.Unlock()

	unsubSignal, err := m.cfg.Channel.Subscribe(ctx, groupID, m.cfg.Self.UserID,
		func(env *signaling.Envelope) {
			m.handleSignal(gen, env)
		})
	if err != nil {
		registry.CloseAll()
		m.abandonStart(gen, stream)
		_ = m.cfg.Roster.Leave(ctx, groupID, m.cfg.Self.UserID)
		return fmt.Errorf("subscribe to signaling for group %s: %w", groupID, err)
	}

	unsubWatch, err := m.cfg.Roster.Watch(ctx, groupID, func(doc *roster.CallDoc) {
		m.reconcile(gen, doc)
	})
	if err != nil {
		unsubSignal()
		registry.CloseAll()
		m.abandonStart(gen, stream)
		_ = m.cfg.Roster.Leave(ctx, groupID, m.cfg.Self.UserID)
		return fmt.Errorf("watch call membership for group %s: %w", groupID, err)
	}

	m.mu.Lock()
	if m.sess != s || s.gen != m.gen {
		m.mu.Unlock()
		unsubWatch()
		unsubSignal()
		registry.CloseAll()
		stream.Stop()
		// The membership entry was written after the concurrent teardown's
		// Leave ran; remove it or the group shows a ghost participant.
		_ = m.cfg.Roster.Leave(ctx, groupID, m.cfg.Self.UserID)
		return ErrSessionSuperseded
	}
	if prior != nil {
		for _, p := range prior.Participants {
			if p.UserID != m.cfg.Self.UserID {
				s.knownAtJoin[p.UserID] = struct{}{}
			}
		}
	}
	s.unsubSignal = unsubSignal
	s.unsubWatch = unsubWatch
	s.startedAt = time.Now()
	s.state = StateActive
	known := len(s.knownAtJoin)
	m.mu.Unlock()

	// Watch events delivered before the session went active were dropped by
	// the state guard; seed from the store's current view.
	if doc, err := m.cfg.Roster.Current(ctx, groupID); err == nil {
		m.reconcile(gen, doc)
	}

	m.announce(ctx, groupID, m.joinText(started, mode))
	m.emitState()

	logrus.WithFields(logrus.Fields{
		"function":      "StartCall",
		"group_id":      groupID,
		"started":       started,
		"known_at_join": known,
	}).Info("Call session active")
	return nil
}

func (m *Manager) selfParticipant(mode Mode) roster.Participant {
	p := m.cfg.Self
	p.VideoEnabled = mode == ModeVideo
	return p
}

func (m *Manager) joinText(started bool, mode Mode) string {
	name := m.cfg.Self.DisplayName
	if name == "" {
		name = m.cfg.Self.UserID
	}
	if started {
		return fmt.Sprintf("%s started a %s call", name, mode)
	}
	return fmt.Sprintf("%s joined a %s call", name, mode)
}

// abandonStart rolls the manager back to idle after a failed or superseded
// join attempt, releasing whatever the attempt acquired.
func (m *Manager) abandonStart(gen uint64, stream *media.Stream) {
	m.mu.Lock()
	if m.sess != nil && m.sess.gen == gen {
		m.sess = nil
	}
	m.mu.Unlock()
	if stream != nil {
		stream.Stop()
	}
	m.emitState()
}

func (m *Manager) stillWanted(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess != nil && m.sess.gen == gen && m.gen == gen
}

// EndCall tears the session down: watchers first, then connections, then
// local tracks, then the membership record. Valid from any non-idle state;
// a join still in flight is abandoned by the generation bump.
func (m *Manager) EndCall(ctx context.Context) error {
	m.mu.Lock()
	s := m.sess
	if s == nil {
		m.mu.Unlock()
		return ErrNoActiveCall
	}
	m.gen++
	wasActive := s.state == StateActive
	s.state = StateLeaving
	m.mu.Unlock()
	m.emitState()

	m.teardown(ctx, s, true)
	if wasActive {
		// A session abandoned before going active never announced a join;
		// a leave message would dangle in the chat history.
		m.announce(ctx, s.groupID, fmt.Sprintf("%s left the call", m.displayName()))
	}

	logrus.WithFields(logrus.Fields{
		"function": "EndCall",
		"group_id": s.groupID,
	}).Info("Call session ended")
	return nil
}

func (m *Manager) displayName() string {
	if m.cfg.Self.DisplayName != "" {
		return m.cfg.Self.DisplayName
	}
	return m.cfg.Self.UserID
}

// teardown releases session resources in a fixed order. leaveRoster is false
// for remote-triggered teardown, where the document is already inactive and
// writing to it would reactivate churn.
func (m *Manager) teardown(ctx context.Context, s *session, leaveRoster bool) {
	if s.unsubWatch != nil {
		s.unsubWatch()
	}
	if s.unsubSignal != nil {
		s.unsubSignal()
	}
	if s.registry != nil {
		s.registry.CloseAll()
	}
	if s.stream != nil {
		s.stream.Stop()
	}
	if leaveRoster {
		if err := m.cfg.Roster.Leave(ctx, s.groupID, m.cfg.Self.UserID); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "teardown",
				"group_id": s.groupID,
				"error":    err.Error(),
			}).Warn("Failed to remove call membership")
		}
	}

	m.mu.Lock()
	if m.sess == s {
		m.sess = nil
	}
	m.mu.Unlock()
	m.emitState()
}

// reconcile applies a membership document update to the session: tear down on
// deactivation, open initiator connections to new arrivals, close connections
// to departed participants and retry failed connections this side initiated.
func (m *Manager) reconcile(gen uint64, doc *roster.CallDoc) {
	m.mu.Lock()
	s := m.sess
	if s == nil || s.gen != gen || m.gen != gen || s.state != StateActive {
		m.mu.Unlock()
		return
	}

	if doc == nil || !doc.Active {
		m.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function": "reconcile",
			"group_id": s.groupID,
		}).Info("Call ended remotely")
		m.teardown(context.Background(), s, false)
		return
	}

	s.doc = doc
	self := m.cfg.Self.UserID
	others := doc.Others(self)
	present := make(map[string]struct{}, len(others))
	for _, p := range others {
		present[p.UserID] = struct{}{}
	}

	var toClose, toCreate, toRecreate []string
	for _, id := range s.registry.Peers() {
		if _, ok := present[id]; !ok {
			toClose = append(toClose, id)
		}
	}
	for _, p := range others {
		id := p.UserID
		if _, known := s.knownAtJoin[id]; known {
			// They were here before we joined; their side offers to us.
			continue
		}
		if !s.registry.Has(id) {
			toCreate = append(toCreate, id)
			continue
		}
		if state, err := s.registry.State(id); err == nil &&
			(state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed) {
			if init, err := s.registry.Initiator(id); err == nil && init {
				toRecreate = append(toRecreate, id)
			}
		}
	}
	// Forget departures so a rejoin counts as a new arrival.
	for id := range s.knownAtJoin {
		if _, ok := present[id]; !ok {
			delete(s.knownAtJoin, id)
		}
	}
	registry := s.registry
	m.mu.Unlock()

	for _, id := range toClose {
		registry.Close(id)
	}
	for _, id := range toRecreate {
		registry.Close(id)
	}
	for _, id := range append(toCreate, toRecreate...) {
		if _, err := registry.Create(id, true); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":       "reconcile",
				"remote_user_id": id,
				"error":          err.Error(),
			}).Error("Failed to create peer connection")
		}
	}
	m.emitState()
}

// handleSignal routes one signaling envelope into the registry.
func (m *Manager) handleSignal(gen uint64, env *signaling.Envelope) {
	m.mu.Lock()
	s := m.sess
	if s == nil || s.gen != gen || m.gen != gen || s.registry == nil {
		m.mu.Unlock()
		return
	}
	registry := s.registry
	m.mu.Unlock()

	var err error
	switch env.Type {
	case signaling.TypeOffer:
		var sdp webrtc.SessionDescription
		if err = env.Decode(&sdp); err == nil {
			err = registry.HandleOffer(env.From, sdp)
		}
	case signaling.TypeAnswer:
		var sdp webrtc.SessionDescription
		if err = env.Decode(&sdp); err == nil {
			err = registry.HandleAnswer(env.From, sdp)
		}
	case signaling.TypeCandidate:
		var cand webrtc.ICECandidateInit
		if err = env.Decode(&cand); err == nil {
			err = registry.HandleCandidate(env.From, cand)
		}
	default:
		logrus.WithFields(logrus.Fields{
			"function": "handleSignal",
			"type":     string(env.Type),
			"from":     env.From,
		}).Warn("Unknown signaling type ignored")
		return
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "handleSignal",
			"type":     string(env.Type),
			"from":     env.From,
			"error":    err.Error(),
		}).Error("Failed to process signaling envelope")
	}
}

func (m *Manager) handleRemoteTrack(gen uint64, remote string, track *webrtc.TrackRemote) {
	m.mu.Lock()
	stale := m.sess == nil || m.sess.gen != gen || m.gen != gen
	cb := m.onTrack
	m.mu.Unlock()
	if stale || cb == nil {
		return
	}
	cb(remote, track)
}

func (m *Manager) handlePeerState(gen uint64, remote string, state webrtc.PeerConnectionState) {
	if !m.stillWanted(gen) {
		return
	}
	logrus.WithFields(logrus.Fields{
		"function":       "handlePeerState",
		"remote_user_id": remote,
		"state":          state.String(),
	}).Debug("Peer state change")
	m.emitState()
}

// ToggleMute flips the audio track's enablement. Purely local; no signaling
// is exchanged, the remote side simply receives silence.
func (m *Manager) ToggleMute() error {
	m.mu.Lock()
	s := m.sess
	if s == nil || s.state != StateActive {
		m.mu.Unlock()
		return ErrNoActiveCall
	}
	s.muted = !s.muted
	muted := s.muted
	track := s.stream.Audio()
	registry := s.registry
	m.mu.Unlock()

	if track != nil {
		track.SetEnabled(!muted)
		if err := registry.SetTrackEnabled(track, !muted); err != nil {
			return fmt.Errorf("toggle mute: %w", err)
		}
	}
	m.emitState()
	return nil
}

// ToggleSpeaker flips the local audio output flag. Output routing is the
// embedding application's job; the session only tracks the preference.
func (m *Manager) ToggleSpeaker() error {
	m.mu.Lock()
	s := m.sess
	if s == nil || s.state != StateActive {
		m.mu.Unlock()
		return ErrNoActiveCall
	}
	s.speakerOn = !s.speakerOn
	m.mu.Unlock()
	m.emitState()
	return nil
}

// ToggleMinimize flips the minimized flag. Orthogonal to the session state.
func (m *Manager) ToggleMinimize() error {
	m.mu.Lock()
	s := m.sess
	if s == nil {
		m.mu.Unlock()
		return ErrNoActiveCall
	}
	s.minimized = !s.minimized
	m.mu.Unlock()
	m.emitState()
	return nil
}

// ToggleVideo flips video enablement. When the session has no video track yet
// (voice call upgrading), one is acquired and attached to every connection,
// which triggers renegotiation on initiator connections. The new setting is
// mirrored into the membership document so other participants can render the
// camera state.
func (m *Manager) ToggleVideo(ctx context.Context) error {
	m.mu.Lock()
	s := m.sess
	if s == nil || s.state != StateActive {
		m.mu.Unlock()
		return ErrNoActiveCall
	}
	groupID := s.groupID
	registry := s.registry
	stream := s.stream
	track := stream.Video()

	if track == nil {
		m.mu.Unlock()
		fresh, err := m.cfg.Capture.Request(ctx, media.Constraints{Video: true})
		if err != nil {
			m.notify("Could not access camera", SeverityError)
			return fmt.Errorf("%w: %v", ErrMediaAccess, err)
		}
		video := fresh.Video()
		if video == nil {
			fresh.Stop()
			return fmt.Errorf("%w: capture returned no video track", ErrMediaAccess)
		}
		m.mu.Lock()
		if m.sess != s || s.state != StateActive {
			m.mu.Unlock()
			fresh.Stop()
			return ErrSessionSuperseded
		}
		stream.AddTrack(video)
		s.videoEnabled = true
		m.mu.Unlock()

		if err := registry.AddLocalTrack(video); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "ToggleVideo",
				"group_id": groupID,
				"error":    err.Error(),
			}).Error("Failed to attach video track")
		}
		m.mirrorVideoState(ctx, groupID, true)
		m.emitState()
		return nil
	}

	s.videoEnabled = !s.videoEnabled
	enabled := s.videoEnabled
	m.mu.Unlock()

	track.SetEnabled(enabled)
	if err := registry.SetTrackEnabled(track, enabled); err != nil {
		return fmt.Errorf("toggle video: %w", err)
	}
	m.mirrorVideoState(ctx, groupID, enabled)
	m.emitState()
	return nil
}

func (m *Manager) mirrorVideoState(ctx context.Context, groupID string, enabled bool) {
	if err := m.cfg.Roster.SetVideoEnabled(ctx, groupID, m.cfg.Self.UserID, enabled); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "mirrorVideoState",
			"group_id": groupID,
			"enabled":  enabled,
			"error":    err.Error(),
		}).Warn("Failed to mirror video state")
	}
}

func (m *Manager) announce(ctx context.Context, groupID, text string) {
	if m.cfg.Announcer == nil {
		return
	}
	if err := m.cfg.Announcer.Announce(ctx, groupID, text); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "announce",
			"group_id": groupID,
			"error":    err.Error(),
		}).Warn("Failed to post call announcement")
	}
}

// sessionSignaler publishes negotiation material for one session through the
// shared signaling channel.
type sessionSignaler struct {
	m       *Manager
	gen     uint64
	groupID string
}

func (ss *sessionSignaler) publish(t signaling.Type, to string, payload any) error {
	if !ss.m.stillWanted(ss.gen) {
		return signaling.ErrChannelClosed
	}
	env, err := signaling.NewEnvelope(t, ss.m.cfg.Self.UserID, to, payload)
	if err != nil {
		return err
	}
	return ss.m.cfg.Channel.Publish(context.Background(), ss.groupID, env)
}

func (ss *sessionSignaler) SendOffer(to string, sdp webrtc.SessionDescription) error {
	return ss.publish(signaling.TypeOffer, to, sdp)
}

func (ss *sessionSignaler) SendAnswer(to string, sdp webrtc.SessionDescription) error {
	return ss.publish(signaling.TypeAnswer, to, sdp)
}

func (ss *sessionSignaler) SendCandidate(to string, cand webrtc.ICECandidateInit) error {
	return ss.publish(signaling.TypeCandidate, to, cand)
}
