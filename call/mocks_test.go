package call

import (
	"context"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/RaeezAli/Chat-App/media"
	"github.com/RaeezAli/Chat-App/rtc"
)

// fakeCapture hands out real pion sample tracks without touching devices and
// counts how often each track is closed.
type fakeCapture struct {
	mu       sync.Mutex
	err      error
	requests []media.Constraints
	closes   int
}

func (f *fakeCapture) Request(_ context.Context, c media.Constraints) (*media.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, c)

	stream := media.NewStream()
	closer := func() error {
		f.mu.Lock()
		f.closes++
		f.mu.Unlock()
		return nil
	}
	if c.Audio {
		local, err := webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "mic")
		if err != nil {
			return nil, err
		}
		stream.AddTrack(media.NewTrack(local, closer))
	}
	if c.Video {
		local, err := webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "camera")
		if err != nil {
			return nil, err
		}
		stream.AddTrack(media.NewTrack(local, closer))
	}
	return stream, nil
}

func (f *fakeCapture) closedTracks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *fakeCapture) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// blockingCapture parks Request until released, so tests can act while a
// join attempt is still acquiring devices.
type blockingCapture struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingCapture() *blockingCapture {
	return &blockingCapture{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingCapture) Request(context.Context, media.Constraints) (*media.Stream, error) {
	close(b.started)
	<-b.release
	return media.NewStream(), nil
}

// fakeAnnouncer records announcement texts.
type fakeAnnouncer struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeAnnouncer) Announce(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeAnnouncer) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type createCall struct {
	remote    string
	initiator bool
}

type enableCall struct {
	kind    webrtc.RTPCodecType
	enabled bool
}

// fakePeers is an in-memory stand-in for the peer connection registry.
type fakePeers struct {
	mu sync.Mutex

	rtcConfig rtc.Config
	stream    *media.Stream

	states     map[string]webrtc.PeerConnectionState
	initiators map[string]bool
	connected  bool

	created    []createCall
	closed     []string
	closedAll  bool
	offers     []string
	answers    []string
	candidates []string
	added      []*media.Track
	enables    []enableCall
	createErr  error
}

func newFakePeers() *fakePeers {
	return &fakePeers{
		states:     make(map[string]webrtc.PeerConnectionState),
		initiators: make(map[string]bool),
	}
}

func (f *fakePeers) SetLocalStream(stream *media.Stream) {
	f.mu.Lock()
	f.stream = stream
	f.mu.Unlock()
}

func (f *fakePeers) Create(remote string, initiator bool) (*rtc.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.states[remote]; !ok {
		f.states[remote] = webrtc.PeerConnectionStateNew
		f.initiators[remote] = initiator
	}
	f.created = append(f.created, createCall{remote: remote, initiator: initiator})
	return nil, nil
}

func (f *fakePeers) HandleOffer(from string, _ webrtc.SessionDescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.states[from]; !ok {
		f.states[from] = webrtc.PeerConnectionStateNew
		f.initiators[from] = false
	}
	f.offers = append(f.offers, from)
	return nil
}

func (f *fakePeers) HandleAnswer(from string, _ webrtc.SessionDescription) error {
	f.mu.Lock()
	f.answers = append(f.answers, from)
	f.mu.Unlock()
	return nil
}

func (f *fakePeers) HandleCandidate(from string, _ webrtc.ICECandidateInit) error {
	f.mu.Lock()
	f.candidates = append(f.candidates, from)
	f.mu.Unlock()
	return nil
}

func (f *fakePeers) AddLocalTrack(track *media.Track) error {
	f.mu.Lock()
	f.added = append(f.added, track)
	f.mu.Unlock()
	return nil
}

func (f *fakePeers) SetTrackEnabled(track *media.Track, enabled bool) error {
	f.mu.Lock()
	f.enables = append(f.enables, enableCall{kind: track.Kind(), enabled: enabled})
	f.mu.Unlock()
	return nil
}

func (f *fakePeers) AnyConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakePeers) Has(remote string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.states[remote]
	return ok
}

func (f *fakePeers) State(remote string) (webrtc.PeerConnectionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[remote]
	if !ok {
		return webrtc.PeerConnectionStateUnknown, rtc.ErrUnknownPeer
	}
	return state, nil
}

func (f *fakePeers) Initiator(remote string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	init, ok := f.initiators[remote]
	if !ok {
		return false, rtc.ErrUnknownPeer
	}
	return init, nil
}

func (f *fakePeers) Peers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.states))
	for id := range f.states {
		out = append(out, id)
	}
	return out
}

func (f *fakePeers) Close(remote string) {
	f.mu.Lock()
	delete(f.states, remote)
	delete(f.initiators, remote)
	f.closed = append(f.closed, remote)
	f.mu.Unlock()
}

func (f *fakePeers) CloseAll() {
	f.mu.Lock()
	f.states = make(map[string]webrtc.PeerConnectionState)
	f.initiators = make(map[string]bool)
	f.closedAll = true
	f.mu.Unlock()
}

func (f *fakePeers) setState(remote string, state webrtc.PeerConnectionState) {
	f.mu.Lock()
	f.states[remote] = state
	f.mu.Unlock()
}

func (f *fakePeers) createdCalls() []createCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]createCall(nil), f.created...)
}

func (f *fakePeers) closedPeers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.closed...)
}

func (f *fakePeers) offerSenders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.offers...)
}

func (f *fakePeers) candidateSenders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.candidates...)
}

func (f *fakePeers) enableCalls() []enableCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]enableCall(nil), f.enables...)
}

func (f *fakePeers) addedTracks() []*media.Track {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*media.Track(nil), f.added...)
}

func (f *fakePeers) wasClosedAll() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closedAll
}
