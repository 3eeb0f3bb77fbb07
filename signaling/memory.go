package signaling

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Memory is an in-process Channel implementation. Envelopes are delivered
// synchronously to matching subscribers in publish order, which trivially
// satisfies the per-sender ordering guarantee. Published envelopes are also
// retained until purged, and retained envelopes are replayed to new
// subscribers so a subscriber that attaches after an offer was published
// still observes it, mirroring the backlog behavior of the document-store
// channel.
type Memory struct {
	mu     sync.Mutex
	nextID int
	stored map[string][]*Envelope        // groupID -> retained envelopes
	subs   map[string]map[int]*memorySub // groupID -> subscriber set
}

type memorySub struct {
	selfID  string
	handler Handler
}

// NewMemory creates an empty in-memory signaling channel.
func NewMemory() *Memory {
	return &Memory{
		stored: make(map[string][]*Envelope),
		subs:   make(map[string]map[int]*memorySub),
	}
}

// Publish appends the envelope and synchronously notifies subscribers whose
// identity matches the To field.
func (m *Memory) Publish(_ context.Context, groupID string, env *Envelope) error {
	m.mu.Lock()
	m.stored[groupID] = append(m.stored[groupID], env)
	targets := make([]*memorySub, 0, len(m.subs[groupID]))
	for _, sub := range m.subs[groupID] {
		if sub.selfID == env.To {
			targets = append(targets, sub)
		}
	}
	m.mu.Unlock()

	for _, sub := range targets {
		sub.handler(env)
	}
	return nil
}

// Subscribe registers h for envelopes addressed to selfID and replays any
// retained envelopes for it.
func (m *Memory) Subscribe(_ context.Context, groupID, selfID string, h Handler) (func(), error) {
	m.mu.Lock()
	if m.subs[groupID] == nil {
		m.subs[groupID] = make(map[int]*memorySub)
	}
	id := m.nextID
	m.nextID++
	m.subs[groupID][id] = &memorySub{selfID: selfID, handler: h}

	backlog := make([]*Envelope, 0)
	for _, env := range m.stored[groupID] {
		if env.To == selfID {
			backlog = append(backlog, env)
		}
	}
	m.mu.Unlock()

	for _, env := range backlog {
		h(env)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[groupID], id)
			m.mu.Unlock()
		})
	}
	return cancel, nil
}

// Purge drops every retained envelope for the group.
func (m *Memory) Purge(_ context.Context, groupID string) error {
	m.mu.Lock()
	n := len(m.stored[groupID])
	delete(m.stored, groupID)
	m.mu.Unlock()

	if n > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Purge",
			"group_id": groupID,
			"purged":   n,
		}).Debug("Dropped stale signaling envelopes")
	}
	return nil
}
