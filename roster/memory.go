package roster

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Memory is an in-process Store implementation. All mutations and watch
// dispatches are serialized behind one mutex, giving the same targeted
// add/remove semantics the document store provides with transactions.
type Memory struct {
	mu       sync.Mutex
	nextID   int
	docs     map[string]*CallDoc
	watchers map[string]map[int]WatchFunc
}

// NewMemory creates an empty in-memory membership store.
func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string]*CallDoc),
		watchers: make(map[string]map[int]WatchFunc),
	}
}

func (m *Memory) doc(groupID string) *CallDoc {
	if d, ok := m.docs[groupID]; ok {
		return d
	}
	d := &CallDoc{}
	m.docs[groupID] = d
	return d
}

// Current returns a copy of the group's call document.
func (m *Memory) Current(_ context.Context, groupID string) (*CallDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc(groupID).clone(), nil
}

// Join appends p unless already present, activating the call on first join.
func (m *Memory) Join(_ context.Context, groupID string, p Participant) (*CallDoc, error) {
	m.mu.Lock()
	doc := m.doc(groupID)
	prior := doc.clone()

	if !doc.Has(p.UserID) {
		if !doc.Active {
			doc.Active = true
			doc.StartedBy = p.UserID
		}
		doc.Participants = append(doc.Participants, p)
	}
	snapshot := doc.clone()
	targets := m.watchTargets(groupID)
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":     "Join",
		"group_id":     groupID,
		"user_id":      p.UserID,
		"participants": len(snapshot.Participants),
	}).Debug("Participant joined call roster")

	notify(targets, snapshot)
	return prior, nil
}

// Leave removes userID, deactivating the call when the list becomes empty.
func (m *Memory) Leave(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	doc := m.doc(groupID)
	kept := doc.Participants[:0]
	for _, p := range doc.Participants {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	doc.Participants = kept
	if len(doc.Participants) == 0 {
		doc.Active = false
		doc.StartedBy = ""
	}
	snapshot := doc.clone()
	targets := m.watchTargets(groupID)
	m.mu.Unlock()

	notify(targets, snapshot)
	return nil
}

// SetVideoEnabled updates userID's video flag in place.
func (m *Memory) SetVideoEnabled(_ context.Context, groupID, userID string, enabled bool) error {
	m.mu.Lock()
	doc := m.doc(groupID)
	for i := range doc.Participants {
		if doc.Participants[i].UserID == userID {
			doc.Participants[i].VideoEnabled = enabled
		}
	}
	snapshot := doc.clone()
	targets := m.watchTargets(groupID)
	m.mu.Unlock()

	notify(targets, snapshot)
	return nil
}

// Watch registers fn and synchronously delivers the current document.
func (m *Memory) Watch(_ context.Context, groupID string, fn WatchFunc) (func(), error) {
	m.mu.Lock()
	if m.watchers[groupID] == nil {
		m.watchers[groupID] = make(map[int]WatchFunc)
	}
	id := m.nextID
	m.nextID++
	m.watchers[groupID][id] = fn
	snapshot := m.doc(groupID).clone()
	m.mu.Unlock()

	fn(snapshot)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers[groupID], id)
			m.mu.Unlock()
		})
	}
	return cancel, nil
}

func (m *Memory) watchTargets(groupID string) []WatchFunc {
	targets := make([]WatchFunc, 0, len(m.watchers[groupID]))
	for _, fn := range m.watchers[groupID] {
		targets = append(targets, fn)
	}
	return targets
}

func notify(targets []WatchFunc, doc *CallDoc) {
	for _, fn := range targets {
		fn(doc.clone())
	}
}
