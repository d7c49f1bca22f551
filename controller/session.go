package controller

import (
	"sync"

	"github.com/netrack/ofcontroller/policy"
	"github.com/netrack/ofcontroller/topology"
)

// session is the per-switch state the spec's "Switch session" record
// describes (§3): a datapath id, the policy last compiled for it, and
// the edge table currently believed installed, in strictly decreasing
// priority order, reflecting exactly what the switch holds after the
// last successful barrier.
type session struct {
	id            topology.SwitchId
	compiledLocal policy.Policy
	installedEdge []Installed

	conn switchConn
}

// sessionTable is the process-wide map of live switch sessions, keyed by
// SwitchId. Entries are created and removed by the per-connection
// goroutines (handleSwitch) and read by the event loop and the outbound
// writer, so every method takes the RWMutex.
type sessionTable struct {
	mu       sync.RWMutex
	sessions map[topology.SwitchId]*session
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[topology.SwitchId]*session)}
}

func (t *sessionTable) create(id topology.SwitchId, conn switchConn) *session {
	s := &session{id: id, conn: conn}
	t.mu.Lock()
	t.sessions[id] = s
	t.mu.Unlock()
	return s
}

func (t *sessionTable) get(id topology.SwitchId) (*session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

func (t *sessionTable) remove(id topology.SwitchId) {
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}

func (t *sessionTable) all() []*session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	return out
}
