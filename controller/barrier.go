package controller

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/netrack/ofcontroller/topology"
)

// barrierTimeout is the hard deadline §4.2 imposes on any single barrier
// wait. A var, not a const, so tests can shrink it instead of actually
// waiting 15 seconds.
var barrierTimeout = 15 * time.Second

// barrierWaiter is one outstanding barrier's completion channel plus the
// switch it was sent to, so a disconnecting switch's waiters can be found
// and abandoned without scanning every pending xid.
type barrierWaiter struct {
	ch chan error
	sw topology.SwitchId
}

// barrierRegistry maps an in-flight BarrierRequest's xid to the one-shot
// channel its reply (or timeout) resolves. Per the design note on barrier
// completions (§9), this is a map keyed by xid rather than a closure
// embedded in the switch session, because a BarrierReply carries only an
// xid and a switch id. A secondary per-switch index lets SwitchDown
// abandon exactly that switch's outstanding barriers (§5: "On SwitchDown,
// pending waiters for that switch are abandoned with an error").
type barrierRegistry struct {
	mu       sync.Mutex
	xid      uint32
	pending  map[uint32]barrierWaiter
	bySwitch map[topology.SwitchId]map[uint32]struct{}
}

func newBarrierRegistry() *barrierRegistry {
	return &barrierRegistry{
		pending:  make(map[uint32]barrierWaiter),
		bySwitch: make(map[topology.SwitchId]map[uint32]struct{}),
	}
}

// nextXID allocates a fresh, process-wide unique transaction id.
func (r *barrierRegistry) nextXID() uint32 {
	return atomic.AddUint32(&r.xid, 1)
}

// register records a pending barrier completion for xid against sw,
// returning the channel its resolution arrives on. The channel is
// buffered by one so resolve never blocks regardless of whether anyone
// is still waiting.
func (r *barrierRegistry) register(xid uint32, sw topology.SwitchId) chan error {
	ch := make(chan error, 1)
	r.mu.Lock()
	r.pending[xid] = barrierWaiter{ch: ch, sw: sw}
	if r.bySwitch[sw] == nil {
		r.bySwitch[sw] = make(map[uint32]struct{})
	}
	r.bySwitch[sw][xid] = struct{}{}
	r.mu.Unlock()
	return ch
}

// resolve completes the pending barrier for xid, if any. An unknown xid
// (already timed out, already resolved, or never registered) is reported
// back via ok=false so the caller can log it at error level per §4.3.
func (r *barrierRegistry) resolve(xid uint32, err error) (ok bool) {
	r.mu.Lock()
	w, ok := r.pending[xid]
	if ok {
		r.delete(xid, w.sw)
	}
	r.mu.Unlock()

	if ok {
		w.ch <- err
	}
	return ok
}

// forget drops a registry entry without resolving it, used on send
// failure: no request ever reached the switch, so no reply will ever
// come looking for this xid (§4.2).
func (r *barrierRegistry) forget(xid uint32) {
	r.mu.Lock()
	if w, ok := r.pending[xid]; ok {
		r.delete(xid, w.sw)
	}
	r.mu.Unlock()
}

// abandonSwitch resolves every barrier still outstanding for sw with a
// SwitchDisconnect error and removes them from the registry, implementing
// §5's "on SwitchDown, pending waiters for that switch are abandoned with
// an error" instead of leaving them to expire against the full 15s
// barrierTimeout.
func (r *barrierRegistry) abandonSwitch(sw topology.SwitchId) {
	r.mu.Lock()
	xids := r.bySwitch[sw]
	waiters := make([]chan error, 0, len(xids))
	for xid := range xids {
		w := r.pending[xid]
		waiters = append(waiters, w.ch)
		delete(r.pending, xid)
	}
	delete(r.bySwitch, sw)
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- newError(SwitchDisconnect, "abandon_switch", nil)
	}
}

// delete removes xid from both the pending map and its switch index.
// Callers must hold r.mu.
func (r *barrierRegistry) delete(xid uint32, sw topology.SwitchId) {
	delete(r.pending, xid)
	if set := r.bySwitch[sw]; set != nil {
		delete(set, xid)
		if len(set) == 0 {
			delete(r.bySwitch, sw)
		}
	}
}

// sender is the narrow southbound capability send_barrier needs: emit a
// BarrierRequest carrying xid to a specific switch.
type sender interface {
	sendBarrierRequest(xid uint32) error
}

// sendBarrier allocates a fresh xid, registers a pending completion
// against sw, emits the request, and blocks until the reply resolves it
// or the 15s deadline elapses (§4.2). A timed-out wait leaves the
// registry entry in place: if the reply eventually arrives, resolve
// finds the channel and cleans the map entry itself; a send failure or a
// SwitchDown (via abandonSwitch) forgets an entry outright, since in
// both cases no reply will ever come looking for it.
func (r *barrierRegistry) sendBarrier(sw topology.SwitchId, s sender) error {
	xid := r.nextXID()
	ch := r.register(xid, sw)
	timeout := barrierTimeout

	if err := s.sendBarrierRequest(xid); err != nil {
		r.forget(xid)
		return newError(SendDropped, "send_barrier", err)
	}

	select {
	case err := <-ch:
		if err != nil {
			return newError(SwitchDisconnect, "send_barrier", err)
		}
		return nil
	case <-time.After(timeout):
		return newError(BarrierTimeout, "send_barrier", nil)
	}
}
