package controller

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/netrack/ofcontroller/internal/ofp10util"
	"github.com/netrack/ofcontroller/ofp10"
	"github.com/netrack/ofcontroller/policy"
	"github.com/netrack/ofcontroller/topology"
)

// ConsistentUpdater implements §4.6, the Reitblatt-style two-phase
// per-packet-consistent update: every packet in flight is processed
// entirely by the policy version it was stamped with, never a mixture of
// two generations. The version tag travels in the VLAN field while a
// packet is between switches.
type ConsistentUpdater struct {
	ver uint32 // accessed only via atomic; initial value 1 (§3).
	reg *barrierRegistry
	log *logger
}

func newConsistentUpdater(reg *barrierRegistry, log *logger) *ConsistentUpdater {
	u := &ConsistentUpdater{reg: reg, log: component(log, "consistent-update")}
	atomic.StoreUint32(&u.ver, 1)
	return u
}

// Version reports the currently active policy generation.
func (u *ConsistentUpdater) Version() uint32 {
	return atomic.LoadUint32(&u.ver)
}

// Update replaces policy version v with v+1 across every session in
// sessions, per §4.6 steps 1-4. Per-switch failures in Phase I or II are
// logged and do not block the other switches or the fleet-wide version
// bump (§9 open question: liveness over consistency on persistent
// per-switch failure -- a switch left behind is reprogrammed on its next
// SwitchUp: the default policy is installed best-effort when the app
// returns no policy, and a returned policy is applied like any update).
func (u *ConsistentUpdater) Update(sessions []*session, topo topology.View, compiler policy.Compiler, p policy.Policy) uint32 {
	prev := atomic.LoadUint32(&u.ver)
	next := prev + 1

	u.phaseAll(sessions, "phase-I", func(s *session) error {
		return u.phaseInternal(s, topo, compiler, p, next)
	})
	u.phaseAll(sessions, "phase-II", func(s *session) error {
		return u.phaseEdge(s, topo, compiler, p, next)
	})
	u.phaseAll(sessions, "phase-III", func(s *session) error {
		return u.phaseGC(s, prev)
	})

	atomic.StoreUint32(&u.ver, next)
	return next
}

// phaseAll runs fn for every session in parallel and waits for all of them
// to resolve before returning, implementing the "join-all" barrier between
// phases described in §5: "phase N+1 begins only when every switch's phase
// N has resolved (success, error, or timeout)".
func (u *ConsistentUpdater) phaseAll(sessions []*session, phase string, fn func(*session) error) {
	var wg sync.WaitGroup
	wg.Add(len(sessions))
	for _, s := range sessions {
		go func(s *session) {
			defer wg.Done()
			if err := fn(s); err != nil {
				u.log.Err().Uint64("dpid", uint64(s.id)).Str("phase", phase).Err(err).
					Log("per-switch update phase failed")
			}
		}(s)
	}
	wg.Wait()
}

// phaseInternal implements §4.6 step 1: compile, stamp every match with
// dlVlan = next, rewrite actions to keep packets on the new version as
// they cross internal ports, install, and barrier.
func (u *ConsistentUpdater) phaseInternal(s *session, topo topology.View, compiler policy.Compiler, p policy.Policy, next uint32) error {
	table, err := compiler.Compile(s.id, p)
	if err != nil {
		return newError(AssertionFailed, "phase_internal", err)
	}
	if len(table) == 0 {
		return newError(AssertionFailed, "phase_internal", errEmptyTable)
	}

	internal := internalPorts(topo, s.id)
	vlan := uint16(next)

	compiled, err := compileTable(table, func(e policy.FlowEntry) (ofp10.Match, ofp10.Actions, error) {
		m := stampVlan(matchFromPattern(e.Pattern), vlan)
		actions, err := rewriteActionsForVersion(e.Actions, internal, vlan)
		return m, actions, err
	})
	if err != nil {
		return err
	}

	if _, err := installCompiled(s.conn, compiled); err != nil {
		return err
	}
	return u.reg.sendBarrier(s.id, s.conn)
}

// phaseEdge implements §4.6 step 2: compile, retain only edge-facing
// entries, stamp their match with the untagged sentinel, rewrite actions
// the same way as Phase I, diff against the previously installed edge
// table, install the new rules, delete the stale ones, barrier, and
// record the new installedEdge.
func (u *ConsistentUpdater) phaseEdge(s *session, topo topology.View, compiler policy.Compiler, p policy.Policy, next uint32) error {
	table, err := compiler.Compile(s.id, p)
	if err != nil {
		return newError(AssertionFailed, "phase_edge", err)
	}

	internal := internalPorts(topo, s.id)
	edgeTable := filterEdgeEntries(table, internal)
	vlan := uint16(next)

	compiled, err := compileTable(edgeTable, func(e policy.FlowEntry) (ofp10.Match, ofp10.Actions, error) {
		m := stampVlan(matchFromPattern(e.Pattern), ofp10.VlanNone)
		actions, err := rewriteActionsForVersion(e.Actions, internal, vlan)
		return m, actions, err
	})
	if err != nil {
		return err
	}

	newEdge, err := installCompiled(s.conn, compiled)
	if err != nil {
		return err
	}

	for _, d := range diff(s.installedEdge, newEdge) {
		fm := &ofp10.FlowMod{
			Match:    stampVlan(matchFromPattern(d.Entry.Pattern), ofp10.VlanNone),
			Command:  ofp10.FlowDeleteStrict,
			Priority: uint16(d.Priority),
			BufferID: ofp10.NoBuffer,
			OutPort:  ofp10.PortNone,
		}
		if err := s.conn.sendFlowMod(fm); err != nil {
			return newError(SendDropped, "phase_edge", err)
		}
	}

	if err := u.reg.sendBarrier(s.id, s.conn); err != nil {
		return err
	}
	s.installedEdge = newEdge
	return nil
}

// phaseGC implements §4.6 step 3: a non-strict delete matching only
// dlVlan = prev, priority irrelevant. No barrier is required -- by the
// time Phase III runs, no packet anywhere in the network still carries
// prev's tag.
func (u *ConsistentUpdater) phaseGC(s *session, prev uint32) error {
	fm := &ofp10.FlowMod{
		Match:    stampVlan(ofp10util.MatchAll(), uint16(prev)),
		Command:  ofp10.FlowDelete,
		Priority: 0,
		BufferID: ofp10.NoBuffer,
		OutPort:  ofp10.PortNone,
	}
	if err := s.conn.sendFlowMod(fm); err != nil {
		return newError(SendDropped, "phase_gc", err)
	}
	return nil
}

// stampVlan narrows m to packets carrying exactly vlan, clearing the
// wildcard bit so the match is no longer "any VLAN".
func stampVlan(m ofp10.Match, vlan uint16) ofp10.Match {
	m.DLVlan = vlan
	m.Wildcards &^= ofp10.WildcardDLVlan
	return m
}

// internalPorts reports the set of sw's ports the topology view considers
// internal (connected to another known switch), per the glossary
// "Internal port" definition.
func internalPorts(topo topology.View, sw topology.SwitchId) map[topology.PortId]bool {
	ports := topo.Ports(sw)
	out := make(map[topology.PortId]bool, len(ports))
	for _, p := range ports {
		if ep, ok := topo.Peer(sw, p); ok && ep.Internal() {
			out[p] = true
		}
	}
	return out
}

// filterEdgeEntries keeps only entries whose in_port is an edge port or is
// unspecified, per §4.6 step 2: "retain only rules whose in_port is an
// edge port (or unspecified)".
func filterEdgeEntries(table policy.FlowTable, internal map[topology.PortId]bool) policy.FlowTable {
	out := make(policy.FlowTable, 0, len(table))
	for _, e := range table {
		if !e.Pattern.HasInPort || !internal[e.Pattern.InPort] {
			out = append(out, e)
		}
	}
	return out
}

// rewriteActionsForVersion implements the action-rewrite transform §9
// calls out as a pure function of (internal ports, version): every
// Output(Physical p) is preceded by a VLAN set -- Set(None) when p is an
// edge port (the packet leaves the network), Set(Some(version)) when p is
// internal (the packet continues on the new version);
// Output(Controller n) is preceded by Set(None). Any other Output kind is
// an AssertionFailed, since the abstract model (§3) has no third kind.
func rewriteActionsForVersion(actions []policy.Action, internal map[topology.PortId]bool, version uint16) (ofp10.Actions, error) {
	out := make(ofp10.Actions, 0, len(actions)+1)

	for _, a := range actions {
		switch a.Kind {
		case policy.ActionOutputPhysical:
			if internal[a.Port] {
				out = append(out, ofp10.ActionSetVlanVid{VlanVid: version})
			} else {
				out = append(out, ofp10.ActionStripVlan{})
			}
			out = append(out, ofp10.ActionOutput{Port: ofp10.PortNo(a.Port), MaxLen: ofp10.MaxLenNoBuffer})
		case policy.ActionOutputController:
			out = append(out, ofp10.ActionStripVlan{})
			out = append(out, ofp10.ActionOutput{Port: ofp10.PortController, MaxLen: a.MaxLen})
		case policy.ActionModify:
			out = append(out, wireModify(a))
		default:
			return nil, newError(AssertionFailed, "rewrite_actions", fmt.Errorf("unsupported action kind %d", a.Kind))
		}
	}
	return out, nil
}
