package controller

import (
	"github.com/netrack/ofcontroller/internal/ofp10util"
	"github.com/netrack/ofcontroller/ofp10"
	"github.com/netrack/ofcontroller/policy"
)

// startPriority is the priority the first entry of any freshly installed
// table receives; every subsequent entry decrements by one (§4.5, §4.6).
const startPriority = 65535

// compiledEntry pairs one compiled FlowEntry with the wire-level match and
// action list it was rewritten to, ready to install at whatever priority
// installCompiled assigns it.
type compiledEntry struct {
	entry   policy.FlowEntry
	match   ofp10.Match
	actions ofp10.Actions
}

// compileTable rewrites every entry of table through rewrite, bailing out
// on the first error (an AssertionFailed from an unrewritable action, per
// §4.6 step 1b: "Any non-Physical/non-Controller Output is rejected").
func compileTable(table policy.FlowTable, rewrite func(policy.FlowEntry) (ofp10.Match, ofp10.Actions, error)) ([]compiledEntry, error) {
	out := make([]compiledEntry, 0, len(table))
	for _, entry := range table {
		match, actions, err := rewrite(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, compiledEntry{entry: entry, match: match, actions: actions})
	}
	return out, nil
}

// installCompiled sends one FlowAdd per compiled entry, starting at
// startPriority and decrementing by one per entry, in the order the
// compiler produced them (§4.5, §4.6: "installed top-down, priorities
// starting at 65535 descending by 1").
func installCompiled(conn switchConn, compiled []compiledEntry) ([]Installed, error) {
	installed := make([]Installed, 0, len(compiled))
	prio := Priority(startPriority)

	for _, c := range compiled {
		fm := &ofp10.FlowMod{
			Match:       c.match,
			Cookie:      c.entry.Cookie,
			Command:     ofp10.FlowAdd,
			IdleTimeout: c.entry.IdleTimeout,
			HardTimeout: c.entry.HardTimeout,
			Priority:    uint16(prio),
			BufferID:    ofp10.NoBuffer,
			OutPort:     ofp10.PortNone,
			Actions:     c.actions,
		}
		if err := conn.sendFlowMod(fm); err != nil {
			return installed, newError(SendDropped, "install", err)
		}

		installed = append(installed, Installed{Entry: c.entry, Priority: prio})
		prio--
	}
	return installed, nil
}

// bestEffortUpdate implements §4.5: delete every flow, then install the
// freshly compiled table top-down with no staged coordination. Packets in
// flight may momentarily see an empty table; no barrier is sent.
//
// An empty compiled table is an AssertionFailed: it signals a bug in the
// upstream compiler, not a legitimate "drop everything" policy (a
// deliberate drop is expressed as one catch-all rule with no actions).
func bestEffortUpdate(conn switchConn, table policy.FlowTable) error {
	if len(table) == 0 {
		return newError(AssertionFailed, "best_effort_update", errEmptyTable)
	}

	if err := conn.sendDeleteAllFlows(); err != nil {
		return newError(SendDropped, "best_effort_update", err)
	}

	compiled, err := compileTable(table, identityRewrite)
	if err != nil {
		return err
	}
	_, err = installCompiled(conn, compiled)
	return err
}

// identityRewrite is the best-effort updater's rewrite function: the
// compiled pattern and actions are installed as-is, with no VLAN tagging
// (that machinery belongs to the consistent updater alone).
func identityRewrite(entry policy.FlowEntry) (ofp10.Match, ofp10.Actions, error) {
	return matchFromPattern(entry.Pattern), actionsFromPolicy(entry.Actions), nil
}

// matchFromPattern converts the core's opaque-to-the-compiler Pattern into
// an ofp10.Match, wildcarding every field the pattern left unset.
func matchFromPattern(p policy.Pattern) ofp10.Match {
	m := ofp10util.MatchAll()

	if p.HasInPort {
		m = ofp10util.MatchInPort(m, ofp10.PortNo(p.InPort))
	}
	if p.HasVlan {
		m = ofp10util.MatchDLVlan(m, p.Vlan)
	}
	if p.HasEthSrc {
		m = ofp10util.MatchDLSrc(m, p.EthSrc)
	}
	if p.HasEthDst {
		m = ofp10util.MatchDLDst(m, p.EthDst)
	}
	if p.HasEthType {
		m = ofp10util.MatchDLType(m, p.EthType)
	}
	if p.IPSrcBits > 0 {
		m = ofp10util.MatchNWSrc(m, p.IPSrc, p.IPSrcBits)
	}
	if p.IPDstBits > 0 {
		m = ofp10util.MatchNWDst(m, p.IPDst, p.IPDstBits)
	}
	if p.HasIPProto {
		m.NWProto = p.IPProto
		m.Wildcards &^= ofp10.WildcardNWProto
	}
	if p.HasTPSrc {
		m.TPSrc = p.TPSrc
		m.Wildcards &^= ofp10.WildcardTPSrc
	}
	if p.HasTPDst {
		m.TPDst = p.TPDst
		m.Wildcards &^= ofp10.WildcardTPDst
	}
	return m
}

// actionsFromPolicy converts a compiled FlowEntry's abstract action list
// into the wire-level OpenFlow 1.0 equivalent, with no version-tag
// rewriting (see consistent.go for the version-aware variant).
func actionsFromPolicy(in []policy.Action) ofp10.Actions {
	out := make(ofp10.Actions, 0, len(in))
	for _, a := range in {
		out = append(out, wireAction(a))
	}
	return out
}

// wireAction converts a single abstract action. Non-Physical/non-Controller
// Output kinds do not exist in the abstract model (§3: actions are drawn
// from {Output(Physical), Output(Controller), Modify}), so every ActionKind
// maps to exactly one wire action.
func wireAction(a policy.Action) ofp10.Action {
	switch a.Kind {
	case policy.ActionOutputPhysical:
		return ofp10.ActionOutput{Port: ofp10.PortNo(a.Port), MaxLen: ofp10.MaxLenNoBuffer}
	case policy.ActionOutputController:
		return ofp10.ActionOutput{Port: ofp10.PortController, MaxLen: a.MaxLen}
	case policy.ActionModify:
		return wireModify(a)
	default:
		return ofp10.ActionOutput{Port: ofp10.PortNone}
	}
}

func wireModify(a policy.Action) ofp10.Action {
	switch a.Field {
	case policy.ModifyVlan:
		if v, ok := a.Value.(uint16); ok {
			if v == ofp10.VlanNone {
				return ofp10.ActionStripVlan{}
			}
			return ofp10.ActionSetVlanVid{VlanVid: v}
		}
	case policy.ModifyVlanPcp:
		if v, ok := a.Value.(uint8); ok {
			return ofp10.ActionSetVlanPcp{VlanPcp: v}
		}
	case policy.ModifyEthSrc:
		if v, ok := a.Value.([6]byte); ok {
			return ofp10.ActionSetDLSrc{Addr: v}
		}
	case policy.ModifyEthDst:
		if v, ok := a.Value.([6]byte); ok {
			return ofp10.ActionSetDLDst{Addr: v}
		}
	case policy.ModifyIPSrc:
		if v, ok := a.Value.(uint32); ok {
			return ofp10.ActionSetNWSrc{Addr: v}
		}
	case policy.ModifyIPDst:
		if v, ok := a.Value.(uint32); ok {
			return ofp10.ActionSetNWDst{Addr: v}
		}
	case policy.ModifyIPTos:
		if v, ok := a.Value.(uint8); ok {
			return ofp10.ActionSetNWTos{NWTos: v}
		}
	case policy.ModifyTPSrc:
		if v, ok := a.Value.(uint16); ok {
			return ofp10.ActionSetTPSrc{Port: v}
		}
	case policy.ModifyTPDst:
		if v, ok := a.Value.(uint16); ok {
			return ofp10.ActionSetTPDst{Port: v}
		}
	}
	return ofp10.ActionOutput{Port: ofp10.PortNone}
}
