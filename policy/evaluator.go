package policy

import "github.com/netrack/ofcontroller/topology"

// StaticEvaluator evaluates a Policy against a single packet by compiling
// it (via Compiler) and applying the first matching FlowEntry's actions
// in order, exactly the semantics a single-table OpenFlow switch applies
// at the first-match rule in the packet-in path (§4.4).
type StaticEvaluator struct {
	Compiler Compiler
}

// Eval implements Evaluator.
func (e *StaticEvaluator) Eval(sw topology.SwitchId, p Policy, in HeaderValues) ([]Evaluated, error) {
	table, err := e.Compiler.Compile(sw, p)
	if err != nil {
		return nil, err
	}

	for _, entry := range table {
		if !matchPattern(entry.Pattern, in) {
			continue
		}
		return applyActions(entry.Actions, in), nil
	}
	return nil, nil
}

// matchPattern reports whether h satisfies every field pat constrains.
func matchPattern(pat Pattern, h HeaderValues) bool {
	if pat.HasInPort && pat.InPort != h.InPort {
		return false
	}
	if pat.HasVlan {
		if pat.Vlan == vlanNoneSentinel {
			if h.HasVlan {
				return false
			}
		} else if !h.HasVlan || h.Vlan != pat.Vlan {
			return false
		}
	}
	if pat.HasEthSrc && pat.EthSrc != h.EthSrc {
		return false
	}
	if pat.HasEthDst && pat.EthDst != h.EthDst {
		return false
	}
	if pat.HasEthType && pat.EthType != h.EthType {
		return false
	}
	if pat.HasIPProto && pat.IPProto != h.IPProto {
		return false
	}
	if pat.IPSrcBits > 0 && !prefixMatch(pat.IPSrc, h.IPSrc, pat.IPSrcBits) {
		return false
	}
	if pat.IPDstBits > 0 && !prefixMatch(pat.IPDst, h.IPDst, pat.IPDstBits) {
		return false
	}
	if pat.HasTPSrc && pat.TPSrc != h.TPSrc {
		return false
	}
	if pat.HasTPDst && pat.TPDst != h.TPDst {
		return false
	}
	return true
}

// vlanNoneSentinel mirrors ofp10.VlanNone (§3: "the reserved sentinel
// 65535 denotes 'packet carries no VLAN' in match expressions"), kept
// local to avoid a dependency from policy on the wire-encoding package.
const vlanNoneSentinel = 0xFFFF

// prefixMatch reports whether addr falls within the /bits network net
// describes. bits == 0 is handled by the caller (fully wildcarded).
func prefixMatch(network, addr uint32, bits uint8) bool {
	if bits >= 32 {
		return network == addr
	}
	shift := 32 - bits
	mask := ^uint32(0) << shift
	return network&mask == addr&mask
}

// applyActions threads h through actions in order, collecting one
// Evaluated per Output action reached (§4.4 step 2: a policy may route a
// packet to more than one final location).
func applyActions(actions []Action, h HeaderValues) []Evaluated {
	var out []Evaluated
	for _, a := range actions {
		switch a.Kind {
		case ActionModify:
			applyModify(&h, a)
		case ActionOutputPhysical:
			out = append(out, Evaluated{Headers: h, Location: Location{Port: a.Port}})
		case ActionOutputController:
			pipe := a.Pipe
			if pipe == "" {
				pipe = "controller"
			}
			out = append(out, Evaluated{Headers: h, Location: Location{Pipe: pipe, IsPipe: true}})
		}
	}
	return out
}

// applyModify rewrites the single field a.Field names on h in place.
func applyModify(h *HeaderValues, a Action) {
	switch a.Field {
	case ModifyVlan:
		if v, ok := a.Value.(uint16); ok {
			if v == vlanNoneSentinel {
				h.HasVlan = false
				h.Vlan = 0
			} else {
				h.HasVlan = true
				h.Vlan = v
			}
		}
	case ModifyEthSrc:
		if v, ok := a.Value.([6]byte); ok {
			h.EthSrc = v
		}
	case ModifyEthDst:
		if v, ok := a.Value.([6]byte); ok {
			h.EthDst = v
		}
	case ModifyEthType:
		if v, ok := a.Value.(uint16); ok {
			h.EthType = v
		}
	case ModifyIPSrc:
		if v, ok := a.Value.(uint32); ok {
			h.IPSrc = v
		}
	case ModifyIPDst:
		if v, ok := a.Value.(uint32); ok {
			h.IPDst = v
		}
	case ModifyIPProto:
		if v, ok := a.Value.(uint8); ok {
			h.IPProto = v
		}
	case ModifyIPTos:
		if v, ok := a.Value.(uint8); ok {
			h.IPTos = v
		}
	case ModifyTPSrc:
		if v, ok := a.Value.(uint16); ok {
			h.TPSrc = v
		}
	case ModifyTPDst:
		if v, ok := a.Value.(uint16); ok {
			h.TPDst = v
		}
	}
}
