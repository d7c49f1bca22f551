// Package ofp10util provides small builder helpers over package ofp10,
// mirroring the role the teacher's ofputil package plays over its own wire
// types: the core never pokes at Wildcards bits or bitmap shifts directly,
// it calls these constructors.
package ofp10util

import "github.com/netrack/ofcontroller/ofp10"

// MatchAll returns a Match that wildcards every field.
func MatchAll() ofp10.Match {
	return ofp10.Match{Wildcards: ofp10.WildcardAll, DLVlan: ofp10.VlanNone}
}

// MatchInPort narrows m to packets arriving on port.
func MatchInPort(m ofp10.Match, port ofp10.PortNo) ofp10.Match {
	m.InPort = port
	m.Wildcards &^= ofp10.WildcardInPort
	return m
}

// MatchDLType narrows m to packets carrying the given ethertype.
func MatchDLType(m ofp10.Match, ethertype uint16) ofp10.Match {
	m.DLType = ethertype
	m.Wildcards &^= ofp10.WildcardDLType
	return m
}

// MatchDLSrc narrows m to packets sourced from the given MAC.
func MatchDLSrc(m ofp10.Match, addr [6]byte) ofp10.Match {
	m.DLSrc = addr
	m.Wildcards &^= ofp10.WildcardDLSrc
	return m
}

// MatchDLDst narrows m to packets destined for the given MAC.
func MatchDLDst(m ofp10.Match, addr [6]byte) ofp10.Match {
	m.DLDst = addr
	m.Wildcards &^= ofp10.WildcardDLDst
	return m
}

// MatchDLVlan narrows m to packets tagged with the given VLAN id. Use
// ofp10.VlanNone to match untagged traffic.
func MatchDLVlan(m ofp10.Match, vlan uint16) ofp10.Match {
	m.DLVlan = vlan
	m.Wildcards &^= ofp10.WildcardDLVlan
	return m
}

// MatchNWSrc narrows m to packets whose source address falls within the
// given /prefixLen network. prefixLen == 0 wildcards the field entirely.
func MatchNWSrc(m ofp10.Match, addr uint32, prefixLen uint8) ofp10.Match {
	m.NWSrc = addr
	m.NWSrcMask = 32 - prefixLen
	if prefixLen == 0 {
		m.Wildcards |= ofp10.WildcardNWSrc()
	} else {
		m.Wildcards &^= ofp10.WildcardNWSrc()
	}
	return m
}

// MatchNWDst narrows m to packets whose destination address falls within
// the given /prefixLen network.
func MatchNWDst(m ofp10.Match, addr uint32, prefixLen uint8) ofp10.Match {
	m.NWDst = addr
	m.NWDstMask = 32 - prefixLen
	if prefixLen == 0 {
		m.Wildcards |= ofp10.WildcardNWDst()
	} else {
		m.Wildcards &^= ofp10.WildcardNWDst()
	}
	return m
}
