// Package policy holds the data model the controller core treats as
// input from an external NetKAT-style compiler: a Policy is opaque to the
// core, and a Compiler turns one into a per-switch FlowTable.
package policy

import "github.com/netrack/ofcontroller/topology"

// Policy is opaque to the controller core. The concrete representation
// (a NetKAT term, a rule DSL, ...) is owned entirely by the compiler that
// produces it and the Compiler that consumes it.
type Policy interface {
	// Name aids logging; it carries no semantic meaning to the core.
	Name() string
}

// Location is where a packet ends up after a policy evaluates it.
type Location struct {
	// Pipe is set when the packet is delivered to a named application
	// sink rather than forwarded.
	Pipe string
	// Port is set when the packet is forwarded to a physical port.
	Port   topology.PortId
	IsPipe bool
}

// ActionKind distinguishes the members of the FlowEntry.Actions union.
type ActionKind int

const (
	ActionOutputPhysical ActionKind = iota
	ActionOutputController
	ActionModify
)

// ModifyField identifies the packet header field an ActionModify action
// rewrites.
type ModifyField int

const (
	ModifyVlan ModifyField = iota
	ModifyVlanPcp
	ModifyEthSrc
	ModifyEthDst
	ModifyEthType
	ModifyIPSrc
	ModifyIPDst
	ModifyIPProto
	ModifyIPTos
	ModifyTPSrc
	ModifyTPDst
)

// Action is a single step of a FlowEntry's action list.
type Action struct {
	Kind ActionKind

	// Port is valid for ActionOutputPhysical.
	Port topology.PortId
	// MaxLen is valid for ActionOutputController and is passed through
	// unchanged as the wire action's max_len (ofp10.MaxLenNoBuffer sends
	// the whole packet).
	MaxLen uint16
	// Pipe names the application sink an ActionOutputController delivers
	// to; empty means the unnamed default pipe (glossary: "Pipe").
	Pipe string

	// Field/Value are valid for ActionModify. Value's dynamic type
	// depends on Field: uint16 for Vlan/EthType/TPSrc/TPDst, uint8 for
	// VlanPcp/IPProto/IPTos, [6]byte for EthSrc/EthDst, uint32 for
	// IPSrc/IPDst.
	Field ModifyField
	Value interface{}
}

// Output builds an ActionOutputPhysical action.
func Output(port topology.PortId) Action {
	return Action{Kind: ActionOutputPhysical, Port: port}
}

// OutputController builds an ActionOutputController action with the
// unnamed default pipe.
func OutputController(maxLen uint16) Action {
	return Action{Kind: ActionOutputController, MaxLen: maxLen}
}

// ToPipe builds an ActionOutputController action that delivers to the
// named application sink rather than the default pipe.
func ToPipe(name string, maxLen uint16) Action {
	return Action{Kind: ActionOutputController, Pipe: name, MaxLen: maxLen}
}

// Modify builds an ActionModify action.
func Modify(field ModifyField, value interface{}) Action {
	return Action{Kind: ActionModify, Field: field, Value: value}
}

// Pattern is the match portion of a FlowEntry. A zero-value field means
// "wildcarded"; InPort/Vlan additionally carry an explicit present flag
// since their zero values (port 0, vlan 0) are meaningful matches.
type Pattern struct {
	InPort     topology.PortId
	HasInPort  bool
	Vlan       uint16
	HasVlan    bool
	EthSrc     [6]byte
	HasEthSrc  bool
	EthDst     [6]byte
	HasEthDst  bool
	EthType    uint16
	HasEthType bool
	IPProto    uint8
	HasIPProto bool
	IPSrc      uint32
	IPSrcBits  uint8
	IPDst      uint32
	IPDstBits  uint8
	TPSrc      uint16
	HasTPSrc   bool
	TPDst      uint16
	HasTPDst   bool
}

// FlowEntry is a single forwarding rule, priority-agnostic: the priority
// it is installed at is assigned by the updater, not carried here.
type FlowEntry struct {
	Pattern Pattern
	Actions []Action

	Cookie      uint64
	IdleTimeout uint16
	HardTimeout uint16
}

// FlowTable is an ordered sequence of entries, highest-priority first.
// Compiler output is expected in this order; updaters assign descending
// priorities starting at 65535 as they install it.
type FlowTable []FlowEntry

// Compiler turns a Policy into a per-switch FlowTable. This is the
// external collaborator the spec calls the NetKAT compiler; the core
// only ever calls Compile.
type Compiler interface {
	Compile(sw topology.SwitchId, p Policy) (FlowTable, error)
}

// HeaderValues is the parsed L2-L4 header of a single packet, as seen by
// the packet-in evaluator (spec §4.4 step 1).
type HeaderValues struct {
	InPort  topology.PortId
	Vlan    uint16
	HasVlan bool
	EthSrc  [6]byte
	EthDst  [6]byte
	EthType uint16
	IPProto uint8
	IPSrc   uint32
	IPDst   uint32
	IPTos   uint8
	TPSrc   uint16
	TPDst   uint16
}

// Evaluated is the result of evaluating a policy against one packet's
// headers: the final header values (possibly modified) and where the
// packet ends up.
type Evaluated struct {
	Headers  HeaderValues
	Location Location
}

// Evaluator evaluates a compiled policy against a single packet, used by
// the packet-in path (spec §4.4) rather than the bulk per-switch
// compilation Compiler performs.
type Evaluator interface {
	Eval(sw topology.SwitchId, p Policy, in HeaderValues) ([]Evaluated, error)
}
