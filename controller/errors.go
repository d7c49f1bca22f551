package controller

import (
	"errors"
	"fmt"
)

// errEmptyTable is the AssertionFailed cause when a compiler hands the
// updater a zero-length FlowTable: a deliberate "drop everything" policy
// is expressed as one catch-all rule with no actions, never an empty
// table, so this always indicates an upstream bug (§4.5).
var errEmptyTable = errors.New("compiled flow table is empty")

// errOutboundFull is the SendDropped cause when the outbound writer's
// queue is saturated: a slow or wedged switch connection must not block
// the caller (the packet-in path or an app's write handle) indefinitely.
var errOutboundFull = errors.New("outbound packet-out queue is full")

// Kind classifies a controller error per the error handling design: every
// error raised by the core carries one of these, which determines how far
// up the call stack it propagates before being logged and swallowed.
type Kind int

const (
	// AssertionFailed marks an internal invariant broken (empty compiled
	// table, unsupported Output type mid-rewrite, a pipe location reaching
	// the forwarding path). Fatal to the enclosing update attempt only.
	AssertionFailed Kind = iota
	// UnsupportedMod marks a header modification the core cannot
	// re-serialize onto a packet (vlan, vlanPcp, ethType, ipProto).
	UnsupportedMod
	// SendDropped marks a switch connection refusing a send.
	SendDropped
	// BarrierTimeout marks a barrier wait that hit its 15s deadline.
	BarrierTimeout
	// SwitchDisconnect marks an operation attempted against a session that
	// has already been torn down.
	SwitchDisconnect
)

func (k Kind) String() string {
	switch k {
	case AssertionFailed:
		return "assertion-failed"
	case UnsupportedMod:
		return "unsupported-mod"
	case SendDropped:
		return "send-dropped"
	case BarrierTimeout:
		return "barrier-timeout"
	case SwitchDisconnect:
		return "switch-disconnect"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every controller component raises. The
// policy on handling one is entirely a function of Kind: see package docs
// on AssertionFailed/UnsupportedMod/SendDropped/BarrierTimeout/
// SwitchDisconnect for which scope each aborts.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, op string, err error) *Error {
	return &Error{Kind: k, Op: op, Err: err}
}
