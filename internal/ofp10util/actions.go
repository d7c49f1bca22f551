package ofp10util

import "github.com/netrack/ofcontroller/ofp10"

// Output returns an action list with a single Output action, the common
// case for a flow entry that forwards to exactly one port.
func Output(port ofp10.PortNo) ofp10.Actions {
	return ofp10.Actions{ofp10.ActionOutput{Port: port, MaxLen: ofp10.MaxLenNoBuffer}}
}

// OutputController returns an action that sends the packet to the
// controller, truncated to maxLen bytes (ofp10.MaxLenNoBuffer sends the
// whole packet).
func OutputController(maxLen uint16) ofp10.Actions {
	return ofp10.Actions{ofp10.ActionOutput{Port: ofp10.PortController, MaxLen: maxLen}}
}

// Flood returns an action that forwards out every port except the one the
// packet arrived on.
func Flood() ofp10.Actions {
	return ofp10.Actions{ofp10.ActionOutput{Port: ofp10.PortFlood, MaxLen: ofp10.MaxLenNoBuffer}}
}

// Drop returns an empty action list, which OpenFlow 1.0 switches treat as
// "discard the packet".
func Drop() ofp10.Actions {
	return ofp10.Actions{}
}
