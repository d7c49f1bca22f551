package ofp10util

import "github.com/netrack/ofcontroller/ofp10"

func shl32(mask, bit uint32) uint32 {
	return mask | uint32(1)<<bit
}

// ActionBitmap returns the ofp10.ActionCapability bitmap covering the given
// action types, suitable for a FeaturesReply.Actions field.
func ActionBitmap(types ...ofp10.ActionType) (bits ofp10.ActionCapability) {
	var raw uint32
	for _, t := range types {
		raw = shl32(raw, uint32(t))
	}
	return ofp10.ActionCapability(raw)
}

// CapabilityBitmap returns the ofp10.Capability bitmap covering the given
// capability bits. Accepts the already-shifted Capability constants so
// callers can compose a FeaturesReply.Capabilities value without repeating
// the OR chain inline.
func CapabilityBitmap(caps ...ofp10.Capability) (bits ofp10.Capability) {
	for _, c := range caps {
		bits |= c
	}
	return bits
}
