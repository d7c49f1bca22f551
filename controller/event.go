package controller

import (
	"github.com/netrack/ofcontroller/ofp10"
	"github.com/netrack/ofcontroller/topology"
)

// EventKind tags the variant of a network event (§3 "Network event").
type EventKind int

const (
	SwitchUp EventKind = iota
	SwitchDown
	PortUp
	PortDown
	PacketIn
)

func (k EventKind) String() string {
	switch k {
	case SwitchUp:
		return "switch-up"
	case SwitchDown:
		return "switch-down"
	case PortUp:
		return "port-up"
	case PortDown:
		return "port-down"
	case PacketIn:
		return "packet-in"
	default:
		return "unknown"
	}
}

// Event is the tagged union { SwitchUp(sw), SwitchDown(sw), PortUp(sw,p),
// PortDown(sw,p), PacketIn(pipe, sw, p, payload, total_len) } from §3. Not
// every field is valid for every Kind; see the Kind-specific comments.
type Event struct {
	Kind EventKind

	Switch topology.SwitchId
	// Port is valid for PortUp, PortDown, PacketIn.
	Port topology.PortId

	// Pipe, Payload, BufferID, TotalLen are valid for PacketIn only.
	Pipe    string
	Payload []byte
	// BufferID is the switch's buffer handle for this packet, mirroring
	// the raw PacketIn's payload shape (§3: "possibly Buffered(buf_id,
	// header_bytes) or NotBuffered(full_bytes)"). ofp10.NoBuffer means
	// the packet was never switch-buffered, or its buffer was
	// invalidated by a header rewrite (§4.4 step 5); Payload then holds
	// the PacketIn's bytes with headers re-serialized: the full packet if
	// it was never buffered, only the header bytes if a buffered packet
	// was rewritten. Any other value means the switch
	// still holds the full packet under this id and Payload holds only
	// the (possibly re-serialized) header bytes.
	BufferID uint32
	TotalLen uint32
}
