// Package ofp10 implements the wire encoding of the OpenFlow 1.0 protocol
// messages the controller core exchanges with switches.
//
// The core (package controller) builds and reads the message structs
// defined here (FlowMod, Match, Actions, PacketIn, PacketOut,
// FeaturesReply, PortStatus) but never encodes or decodes their byte
// layout itself; the WriteTo and ReadFrom methods here own that. This
// package is the external collaborator that realizes them on the wire, the same
// way a NetKAT compiler or an LLDP-based topology service would be realized
// outside of the core.
package ofp10

import (
	"encoding/binary"
	"errors"
	"io"
)

// Version is the wire version byte carried by every OpenFlow 1.0 header.
const Version uint8 = 0x01

// Type identifies the kind of message carried after the header.
type Type uint8

// Message types defined by the OpenFlow 1.0 specification, ofp_type.
const (
	TypeHello Type = iota
	TypeError
	TypeEchoRequest
	TypeEchoReply
	TypeVendor

	TypeFeaturesRequest
	TypeFeaturesReply
	TypeGetConfigRequest
	TypeGetConfigReply
	TypeSetConfig

	TypePacketIn
	TypeFlowRemoved
	TypePortStatus

	TypePacketOut
	TypeFlowMod
	TypePortMod

	TypeStatsRequest
	TypeStatsReply

	TypeBarrierRequest
	TypeBarrierReply

	TypeQueueGetConfigRequest
	TypeQueueGetConfigReply
)

func (t Type) String() string {
	s, ok := typeText[t]
	if !ok {
		return "Type(unknown)"
	}
	return s
}

var typeText = map[Type]string{
	TypeHello:                 "OFPT_HELLO",
	TypeError:                 "OFPT_ERROR",
	TypeEchoRequest:           "OFPT_ECHO_REQUEST",
	TypeEchoReply:             "OFPT_ECHO_REPLY",
	TypeVendor:                "OFPT_VENDOR",
	TypeFeaturesRequest:       "OFPT_FEATURES_REQUEST",
	TypeFeaturesReply:         "OFPT_FEATURES_REPLY",
	TypeGetConfigRequest:      "OFPT_GET_CONFIG_REQUEST",
	TypeGetConfigReply:        "OFPT_GET_CONFIG_REPLY",
	TypeSetConfig:             "OFPT_SET_CONFIG",
	TypePacketIn:              "OFPT_PACKET_IN",
	TypeFlowRemoved:           "OFPT_FLOW_REMOVED",
	TypePortStatus:            "OFPT_PORT_STATUS",
	TypePacketOut:             "OFPT_PACKET_OUT",
	TypeFlowMod:               "OFPT_FLOW_MOD",
	TypePortMod:               "OFPT_PORT_MOD",
	TypeStatsRequest:          "OFPT_STATS_REQUEST",
	TypeStatsReply:            "OFPT_STATS_REPLY",
	TypeBarrierRequest:        "OFPT_BARRIER_REQUEST",
	TypeBarrierReply:          "OFPT_BARRIER_REPLY",
	TypeQueueGetConfigRequest: "OFPT_QUEUE_GET_CONFIG_REQUEST",
	TypeQueueGetConfigReply:   "OFPT_QUEUE_GET_CONFIG_REPLY",
}

// HeaderLen is the length in bytes of the fixed ofp_header.
const HeaderLen = 8

// ErrShortHeader is returned when fewer than HeaderLen bytes are available.
var ErrShortHeader = errors.New("ofp10: short header")

// Header is the 8-byte header prefixing every OpenFlow message.
type Header struct {
	Version uint8
	Type    Type
	// Length is the total length of the message, including this header.
	Length uint16
	// XID is the transaction id; replies echo the request's XID.
	XID uint32
}

// WriteTo implements io.WriterTo.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var buf [HeaderLen]byte
	buf[0] = h.Version
	buf[1] = byte(h.Type)
	binary.BigEndian.PutUint16(buf[2:4], h.Length)
	binary.BigEndian.PutUint32(buf[4:8], h.XID)

	n, err := w.Write(buf[:])
	return int64(n), err
}

// ReadFrom implements io.ReaderFrom.
func (h *Header) ReadFrom(r io.Reader) (int64, error) {
	var buf [HeaderLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	h.Version = buf[0]
	h.Type = Type(buf[1])
	h.Length = binary.BigEndian.Uint16(buf[2:4])
	h.XID = binary.BigEndian.Uint32(buf[4:8])
	return int64(n), nil
}
