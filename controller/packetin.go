package controller

import (
	"encoding/binary"
	"fmt"

	"github.com/netrack/ofcontroller/ofp10"
	"github.com/netrack/ofcontroller/policy"
	"github.com/netrack/ofcontroller/topology"
)

const (
	ethHeaderLen  = 14
	vlanTagLen    = 4
	etherTypeVLAN = 0x8100
	etherTypeIPv4 = 0x0800

	ipProtoTCP = 6
	ipProtoUDP = 17
)

// parseHeaders implements §4.4 step 1: parse a raw Ethernet frame into a
// HeaderValues record plus the ingress location it arrived on.
func parseHeaders(data []byte, inPort topology.PortId) (policy.HeaderValues, error) {
	var h policy.HeaderValues
	h.InPort = inPort

	if len(data) < ethHeaderLen {
		return h, newError(AssertionFailed, "parse_headers", fmt.Errorf("short frame: %d bytes", len(data)))
	}
	copy(h.EthDst[:], data[0:6])
	copy(h.EthSrc[:], data[6:12])

	off := 12
	ethType := binary.BigEndian.Uint16(data[off : off+2])
	if ethType == etherTypeVLAN {
		if len(data) < off+vlanTagLen+2 {
			return h, newError(AssertionFailed, "parse_headers", fmt.Errorf("short vlan tag"))
		}
		tci := binary.BigEndian.Uint16(data[off+2 : off+4])
		h.HasVlan = true
		h.Vlan = tci & 0x0FFF
		off += vlanTagLen
		ethType = binary.BigEndian.Uint16(data[off : off+2])
	}
	off += 2
	h.EthType = ethType

	if ethType == etherTypeIPv4 && len(data) >= off+20 {
		ipStart := off
		ihl := int(data[ipStart]&0x0F) * 4
		if ihl < 20 {
			ihl = 20
		}
		h.IPTos = data[ipStart+1]
		h.IPProto = data[ipStart+9]
		h.IPSrc = binary.BigEndian.Uint32(data[ipStart+12 : ipStart+16])
		h.IPDst = binary.BigEndian.Uint32(data[ipStart+16 : ipStart+20])

		l4 := ipStart + ihl
		if (h.IPProto == ipProtoTCP || h.IPProto == ipProtoUDP) && len(data) >= l4+4 {
			h.TPSrc = binary.BigEndian.Uint16(data[l4 : l4+2])
			h.TPDst = binary.BigEndian.Uint16(data[l4+2 : l4+4])
		}
	}
	return h, nil
}

// reserializeUnsupported reports whether making orig look like mod touches
// one of the fields packet_sync_headers cannot re-encode into raw bytes
// (§4.4 step 5: "currently: vlan, vlanPcp, ethType, ipProto").
func reserializeUnsupported(orig, mod policy.HeaderValues) bool {
	return orig.HasVlan != mod.HasVlan || orig.Vlan != mod.Vlan ||
		orig.EthType != mod.EthType || orig.IPProto != mod.IPProto
}

// serializeHeaders re-encodes mod's L2-L4 fields back into a copy of the
// original frame bytes (packet_sync_headers). Callers must have already
// checked reserializeUnsupported.
func serializeHeaders(data []byte, mod policy.HeaderValues) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	copy(out[0:6], mod.EthDst[:])
	copy(out[6:12], mod.EthSrc[:])

	off := 12
	ethType := binary.BigEndian.Uint16(out[off : off+2])
	if ethType == etherTypeVLAN {
		off += vlanTagLen
		ethType = binary.BigEndian.Uint16(out[off : off+2])
	}
	off += 2

	if ethType == etherTypeIPv4 && len(out) >= off+20 {
		ipStart := off
		ihl := int(out[ipStart]&0x0F) * 4
		if ihl < 20 {
			ihl = 20
		}
		out[ipStart+1] = mod.IPTos
		binary.BigEndian.PutUint32(out[ipStart+12:ipStart+16], mod.IPSrc)
		binary.BigEndian.PutUint32(out[ipStart+16:ipStart+20], mod.IPDst)

		l4 := ipStart + ihl
		if (mod.IPProto == ipProtoTCP || mod.IPProto == ipProtoUDP) && len(out) >= l4+4 {
			binary.BigEndian.PutUint16(out[l4:l4+2], mod.TPSrc)
			binary.BigEndian.PutUint16(out[l4+2:l4+4], mod.TPDst)
		}
	}
	return out
}

// wireActionsForModification implements §4.4 step 3: compare final against
// orig field by field, emitting a Modify action per changed field, always
// terminated by Output(Physical(port)). ethType and ipProto have no
// OpenFlow 1.0 set-field action at all, so a change to either is an
// UnsupportedMod regardless of step 5's byte-level restriction.
func wireActionsForModification(orig, final policy.HeaderValues, port topology.PortId) (ofp10.Actions, error) {
	var actions ofp10.Actions

	if final.EthType != orig.EthType {
		return nil, newError(UnsupportedMod, "packet_out_actions", fmt.Errorf("ethType has no OpenFlow 1.0 set-field action"))
	}
	if final.IPProto != orig.IPProto {
		return nil, newError(UnsupportedMod, "packet_out_actions", fmt.Errorf("ipProto has no OpenFlow 1.0 set-field action"))
	}

	if final.HasVlan != orig.HasVlan || final.Vlan != orig.Vlan {
		if !final.HasVlan {
			actions = append(actions, ofp10.ActionStripVlan{})
		} else {
			actions = append(actions, ofp10.ActionSetVlanVid{VlanVid: final.Vlan})
		}
	}
	if final.EthSrc != orig.EthSrc {
		actions = append(actions, ofp10.ActionSetDLSrc{Addr: final.EthSrc})
	}
	if final.EthDst != orig.EthDst {
		actions = append(actions, ofp10.ActionSetDLDst{Addr: final.EthDst})
	}
	if final.IPSrc != orig.IPSrc {
		actions = append(actions, ofp10.ActionSetNWSrc{Addr: final.IPSrc})
	}
	if final.IPDst != orig.IPDst {
		actions = append(actions, ofp10.ActionSetNWDst{Addr: final.IPDst})
	}
	if final.IPTos != orig.IPTos {
		actions = append(actions, ofp10.ActionSetNWTos{NWTos: final.IPTos})
	}
	if final.TPSrc != orig.TPSrc {
		actions = append(actions, ofp10.ActionSetTPSrc{Port: final.TPSrc})
	}
	if final.TPDst != orig.TPDst {
		actions = append(actions, ofp10.ActionSetTPDst{Port: final.TPDst})
	}

	actions = append(actions, ofp10.ActionOutput{Port: ofp10.PortNo(port), MaxLen: ofp10.MaxLenNoBuffer})
	return actions, nil
}

// packetInResult is the outcome of evaluating one raw PacketIn: zero or
// more packet-outs to send immediately, and zero or more network events
// (for packets that reached a pipe) to hand the app.
type packetInResult struct {
	outbound []*ofp10.PacketOut
	events   []Event
}

// evaluatePacketIn implements §4.4 steps 2-5 in full, given the policy
// already compiled/known for this switch.
func evaluatePacketIn(ev policy.Evaluator, sw topology.SwitchId, p policy.Policy, pi *ofp10.PacketIn, log *logger) (*packetInResult, error) {
	inPort := topology.PortId(pi.InPort)
	orig, err := parseHeaders(pi.Data, inPort)
	if err != nil {
		return nil, err
	}

	evaluated, err := ev.Eval(sw, p, orig)
	if err != nil {
		return nil, err
	}

	result := &packetInResult{}
	for _, e := range evaluated {
		if e.Location.IsPipe {
			result.events = append(result.events, buildPipeEventOrLog(sw, pi, orig, e, log)...)
			continue
		}

		po, err := buildPacketOut(pi, orig, e)
		if err != nil {
			log.Err().Err(err).Log("packet-in phys evaluation failed")
			continue
		}
		result.outbound = append(result.outbound, po)
	}
	return result, nil
}

func buildPacketOut(pi *ofp10.PacketIn, orig policy.HeaderValues, e policy.Evaluated) (*ofp10.PacketOut, error) {
	if e.Location.IsPipe {
		return nil, newError(AssertionFailed, "packet_out", fmt.Errorf("pipe location reached the forwarding path"))
	}

	actions, err := wireActionsForModification(orig, e.Headers, e.Location.Port)
	if err != nil {
		return nil, err
	}

	po := &ofp10.PacketOut{
		BufferID: pi.BufferID,
		InPort:   pi.InPort,
		Actions:  actions,
	}
	if !pi.Buffered() {
		po.Data = pi.Data
	}
	return po, nil
}

// buildPipeEventOrLog implements §4.4 step 5: re-serialize the (possibly
// modified) headers and emit a PacketIn network event for the pipe. If
// the modification can't be re-encoded, the packet is dropped with a
// logged UnsupportedMod error and no event is produced; the rest of the
// evaluated list still proceeds.
//
// The event always carries a usable payload: re-serialized header bytes
// either way, plus the original BufferID when the packet is still
// switch-buffered and unmodified. A header rewrite invalidates the
// switch's buffer (§4.4 step 5: "the buffer is invalidated -- downgrade
// to NotBuffered with the freshly serialized bytes"), so BufferID is
// reported as ofp10.NoBuffer whenever the headers changed.
func buildPipeEventOrLog(sw topology.SwitchId, pi *ofp10.PacketIn, orig policy.HeaderValues, e policy.Evaluated, log *logger) []Event {
	if reserializeUnsupported(orig, e.Headers) {
		log.Err().Str("pipe", e.Location.Pipe).
			Log("packet-in: unsupported header modification for pipe delivery")
		return nil
	}

	unmodified := orig == e.Headers
	payload := serializeHeaders(pi.Data, e.Headers)

	bufferID := ofp10.NoBuffer
	if pi.Buffered() && unmodified {
		bufferID = pi.BufferID
	}

	ev := Event{
		Kind:     PacketIn,
		Switch:   sw,
		Port:     topology.PortId(pi.InPort),
		Pipe:     e.Location.Pipe,
		Payload:  payload,
		BufferID: bufferID,
		TotalLen: uint32(pi.TotalLen),
	}
	return []Event{ev}
}
