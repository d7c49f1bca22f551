package controller

import (
	"errors"
	"testing"

	"github.com/netrack/ofcontroller/ofp10"
	"github.com/netrack/ofcontroller/policy"
	"github.com/netrack/ofcontroller/topology"
)

// ethernetFrame builds a minimal untagged Ethernet II frame with the given
// source/destination MACs and no payload beyond the 14-byte header.
func ethernetFrame(dst, src [6]byte, ethType uint16) []byte {
	b := make([]byte, ethHeaderLen)
	copy(b[0:6], dst[:])
	copy(b[6:12], src[:])
	b[12] = byte(ethType >> 8)
	b[13] = byte(ethType)
	return b
}

// staticEvaluator lets tests stub Eval without routing through a real
// Compiler/Policy pair.
type staticEvaluator struct {
	result []policy.Evaluated
	err    error
}

func (e *staticEvaluator) Eval(topology.SwitchId, policy.Policy, policy.HeaderValues) ([]policy.Evaluated, error) {
	return e.result, e.err
}

var mac2 = [6]byte{0, 0, 0, 0, 0, 2}

// TestPacketInScenario implements spec §8 scenario 3: a PacketIn with
// in_port=1 and a policy that rewrites EthDst and forwards to port 2
// yields one packet-out with actions [SetEthDst(MAC2), Output(Physical 2)].
func TestPacketInScenario(t *testing.T) {
	frame := ethernetFrame([6]byte{0, 0, 0, 0, 0, 9}, [6]byte{0, 0, 0, 0, 0, 1}, etherTypeIPv4)
	pi := &ofp10.PacketIn{BufferID: ofp10.NoBuffer, InPort: 1, TotalLen: uint16(len(frame)), Data: frame}

	orig, err := parseHeaders(frame, 1)
	if err != nil {
		t.Fatalf("parseHeaders: %v", err)
	}
	final := orig
	final.EthDst = mac2

	ev := &staticEvaluator{result: []policy.Evaluated{
		{Headers: final, Location: policy.Location{Port: 2}},
	}}

	result, err := evaluatePacketIn(ev, 1, nil, pi, newLogger())
	if err != nil {
		t.Fatalf("evaluatePacketIn: %v", err)
	}
	if len(result.outbound) != 1 || len(result.events) != 0 {
		t.Fatalf("got %d outbound, %d events, want 1 outbound, 0 events", len(result.outbound), len(result.events))
	}

	po := result.outbound[0]
	if len(po.Actions) != 2 {
		t.Fatalf("got %d actions, want 2: %+v", len(po.Actions), po.Actions)
	}
	setDst, ok := po.Actions[0].(ofp10.ActionSetDLDst)
	if !ok || setDst.Addr != mac2 {
		t.Fatalf("action 0 = %+v, want SetDLDst(%v)", po.Actions[0], mac2)
	}
	out, ok := po.Actions[1].(ofp10.ActionOutput)
	if !ok || out.Port != ofp10.PortNo(2) {
		t.Fatalf("action 1 = %+v, want Output(2)", po.Actions[1])
	}
}

func TestPacketInNoModificationOutputsOnly(t *testing.T) {
	frame := ethernetFrame([6]byte{0, 0, 0, 0, 0, 9}, [6]byte{0, 0, 0, 0, 0, 1}, etherTypeIPv4)
	pi := &ofp10.PacketIn{BufferID: ofp10.NoBuffer, InPort: 1, TotalLen: uint16(len(frame)), Data: frame}

	orig, _ := parseHeaders(frame, 1)
	ev := &staticEvaluator{result: []policy.Evaluated{
		{Headers: orig, Location: policy.Location{Port: 3}},
	}}

	result, err := evaluatePacketIn(ev, 1, nil, pi, newLogger())
	if err != nil {
		t.Fatalf("evaluatePacketIn: %v", err)
	}
	po := result.outbound[0]
	if len(po.Actions) != 1 {
		t.Fatalf("got %d actions, want exactly Output when no fields changed: %+v", len(po.Actions), po.Actions)
	}
	if _, ok := po.Actions[0].(ofp10.ActionOutput); !ok {
		t.Fatalf("action 0 = %+v, want Output", po.Actions[0])
	}
}

func TestPacketInPipeDeliveryEmitsEvent(t *testing.T) {
	frame := ethernetFrame([6]byte{0, 0, 0, 0, 0, 9}, [6]byte{0, 0, 0, 0, 0, 1}, etherTypeIPv4)
	pi := &ofp10.PacketIn{BufferID: ofp10.NoBuffer, InPort: 1, TotalLen: uint16(len(frame)), Data: frame}

	orig, _ := parseHeaders(frame, 1)
	ev := &staticEvaluator{result: []policy.Evaluated{
		{Headers: orig, Location: policy.Location{Pipe: "arp", IsPipe: true}},
	}}

	result, err := evaluatePacketIn(ev, 1, nil, pi, newLogger())
	if err != nil {
		t.Fatalf("evaluatePacketIn: %v", err)
	}
	if len(result.outbound) != 0 || len(result.events) != 1 {
		t.Fatalf("got %d outbound, %d events, want 0 outbound, 1 event", len(result.outbound), len(result.events))
	}
	if result.events[0].Pipe != "arp" {
		t.Fatalf("got pipe %q, want %q", result.events[0].Pipe, "arp")
	}
}

// TestPacketInBufferedUnmodifiedPipeEventKeepsBufferID covers §4.4 step 5
// for the common buffered, unmodified pipe-delivery path (ARP/LLDP/
// table-miss handling): the emitted event must still carry a usable
// payload (the parsed header bytes) and the original BufferID, since the
// switch still holds the full packet under that id.
func TestPacketInBufferedUnmodifiedPipeEventKeepsBufferID(t *testing.T) {
	frame := ethernetFrame([6]byte{0, 0, 0, 0, 0, 9}, [6]byte{0, 0, 0, 0, 0, 1}, etherTypeIPv4)
	pi := &ofp10.PacketIn{BufferID: 7, InPort: 1, TotalLen: uint16(len(frame)), Data: frame}

	orig, _ := parseHeaders(frame, 1)
	ev := &staticEvaluator{result: []policy.Evaluated{
		{Headers: orig, Location: policy.Location{Pipe: "arp", IsPipe: true}},
	}}

	result, err := evaluatePacketIn(ev, 1, nil, pi, newLogger())
	if err != nil {
		t.Fatalf("evaluatePacketIn: %v", err)
	}
	if len(result.events) != 1 {
		t.Fatalf("got %d events, want 1", len(result.events))
	}
	got := result.events[0]
	if got.BufferID != 7 {
		t.Fatalf("got BufferID %d, want 7 (original buffer retained)", got.BufferID)
	}
	if len(got.Payload) == 0 {
		t.Fatalf("expected a usable payload even when buffered, got none")
	}
}

// TestPacketInBufferedModifiedPipeEventInvalidatesBuffer covers §4.4 step
// 5's "downgrade to NotBuffered with the freshly serialized bytes": once
// the headers change, the switch's buffer no longer matches what the pipe
// should see, so the event reports NoBuffer and carries the rewritten
// bytes itself.
func TestPacketInBufferedModifiedPipeEventInvalidatesBuffer(t *testing.T) {
	frame := ethernetFrame([6]byte{0, 0, 0, 0, 0, 9}, [6]byte{0, 0, 0, 0, 0, 1}, etherTypeIPv4)
	pi := &ofp10.PacketIn{BufferID: 7, InPort: 1, TotalLen: uint16(len(frame)), Data: frame}

	orig, _ := parseHeaders(frame, 1)
	final := orig
	final.EthDst = mac2

	ev := &staticEvaluator{result: []policy.Evaluated{
		{Headers: final, Location: policy.Location{Pipe: "arp", IsPipe: true}},
	}}

	result, err := evaluatePacketIn(ev, 1, nil, pi, newLogger())
	if err != nil {
		t.Fatalf("evaluatePacketIn: %v", err)
	}
	if len(result.events) != 1 {
		t.Fatalf("got %d events, want 1", len(result.events))
	}
	got := result.events[0]
	if got.BufferID != ofp10.NoBuffer {
		t.Fatalf("got BufferID %d, want NoBuffer once headers are rewritten", got.BufferID)
	}
	if got.Payload[0] != mac2[0] || got.Payload[5] != mac2[5] {
		t.Fatalf("expected rewritten EthDst in re-serialized payload, got %v", got.Payload[0:12])
	}
}

// TestPacketInUnsupportedModificationDropsPipeEvent covers §4.4 step 5: a
// vlan change can't be re-serialized onto the pipe-bound packet, so the
// event is dropped rather than delivered with stale bytes.
func TestPacketInUnsupportedModificationDropsPipeEvent(t *testing.T) {
	frame := ethernetFrame([6]byte{0, 0, 0, 0, 0, 9}, [6]byte{0, 0, 0, 0, 0, 1}, etherTypeIPv4)
	pi := &ofp10.PacketIn{BufferID: ofp10.NoBuffer, InPort: 1, TotalLen: uint16(len(frame)), Data: frame}

	orig, _ := parseHeaders(frame, 1)
	modified := orig
	modified.HasVlan = true
	modified.Vlan = 42

	ev := &staticEvaluator{result: []policy.Evaluated{
		{Headers: modified, Location: policy.Location{Pipe: "arp", IsPipe: true}},
	}}

	result, err := evaluatePacketIn(ev, 1, nil, pi, newLogger())
	if err != nil {
		t.Fatalf("evaluatePacketIn: %v", err)
	}
	if len(result.events) != 0 {
		t.Fatalf("expected the unsupported-mod pipe event to be dropped, got %+v", result.events)
	}
}

// TestPacketInUnsupportedModificationToPhysFails covers the same rule on
// the forwarding path: ethType has no OpenFlow 1.0 set-field action, so
// the packet-out build fails with UnsupportedMod and is skipped, not sent.
func TestPacketInUnsupportedModificationToPhysFails(t *testing.T) {
	frame := ethernetFrame([6]byte{0, 0, 0, 0, 0, 9}, [6]byte{0, 0, 0, 0, 0, 1}, etherTypeIPv4)
	pi := &ofp10.PacketIn{BufferID: ofp10.NoBuffer, InPort: 1, TotalLen: uint16(len(frame)), Data: frame}

	orig, _ := parseHeaders(frame, 1)
	modified := orig
	modified.EthType = 0x86DD

	ev := &staticEvaluator{result: []policy.Evaluated{
		{Headers: modified, Location: policy.Location{Port: 2}},
	}}

	result, err := evaluatePacketIn(ev, 1, nil, pi, newLogger())
	if err != nil {
		t.Fatalf("evaluatePacketIn: %v", err)
	}
	if len(result.outbound) != 0 {
		t.Fatalf("expected the unsupported-mod packet-out to be skipped, got %+v", result.outbound)
	}
}

func TestPacketInAssertionFailedOnShortFrame(t *testing.T) {
	pi := &ofp10.PacketIn{BufferID: ofp10.NoBuffer, InPort: 1, Data: []byte{1, 2, 3}}
	ev := &staticEvaluator{}

	_, err := evaluatePacketIn(ev, 1, nil, pi, newLogger())
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != AssertionFailed {
		t.Fatalf("got %v, want AssertionFailed", err)
	}
}
