package controller

import (
	"errors"
	"testing"

	"github.com/netrack/ofcontroller/ofp10"
	"github.com/netrack/ofcontroller/policy"
	"github.com/netrack/ofcontroller/topology"
)

// fakeConn is a minimal in-memory switchConn recording every message sent
// to it, used by the updater and driver tests in place of a real
// connection (§9's "barrier completions" note: a fake is enough since the
// updaters never inspect the transport, only the southbound capability).
type fakeConn struct {
	flowMods    []*ofp10.FlowMod
	packetOuts  []*ofp10.PacketOut
	deletedAll  int
	barrierErr  error
	sendErr     error
	closeCalled bool
	barrierXIDs []uint32

	// onBarrier, if set, runs synchronously inside sendBarrierRequest --
	// e.g. to resolve the registry's pending channel from a background
	// goroutine before sendBarrier's caller can observe the xid.
	onBarrier func(xid uint32)
}

func (c *fakeConn) sendFlowMod(fm *ofp10.FlowMod) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.flowMods = append(c.flowMods, fm)
	return nil
}

func (c *fakeConn) sendPacketOut(po *ofp10.PacketOut) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.packetOuts = append(c.packetOuts, po)
	return nil
}

func (c *fakeConn) sendDeleteAllFlows() error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.deletedAll++
	return nil
}

func (c *fakeConn) sendBarrierRequest(xid uint32) error {
	c.barrierXIDs = append(c.barrierXIDs, xid)
	if c.onBarrier != nil {
		c.onBarrier(xid)
	}
	return c.barrierErr
}

func (c *fakeConn) close() error {
	c.closeCalled = true
	return nil
}

func dropTable() policy.FlowTable {
	return policy.FlowTable{{Pattern: policy.Pattern{}}}
}

func forwardTable(in, out topology.PortId) policy.FlowTable {
	return policy.FlowTable{{
		Pattern: policy.Pattern{InPort: in, HasInPort: true},
		Actions: []policy.Action{policy.Output(out)},
	}}
}

func TestBestEffortUpdateDeletesThenInstallsTopDown(t *testing.T) {
	conn := &fakeConn{}
	table := policy.FlowTable{
		{Pattern: policy.Pattern{}, Actions: []policy.Action{policy.Output(1)}},
		{Pattern: policy.Pattern{HasInPort: true, InPort: 2}, Actions: []policy.Action{policy.Output(3)}},
	}

	if err := bestEffortUpdate(conn, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn.deletedAll != 1 {
		t.Fatalf("expected exactly one delete-all, got %d", conn.deletedAll)
	}
	if len(conn.flowMods) != 2 {
		t.Fatalf("expected 2 flow-mods, got %d", len(conn.flowMods))
	}
	if conn.flowMods[0].Priority != startPriority || conn.flowMods[1].Priority != startPriority-1 {
		t.Fatalf("expected descending priorities from %d, got %d then %d",
			startPriority, conn.flowMods[0].Priority, conn.flowMods[1].Priority)
	}
}

func TestBestEffortUpdateEmptyTableIsAssertionFailed(t *testing.T) {
	conn := &fakeConn{}
	err := bestEffortUpdate(conn, nil)

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != AssertionFailed {
		t.Fatalf("got %v, want AssertionFailed", err)
	}
	if conn.deletedAll != 0 {
		t.Fatal("delete-all must not be sent when the table is rejected up front")
	}
}

func TestBestEffortUpdatePropagatesSendDropped(t *testing.T) {
	conn := &fakeConn{sendErr: errors.New("refused")}
	err := bestEffortUpdate(conn, dropTable())

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != SendDropped {
		t.Fatalf("got %v, want SendDropped", err)
	}
}

func TestMatchFromPatternWildcardsUnsetFields(t *testing.T) {
	m := matchFromPattern(policy.Pattern{})
	if m.Wildcards&ofp10.WildcardAll != ofp10.WildcardAll {
		t.Fatalf("expected a fully wildcarded match, got wildcards=%#x", m.Wildcards)
	}
}

func TestMatchFromPatternNarrowsSetFields(t *testing.T) {
	m := matchFromPattern(policy.Pattern{HasInPort: true, InPort: 5})
	if m.Wildcards&ofp10.WildcardInPort != 0 {
		t.Fatal("expected in_port wildcard bit cleared")
	}
	if m.InPort != 5 {
		t.Fatalf("got InPort=%d, want 5", m.InPort)
	}
}
