package controller

import (
	"github.com/netrack/ofcontroller/of"
	"github.com/netrack/ofcontroller/ofp10"
)

// wireConn adapts an of.Conn into the narrow switchConn capability the
// core depends on. Flow-mods and packet-outs get fresh xids from a shared
// barrierRegistry; barrier requests go out with the xid the caller passes.
type wireConn struct {
	conn of.Conn
	reg  *barrierRegistry
}

func newWireConn(conn of.Conn, reg *barrierRegistry) *wireConn {
	return &wireConn{conn: conn, reg: reg}
}

func (c *wireConn) sendFlowMod(fm *ofp10.FlowMod) error {
	req, err := of.NewRequest(ofp10.TypeFlowMod, c.reg.nextXID(), fm)
	if err != nil {
		return err
	}
	if err := c.conn.Send(req); err != nil {
		return err
	}
	return c.conn.Flush()
}

func (c *wireConn) sendPacketOut(po *ofp10.PacketOut) error {
	req, err := of.NewRequest(ofp10.TypePacketOut, c.reg.nextXID(), po)
	if err != nil {
		return err
	}
	if err := c.conn.Send(req); err != nil {
		return err
	}
	return c.conn.Flush()
}

func (c *wireConn) sendDeleteAllFlows() error {
	return c.sendFlowMod(deleteAllFlows())
}

func (c *wireConn) sendBarrierRequest(xid uint32) error {
	req, err := of.NewRequest(ofp10.TypeBarrierRequest, xid, &ofp10.BarrierRequest{})
	if err != nil {
		return err
	}
	if err := c.conn.Send(req); err != nil {
		return err
	}
	return c.conn.Flush()
}

func (c *wireConn) close() error {
	return c.conn.Close()
}
