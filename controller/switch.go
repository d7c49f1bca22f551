package controller

import (
	"github.com/netrack/ofcontroller/internal/ofp10util"
	"github.com/netrack/ofcontroller/ofp10"
)

// switchConn is the southbound capability the controller core needs
// against one connected switch: send a handful of OpenFlow 1.0 message
// types. Barrier xids are allocated by the caller and passed in.
// wireConn (conn.go) is the concrete implementation wrapping an of.Conn;
// tests use a fakeConn.
type switchConn interface {
	sender

	sendFlowMod(fm *ofp10.FlowMod) error
	sendPacketOut(po *ofp10.PacketOut) error
	sendDeleteAllFlows() error
	close() error
}

// deleteAllFlows builds the FlowDelete FlowMod that matches every entry in
// a table (wildcard match, priority and out-port irrelevant to a
// non-strict delete).
func deleteAllFlows() *ofp10.FlowMod {
	return &ofp10.FlowMod{
		Match:    ofp10util.MatchAll(),
		Command:  ofp10.FlowDelete,
		BufferID: ofp10.NoBuffer,
		OutPort:  ofp10.PortNone,
	}
}
