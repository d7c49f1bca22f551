package ofp10

import (
	"encoding/binary"
	"errors"
	"io"
)

// PortNo identifies a switch port, ofp_port_no.
type PortNo uint16

// Reserved port numbers. Values at or above PortMax are not physical ports
// and are excluded from "usable" port enumeration by the event translator.
const (
	PortMax PortNo = 0xFF00

	PortInPort    PortNo = 0xFFF8
	PortTable     PortNo = 0xFFF9
	PortNormal    PortNo = 0xFFFA
	PortFlood     PortNo = 0xFFFB
	PortAll       PortNo = 0xFFFC
	PortController PortNo = 0xFFFD
	PortLocal     PortNo = 0xFFFE
	PortNone      PortNo = 0xFFFF
)

// Usable reports whether p refers to a physical, enumerable port.
func (p PortNo) Usable() bool {
	return p < PortMax
}

// PortConfig is a bitmap of ofp_port_config flags.
type PortConfig uint32

const (
	PortConfigDown    PortConfig = 1 << 0
	PortConfigNoSTP   PortConfig = 1 << 1
	PortConfigNoRecv  PortConfig = 1 << 2
	PortConfigNoRecvSTP PortConfig = 1 << 3
	PortConfigNoFlood PortConfig = 1 << 4
	PortConfigNoFwd   PortConfig = 1 << 5
	PortConfigNoPacketIn PortConfig = 1 << 6
)

// PortState is a bitmap of ofp_port_state flags.
type PortState uint32

const (
	PortStateLinkDown PortState = 1 << 0
	PortStateSTPListen PortState = 0 << 8
	PortStateSTPLearn  PortState = 1 << 8
	PortStateSTPForward PortState = 2 << 8
	PortStateSTPBlock  PortState = 3 << 8
	PortStateSTPMask   PortState = 3 << 8
)

// PortFeature is a bitmap of ofp_port_features flags.
type PortFeature uint32

const (
	PortFeature10MbHD  PortFeature = 1 << 0
	PortFeature10MbFD  PortFeature = 1 << 1
	PortFeature100MbHD PortFeature = 1 << 2
	PortFeature100MbFD PortFeature = 1 << 3
	PortFeature1GbHD   PortFeature = 1 << 4
	PortFeature1GbFD   PortFeature = 1 << 5
	PortFeature10GbFD  PortFeature = 1 << 6
	PortFeatureCopper  PortFeature = 1 << 7
	PortFeatureFiber   PortFeature = 1 << 8
	PortFeatureAutoneg PortFeature = 1 << 9
	PortFeaturePause   PortFeature = 1 << 10
	PortFeaturePauseAsym PortFeature = 1 << 11
)

// PortLen is the wire length of a single ofp_phy_port entry.
const PortLen = 48

// Port describes a physical port as reported in ofp_phy_port (used by
// FeaturesReply and PortStatus).
type Port struct {
	PortNo     PortNo
	HWAddr     [6]byte
	Name       string
	Config     PortConfig
	State      PortState
	Curr       PortFeature
	Advertised PortFeature
	Supported  PortFeature
	Peer       PortFeature
}

// Usable reports whether the port is enumerable (number below the reserved
// range) and administratively/physically up.
func (p *Port) Usable() bool {
	return p.PortNo.Usable() &&
		p.Config&PortConfigDown == 0 &&
		p.State&PortStateLinkDown == 0
}

// WriteTo implements io.WriterTo.
func (p *Port) WriteTo(w io.Writer) (int64, error) {
	var buf [PortLen]byte

	binary.BigEndian.PutUint16(buf[0:2], uint16(p.PortNo))
	copy(buf[2:8], p.HWAddr[:])

	name := make([]byte, 16)
	copy(name, p.Name)
	copy(buf[8:24], name)

	binary.BigEndian.PutUint32(buf[24:28], uint32(p.Config))
	binary.BigEndian.PutUint32(buf[28:32], uint32(p.State))
	binary.BigEndian.PutUint32(buf[32:36], uint32(p.Curr))
	binary.BigEndian.PutUint32(buf[36:40], uint32(p.Advertised))
	binary.BigEndian.PutUint32(buf[40:44], uint32(p.Supported))
	binary.BigEndian.PutUint32(buf[44:48], uint32(p.Peer))

	n, err := w.Write(buf[:])
	return int64(n), err
}

// ReadFrom implements io.ReaderFrom.
func (p *Port) ReadFrom(r io.Reader) (int64, error) {
	var buf [PortLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	p.PortNo = PortNo(binary.BigEndian.Uint16(buf[0:2]))
	copy(p.HWAddr[:], buf[2:8])

	nameEnd := 8
	for nameEnd < 24 && buf[nameEnd] != 0 {
		nameEnd++
	}
	p.Name = string(buf[8:nameEnd])

	p.Config = PortConfig(binary.BigEndian.Uint32(buf[24:28]))
	p.State = PortState(binary.BigEndian.Uint32(buf[28:32]))
	p.Curr = PortFeature(binary.BigEndian.Uint32(buf[32:36]))
	p.Advertised = PortFeature(binary.BigEndian.Uint32(buf[36:40]))
	p.Supported = PortFeature(binary.BigEndian.Uint32(buf[40:44]))
	p.Peer = PortFeature(binary.BigEndian.Uint32(buf[44:48]))
	return int64(n), nil
}

// ErrShortPort is returned when fewer than PortLen bytes are available.
var ErrShortPort = errors.New("ofp10: short port")
