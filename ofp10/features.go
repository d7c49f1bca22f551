package ofp10

import (
	"encoding/binary"
	"io"
)

// Capability is a bitmap of switch-wide capabilities, ofp_capabilities.
type Capability uint32

const (
	CapFlowStats Capability = 1 << iota
	CapTableStats
	CapPortStats
	CapSTP
	CapReserved
	CapIPReasm
	CapQueueStats
	CapArpMatchIP
)

// ActionCapability is a bitmap of the action types a switch supports,
// ofp_action_type used as a mask (1 << action type).
type ActionCapability uint32

const (
	ActionCapOutput ActionCapability = 1 << iota
	ActionCapSetVlanVid
	ActionCapSetVlanPcp
	ActionCapStripVlan
	ActionCapSetDLSrc
	ActionCapSetDLDst
	ActionCapSetNWSrc
	ActionCapSetNWDst
	ActionCapSetNWTos
	ActionCapSetTPSrc
	ActionCapSetTPDst
	ActionCapEnqueue
)

// featuresReplyFixedLen is the length of ofp_switch_features excluding the
// header and the trailing port list.
const featuresReplyFixedLen = 24

// FeaturesReply answers FeaturesRequest, describing a switch's identity,
// buffering capacity and capabilities, ofp_switch_features. It is sent once
// at connection setup and is the source of a session's datapath id.
type FeaturesReply struct {
	// DatapathID uniquely identifies the switch; the low 48 bits are
	// typically a MAC address, the high 16 bits an implementation-defined
	// tag.
	DatapathID uint64

	// NumBuffers is the number of packets the switch can buffer at once.
	NumBuffers uint32

	// NumTables is the number of flow tables supported. OpenFlow 1.0
	// controllers generally only use table 0.
	NumTables uint8

	Capabilities Capability
	Actions      ActionCapability

	Ports []Port
}

func (f *FeaturesReply) WriteTo(w io.Writer) (int64, error) {
	length := HeaderLen + featuresReplyFixedLen + len(f.Ports)*PortLen
	hdr := Header{Version: Version, Type: TypeFeaturesReply, Length: uint16(length)}

	var n int64
	nn, err := hdr.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}

	var buf [featuresReplyFixedLen]byte
	binary.BigEndian.PutUint64(buf[0:8], f.DatapathID)
	binary.BigEndian.PutUint32(buf[8:12], f.NumBuffers)
	buf[12] = f.NumTables
	// buf[13:16] pad
	binary.BigEndian.PutUint32(buf[16:20], uint32(f.Capabilities))
	binary.BigEndian.PutUint32(buf[20:24], uint32(f.Actions))

	nw, err := w.Write(buf[:])
	n += int64(nw)
	if err != nil {
		return n, err
	}

	for i := range f.Ports {
		nn, err = f.Ports[i].WriteTo(w)
		n += nn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (f *FeaturesReply) ReadFrom(r io.Reader) (int64, error) {
	var buf [featuresReplyFixedLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	f.DatapathID = binary.BigEndian.Uint64(buf[0:8])
	f.NumBuffers = binary.BigEndian.Uint32(buf[8:12])
	f.NumTables = buf[12]
	f.Capabilities = Capability(binary.BigEndian.Uint32(buf[16:20]))
	f.Actions = ActionCapability(binary.BigEndian.Uint32(buf[20:24]))

	f.Ports = f.Ports[:0]
	for {
		var p Port
		pn, err := p.ReadFrom(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return int64(n) + pn, err
		}
		f.Ports = append(f.Ports, p)
	}
	return int64(n), nil
}

// FeaturesRequest carries no body.
type FeaturesRequest struct{}

func (FeaturesRequest) WriteTo(w io.Writer) (int64, error) {
	hdr := Header{Version: Version, Type: TypeFeaturesRequest, Length: HeaderLen}
	return hdr.WriteTo(w)
}

func (*FeaturesRequest) ReadFrom(r io.Reader) (int64, error) {
	return 0, nil
}
