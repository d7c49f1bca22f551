package ofp10

import "io"

// PortReason explains why a PortStatus message was sent.
type PortReason uint8

const (
	PortAdd PortReason = iota
	PortDelete
	PortModify
)

// portStatusFixedLen is the length of ofp_port_status excluding the header
// and the embedded ofp_phy_port.
const portStatusFixedLen = 8

// PortStatus notifies the controller of a port configuration or state
// change, ofp_port_status. The event translator (package controller) folds
// this, together with the initial FeaturesReply port list, into PortUp and
// PortDown network events.
type PortStatus struct {
	Reason PortReason
	Desc   Port
}

func (p *PortStatus) WriteTo(w io.Writer) (int64, error) {
	length := HeaderLen + portStatusFixedLen + PortLen
	hdr := Header{Version: Version, Type: TypePortStatus, Length: uint16(length)}

	var n int64
	nn, err := hdr.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}

	var buf [portStatusFixedLen]byte
	buf[0] = byte(p.Reason)
	// buf[1:8] pad

	nw, err := w.Write(buf[:])
	n += int64(nw)
	if err != nil {
		return n, err
	}

	nn, err = p.Desc.WriteTo(w)
	n += nn
	return n, err
}

func (p *PortStatus) ReadFrom(r io.Reader) (int64, error) {
	var buf [portStatusFixedLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}
	p.Reason = PortReason(buf[0])

	pn, err := p.Desc.ReadFrom(r)
	return int64(n) + pn, err
}
