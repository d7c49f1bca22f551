package ofp10

import "io"

// BarrierRequest carries no body; the switch must finish processing every
// message that preceded it before replying with a BarrierReply of the same
// XID.
type BarrierRequest struct{}

func (BarrierRequest) WriteTo(w io.Writer) (int64, error) {
	hdr := Header{Version: Version, Type: TypeBarrierRequest, Length: HeaderLen}
	return hdr.WriteTo(w)
}

func (*BarrierRequest) ReadFrom(r io.Reader) (int64, error) {
	return 0, nil
}

// BarrierReply carries no body.
type BarrierReply struct{}

func (BarrierReply) WriteTo(w io.Writer) (int64, error) {
	hdr := Header{Version: Version, Type: TypeBarrierReply, Length: HeaderLen}
	return hdr.WriteTo(w)
}

func (*BarrierReply) ReadFrom(r io.Reader) (int64, error) {
	return 0, nil
}

// Hello carries no body in OpenFlow 1.0.
type Hello struct{}

func (Hello) WriteTo(w io.Writer) (int64, error) {
	hdr := Header{Version: Version, Type: TypeHello, Length: HeaderLen}
	return hdr.WriteTo(w)
}

func (*Hello) ReadFrom(r io.Reader) (int64, error) {
	return 0, nil
}

// EchoRequest/EchoReply carry an opaque, arbitrary-length payload that must
// be echoed back unchanged.
type EchoRequest struct{ Data []byte }

func (e *EchoRequest) WriteTo(w io.Writer) (int64, error) {
	hdr := Header{Version: Version, Type: TypeEchoRequest, Length: uint16(HeaderLen + len(e.Data))}
	var n int64
	nn, err := hdr.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}
	nw, err := w.Write(e.Data)
	return n + int64(nw), err
}

func (e *EchoRequest) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	e.Data = data
	return int64(len(data)), err
}

type EchoReply struct{ Data []byte }

func (e *EchoReply) WriteTo(w io.Writer) (int64, error) {
	hdr := Header{Version: Version, Type: TypeEchoReply, Length: uint16(HeaderLen + len(e.Data))}
	var n int64
	nn, err := hdr.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}
	nw, err := w.Write(e.Data)
	return n + int64(nw), err
}

func (e *EchoReply) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	e.Data = data
	return int64(len(data)), err
}
