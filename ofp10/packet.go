package ofp10

import (
	"encoding/binary"
	"io"
)

// PacketInReason explains why the switch sent a packet to the controller.
type PacketInReason uint8

const (
	ReasonNoMatch PacketInReason = iota
	ReasonAction
)

// packetInFixedLen is the length of ofp_packet_in excluding the header and
// variable-length packet data.
const packetInFixedLen = 10

// PacketIn carries a packet (or a reference to one buffered at the switch)
// that matched a table-miss or an explicit Output(Controller) action.
type PacketIn struct {
	// BufferID references a packet held in the switch's buffer pool.
	// NoBuffer means Data holds the entire packet.
	BufferID uint32
	// TotalLen is the full length of the original packet, which may
	// exceed len(Data) when the switch truncated it.
	TotalLen uint16
	InPort   PortNo
	Reason   PacketInReason
	// Data holds TotalLen bytes when BufferID == NoBuffer, otherwise the
	// (possibly truncated) header bytes the switch chose to include.
	Data []byte
}

// Buffered reports whether the switch retained the full packet.
func (p *PacketIn) Buffered() bool {
	return p.BufferID != NoBuffer
}

func (p *PacketIn) WriteTo(w io.Writer) (int64, error) {
	length := HeaderLen + packetInFixedLen + len(p.Data)
	hdr := Header{Version: Version, Type: TypePacketIn, Length: uint16(length)}

	var n int64
	nn, err := hdr.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}

	var buf [packetInFixedLen]byte
	binary.BigEndian.PutUint32(buf[0:4], p.BufferID)
	binary.BigEndian.PutUint16(buf[4:6], p.TotalLen)
	binary.BigEndian.PutUint16(buf[6:8], uint16(p.InPort))
	buf[8] = byte(p.Reason)

	nw, err := w.Write(buf[:])
	n += int64(nw)
	if err != nil {
		return n, err
	}

	nw, err = w.Write(p.Data)
	n += int64(nw)
	return n, err
}

func (p *PacketIn) ReadFrom(r io.Reader) (int64, error) {
	var buf [packetInFixedLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	p.BufferID = binary.BigEndian.Uint32(buf[0:4])
	p.TotalLen = binary.BigEndian.Uint16(buf[4:6])
	p.InPort = PortNo(binary.BigEndian.Uint16(buf[6:8]))
	p.Reason = PacketInReason(buf[8])

	data, err := io.ReadAll(r)
	p.Data = data
	return int64(n) + int64(len(data)), err
}

// packetOutFixedLen is the length of ofp_packet_out excluding the header,
// action list and packet data.
const packetOutFixedLen = 8

// PacketOut instructs a switch to emit a packet (or replay one it has
// buffered) through the given action list.
type PacketOut struct {
	// BufferID references a buffered packet. NoBuffer means Data carries
	// the full packet bytes.
	BufferID uint32
	// InPort is the port the packet is considered to have arrived on,
	// used by actions such as Output(InPort). PortNone if not applicable.
	InPort  PortNo
	Actions Actions
	// Data holds the full packet when BufferID == NoBuffer; empty
	// otherwise.
	Data []byte
}

func (p *PacketOut) WriteTo(w io.Writer) (int64, error) {
	dataLen := 0
	if p.BufferID == NoBuffer {
		dataLen = len(p.Data)
	}

	length := HeaderLen + packetOutFixedLen + int(p.Actions.Len()) + dataLen
	hdr := Header{Version: Version, Type: TypePacketOut, Length: uint16(length)}

	var n int64
	nn, err := hdr.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}

	var buf [packetOutFixedLen]byte
	binary.BigEndian.PutUint32(buf[0:4], p.BufferID)
	binary.BigEndian.PutUint16(buf[4:6], uint16(p.InPort))
	binary.BigEndian.PutUint16(buf[6:8], p.Actions.Len())

	nw, err := w.Write(buf[:])
	n += int64(nw)
	if err != nil {
		return n, err
	}

	nn, err = p.Actions.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}

	if p.BufferID == NoBuffer {
		nw, err = w.Write(p.Data)
		n += int64(nw)
	}
	return n, err
}

func (p *PacketOut) ReadFrom(r io.Reader) (int64, error) {
	var buf [packetOutFixedLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	p.BufferID = binary.BigEndian.Uint32(buf[0:4])
	p.InPort = PortNo(binary.BigEndian.Uint16(buf[4:6]))
	actionsLen := int(binary.BigEndian.Uint16(buf[6:8]))

	actionBytes := make([]byte, actionsLen)
	if _, err := io.ReadFull(r, actionBytes); err != nil {
		return int64(n), err
	}

	actions, err := ReadActions(&sliceReader{actionBytes})
	if err != nil {
		return int64(n), err
	}
	p.Actions = actions

	data, err := io.ReadAll(r)
	p.Data = data
	return int64(n) + int64(actionsLen) + int64(len(data)), err
}
