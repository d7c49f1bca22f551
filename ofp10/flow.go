package ofp10

import (
	"encoding/binary"
	"io"
)

// FlowModCommand identifies the kind of flow-table modification requested.
type FlowModCommand uint16

const (
	// FlowAdd adds a new flow, overwriting any existing entry with an
	// identical (priority, match).
	FlowAdd FlowModCommand = iota
	// FlowModify modifies all matching flows.
	FlowModify
	// FlowModifyStrict modifies the entry strictly matching (match, priority).
	FlowModifyStrict
	// FlowDelete deletes all matching flows.
	FlowDelete
	// FlowDeleteStrict deletes the entry strictly matching (match, priority).
	FlowDeleteStrict
)

// FlowModFlag is a bitmap of ofp_flow_mod_flags.
type FlowModFlag uint16

const (
	FlowFlagSendFlowRem FlowModFlag = 1 << iota
	FlowFlagCheckOverlap
	FlowFlagEmergency
)

// NoBuffer indicates a FlowMod or PacketOut carries no buffered packet.
const NoBuffer uint32 = 0xFFFFFFFF

// flowModFixedLen is the length of ofp_flow_mod excluding the header and
// the trailing action list.
const flowModFixedLen = 64

// FlowMod is a controller-to-switch flow table modification, ofp_flow_mod.
type FlowMod struct {
	Match Match

	Cookie uint64

	Command FlowModCommand

	IdleTimeout uint16
	HardTimeout uint16

	// Priority ranks this entry against others in the table; higher
	// values are preferred. Ignored for non-strict deletes.
	Priority uint16

	// BufferID optionally refers to a packet buffered at the switch that
	// should be processed by this entry once installed.
	BufferID uint32

	// OutPort restricts FlowDelete/FlowDeleteStrict to entries whose
	// action list outputs to this port. PortNone (0xFFFF) disables the
	// restriction.
	OutPort PortNo

	Flags FlowModFlag

	Actions Actions
}

// WriteTo implements io.WriterTo, emitting the full message including the
// 8-byte ofp_header.
func (f *FlowMod) WriteTo(w io.Writer) (int64, error) {
	length := HeaderLen + flowModFixedLen + int(f.Actions.Len())

	hdr := Header{Version: Version, Type: TypeFlowMod, Length: uint16(length)}
	var n int64

	nn, err := hdr.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}

	var buf [flowModFixedLen]byte
	if _, err := f.Match.WriteTo(sliceWriter{buf[0:MatchLen]}); err != nil {
		return n, err
	}

	binary.BigEndian.PutUint64(buf[40:48], f.Cookie)
	binary.BigEndian.PutUint16(buf[48:50], uint16(f.Command))
	binary.BigEndian.PutUint16(buf[50:52], f.IdleTimeout)
	binary.BigEndian.PutUint16(buf[52:54], f.HardTimeout)
	binary.BigEndian.PutUint16(buf[54:56], f.Priority)
	binary.BigEndian.PutUint32(buf[56:60], f.BufferID)
	binary.BigEndian.PutUint16(buf[60:62], uint16(f.OutPort))
	binary.BigEndian.PutUint16(buf[62:64], uint16(f.Flags))

	nw, err := w.Write(buf[:])
	n += int64(nw)
	if err != nil {
		return n, err
	}

	nn, err = f.Actions.WriteTo(w)
	n += nn
	return n, err
}

// ReadFrom implements io.ReaderFrom. It expects the header to have already
// been consumed by the caller, matching the way the transport layer
// (package of) hands bodies to message types.
func (f *FlowMod) ReadFrom(r io.Reader) (int64, error) {
	var buf [flowModFixedLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	if _, err := f.Match.ReadFrom(&sliceReader{buf[0:MatchLen]}); err != nil {
		return int64(n), err
	}

	f.Cookie = binary.BigEndian.Uint64(buf[40:48])
	f.Command = FlowModCommand(binary.BigEndian.Uint16(buf[48:50]))
	f.IdleTimeout = binary.BigEndian.Uint16(buf[50:52])
	f.HardTimeout = binary.BigEndian.Uint16(buf[52:54])
	f.Priority = binary.BigEndian.Uint16(buf[54:56])
	f.BufferID = binary.BigEndian.Uint32(buf[56:60])
	f.OutPort = PortNo(binary.BigEndian.Uint16(buf[60:62]))
	f.Flags = FlowModFlag(binary.BigEndian.Uint16(buf[62:64]))

	actions, err := ReadActions(r)
	f.Actions = actions
	return int64(n), err
}

// sliceWriter/sliceReader adapt a fixed byte slice to io.Writer/io.Reader
// without an extra allocation, used to reuse Match's WriteTo/ReadFrom
// against a sub-slice of a larger fixed buffer.
type sliceWriter struct{ b []byte }

func (s sliceWriter) Write(p []byte) (int, error) {
	return copy(s.b, p), nil
}

type sliceReader struct{ b []byte }

func (s *sliceReader) Read(p []byte) (int, error) {
	if len(s.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.b)
	s.b = s.b[n:]
	return n, nil
}
