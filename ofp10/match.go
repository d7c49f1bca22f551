package ofp10

import (
	"encoding/binary"
	"io"
)

// Wildcards is the ofp_flow_wildcards bitmap: a set bit means the
// corresponding Match field is wildcarded (not matched).
type Wildcards uint32

const (
	WildcardInPort Wildcards = 1 << iota
	WildcardDLVlan
	WildcardDLSrc
	WildcardDLDst
	WildcardDLType
	WildcardNWProto
	WildcardTPSrc
	WildcardTPDst

	// NWSrc/NWDst each occupy a 6-bit count of wildcarded low-order
	// address bits; 32 or more (0x3f included) means fully wildcarded.
	wildcardNWSrcShift = 8
	wildcardNWDstShift = 14
	wildcardNWSrcMask  = Wildcards(0x3f) << wildcardNWSrcShift
	wildcardNWDstMask  = Wildcards(0x3f) << wildcardNWDstShift

	WildcardDLVlanPcp Wildcards = 1 << 20
	WildcardNWTos     Wildcards = 1 << 21

	WildcardAll Wildcards = (1 << 22) - 1
)

// WildcardNWSrc reports the wildcard bit set that fully wildcards the
// network source prefix (equivalent to a /0 mask).
func WildcardNWSrc() Wildcards { return wildcardNWSrcMask }

// WildcardNWDst reports the wildcard bit set that fully wildcards the
// network destination prefix.
func WildcardNWDst() Wildcards { return wildcardNWDstMask }

// VlanNone is the sentinel Match.DLVlan value meaning "packet carries no
// VLAN tag" -- distinct from wildcarding the field entirely.
const VlanNone uint16 = 0xFFFF

// MatchLen is the wire length of the fixed ofp_match structure.
const MatchLen = 40

// Match is the OpenFlow 1.0 flow match structure, ofp_match.
//
// A zero-value Match with Wildcards == WildcardAll matches every packet.
type Match struct {
	Wildcards Wildcards

	InPort PortNo

	DLSrc [6]byte
	DLDst [6]byte

	DLVlan    uint16
	DLVlanPcp uint8

	DLType uint16

	NWTos   uint8
	NWProto uint8

	NWSrc     uint32
	NWDst     uint32
	NWSrcMask uint8 // wildcarded low-order bits, 0..32
	NWDstMask uint8

	TPSrc uint16
	TPDst uint16
}

// WriteTo implements io.WriterTo.
func (m *Match) WriteTo(w io.Writer) (int64, error) {
	var buf [MatchLen]byte

	wc := m.Wildcards &^ (wildcardNWSrcMask | wildcardNWDstMask)
	wc |= Wildcards(m.NWSrcMask&0x3f) << wildcardNWSrcShift
	wc |= Wildcards(m.NWDstMask&0x3f) << wildcardNWDstShift

	binary.BigEndian.PutUint32(buf[0:4], uint32(wc))
	binary.BigEndian.PutUint16(buf[4:6], uint16(m.InPort))
	copy(buf[6:12], m.DLSrc[:])
	copy(buf[12:18], m.DLDst[:])
	binary.BigEndian.PutUint16(buf[18:20], m.DLVlan)
	buf[20] = m.DLVlanPcp
	// buf[21] pad
	binary.BigEndian.PutUint16(buf[22:24], m.DLType)
	buf[24] = m.NWTos
	buf[25] = m.NWProto
	// buf[26:28] pad
	binary.BigEndian.PutUint32(buf[28:32], m.NWSrc)
	binary.BigEndian.PutUint32(buf[32:36], m.NWDst)
	binary.BigEndian.PutUint16(buf[36:38], m.TPSrc)
	binary.BigEndian.PutUint16(buf[38:40], m.TPDst)

	n, err := w.Write(buf[:])
	return int64(n), err
}

// ReadFrom implements io.ReaderFrom.
func (m *Match) ReadFrom(r io.Reader) (int64, error) {
	var buf [MatchLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	wc := Wildcards(binary.BigEndian.Uint32(buf[0:4]))
	m.NWSrcMask = uint8((wc & wildcardNWSrcMask) >> wildcardNWSrcShift)
	m.NWDstMask = uint8((wc & wildcardNWDstMask) >> wildcardNWDstShift)
	m.Wildcards = wc &^ (wildcardNWSrcMask | wildcardNWDstMask)

	m.InPort = PortNo(binary.BigEndian.Uint16(buf[4:6]))
	copy(m.DLSrc[:], buf[6:12])
	copy(m.DLDst[:], buf[12:18])
	m.DLVlan = binary.BigEndian.Uint16(buf[18:20])
	m.DLVlanPcp = buf[20]
	m.DLType = binary.BigEndian.Uint16(buf[22:24])
	m.NWTos = buf[24]
	m.NWProto = buf[25]
	m.NWSrc = binary.BigEndian.Uint32(buf[28:32])
	m.NWDst = binary.BigEndian.Uint32(buf[32:36])
	m.TPSrc = binary.BigEndian.Uint16(buf[36:38])
	m.TPDst = binary.BigEndian.Uint16(buf[38:40])
	return int64(n), nil
}

// Equal reports whether m and o are field-for-field identical.
func (m Match) Equal(o Match) bool {
	return m == o
}
