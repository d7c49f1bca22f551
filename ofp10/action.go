package ofp10

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ActionType identifies the kind of action in an action list, ofp_action_type.
type ActionType uint16

const (
	ActionTypeOutput ActionType = iota
	ActionTypeSetVlanVid
	ActionTypeSetVlanPcp
	ActionTypeStripVlan
	ActionTypeSetDLSrc
	ActionTypeSetDLDst
	ActionTypeSetNWSrc
	ActionTypeSetNWDst
	ActionTypeSetNWTos
	ActionTypeSetTPSrc
	ActionTypeSetTPDst
	ActionTypeEnqueue
	ActionTypeVendor ActionType = 0xFFFF
)

// MaxLenNoBuffer is the ActionOutput.MaxLen value meaning "send the entire
// packet, not just a header", used on Output(Controller) actions.
const MaxLenNoBuffer uint16 = 0xFFFF

// Action is a single OpenFlow 1.0 action. Concrete implementations are the
// Action* types declared below.
type Action interface {
	io.WriterTo
	Type() ActionType
	Len() uint16
}

// actionHeaderLen is the 4-byte (type, length) prefix common to every action.
const actionHeaderLen = 4

// ActionOutput forwards the packet out of Port. MaxLen bounds the number of
// bytes sent to the controller when Port is PortController; it is ignored
// otherwise.
type ActionOutput struct {
	Port   PortNo
	MaxLen uint16
}

func (a ActionOutput) Type() ActionType { return ActionTypeOutput }
func (a ActionOutput) Len() uint16      { return 8 }

func (a ActionOutput) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(ActionTypeOutput))
	binary.BigEndian.PutUint16(buf[2:4], 8)
	binary.BigEndian.PutUint16(buf[4:6], uint16(a.Port))
	binary.BigEndian.PutUint16(buf[6:8], a.MaxLen)
	n, err := w.Write(buf[:])
	return int64(n), err
}

// ActionSetVlanVid rewrites the 802.1Q VLAN identifier. VlanVid is written
// to the wire as given; removing the tag is ActionStripVlan's job.
type ActionSetVlanVid struct {
	VlanVid uint16
}

func (a ActionSetVlanVid) Type() ActionType { return ActionTypeSetVlanVid }
func (a ActionSetVlanVid) Len() uint16      { return 8 }

func (a ActionSetVlanVid) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(ActionTypeSetVlanVid))
	binary.BigEndian.PutUint16(buf[2:4], 8)
	binary.BigEndian.PutUint16(buf[4:6], a.VlanVid)
	n, err := w.Write(buf[:])
	return int64(n), err
}

// ActionSetVlanPcp rewrites the 802.1Q priority code point.
type ActionSetVlanPcp struct {
	VlanPcp uint8
}

func (a ActionSetVlanPcp) Type() ActionType { return ActionTypeSetVlanPcp }
func (a ActionSetVlanPcp) Len() uint16      { return 8 }

func (a ActionSetVlanPcp) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(ActionTypeSetVlanPcp))
	binary.BigEndian.PutUint16(buf[2:4], 8)
	buf[4] = a.VlanPcp
	n, err := w.Write(buf[:])
	return int64(n), err
}

// ActionStripVlan removes the 802.1Q header entirely.
type ActionStripVlan struct{}

func (a ActionStripVlan) Type() ActionType { return ActionTypeStripVlan }
func (a ActionStripVlan) Len() uint16      { return 8 }

func (a ActionStripVlan) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(ActionTypeStripVlan))
	binary.BigEndian.PutUint16(buf[2:4], 8)
	n, err := w.Write(buf[:])
	return int64(n), err
}

// actionDLAddr backs ActionSetDLSrc/ActionSetDLDst.
type actionDLAddr struct {
	typ  ActionType
	Addr [6]byte
}

func (a actionDLAddr) Len() uint16 { return 16 }

func (a actionDLAddr) writeTo(w io.Writer) (int64, error) {
	var buf [16]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(a.typ))
	binary.BigEndian.PutUint16(buf[2:4], 16)
	copy(buf[4:10], a.Addr[:])
	n, err := w.Write(buf[:])
	return int64(n), err
}

// ActionSetDLSrc rewrites the Ethernet source address.
type ActionSetDLSrc struct{ Addr [6]byte }

func (a ActionSetDLSrc) Type() ActionType          { return ActionTypeSetDLSrc }
func (a ActionSetDLSrc) Len() uint16               { return 16 }
func (a ActionSetDLSrc) WriteTo(w io.Writer) (int64, error) {
	return actionDLAddr{ActionTypeSetDLSrc, a.Addr}.writeTo(w)
}

// ActionSetDLDst rewrites the Ethernet destination address.
type ActionSetDLDst struct{ Addr [6]byte }

func (a ActionSetDLDst) Type() ActionType { return ActionTypeSetDLDst }
func (a ActionSetDLDst) Len() uint16      { return 16 }
func (a ActionSetDLDst) WriteTo(w io.Writer) (int64, error) {
	return actionDLAddr{ActionTypeSetDLDst, a.Addr}.writeTo(w)
}

// actionNWAddr backs ActionSetNWSrc/ActionSetNWDst.
type actionNWAddr struct {
	typ  ActionType
	Addr uint32
}

func (a actionNWAddr) writeTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(a.typ))
	binary.BigEndian.PutUint16(buf[2:4], 8)
	binary.BigEndian.PutUint32(buf[4:8], a.Addr)
	n, err := w.Write(buf[:])
	return int64(n), err
}

// ActionSetNWSrc rewrites the IPv4 source address.
type ActionSetNWSrc struct{ Addr uint32 }

func (a ActionSetNWSrc) Type() ActionType { return ActionTypeSetNWSrc }
func (a ActionSetNWSrc) Len() uint16      { return 8 }
func (a ActionSetNWSrc) WriteTo(w io.Writer) (int64, error) {
	return actionNWAddr{ActionTypeSetNWSrc, a.Addr}.writeTo(w)
}

// ActionSetNWDst rewrites the IPv4 destination address.
type ActionSetNWDst struct{ Addr uint32 }

func (a ActionSetNWDst) Type() ActionType { return ActionTypeSetNWDst }
func (a ActionSetNWDst) Len() uint16      { return 8 }
func (a ActionSetNWDst) WriteTo(w io.Writer) (int64, error) {
	return actionNWAddr{ActionTypeSetNWDst, a.Addr}.writeTo(w)
}

// ActionSetNWTos rewrites the IPv4 ToS/DSCP field.
type ActionSetNWTos struct{ NWTos uint8 }

func (a ActionSetNWTos) Type() ActionType { return ActionTypeSetNWTos }
func (a ActionSetNWTos) Len() uint16      { return 8 }

func (a ActionSetNWTos) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(ActionTypeSetNWTos))
	binary.BigEndian.PutUint16(buf[2:4], 8)
	buf[4] = a.NWTos
	n, err := w.Write(buf[:])
	return int64(n), err
}

// actionTPPort backs ActionSetTPSrc/ActionSetTPDst.
type actionTPPort struct {
	typ  ActionType
	Port uint16
}

func (a actionTPPort) writeTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(a.typ))
	binary.BigEndian.PutUint16(buf[2:4], 8)
	binary.BigEndian.PutUint16(buf[4:6], a.Port)
	n, err := w.Write(buf[:])
	return int64(n), err
}

// ActionSetTPSrc rewrites the TCP/UDP source port.
type ActionSetTPSrc struct{ Port uint16 }

func (a ActionSetTPSrc) Type() ActionType { return ActionTypeSetTPSrc }
func (a ActionSetTPSrc) Len() uint16      { return 8 }
func (a ActionSetTPSrc) WriteTo(w io.Writer) (int64, error) {
	return actionTPPort{ActionTypeSetTPSrc, a.Port}.writeTo(w)
}

// ActionSetTPDst rewrites the TCP/UDP destination port.
type ActionSetTPDst struct{ Port uint16 }

func (a ActionSetTPDst) Type() ActionType { return ActionTypeSetTPDst }
func (a ActionSetTPDst) Len() uint16      { return 8 }
func (a ActionSetTPDst) WriteTo(w io.Writer) (int64, error) {
	return actionTPPort{ActionTypeSetTPDst, a.Port}.writeTo(w)
}

// ActionEnqueue forwards the packet to a specific queue attached to Port.
type ActionEnqueue struct {
	Port    PortNo
	QueueID uint32
}

func (a ActionEnqueue) Type() ActionType { return ActionTypeEnqueue }
func (a ActionEnqueue) Len() uint16      { return 16 }

func (a ActionEnqueue) WriteTo(w io.Writer) (int64, error) {
	var buf [16]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(ActionTypeEnqueue))
	binary.BigEndian.PutUint16(buf[2:4], 16)
	binary.BigEndian.PutUint16(buf[4:6], uint16(a.Port))
	binary.BigEndian.PutUint32(buf[12:16], a.QueueID)
	n, err := w.Write(buf[:])
	return int64(n), err
}

// Actions is an ordered action list, applied in sequence by the switch.
type Actions []Action

// WriteTo writes every action in order.
func (as Actions) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, a := range as {
		nn, err := a.WriteTo(w)
		n += nn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Len returns the total wire length of as.
func (as Actions) Len() uint16 {
	var n uint16
	for _, a := range as {
		n += a.Len()
	}
	return n
}

// ReadActions decodes actions from r until r is exhausted (io.EOF). Callers
// must present r already scoped to exactly the action-list bytes, which is
// how the transport layer (package of) hands message bodies to readers.
func ReadActions(r io.Reader) (Actions, error) {
	var as Actions

	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF {
				return as, nil
			}
			return nil, err
		}

		typ := ActionType(binary.BigEndian.Uint16(hdr[0:2]))
		alen := int(binary.BigEndian.Uint16(hdr[2:4]))
		if alen < actionHeaderLen {
			return nil, fmt.Errorf("ofp10: invalid action length %d", alen)
		}

		body := make([]byte, alen-actionHeaderLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}

		a, err := decodeAction(typ, body)
		if err != nil {
			return nil, err
		}

		as = append(as, a)
	}
}

func decodeAction(typ ActionType, body []byte) (Action, error) {
	switch typ {
	case ActionTypeOutput:
		if len(body) < 4 {
			return nil, fmt.Errorf("ofp10: short output action")
		}
		return ActionOutput{
			Port:   PortNo(binary.BigEndian.Uint16(body[0:2])),
			MaxLen: binary.BigEndian.Uint16(body[2:4]),
		}, nil
	case ActionTypeSetVlanVid:
		return ActionSetVlanVid{VlanVid: binary.BigEndian.Uint16(body[0:2])}, nil
	case ActionTypeSetVlanPcp:
		return ActionSetVlanPcp{VlanPcp: body[0]}, nil
	case ActionTypeStripVlan:
		return ActionStripVlan{}, nil
	case ActionTypeSetDLSrc:
		var a ActionSetDLSrc
		copy(a.Addr[:], body[0:6])
		return a, nil
	case ActionTypeSetDLDst:
		var a ActionSetDLDst
		copy(a.Addr[:], body[0:6])
		return a, nil
	case ActionTypeSetNWSrc:
		return ActionSetNWSrc{Addr: binary.BigEndian.Uint32(body[0:4])}, nil
	case ActionTypeSetNWDst:
		return ActionSetNWDst{Addr: binary.BigEndian.Uint32(body[0:4])}, nil
	case ActionTypeSetNWTos:
		return ActionSetNWTos{NWTos: body[0]}, nil
	case ActionTypeSetTPSrc:
		return ActionSetTPSrc{Port: binary.BigEndian.Uint16(body[0:2])}, nil
	case ActionTypeSetTPDst:
		return ActionSetTPDst{Port: binary.BigEndian.Uint16(body[0:2])}, nil
	case ActionTypeEnqueue:
		return ActionEnqueue{
			Port:    PortNo(binary.BigEndian.Uint16(body[0:2])),
			QueueID: binary.BigEndian.Uint32(body[8:12]),
		}, nil
	default:
		return nil, fmt.Errorf("ofp10: unsupported action type %d", typ)
	}
}
