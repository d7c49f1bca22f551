// Package of is the OpenFlow 1.0 transport layer: connection handling,
// request/response plumbing and type-based dispatch, kept separate from
// the wire encoding (package ofp10) and from the controller core so either
// can be exercised without the other.
package of

import (
	"bytes"
	"errors"
	"io"
	"math"
	"net"

	"github.com/netrack/ofcontroller/ofp10"
)

// ErrBodyTooLong is returned when a Request body would overflow the
// 16-bit message length field.
var ErrBodyTooLong = errors.New("of: request body too long")

// Request is a single parsed OpenFlow message, decoupled from any
// particular ofp10 type -- handlers decode Body into the concrete type
// their Header.Type implies.
type Request struct {
	Header ofp10.Header

	// Body holds the message bytes following the header. Never nil;
	// returns io.EOF immediately for header-only messages.
	Body io.Reader

	// Addr is the remote address the request arrived from.
	Addr net.Addr

	// ContentLength is the number of bytes available from Body.
	ContentLength int64
}

// NewRequest builds an outbound Request wrapping an ofp10 message.
//
// Every ofp10 message's WriteTo emits its own ofp_header as a side effect
// of the same round-trip shape its ReadFrom half expects back (see e.g.
// ofp10.FlowMod's tests, which read a Header off the front of WriteTo's
// output before parsing the rest as the message body). Request owns wire
// framing exclusively -- it needs the real xid the message body has no
// way to know in advance -- so NewRequest writes the message once, then
// strips that embedded header back off, keeping only the bytes after it
// as Body.
func NewRequest(t ofp10.Type, xid uint32, body io.WriterTo) (*Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if _, err := body.WriteTo(&buf); err != nil {
			return nil, err
		}
	}

	if buf.Len() > 0 {
		var embedded ofp10.Header
		if _, err := embedded.ReadFrom(&buf); err != nil {
			return nil, err
		}
	}

	if buf.Len() > math.MaxUint16-ofp10.HeaderLen {
		return nil, ErrBodyTooLong
	}

	return &Request{
		Header: ofp10.Header{
			Version: ofp10.Version,
			Type:    t,
			Length:  uint16(ofp10.HeaderLen + buf.Len()),
			XID:     xid,
		},
		Body:          &buf,
		ContentLength: int64(buf.Len()),
	}, nil
}

// WriteTo serializes the header followed by the body.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	var n int64
	nn, err := r.Header.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}

	if r.Body == nil {
		return n, nil
	}

	nc, err := io.Copy(w, r.Body)
	return n + nc, err
}

// ReadFrom parses a header followed by exactly Length-HeaderLen bytes of
// body from r.
func (r *Request) ReadFrom(rd io.Reader) (int64, error) {
	n, err := r.Header.ReadFrom(rd)
	if err != nil {
		return n, err
	}

	bodyLen := int(r.Header.Length) - ofp10.HeaderLen
	if bodyLen < 0 {
		return n, errors.New("of: header length shorter than header itself")
	}

	buf := make([]byte, bodyLen)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return n, err
	}

	r.Body = bytes.NewReader(buf)
	r.ContentLength = int64(bodyLen)
	return n + int64(bodyLen), nil
}
