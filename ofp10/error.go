package ofp10

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ErrorType is the high-level category of an ErrorMsg, ofp_error_type.
type ErrorType uint16

const (
	ErrTypeHelloFailed ErrorType = iota
	ErrTypeBadRequest
	ErrTypeBadAction
	ErrTypeFlowModFailed
	ErrTypePortModFailed
	ErrTypeQueueOpFailed
)

// errorFixedLen is the length of ofp_error_msg excluding the header and the
// variable-length data (a copy of the offending request, truncated).
const errorFixedLen = 4

// ErrorMsg is sent by a switch to report a problem processing a prior
// request, ofp_error_msg. Data carries as much of the original request as
// fits, useful for diagnosing the rejected message but not parsed further by
// the controller core.
type ErrorMsg struct {
	Type ErrorType
	Code uint16
	Data []byte
}

func (e *ErrorMsg) Error() string {
	return fmt.Sprintf("ofp10: error type=%d code=%d", e.Type, e.Code)
}

func (e *ErrorMsg) WriteTo(w io.Writer) (int64, error) {
	length := HeaderLen + errorFixedLen + len(e.Data)
	hdr := Header{Version: Version, Type: TypeError, Length: uint16(length)}

	var n int64
	nn, err := hdr.WriteTo(w)
	n += nn
	if err != nil {
		return n, err
	}

	var buf [errorFixedLen]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(e.Type))
	binary.BigEndian.PutUint16(buf[2:4], e.Code)

	nw, err := w.Write(buf[:])
	n += int64(nw)
	if err != nil {
		return n, err
	}

	nw, err = w.Write(e.Data)
	return n + int64(nw), err
}

func (e *ErrorMsg) ReadFrom(r io.Reader) (int64, error) {
	var buf [errorFixedLen]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	e.Type = ErrorType(binary.BigEndian.Uint16(buf[0:2]))
	e.Code = binary.BigEndian.Uint16(buf[2:4])

	data, err := io.ReadAll(r)
	e.Data = data
	return int64(n) + int64(len(data)), err
}
