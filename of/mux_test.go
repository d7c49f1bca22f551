package of

import (
	"io"
	"testing"

	"github.com/netrack/ofcontroller/ofp10"
)

func TestTypeMuxRoutesByType(t *testing.T) {
	mux := NewTypeMux()

	var helloCalls, echoCalls int
	mux.HandleFunc(ofp10.TypeHello, func(ResponseWriter, *Request) { helloCalls++ })
	mux.HandleFunc(ofp10.TypeEchoRequest, func(ResponseWriter, *Request) { echoCalls++ })

	req := &Request{Header: ofp10.Header{Type: ofp10.TypeHello}, Body: emptyBody{}}
	mux.Serve(nil, req)

	if helloCalls != 1 || echoCalls != 0 {
		t.Fatalf("helloCalls=%d echoCalls=%d", helloCalls, echoCalls)
	}
}

func TestTypeMuxMultipleHandlersSameType(t *testing.T) {
	mux := NewTypeMux()

	var calls int
	mux.HandleFunc(ofp10.TypeHello, func(ResponseWriter, *Request) { calls++ })
	mux.HandleFunc(ofp10.TypeHello, func(ResponseWriter, *Request) { calls++ })

	req := &Request{Header: ofp10.Header{Type: ofp10.TypeHello}, Body: emptyBody{}}
	mux.Serve(nil, req)

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestTypeMuxDiscardsUnmatched(t *testing.T) {
	mux := NewTypeMux()
	mux.HandleFunc(ofp10.TypeHello, func(ResponseWriter, *Request) {
		t.Fatal("handler for the wrong type should not be called")
	})

	req := &Request{Header: ofp10.Header{Type: ofp10.TypeEchoRequest}, Body: emptyBody{}}
	mux.Serve(nil, req)
}

type emptyBody struct{}

func (emptyBody) Read([]byte) (int, error) { return 0, io.EOF }
