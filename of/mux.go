package of

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/netrack/ofcontroller/ofp10"
)

// Matcher decides whether a Request should be routed to a given handler.
type Matcher interface {
	Match(*Request) bool
}

// TypeMatcher matches requests by their header type.
type TypeMatcher ofp10.Type

func (t TypeMatcher) Match(r *Request) bool {
	return r.Header.Type == ofp10.Type(t)
}

type muxEntry struct {
	matcher Matcher
	handler Handler
}

// ServeMux dispatches a Request to every handler whose Matcher matches it.
type ServeMux struct {
	mu      sync.RWMutex
	entries []muxEntry
}

// NewServeMux allocates an empty ServeMux.
func NewServeMux() *ServeMux {
	return &ServeMux{}
}

// Handle registers handler for every Request matcher matches.
func (mux *ServeMux) Handle(m Matcher, h Handler) {
	if m == nil {
		panic("of: nil matcher")
	}
	if h == nil {
		panic("of: nil handler")
	}

	mux.mu.Lock()
	defer mux.mu.Unlock()
	mux.entries = append(mux.entries, muxEntry{m, h})
}

// Handlers returns every handler registered against r, preserving
// registration order.
func (mux *ServeMux) Handlers(r *Request) []Handler {
	mux.mu.RLock()
	defer mux.mu.RUnlock()

	var matched []Handler
	for _, e := range mux.entries {
		if e.matcher.Match(r) {
			matched = append(matched, e.handler)
		}
	}
	if len(matched) == 0 {
		return []Handler{DiscardHandler}
	}
	return matched
}

// Serve runs every handler matching r in registration order, rewinding
// the body between calls so each handler sees the full message.
func (mux *ServeMux) Serve(rw ResponseWriter, r *Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return
	}

	for _, h := range mux.Handlers(r) {
		r.Body = bytes.NewReader(body)
		h.Serve(rw, r)
	}
}

// TypeMux routes requests to handlers registered for their message type.
type TypeMux struct {
	mux *ServeMux
}

// NewTypeMux allocates an empty TypeMux.
func NewTypeMux() *TypeMux {
	return &TypeMux{mux: NewServeMux()}
}

// Handle registers h for every message of type t.
func (mux *TypeMux) Handle(t ofp10.Type, h Handler) {
	mux.mux.Handle(TypeMatcher(t), h)
}

// HandleFunc registers f for every message of type t.
func (mux *TypeMux) HandleFunc(t ofp10.Type, f func(ResponseWriter, *Request)) {
	mux.Handle(t, HandlerFunc(f))
}

// Serve implements Handler.
func (mux *TypeMux) Serve(rw ResponseWriter, r *Request) {
	mux.mux.Serve(rw, r)
}

// String aids debugging registrations via %v.
func (mux *TypeMux) String() string {
	mux.mux.mu.RLock()
	defer mux.mux.mu.RUnlock()
	return fmt.Sprintf("TypeMux(%d entries)", len(mux.mux.entries))
}
