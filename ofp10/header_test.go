package ofp10

import (
	"bytes"
	"fmt"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Version: Version, Type: TypeHello, Length: HeaderLen, XID: 42}

	var buf bytes.Buffer
	if _, err := h.WriteTo(&buf); err != nil {
		t.Fatal("marshal header:", err)
	}

	hexstr := fmt.Sprintf("%x", buf.Bytes())
	if hexstr != "010000080000002a" {
		t.Fatal("unexpected header bytes:", hexstr)
	}

	var got Header
	if _, err := got.ReadFrom(&buf); err != nil {
		t.Fatal("unmarshal header:", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestTypeString(t *testing.T) {
	if s := TypeFlowMod.String(); s != "OFPT_FLOW_MOD" {
		t.Fatalf("TypeFlowMod.String() = %q", s)
	}
	if s := Type(255).String(); s != "Type(unknown)" {
		t.Fatalf("Type(255).String() = %q", s)
	}
}
