package ofp10

import (
	"bytes"
	"fmt"
	"testing"
)

func TestActionOutputBytes(t *testing.T) {
	var buf bytes.Buffer
	a := ActionOutput{Port: PortFlood, MaxLen: 0}

	if _, err := a.WriteTo(&buf); err != nil {
		t.Fatal("marshal action:", err)
	}

	hexstr := fmt.Sprintf("%x", buf.Bytes())
	if hexstr != "00000008fffb0000" {
		t.Fatal("marshaled action data is incorrect:", hexstr)
	}
}

func TestActionsRoundTrip(t *testing.T) {
	as := Actions{
		ActionOutput{Port: 1, MaxLen: MaxLenNoBuffer},
		ActionSetVlanVid{VlanVid: 10},
		ActionSetVlanPcp{VlanPcp: 3},
		ActionStripVlan{},
		ActionSetDLSrc{Addr: [6]byte{1, 2, 3, 4, 5, 6}},
		ActionSetDLDst{Addr: [6]byte{6, 5, 4, 3, 2, 1}},
		ActionSetNWSrc{Addr: 0x0A000001},
		ActionSetNWDst{Addr: 0x0A000002},
		ActionSetNWTos{NWTos: 0x10},
		ActionSetTPSrc{Port: 80},
		ActionSetTPDst{Port: 443},
		ActionEnqueue{Port: 3, QueueID: 7},
	}

	var buf bytes.Buffer
	if _, err := as.WriteTo(&buf); err != nil {
		t.Fatal("marshal actions:", err)
	}
	if uint16(buf.Len()) != as.Len() {
		t.Fatalf("buffer length %d != Actions.Len() %d", buf.Len(), as.Len())
	}

	got, err := ReadActions(&buf)
	if err != nil {
		t.Fatal("unmarshal actions:", err)
	}
	if len(got) != len(as) {
		t.Fatalf("got %d actions, want %d", len(got), len(as))
	}
	for i := range as {
		if got[i] != as[i] {
			t.Fatalf("action %d mismatch: got %#v, want %#v", i, got[i], as[i])
		}
	}
}

func TestReadActionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	got, err := ReadActions(&buf)
	if err != nil {
		t.Fatal("unmarshal empty actions:", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no actions, got %d", len(got))
	}
}

func TestReadActionsInvalidLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x00, 0x00, 0x01})
	if _, err := ReadActions(&buf); err == nil {
		t.Fatal("expected error for invalid action length")
	}
}
