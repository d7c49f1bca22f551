package ofp10util

import (
	"testing"

	"github.com/netrack/ofcontroller/ofp10"
)

func TestMatchInPort(t *testing.T) {
	m := MatchInPort(MatchAll(), 3)
	if m.InPort != 3 {
		t.Fatalf("InPort = %d, want 3", m.InPort)
	}
	if m.Wildcards&ofp10.WildcardInPort != 0 {
		t.Fatal("InPort should no longer be wildcarded")
	}
	if m.Wildcards&ofp10.WildcardDLType == 0 {
		t.Fatal("DLType should still be wildcarded")
	}
}

func TestMatchNWSrcFullWildcard(t *testing.T) {
	m := MatchNWSrc(MatchAll(), 0, 0)
	if m.Wildcards&ofp10.WildcardNWSrc() != ofp10.WildcardNWSrc() {
		t.Fatal("prefixLen 0 should fully wildcard NWSrc")
	}
}

func TestMatchNWSrcExact(t *testing.T) {
	m := MatchNWSrc(MatchAll(), 0xC0A80001, 32)
	if m.Wildcards&ofp10.WildcardNWSrc() != 0 {
		t.Fatal("prefixLen 32 should not wildcard NWSrc")
	}
	if m.NWSrc != 0xC0A80001 {
		t.Fatalf("NWSrc = %x", m.NWSrc)
	}
}
