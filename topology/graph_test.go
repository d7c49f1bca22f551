package topology

import "testing"

func TestAddLinkIsBidirectionalAndInternal(t *testing.T) {
	g := NewGraph()
	g.AddLink(1, 10, 2, 20)

	ep, ok := g.Peer(1, 10)
	if !ok {
		t.Fatal("expected peer for switch 1 port 10")
	}
	if !ep.Internal() || ep.Switch != 2 || ep.Port != 20 {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}

	ep2, ok := g.Peer(2, 20)
	if !ok || ep2.Switch != 1 || ep2.Port != 10 {
		t.Fatalf("unexpected reverse endpoint: %+v", ep2)
	}
}

func TestRemoveLinkLeavesEdgePort(t *testing.T) {
	g := NewGraph()
	g.AddLink(1, 10, 2, 20)
	g.RemoveLink(1, 10, 2, 20)

	ep, ok := g.Peer(1, 10)
	if !ok {
		t.Fatal("expected port to still be known after RemoveLink")
	}
	if ep.Internal() {
		t.Fatal("port should no longer be internal after RemoveLink")
	}
}

func TestAddHost(t *testing.T) {
	g := NewGraph()
	g.AddHost(1, 5, "host-a")

	ep, ok := g.Peer(1, 5)
	if !ok {
		t.Fatal("expected peer for host port")
	}
	if ep.Kind != EndpointHost || ep.Host != "host-a" {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}
	if ep.Internal() {
		t.Fatal("host endpoint should not be internal")
	}
}

func TestPortsEnumeratesAllKnownPorts(t *testing.T) {
	g := NewGraph()
	g.AddPort(1, 1)
	g.AddLink(1, 2, 2, 1)
	g.AddHost(1, 3, "host-a")

	ports := g.Ports(1)
	if len(ports) != 3 {
		t.Fatalf("got %d ports, want 3", len(ports))
	}
}

func TestRemoveSwitchForgetsAllPorts(t *testing.T) {
	g := NewGraph()
	g.AddLink(1, 2, 2, 1)
	g.RemoveSwitch(1)

	if ports := g.Ports(1); len(ports) != 0 {
		t.Fatalf("expected no ports after RemoveSwitch, got %v", ports)
	}
	// the peer side is unaffected
	if _, ok := g.Peer(2, 1); !ok {
		t.Fatal("expected switch 2's port to still be known")
	}
}
