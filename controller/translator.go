package controller

import (
	"github.com/netrack/ofcontroller/ofp10"
	"github.com/netrack/ofcontroller/topology"
)

// translator turns raw per-switch connection activity into the network
// events the driver's app function consumes (§4.3).
type translator struct {
	log *logger
}

func newTranslator(log *logger) *translator {
	return &translator{log: component(log, "translator")}
}

// onConnect implements the Connect(feats) rule: SwitchUp followed by
// PortUp for every usable port (number below the reserved range, neither
// administratively nor physically down).
func (t *translator) onConnect(sw topology.SwitchId, feats *ofp10.FeaturesReply) []Event {
	events := make([]Event, 0, 1+len(feats.Ports))
	events = append(events, Event{Kind: SwitchUp, Switch: sw})

	for i := range feats.Ports {
		p := &feats.Ports[i]
		if !p.Usable() {
			continue
		}
		events = append(events, Event{Kind: PortUp, Switch: sw, Port: topology.PortId(p.PortNo)})
	}
	return events
}

// onDisconnect implements the Disconnect rule: PortDown for every port the
// topology view still knows about, then SwitchDown.
func (t *translator) onDisconnect(sw topology.SwitchId, topo topology.View) []Event {
	ports := topo.Ports(sw)
	events := make([]Event, 0, len(ports)+1)
	for _, p := range ports {
		events = append(events, Event{Kind: PortDown, Switch: sw, Port: p})
	}
	events = append(events, Event{Kind: SwitchDown, Switch: sw})
	return events
}

// onPortStatus implements the PortStatus(reason, desc) rule: Add/Modify
// with a usable port becomes PortUp; Delete, or Modify with an unusable
// port, becomes PortDown; anything else is ignored.
func (t *translator) onPortStatus(sw topology.SwitchId, ps *ofp10.PortStatus) []Event {
	port := topology.PortId(ps.Desc.PortNo)

	switch ps.Reason {
	case ofp10.PortAdd:
		if ps.Desc.Usable() {
			return []Event{{Kind: PortUp, Switch: sw, Port: port}}
		}
	case ofp10.PortModify:
		if ps.Desc.Usable() {
			return []Event{{Kind: PortUp, Switch: sw, Port: port}}
		}
		return []Event{{Kind: PortDown, Switch: sw, Port: port}}
	case ofp10.PortDelete:
		return []Event{{Kind: PortDown, Switch: sw, Port: port}}
	}
	return nil
}

// onBarrierReply resolves the matching registry entry; an unknown xid is
// logged at error level and otherwise ignored, per §4.3.
func (t *translator) onBarrierReply(reg *barrierRegistry, xid uint32) {
	if ok := reg.resolve(xid, nil); !ok {
		t.log.Err().Uint64("xid", uint64(xid)).Log("barrier reply for unknown xid")
	}
}

// onOther logs and drops any message type the translator has no rule for.
func (t *translator) onOther(typ ofp10.Type) {
	t.log.Debug().Str("type", typ.String()).Log("dropped unhandled message")
}
