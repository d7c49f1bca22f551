package policy

import (
	"fmt"

	"github.com/netrack/ofcontroller/topology"
)

// Static is the trivial stand-in for the NetKAT compiler the core treats
// as an external collaborator: a Policy that is also its own Compiler,
// carrying either one FlowTable shared by every switch or a per-switch
// override.
type Static struct {
	// Label aids logging; carries no semantic meaning.
	Label string

	// Table is compiled for any switch with no PerSwitch entry.
	Table FlowTable

	// PerSwitch overrides Table for specific switches.
	PerSwitch map[topology.SwitchId]FlowTable
}

// Name implements Policy.
func (s *Static) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "static"
}

// Compile implements Compiler. p must be the same *Static instance (or
// another one), since Static carries its own table rather than deriving
// one from an opaque term.
func (s *Static) Compile(sw topology.SwitchId, p Policy) (FlowTable, error) {
	st, ok := p.(*Static)
	if !ok {
		return nil, fmt.Errorf("policy: static compiler given non-static policy %T", p)
	}
	if st.PerSwitch != nil {
		if t, ok := st.PerSwitch[sw]; ok {
			return t, nil
		}
	}
	return st.Table, nil
}
