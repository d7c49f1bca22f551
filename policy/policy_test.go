package policy

import "testing"

func TestOutputBuildsPhysicalAction(t *testing.T) {
	a := Output(3)
	if a.Kind != ActionOutputPhysical || a.Port != 3 {
		t.Fatalf("got %+v", a)
	}
}

func TestOutputControllerBuildsControllerAction(t *testing.T) {
	a := OutputController(128)
	if a.Kind != ActionOutputController || a.MaxLen != 128 {
		t.Fatalf("got %+v", a)
	}
}

func TestModifyBuildsModifyAction(t *testing.T) {
	a := Modify(ModifyEthDst, [6]byte{1, 2, 3, 4, 5, 6})
	if a.Kind != ActionModify || a.Field != ModifyEthDst {
		t.Fatalf("got %+v", a)
	}
	v, ok := a.Value.([6]byte)
	if !ok || v != [6]byte{1, 2, 3, 4, 5, 6} {
		t.Fatalf("got value %+v", a.Value)
	}
}

func TestFlowTableOrderingIsCallerOwned(t *testing.T) {
	ft := FlowTable{
		{Pattern: Pattern{HasInPort: true, InPort: 1}, Actions: []Action{Output(2)}},
		{Pattern: Pattern{}, Actions: []Action{OutputController(0)}},
	}
	if len(ft) != 2 {
		t.Fatalf("got %d entries, want 2", len(ft))
	}
	if ft[0].Pattern.InPort != 1 || !ft[0].Pattern.HasInPort {
		t.Fatalf("first entry pattern mismatch: %+v", ft[0].Pattern)
	}
}
