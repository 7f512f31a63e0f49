package circuit

import (
	"errors"
	"testing"

	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/components"
	"github.com/oisee/circsim/pkg/level"
)

func TestInsertWireDuplicateId(t *testing.T) {
	s := New()
	if err := s.InsertWire(components.NewWire(1, "A", level.PullNone, nil, nil)); err != nil {
		t.Fatal(err)
	}
	err := s.InsertWire(components.NewWire(1, "B", level.PullNone, nil, nil))
	if !errors.Is(err, circerr.DuplicateId) {
		t.Errorf("InsertWire duplicate id: err = %v, want DuplicateId", err)
	}
}

func TestDuplicateSpecial(t *testing.T) {
	s := New()
	if err := s.InsertWire(components.NewSpecialWire(1, level.SpecialVCC, nil, nil)); err != nil {
		t.Fatal(err)
	}
	err := s.InsertWire(components.NewSpecialWire(2, level.SpecialVCC, nil, nil))
	if !errors.Is(err, circerr.DuplicateSpecial) {
		t.Errorf("second VCC insert: err = %v, want DuplicateSpecial", err)
	}

	// GND has its own independent slot.
	if err := s.InsertWire(components.NewSpecialWire(3, level.SpecialGND, nil, nil)); err != nil {
		t.Fatal(err)
	}
	vcc, ok := s.VCCID()
	if !ok || vcc != 1 {
		t.Errorf("VCCID() = (%d, %v), want (1, true)", vcc, ok)
	}
	gnd, ok := s.GNDID()
	if !ok || gnd != 3 {
		t.Errorf("GNDID() = (%d, %v), want (3, true)", gnd, ok)
	}
}

func TestGetWireNotFound(t *testing.T) {
	s := New()
	if _, err := s.GetWire(42); !errors.Is(err, circerr.NotFound) {
		t.Errorf("GetWire of missing id: err = %v, want NotFound", err)
	}
}

func TestFindWireByNamePrimaryThenAlias(t *testing.T) {
	s := New()
	w := components.NewWire(1, "OUT", level.PullNone, nil, nil)
	w.AddName("Q")
	if err := s.InsertWire(w); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindWireByName("OUT")
	if err != nil || got.ID != 1 {
		t.Errorf("FindWireByName(primary) = (%v, %v)", got, err)
	}
	got, err = s.FindWireByName("Q")
	if err != nil || got.ID != 1 {
		t.Errorf("FindWireByName(alias) = (%v, %v)", got, err)
	}
	if _, err := s.FindWireByName("nope"); !errors.Is(err, circerr.NotFound) {
		t.Errorf("FindWireByName(missing): err = %v, want NotFound", err)
	}
}

func TestContainsCurrent(t *testing.T) {
	s := New()
	w := components.NewWire(1, "A", level.PullNone, nil, nil)
	if err := s.InsertWire(w); err != nil {
		t.Fatal(err)
	}
	if !s.ContainsCurrent(w) {
		t.Error("ContainsCurrent(stored wire) = false, want true")
	}
	changed := components.NewWire(1, "A", level.PullHigh, nil, nil)
	if s.ContainsCurrent(changed) {
		t.Error("ContainsCurrent(wire with different pull) = true, want false")
	}
}

func TestResetCircuit(t *testing.T) {
	s := New()
	w := components.NewWire(1, "A", level.PullHigh, nil, nil)
	if err := s.InsertWire(w); err != nil {
		t.Fatal(err)
	}
	vcc := components.NewSpecialWire(2, level.SpecialVCC, nil, nil)
	if err := s.InsertWire(vcc); err != nil {
		t.Fatal(err)
	}
	tr := components.NewTransistor(1, "T1", 1, 1, 2, components.NMOS)
	tr.Conduction = true
	tr.Initialized = true
	if err := s.InsertTransistor(tr); err != nil {
		t.Fatal(err)
	}

	w.Level = level.High // simulate prior convergence drift
	s.ResetCircuit()

	if w.Level != level.PulledHigh { // pull=HIGH collapses back through Collapse
		t.Errorf("ResetCircuit: non-special wire level = %v, want PULLED_HIGH", w.Level)
	}
	if vcc.Level != level.High {
		t.Error("ResetCircuit must not touch special wires")
	}
	tr2, _ := s.GetTransistor(1)
	if tr2.Conduction || tr2.Initialized {
		t.Error("ResetCircuit must clear Conduction and Initialized")
	}
}

func TestCounts(t *testing.T) {
	s := New()
	_ = s.InsertWire(components.NewWire(1, "A", level.PullNone, nil, nil))
	_ = s.InsertWire(components.NewWire(2, "B", level.PullNone, nil, nil))
	_ = s.InsertTransistor(components.NewTransistor(1, "T1", 1, 1, 2, components.NMOS))
	if s.WireCount() != 2 {
		t.Errorf("WireCount() = %d, want 2", s.WireCount())
	}
	if s.TransistorCount() != 1 {
		t.Errorf("TransistorCount() = %d, want 1", s.TransistorCount())
	}
}
