package components

import (
	"testing"

	"github.com/oisee/circsim/pkg/level"
)

func TestNewWireStartsFloating(t *testing.T) {
	w := NewWire(1, "A", level.PullNone, nil, nil)
	if w.Level != level.Floating {
		t.Errorf("fresh pull=NONE wire should start FLOATING, got %v", w.Level)
	}

	wHigh := NewWire(2, "B", level.PullHigh, nil, nil)
	if wHigh.Level != level.PulledHigh {
		t.Errorf("fresh pull=HIGH wire should collapse to PULLED_HIGH, got %v", wHigh.Level)
	}
}

func TestNewSpecialWire(t *testing.T) {
	vcc := NewSpecialWire(10, level.SpecialVCC, nil, nil)
	if vcc.Level != level.High || !vcc.IsSpecial() {
		t.Errorf("VCC wire must start HIGH and special, got level=%v special=%v", vcc.Level, vcc.Special)
	}
	gnd := NewSpecialWire(11, level.SpecialGND, nil, nil)
	if gnd.Level != level.Grounded || !gnd.IsSpecial() {
		t.Errorf("GND wire must start GROUNDED and special, got level=%v special=%v", gnd.Level, gnd.Special)
	}
}

func TestSetFloatingIsNoOpForSpecial(t *testing.T) {
	vcc := NewSpecialWire(1, level.SpecialVCC, nil, nil)
	vcc.SetFloating()
	if vcc.Level != level.High {
		t.Errorf("SetFloating must not alter a special wire's level, got %v", vcc.Level)
	}
}

func TestMatchesName(t *testing.T) {
	w := NewWire(1, "CLK", level.PullNone, nil, nil)
	w.AddName("CLOCK")
	w.AddName("CLOCK") // duplicates tolerated

	for _, name := range []string{"CLK", "CLOCK"} {
		if !w.MatchesName(name) {
			t.Errorf("MatchesName(%q) = false, want true", name)
		}
	}
	if w.MatchesName("nope") {
		t.Error("MatchesName(\"nope\") = true, want false")
	}
}

func TestSetHighLow(t *testing.T) {
	w := NewWire(1, "A", level.PullNone, nil, nil)
	w.SetHighLow(true)
	if w.Level != level.PulledHigh {
		t.Errorf("SetHighLow(true) = %v, want PULLED_HIGH", w.Level)
	}
	w.SetHighLow(false)
	if w.Level != level.PulledLow {
		t.Errorf("SetHighLow(false) = %v, want PULLED_LOW", w.Level)
	}
}

func TestWireEqual(t *testing.T) {
	a := NewWire(1, "A", level.PullHigh, []TransistorID{1, 2}, []TransistorID{3})
	b := NewWire(1, "A", level.PullHigh, []TransistorID{1, 2}, []TransistorID{3})
	if !a.Equal(b) {
		t.Error("identically constructed wires must compare Equal")
	}
	b.AddName("alias")
	if a.Equal(b) {
		t.Error("wires with different alias lists must not compare Equal")
	}
}

func TestWireString(t *testing.T) {
	w := NewWire(1, "A", level.PullNone, nil, nil)
	if s := w.String(); s == "" {
		t.Error("String() must not be empty")
	}
}
