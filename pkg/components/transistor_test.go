package components

import (
	"testing"

	"github.com/oisee/circsim/pkg/level"
)

func TestOtherTerminal(t *testing.T) {
	tr := NewTransistor(1, "T1", 10, 20, 30, NMOS) // gate=10 source=20 drain=30
	if other, ok := tr.OtherTerminal(20); !ok || other != 30 {
		t.Errorf("OtherTerminal(source) = (%d, %v), want (30, true)", other, ok)
	}
	if other, ok := tr.OtherTerminal(30); !ok || other != 20 {
		t.Errorf("OtherTerminal(drain) = (%d, %v), want (20, true)", other, ok)
	}
	if _, ok := tr.OtherTerminal(99); ok {
		t.Error("OtherTerminal of an unrelated wire must report ok=false (structural error case)")
	}
}

// TestUpdateConduction exercises spec §3's conduction rule for every
// level against both polarities, including the FLOATING edge case where
// a gate is neither high nor low.
func TestUpdateConduction(t *testing.T) {
	tests := []struct {
		gateLevel level.Level
		nmosOn    bool
		pmosOn    bool
	}{
		{level.High, true, false},
		{level.PulledHigh, true, false},
		{level.FloatingHigh, true, false},
		{level.Grounded, false, true},
		{level.PulledLow, false, true},
		{level.FloatingLow, false, true},
		{level.Floating, false, false}, // neither high nor low: both polarities off
	}
	for _, tc := range tests {
		nmos := NewTransistor(1, "n", 0, 0, 0, NMOS)
		nmos.UpdateConduction(tc.gateLevel)
		if nmos.Conduction != tc.nmosOn {
			t.Errorf("NMOS conduction for gate=%v = %v, want %v", tc.gateLevel, nmos.Conduction, tc.nmosOn)
		}

		pmos := NewTransistor(2, "p", 0, 0, 0, PMOS)
		pmos.UpdateConduction(tc.gateLevel)
		if pmos.Conduction != tc.pmosOn {
			t.Errorf("PMOS conduction for gate=%v = %v, want %v", tc.gateLevel, pmos.Conduction, tc.pmosOn)
		}
	}
}

func TestUpdateConductionReportsChange(t *testing.T) {
	tr := NewTransistor(1, "T1", 0, 0, 0, NMOS)
	if changed := tr.UpdateConduction(level.Grounded); changed {
		t.Error("OFF -> OFF must report unchanged")
	}
	if changed := tr.UpdateConduction(level.High); !changed {
		t.Error("OFF -> ON must report changed")
	}
	if changed := tr.UpdateConduction(level.PulledHigh); changed {
		t.Error("ON -> ON (still high) must report unchanged")
	}
}

func TestTransistorEqual(t *testing.T) {
	a := NewTransistor(1, "T1", 1, 2, 3, NMOS)
	b := NewTransistor(1, "T1", 1, 2, 3, NMOS)
	if !a.Equal(b) {
		t.Error("identically constructed transistors must compare Equal")
	}
	c := NewTransistor(1, "T1", 1, 2, 3, PMOS)
	if a.Equal(c) {
		t.Error("transistors differing only in polarity must not compare Equal")
	}
}
