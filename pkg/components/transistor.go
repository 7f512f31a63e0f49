package components

import (
	"fmt"

	"github.com/oisee/circsim/pkg/level"
)

// TransistorID identifies a transistor within a circuit store.
type TransistorID uint64

// Polarity fixes a transistor's switching behavior.
type Polarity uint8

const (
	// NMOS conducts when the gate wire is high.
	NMOS Polarity = iota
	// PMOS conducts when the gate wire is low.
	PMOS
)

func (p Polarity) String() string {
	if p == PMOS {
		return "PMOS"
	}
	return "NMOS"
}

// Transistor is a three-terminal switch. Gate/Source/Drain are fixed wire
// IDs; Polarity is fixed; Conduction and Initialized are the only mutable
// fields, both owned by the simulation engine.
type Transistor struct {
	ID   TransistorID
	Name string

	Polarity Polarity
	Gate     WireID
	Source   WireID
	Drain    WireID

	Conduction  bool // true = ON
	Initialized bool
}

// NewTransistor constructs a transistor. Conduction starts OFF and
// Initialized starts false, matching original_source's Transistor()
// default constructor.
func NewTransistor(id TransistorID, name string, gate, source, drain WireID, polarity Polarity) *Transistor {
	return &Transistor{
		ID:       id,
		Name:     name,
		Polarity: polarity,
		Gate:     gate,
		Source:   source,
		Drain:    drain,
	}
}

// OtherTerminal returns the terminal of t that is not w — the wire a
// traversal crosses to when t is one of w's control transistors. ok is false
// if w is neither t's source nor t's drain, the structural-error case
// spec §4.1 calls out.
func (t *Transistor) OtherTerminal(w WireID) (other WireID, ok bool) {
	switch w {
	case t.Drain:
		return t.Source, true
	case t.Source:
		return t.Drain, true
	default:
		return 0, false
	}
}

// UpdateConduction recomputes Conduction from the gate wire's level and
// this transistor's polarity, per spec §3: ON when (NMOS ∧ gate is high)
// or (PMOS ∧ gate is low). Returns true if Conduction changed.
func (t *Transistor) UpdateConduction(gateLevel level.Level) (changed bool) {
	old := t.Conduction
	switch t.Polarity {
	case NMOS:
		t.Conduction = gateLevel.High()
	case PMOS:
		t.Conduction = gateLevel.Low()
	}
	return t.Conduction != old
}

// Equal compares two transistors field-by-field, matching
// original_source's Transistor::operator==.
func (t *Transistor) Equal(o *Transistor) bool {
	return t.ID == o.ID && t.Name == o.Name && t.Polarity == o.Polarity &&
		t.Gate == o.Gate && t.Source == o.Source && t.Drain == o.Drain
}

func (t *Transistor) String() string {
	return fmt.Sprintf("Transistor %q:\n\tId:\t\t%d\n\tType:\t\t%s\n\tGate:\t\t%d\n\tSource:\t\t%d\n\tDrain:\t\t%d\n",
		t.Name, t.ID, t.Polarity, t.Gate, t.Source, t.Drain)
}
