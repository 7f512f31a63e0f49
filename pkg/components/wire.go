// Package components defines the Wire and Transistor value types: the
// leaf entities of the circuit model. Both are small, trivially-copyable
// structs in the teacher's style (pkg/cpu/state.go's State, pkg/inst/instruction.go's
// Instruction) — cheap to pass by value, with adjacency expressed purely
// as integer IDs rather than pointers.
package components

import (
	"fmt"
	"strings"

	"github.com/oisee/circsim/pkg/level"
)

// WireID identifies a wire within a circuit store. Zero is a valid ID.
type WireID uint64

// Wire is a single electrical net. Adjacency lists (Control, Gate) are
// populated once during ingest and never mutated by the engine; only
// Level is mutated, by the simulator.
type Wire struct {
	ID      WireID
	Primary string
	Aliases []string

	Pull    level.Pull
	Special level.Special

	Level level.Level

	// Control lists the transistors whose source/drain terminals touch
	// this wire — i.e. this wire may be electrically joined to another
	// through them.
	Control []TransistorID

	// Gate lists the transistors whose gate this wire drives.
	Gate []TransistorID
}

// NewWire constructs an ordinary (non-special) wire. Per
// original_source/lib/components/src/Wire.cpp's constructor, a freshly
// built wire immediately collapses to its floating state instead of
// starting life mid-lattice.
func NewWire(id WireID, primary string, pull level.Pull, control, gate []TransistorID) *Wire {
	w := &Wire{
		ID:      id,
		Primary: primary,
		Pull:    pull,
		Special: level.SpecialNone,
		Control: control,
		Gate:    gate,
	}
	w.SetFloating()
	return w
}

// NewSpecialWire constructs the VCC or GND rail. Its level is fixed for
// life: HIGH for VCC, GROUNDED for GND.
func NewSpecialWire(id WireID, special level.Special, control, gate []TransistorID) *Wire {
	w := &Wire{
		ID:      id,
		Special: special,
		Control: control,
		Gate:    gate,
	}
	switch special {
	case level.SpecialVCC:
		w.Primary = "VCC"
		w.Level = level.High
	case level.SpecialGND:
		w.Primary = "GND"
		w.Level = level.Grounded
	}
	return w
}

// IsSpecial reports whether this wire is VCC or GND.
func (w *Wire) IsSpecial() bool { return w.Special != level.SpecialNone }

// Low reports whether the wire's current level is in the low set.
func (w *Wire) Low() bool { return w.Level.Low() }

// High reports whether the wire's current level is in the high set.
func (w *Wire) High() bool { return w.Level.High() }

// AddName appends an alias to the wire. Order-preserving; duplicates are
// tolerated (readers ignore repeats) rather than rejected here, matching
// original_source's Wire::add_name, which is a bare push_back.
func (w *Wire) AddName(name string) {
	w.Aliases = append(w.Aliases, name)
}

// MatchesName reports whether name equals the primary name or any alias.
func (w *Wire) MatchesName(name string) bool {
	if w.Primary == name {
		return true
	}
	for _, a := range w.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

// SetFloating applies the float-collapse rule (§4.2) to this wire's own
// current level and pull, the same operation a wire group applies to every
// member during resolution. VCC/GND wires are exempt: this is a no-op for
// them, matching original_source's early return in Wire::set_floating for
// special() wires.
func (w *Wire) SetFloating() {
	if w.IsSpecial() {
		return
	}
	w.Level = level.Collapse(w.Level, w.Pull)
}

// SetHighLow is the second, ordering-sensitive write path named in spec
// §9's open question: it writes PULLED_HIGH/PULLED_LOW directly,
// independent of SetFloating. Mixing the two write paths on the same wire
// before a convergence run is intentionally left order-dependent — see
// DESIGN.md.
func (w *Wire) SetHighLow(high bool) {
	if high {
		w.Level = level.PulledHigh
	} else {
		w.Level = level.PulledLow
	}
}

// Equal compares two wires field-by-field, matching original_source's
// Wire::operator==. Slices make Wire non-comparable with plain ==, so this
// is the method InternalStorage::contains_current relies on in the
// original — see SPEC_FULL.md §12.3.
func (w *Wire) Equal(o *Wire) bool {
	if w.ID != o.ID || w.Primary != o.Primary || w.Pull != o.Pull ||
		w.Special != o.Special || w.Level != o.Level {
		return false
	}
	if len(w.Aliases) != len(o.Aliases) {
		return false
	}
	for i := range w.Aliases {
		if w.Aliases[i] != o.Aliases[i] {
			return false
		}
	}
	if len(w.Control) != len(o.Control) || len(w.Gate) != len(o.Gate) {
		return false
	}
	for i := range w.Control {
		if w.Control[i] != o.Control[i] {
			return false
		}
	}
	for i := range w.Gate {
		if w.Gate[i] != o.Gate[i] {
			return false
		}
	}
	return true
}

func (w *Wire) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Wire %q:\n", w.Primary)
	fmt.Fprintf(&b, "\tId:\t\t%d\n", w.ID)
	fmt.Fprintf(&b, "\tState:\t\t%s\n", w.Level)
	fmt.Fprintf(&b, "\tPull:\t\t%s\n", w.Pull)
	if w.IsSpecial() {
		fmt.Fprintf(&b, "\tSpecial:\t%s\n", w.Special)
	}
	return b.String()
}
