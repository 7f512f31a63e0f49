// Package level implements the seven-valued wire-level lattice, the
// pull/special markers, and the float-collapse rule used by the
// propagation engine. Levels are disjoint bit flags so a set of levels
// present across a wire group can be OR-accumulated, the same way the
// teacher's flag register collects SZ53P bits into one accumulator
// (pkg/cpu/flags.go).
package level

// Level is one value from the seven-valued priority lattice. Values are
// one-hot so callers can OR several together while resolving a wire group.
type Level uint8

const (
	Floating      Level = 1 << iota // FLOATING      — priority 1 (weakest), never driven
	FloatingHigh                    // FLOATING_HIGH — priority 2, last driven high, now floating
	FloatingLow                     // FLOATING_LOW  — priority 3, last driven low, now floating
	PulledHigh                      // PULLED_HIGH   — priority 4, weak pull-up active
	PulledLow                       // PULLED_LOW    — priority 5, weak pull-down active
	High                            // HIGH          — priority 6, hard-tied to supply
	Grounded                        // GROUNDED      — priority 7 (strongest), hard-tied to ground
)

// lowMask and highMask implement the derived predicates from §3: low =
// {GROUNDED, PULLED_LOW, FLOATING_LOW}; high = {HIGH, PULLED_HIGH, FLOATING_HIGH}.
const (
	lowMask  = Grounded | PulledLow | FloatingLow
	highMask = High | PulledHigh | FloatingHigh
)

// Low reports whether the level belongs to the low set.
func (l Level) Low() bool { return l&lowMask != 0 }

// High reports whether the level belongs to the high set.
func (l Level) High() bool { return l&highMask != 0 }

// priorityOrder lists the four driven levels (GROUNDED, HIGH, PULLED_LOW,
// PULLED_HIGH) from strongest to weakest, matching the priority table in
// spec §3 and the SET_STATE cascade in
// original_source/lib/sim/src/WireGroup.cpp's _recalculate_group_state.
// The three floating levels are not listed; Strongest reports not-ok for
// them and ResolveFloatingTie decides instead.
var priorityOrder = [...]Level{Grounded, High, PulledLow, PulledHigh}

// Strongest picks the highest-priority level present in an OR-accumulated
// set of levels. If the only levels present are FloatingLow/FloatingHigh,
// the caller must break the tie itself (see ResolveFloatingTie) since that
// decision depends on counts, not just presence.
func Strongest(accumulated Level) (Level, bool) {
	for _, l := range priorityOrder {
		if accumulated&l != 0 {
			return l, true
		}
	}
	return 0, false
}

// ResolveFloatingTie implements the tie-break rule from spec §4.1: pick
// FLOATING_LOW when its count is >= FLOATING_HIGH's count, else
// FLOATING_HIGH. Ties favor LOW because downstream transistors treat
// FLOATING as non-conducting, and this choice preserves "off".
func ResolveFloatingTie(floatingLowCount, floatingHighCount int) Level {
	if floatingLowCount >= floatingHighCount {
		return FloatingLow
	}
	return FloatingHigh
}

func (l Level) String() string {
	switch l {
	case Grounded:
		return "GROUNDED"
	case High:
		return "HIGH"
	case PulledLow:
		return "PULLED_LOW"
	case PulledHigh:
		return "PULLED_HIGH"
	case FloatingLow:
		return "FLOATING_LOW"
	case FloatingHigh:
		return "FLOATING_HIGH"
	case Floating:
		return "FLOATING"
	default:
		return "UNKNOWN"
	}
}

// Pull is the weak pull-up/pull-down bias fixed at wire construction.
type Pull uint8

const (
	PullNone Pull = iota
	PullHigh
	PullLow
)

func (p Pull) String() string {
	switch p {
	case PullHigh:
		return "HIGH"
	case PullLow:
		return "LOW"
	default:
		return "NONE"
	}
}

// Special marks a wire as a hard rail (VCC/GND) never rewritten by the engine.
type Special uint8

const (
	SpecialNone Special = iota
	SpecialVCC
	SpecialGND
)

func (s Special) String() string {
	switch s {
	case SpecialVCC:
		return "VCC"
	case SpecialGND:
		return "GND"
	default:
		return "NONE"
	}
}

// Collapse applies the float-collapse rule (§4.2) to a wire's current
// level given its pull attribute, producing the level that gets
// OR-accumulated into a wire group's resolution. VCC/GND-special wires are
// exempt and must be handled by the caller before reaching here (see
// original_source's Wire::set_floating, which returns immediately for
// special() wires).
func Collapse(current Level, pull Pull) Level {
	switch pull {
	case PullHigh:
		return PulledHigh
	case PullLow:
		return PulledLow
	}

	// pull == PullNone: the level degrades to its floating counterpart,
	// or stays FLOATING if it was never driven.
	switch {
	case current.High():
		return FloatingHigh
	case current.Low():
		return FloatingLow
	default:
		return Floating
	}
}

// WriteBack computes the level to write onto a wire (other than VCC/GND)
// once a wire group has resolved, per spec §4.1's write-back rule.
func WriteBack(resolved Level, pull Pull) Level {
	switch resolved {
	case Grounded:
		if pull != PullNone {
			return PulledLow
		}
		return Grounded
	case High:
		if pull != PullNone {
			return PulledHigh
		}
		return High
	default:
		return resolved
	}
}
