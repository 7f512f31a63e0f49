// Package circuit implements the ID-indexed circuit store: the container
// that owns every Wire and Transistor by value and gives the engine O(1)
// lookup by ID. Grounded on pkg/inst/catalog.go's array/map-indexed
// catalog (Catalog [OpCodeCount]Info, AllOps()-style enumeration helpers)
// generalized from a fixed-size array to a growable ID-indexed map, since
// unlike the Z80 opcode space a circuit's wire/transistor count isn't
// known at compile time.
package circuit

import (
	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/components"
	"github.com/oisee/circsim/pkg/level"
)

// Store holds every wire and transistor in a circuit, indexed by ID, plus
// the single optional VCC/GND wire ID slots from spec §4.4. Per §5
// (single-threaded, cooperative scheduling), Store carries no internal
// locking — the engine owns exclusive mutable access for the duration of
// a run, same as the teacher's components are single-owner values rather
// than the mutex-guarded collection in pkg/result/table.go (that mutex
// exists because z80opt's WorkerPool is genuinely concurrent; this store
// never is).
type Store struct {
	wires       map[components.WireID]*components.Wire
	transistors map[components.TransistorID]*components.Transistor

	vccID    *components.WireID
	gndID    *components.WireID
	haveVCC  bool
	haveGND  bool
}

// New returns an empty circuit store.
func New() *Store {
	return &Store{
		wires:       make(map[components.WireID]*components.Wire),
		transistors: make(map[components.TransistorID]*components.Transistor),
	}
}

// InsertWire adds w to the store. Fails with DuplicateId if the ID
// already exists, or DuplicateSpecial if w is VCC/GND and one is already
// registered.
func (s *Store) InsertWire(w *components.Wire) error {
	if _, exists := s.wires[w.ID]; exists {
		return circerr.Newf(circerr.KindDuplicateId, "wire id %d already exists", w.ID)
	}
	if err := s.registerSpecial(w); err != nil {
		return err
	}
	s.wires[w.ID] = w
	return nil
}

// registerSpecial records w's ID in the VCC/GND slot if w is special,
// failing with DuplicateSpecial if that slot is already taken.
func (s *Store) registerSpecial(w *components.Wire) error {
	switch w.Special {
	case level.SpecialVCC:
		if s.haveVCC {
			return circerr.Newf(circerr.KindDuplicateSpecial, "VCC wire already registered")
		}
		id := w.ID
		s.vccID = &id
		s.haveVCC = true
	case level.SpecialGND:
		if s.haveGND {
			return circerr.Newf(circerr.KindDuplicateSpecial, "GND wire already registered")
		}
		id := w.ID
		s.gndID = &id
		s.haveGND = true
	}
	return nil
}

// OverwriteWire inserts w, replacing any existing wire with the same ID.
// VCC/GND slot bookkeeping is only updated on first insertion of a given
// ID, matching the store's "set on first insertion of a special wire"
// invariant; a later overwrite with a different special wire does not
// fail, it simply leaves the original slot assignment in place.
func (s *Store) OverwriteWire(w *components.Wire) {
	if _, exists := s.wires[w.ID]; !exists {
		_ = s.registerSpecial(w)
	}
	s.wires[w.ID] = w
}

// GetWire looks up a wire by ID.
func (s *Store) GetWire(id components.WireID) (*components.Wire, error) {
	w, ok := s.wires[id]
	if !ok {
		return nil, circerr.Newf(circerr.KindNotFound, "wire id %d not found", id)
	}
	return w, nil
}

// FindWireByName searches primary names then aliases, O(N) over the wire
// set, per spec §4.4.
func (s *Store) FindWireByName(name string) (*components.Wire, error) {
	for _, w := range s.wires {
		if w.Primary == name {
			return w, nil
		}
	}
	for _, w := range s.wires {
		if w.MatchesName(name) {
			return w, nil
		}
	}
	return nil, circerr.Newf(circerr.KindNotFound, "wire name %q not found", name)
}

// ContainsCurrent reports whether the store holds a wire with w's ID whose
// full value equals w, per original_source's InternalStorage::contains_current.
func (s *Store) ContainsCurrent(w *components.Wire) bool {
	existing, ok := s.wires[w.ID]
	return ok && existing.Equal(w)
}

// InsertTransistor adds t to the store. Fails with DuplicateId if the ID
// already exists.
func (s *Store) InsertTransistor(t *components.Transistor) error {
	if _, exists := s.transistors[t.ID]; exists {
		return circerr.Newf(circerr.KindDuplicateId, "transistor id %d already exists", t.ID)
	}
	s.transistors[t.ID] = t
	return nil
}

// OverwriteTransistor inserts t, replacing any existing transistor with
// the same ID.
func (s *Store) OverwriteTransistor(t *components.Transistor) {
	s.transistors[t.ID] = t
}

// GetTransistor looks up a transistor by ID.
func (s *Store) GetTransistor(id components.TransistorID) (*components.Transistor, error) {
	t, ok := s.transistors[id]
	if !ok {
		return nil, circerr.Newf(circerr.KindNotFound, "transistor id %d not found", id)
	}
	return t, nil
}

// ContainsCurrentTransistor mirrors ContainsCurrent for transistors.
func (s *Store) ContainsCurrentTransistor(t *components.Transistor) bool {
	existing, ok := s.transistors[t.ID]
	return ok && existing.Equal(t)
}

// WireCount returns the number of wires in the store.
func (s *Store) WireCount() int { return len(s.wires) }

// TransistorCount returns the number of transistors in the store.
func (s *Store) TransistorCount() int { return len(s.transistors) }

// VCCID returns the registered VCC wire ID, if any.
func (s *Store) VCCID() (components.WireID, bool) {
	if s.vccID == nil {
		return 0, false
	}
	return *s.vccID, true
}

// GNDID returns the registered GND wire ID, if any.
func (s *Store) GNDID() (components.WireID, bool) {
	if s.gndID == nil {
		return 0, false
	}
	return *s.gndID, true
}

// AllWireIDs returns every wire ID currently stored, unordered; callers
// needing deterministic order (per spec §5) must sort it themselves.
func (s *Store) AllWireIDs() []components.WireID {
	ids := make([]components.WireID, 0, len(s.wires))
	for id := range s.wires {
		ids = append(ids, id)
	}
	return ids
}

// AllTransistorIDs returns every transistor ID currently stored, unordered.
func (s *Store) AllTransistorIDs() []components.TransistorID {
	ids := make([]components.TransistorID, 0, len(s.transistors))
	for id := range s.transistors {
		ids = append(ids, id)
	}
	return ids
}

// ResetCircuit restores every non-special wire to its floating state
// (respecting pull) and clears every transistor's Initialized/Conduction
// flags, without touching topology. Mirrors
// original_source/lib/sim/include/circsim/sim/Simulator.hpp's
// reset_circuit (§12.2 of SPEC_FULL.md).
func (s *Store) ResetCircuit() {
	for _, w := range s.wires {
		if w.IsSpecial() {
			continue
		}
		w.Level = 0
		w.SetFloating()
	}
	for _, t := range s.transistors {
		t.Conduction = false
		t.Initialized = false
	}
}
