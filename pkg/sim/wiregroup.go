package sim

import (
	"sort"

	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/circuit"
	"github.com/oisee/circsim/pkg/components"
	"github.com/oisee/circsim/pkg/level"
)

// buildWireGroup performs the BFS traversal from spec §4.1: starting at
// seed, cross every ON control transistor to its other terminal, adding
// newly-reached wires to the group, until no new wire is reached.
// Grounded on pkg/search/enumerator.go's queue-driven traversal over a
// recursively expanded set, here applied to circuit topology instead of
// instruction sequences.
func buildWireGroup(store *circuit.Store, seed components.WireID) ([]components.WireID, error) {
	visited := map[components.WireID]bool{seed: true}
	queue := []components.WireID{seed}
	members := []components.WireID{seed}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		w, err := store.GetWire(id)
		if err != nil {
			return nil, err
		}
		for _, tid := range w.Control {
			t, err := store.GetTransistor(tid)
			if err != nil {
				return nil, err
			}
			if !t.Conduction {
				continue
			}
			other, ok := t.OtherTerminal(id)
			if !ok {
				return nil, circerr.Newf(circerr.KindStructuralError,
					"transistor %d: control list references wire %d which is neither its source nor drain", tid, id)
			}
			if visited[other] {
				continue
			}
			visited[other] = true
			queue = append(queue, other)
			members = append(members, other)
		}
	}

	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members, nil
}

// resolveGroup computes the single level the wire group resolves to, per
// spec §4.1: GROUNDED wins outright; otherwise the strongest level
// present among VCC/collapsed-member levels wins by priority; a tie
// between only FLOATING_LOW and FLOATING_HIGH is broken by count. As a
// side effect (mirroring original_source/lib/sim/src/WireGroup.cpp's
// _recalculate_group_state), every non-special member has its level
// collapsed via SetFloating before levels are OR-accumulated.
func resolveGroup(store *circuit.Store, members []components.WireID) (level.Level, error) {
	var accumulated level.Level
	floatingLow, floatingHigh := 0, 0

	for _, id := range members {
		w, err := store.GetWire(id)
		if err != nil {
			return 0, err
		}
		if w.IsSpecial() {
			if w.Special == level.SpecialGND {
				return level.Grounded, nil
			}
			accumulated |= level.High
			continue
		}
		w.SetFloating()
		switch w.Level {
		case level.FloatingLow:
			floatingLow++
		case level.FloatingHigh:
			floatingHigh++
		}
		accumulated |= w.Level
	}

	if strongest, ok := level.Strongest(accumulated); ok {
		return strongest, nil
	}
	return level.ResolveFloatingTie(floatingLow, floatingHigh), nil
}

// writeBackGroup applies resolved to every non-special member, per each
// member's own Pull attribute (spec §4.1's write-back rule).
func writeBackGroup(store *circuit.Store, members []components.WireID, resolved level.Level) error {
	for _, id := range members {
		w, err := store.GetWire(id)
		if err != nil {
			return err
		}
		if w.IsSpecial() {
			continue
		}
		w.Level = level.WriteBack(resolved, w.Pull)
	}
	return nil
}
