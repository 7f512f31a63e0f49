// Package sim implements the fixed-point propagation engine: WireGroup
// construction/resolution (this file's sibling wiregroup.go) and the
// Simulator that drives a FIFO of dirty wire IDs to convergence. Grounded
// on pkg/search/worker.go's queue-driven work loop, here draining wire
// groups instead of candidate instruction sequences, with the same
// "pull work, process, possibly push more work" shape.
package sim

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/circuit"
	"github.com/oisee/circsim/pkg/components"
	"github.com/oisee/circsim/pkg/level"
	"github.com/oisee/circsim/pkg/register"
)

// DefaultBudget is the default iteration budget before RunToConvergence
// gives up with IterationLimitExceeded, per spec §5.
const DefaultBudget = 2500

// Simulator drives a circuit.Store to convergence. Per spec §5 it is
// single-threaded and not safe for concurrent use; callers needing
// concurrency own their own serialization, the same division of
// responsibility as pkg/search's WorkerPool (concurrent) versus a single
// pkg/cpu.State (not).
type Simulator struct {
	store  *circuit.Store
	fifo   []components.WireID
	queued map[components.WireID]bool

	iterations int
	budget     int

	log *logrus.Logger
}

// New constructs a Simulator bound to store. budget <= 0 selects
// DefaultBudget. A nil logger is replaced with a discard logger so the
// engine never needs a nil check at each log call site, grounded on
// joeycumines-go-utilpkg/sql/log/logrus.go's nil-safe wrapper shape.
func New(store *circuit.Store, budget int, log *logrus.Logger) *Simulator {
	if budget <= 0 {
		budget = DefaultBudget
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(discardWriter{})
	}
	return &Simulator{
		store:  store,
		queued: make(map[components.WireID]bool),
		budget: budget,
		log:    log,
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Store returns the bound circuit store (spec §6's circuit()).
func (s *Simulator) Store() *circuit.Store { return s.store }

// SetCircuit rebinds the simulator to a different circuit store (spec
// §6's set_circuit(store)). The previous store's wire IDs are no longer
// meaningful, so the FIFO and iteration counter are reset along with it,
// matching original_source's Simulator::circuit(const Circuit&) doc
// comment ("we need to reset the update list and the counter, as they
// will no longer be valid").
func (s *Simulator) SetCircuit(store *circuit.Store) {
	s.store = store
	s.ResetFifo()
	s.ResetIterationCount()
}

// IterationCount returns the number of wire-group resolutions performed
// by RunToConvergence since construction or the last ResetIterationCount.
// Resolutions driven through Step are not counted.
func (s *Simulator) IterationCount() int { return s.iterations }

// IterationBudget returns the current iteration budget (spec §6's
// iteration_budget()).
func (s *Simulator) IterationBudget() int { return s.budget }

// SetIterationBudget changes the iteration budget (spec §6's
// set_iteration_budget(n)). budget <= 0 selects DefaultBudget, the same
// rule New applies at construction.
func (s *Simulator) SetIterationBudget(budget int) {
	if budget <= 0 {
		budget = DefaultBudget
	}
	s.budget = budget
}

// Pending returns the number of wire IDs currently queued for processing.
func (s *Simulator) Pending() int { return len(s.fifo) }

func (s *Simulator) enqueue(id components.WireID) {
	if s.queued[id] {
		return
	}
	s.fifo = append(s.fifo, id)
	s.queued[id] = true
}

func (s *Simulator) removeFromFifo(id components.WireID) {
	if !s.queued[id] {
		return
	}
	delete(s.queued, id)
	for i, v := range s.fifo {
		if v == id {
			s.fifo = append(s.fifo[:i], s.fifo[i+1:]...)
			return
		}
	}
}

// MarkUpdated enqueues a single wire ID for re-evaluation.
func (s *Simulator) MarkUpdated(id components.WireID) error {
	if _, err := s.store.GetWire(id); err != nil {
		return err
	}
	s.enqueue(id)
	return nil
}

// MarkAllUpdated enqueues every wire in the store, in ascending ID order
// for deterministic replay (spec §5).
func (s *Simulator) MarkAllUpdated() {
	ids := s.store.AllWireIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s.enqueue(id)
	}
}

// SetWire drives wire id to PULLED_HIGH/PULLED_LOW via the hard write
// path and enqueues it. Fails with StructuralError if id names a
// VCC/GND wire, whose level is fixed.
func (s *Simulator) SetWire(id components.WireID, high bool) error {
	w, err := s.store.GetWire(id)
	if err != nil {
		return err
	}
	if w.IsSpecial() {
		return circerr.Newf(circerr.KindStructuralError, "wire %d is VCC/GND and cannot be written", id)
	}
	w.SetHighLow(high)
	s.enqueue(id)
	return nil
}

// SetWireByName is SetWire resolved through a name lookup.
func (s *Simulator) SetWireByName(name string, high bool) error {
	w, err := s.store.FindWireByName(name)
	if err != nil {
		return err
	}
	return s.SetWire(w.ID, high)
}

// SetWireLevel drives wire id to an arbitrary value from the seven-value
// lattice and enqueues it, per spec §6's set_wire(id, level, ...). Unlike
// SetWire/SetHighLow's hard PULLED_HIGH/PULLED_LOW write, this reaches
// every level the engine itself can ever resolve to (GROUNDED, HIGH, the
// FLOATING* values), mirroring original_source's
// Simulator::update_by_id(id, WireState, bool). Fails with
// StructuralError if id names a VCC/GND wire, whose level is fixed.
func (s *Simulator) SetWireLevel(id components.WireID, lvl level.Level) error {
	w, err := s.store.GetWire(id)
	if err != nil {
		return err
	}
	if w.IsSpecial() {
		return circerr.Newf(circerr.KindStructuralError, "wire %d is VCC/GND and cannot be written", id)
	}
	w.Level = lvl
	s.enqueue(id)
	return nil
}

// SetWireLevelByName is SetWireLevel resolved through a name lookup.
func (s *Simulator) SetWireLevelByName(name string, lvl level.Level) error {
	w, err := s.store.FindWireByName(name)
	if err != nil {
		return err
	}
	return s.SetWireLevel(w.ID, lvl)
}

// SetAllWires applies every id->high/low assignment in a single batch
// before any wire group is resolved, then enqueues every assigned wire.
// This is the clock-driver primitive named in SPEC_FULL.md §12.5: an
// external half-tick driver calls this once per tick, then
// RunToConvergence.
func (s *Simulator) SetAllWires(assignments map[components.WireID]bool) error {
	levels := make(map[components.WireID]level.Level, len(assignments))
	for id, high := range assignments {
		if high {
			levels[id] = level.PulledHigh
		} else {
			levels[id] = level.PulledLow
		}
	}
	return s.SetAllWireLevels(levels)
}

// SetAllWireLevels is SetAllWires widened to the full lattice, per spec
// §6's set_all_wires(ids, levels, ...): every id->level assignment is
// applied in a single batch before any wire group is resolved, then
// every assigned wire is enqueued.
func (s *Simulator) SetAllWireLevels(assignments map[components.WireID]level.Level) error {
	for id := range assignments {
		w, err := s.store.GetWire(id)
		if err != nil {
			return err
		}
		if w.IsSpecial() {
			return circerr.Newf(circerr.KindStructuralError, "wire %d is VCC/GND and cannot be written", id)
		}
	}
	ids := make([]components.WireID, 0, len(assignments))
	for id := range assignments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		w, _ := s.store.GetWire(id)
		w.Level = assignments[id]
		s.enqueue(id)
	}
	return nil
}

// SetRegisterUnsigned writes value through reg (which must already be
// bound to this simulator's store) and enqueues every bit.
func (s *Simulator) SetRegisterUnsigned(reg *register.Register, value uint64) error {
	if err := reg.WriteUnsigned(value); err != nil {
		return err
	}
	for _, id := range reg.WireIDs() {
		s.enqueue(id)
	}
	return nil
}

// SetRegisterSigned writes value through reg and enqueues every bit.
func (s *Simulator) SetRegisterSigned(reg *register.Register, value int64) error {
	if err := reg.WriteSigned(value); err != nil {
		return err
	}
	for _, id := range reg.WireIDs() {
		s.enqueue(id)
	}
	return nil
}

// ResetIterationCount zeroes the iteration counter without touching the
// pending FIFO or circuit state.
func (s *Simulator) ResetIterationCount() { s.iterations = 0 }

// ResetFifo discards all pending work without touching circuit state or
// the iteration counter.
func (s *Simulator) ResetFifo() {
	s.fifo = nil
	s.queued = make(map[components.WireID]bool)
}

// ResetCircuit restores every non-special wire to its floating state and
// clears every transistor's conduction/initialized flags, then clears the
// FIFO and iteration counter, giving a clean slate without re-ingesting
// the netlist. Recovered from original_source's Simulator::reset_circuit
// (SPEC_FULL.md §12.2).
func (s *Simulator) ResetCircuit() {
	s.store.ResetCircuit()
	s.ResetFifo()
	s.ResetIterationCount()
}

// Step processes exactly one wire group: pops the next dirty wire ID,
// builds its wire group, removes every other group member from the FIFO
// (they're being resolved together as a unit), resolves the group,
// writes the result back, and re-evaluates every transistor gated by a
// group member, enqueueing newly affected wires. Returns false once the
// FIFO is empty. Per spec §4.3, Step does *not* advance the iteration
// counter — only RunToConvergence's drain loop owns the budget, so an
// external supervisor driving Step in its own loop (as
// cmd/circsim's `step` subcommand does) can run indefinitely.
func (s *Simulator) Step() (bool, error) {
	if len(s.fifo) == 0 {
		return false, nil
	}
	if err := s.resolveOne(); err != nil {
		return false, err
	}
	return len(s.fifo) > 0, nil
}

// resolveOne pops the next dirty wire ID and resolves its wire group:
// builds the group, removes every other member from the FIFO (they're
// resolved together as a unit), resolves and writes back the group's
// level, and re-evaluates every transistor gated by a member. Shared by
// Step (no budget bookkeeping) and RunToConvergence's drain loop (which
// owns the iteration counter).
func (s *Simulator) resolveOne() error {
	seed := s.fifo[0]
	s.fifo = s.fifo[1:]
	delete(s.queued, seed)

	members, err := buildWireGroup(s.store, seed)
	if err != nil {
		s.log.WithError(err).WithField("seed", seed).Error("sim: wire group build failed")
		return err
	}
	for _, m := range members {
		if m != seed {
			s.removeFromFifo(m)
		}
	}

	resolved, err := resolveGroup(s.store, members)
	if err != nil {
		s.log.WithError(err).WithField("seed", seed).Error("sim: wire group resolution failed")
		return err
	}
	s.log.WithFields(logrus.Fields{"seed": seed, "members": len(members), "resolved": resolved.String()}).Debug("sim: wire group resolved")

	if err := writeBackGroup(s.store, members, resolved); err != nil {
		return err
	}

	if err := s.reevaluateTransistors(members); err != nil {
		s.log.WithError(err).Error("sim: transistor re-evaluation failed")
		return err
	}

	return nil
}

// reevaluateTransistors recomputes conduction for every transistor gated
// by a group member, per spec §3, and enqueues wires newly reachable as
// a result. A transistor is acted on only if its conduction changed or it
// had never been evaluated; a transistor that newly turned ON enqueues
// only its source (and only if neither terminal is already queued,
// matching original_source's observation that an already-queued drain
// will pull the source in anyway); one that newly turned OFF enqueues
// both terminals independently.
func (s *Simulator) reevaluateTransistors(members []components.WireID) error {
	for _, mid := range members {
		w, err := s.store.GetWire(mid)
		if err != nil {
			return err
		}
		for _, tid := range w.Gate {
			t, err := s.store.GetTransistor(tid)
			if err != nil {
				return err
			}
			wasInitialized := t.Initialized
			changed := t.UpdateConduction(w.Level)
			t.Initialized = true
			if !changed && wasInitialized {
				continue
			}
			if t.Conduction {
				if !s.queued[t.Source] && !s.queued[t.Drain] {
					s.enqueue(t.Source)
				}
			} else {
				s.enqueue(t.Source)
				s.enqueue(t.Drain)
			}
		}
	}
	return nil
}

// RunToConvergence drains the FIFO until it is empty (a fixed point is
// reached) or the iteration budget is exhausted. Per spec §4.3/§5, the
// iteration counter is owned exclusively by this loop: each pass through
// it, not each call to Step, consumes one unit of budget. On
// IterationLimitExceeded the counter equals the budget and the FIFO
// retains its unprocessed remainder.
func (s *Simulator) RunToConvergence() error {
	for len(s.fifo) > 0 {
		if s.iterations >= s.budget {
			s.log.WithField("budget", s.budget).Warn("sim: iteration budget exhausted")
			return circerr.Newf(circerr.KindIterationLimitExceeded, "iteration budget %d exceeded", s.budget)
		}
		s.iterations++
		if err := s.resolveOne(); err != nil {
			return err
		}
	}
	return nil
}
