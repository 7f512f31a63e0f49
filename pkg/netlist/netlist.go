// Package netlist implements the JSON netlist descriptor contract from
// spec §6: a serializable description of wires, transistors, and
// registers that can be loaded into a circuit.Store. This is an external
// collaborator's concern per spec §1's non-goals (netlist ingest is out
// of scope for the simulator core); this package exists so the engine is
// runnable end to end without a bespoke fixture builder in every test.
// Grounded on encoding/json (see DESIGN.md for why no ecosystem JSON
// library in the pack has a grounded call site) with the teacher's own
// validate-then-build two-pass shape (pkg/inst/catalog.go builds its
// table once from a literal, then pkg/inst/catalog_test.go validates
// it — here the validation happens during ingest, since the source is
// untrusted external data rather than a compiled-in literal).
package netlist

import (
	"encoding/json"
	"fmt"

	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/circuit"
	"github.com/oisee/circsim/pkg/components"
	"github.com/oisee/circsim/pkg/level"
	"github.com/oisee/circsim/pkg/register"
)

// WireDescriptor is the wire-serialization shape from spec §6.
type WireDescriptor struct {
	ID      uint64   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Pull    string   `json:"pull"`    // "NONE" | "HIGH" | "LOW"
	Special string   `json:"special"` // "NONE" | "VCC" | "GND"
}

// TransistorDescriptor is the transistor-serialization shape from spec §6.
type TransistorDescriptor struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"` // "NMOS" | "PMOS"
	Gate   uint64 `json:"gate"`
	Source uint64 `json:"source"`
	Drain  uint64 `json:"drain"`
}

// RegisterDescriptor is the register-serialization shape from spec §6.
type RegisterDescriptor struct {
	Name    string   `json:"name"`
	WireIDs []uint64 `json:"wire_ids"`
}

// Descriptor is the top-level netlist document.
type Descriptor struct {
	Wires       []WireDescriptor       `json:"wires"`
	Transistors []TransistorDescriptor `json:"transistors"`
	Registers   []RegisterDescriptor   `json:"registers,omitempty"`
}

// Parse decodes a netlist document. Malformed JSON or an unknown enum
// value fails with circerr.FormatError, per spec §7.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, circerr.Wrap(circerr.KindFormatError, err, "netlist: invalid JSON")
	}
	wireIDs := make(map[uint64]bool, len(d.Wires))
	for i, w := range d.Wires {
		special, err := parseSpecial(w.Special)
		if err != nil {
			return nil, circerr.Wrap(circerr.KindFormatError, err, "netlist: wire[%d] (id %d)", i, w.ID)
		}
		// VCC/GND need no name: components.NewSpecialWire assigns
		// "VCC"/"GND" itself.
		if w.Name == "" && special == level.SpecialNone {
			return nil, circerr.Newf(circerr.KindFormatError, "netlist: wire[%d] (id %d) missing name", i, w.ID)
		}
		if _, err := parsePull(w.Pull); err != nil {
			return nil, circerr.Wrap(circerr.KindFormatError, err, "netlist: wire[%d] (id %d)", i, w.ID)
		}
		wireIDs[w.ID] = true
	}
	for i, t := range d.Transistors {
		if _, err := parsePolarity(t.Type); err != nil {
			return nil, circerr.Wrap(circerr.KindFormatError, err, "netlist: transistor[%d] (id %d)", i, t.ID)
		}
		terminals := [...]struct {
			name string
			id   uint64
		}{{"gate", t.Gate}, {"source", t.Source}, {"drain", t.Drain}}
		for _, term := range terminals {
			if !wireIDs[term.id] {
				return nil, circerr.Newf(circerr.KindFormatError,
					"netlist: transistor[%d] (id %d) %s references unknown wire %d", i, t.ID, term.name, term.id)
			}
		}
	}
	for i, r := range d.Registers {
		if r.Name == "" {
			return nil, circerr.Newf(circerr.KindFormatError, "netlist: register[%d] missing name", i)
		}
		if len(r.WireIDs) == 0 {
			return nil, circerr.Newf(circerr.KindFormatError, "netlist: register %q has no wire_ids", r.Name)
		}
		for _, id := range r.WireIDs {
			if !wireIDs[id] {
				return nil, circerr.Newf(circerr.KindFormatError,
					"netlist: register %q references unknown wire %d", r.Name, id)
			}
		}
	}
	return &d, nil
}

func parsePull(s string) (level.Pull, error) {
	switch s {
	case "", "NONE":
		return level.PullNone, nil
	case "HIGH":
		return level.PullHigh, nil
	case "LOW":
		return level.PullLow, nil
	default:
		return 0, fmt.Errorf("unknown pull %q", s)
	}
}

func parseSpecial(s string) (level.Special, error) {
	switch s {
	case "", "NONE":
		return level.SpecialNone, nil
	case "VCC":
		return level.SpecialVCC, nil
	case "GND":
		return level.SpecialGND, nil
	default:
		return 0, fmt.Errorf("unknown special %q", s)
	}
}

func parsePolarity(s string) (components.Polarity, error) {
	switch s {
	case "NMOS":
		return components.NMOS, nil
	case "PMOS":
		return components.PMOS, nil
	default:
		return 0, fmt.Errorf("unknown transistor type %q", s)
	}
}

// Load parses data and populates a fresh circuit.Store plus the
// registers it describes. Adjacency (Control/Gate) is derived from the
// transistor list: every transistor's Source and Drain wires get it
// appended to their Control list, and its Gate wire gets it appended to
// its Gate list.
func Load(data []byte) (*circuit.Store, []*register.Register, error) {
	d, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}

	control := map[uint64][]components.TransistorID{}
	gate := map[uint64][]components.TransistorID{}
	for _, t := range d.Transistors {
		control[t.Source] = append(control[t.Source], components.TransistorID(t.ID))
		control[t.Drain] = append(control[t.Drain], components.TransistorID(t.ID))
		gate[t.Gate] = append(gate[t.Gate], components.TransistorID(t.ID))
	}

	store := circuit.New()
	for _, w := range d.Wires {
		pull, _ := parsePull(w.Pull)
		special, _ := parseSpecial(w.Special)
		ctrl := control[w.ID]
		gt := gate[w.ID]

		var wire *components.Wire
		if special != level.SpecialNone {
			wire = components.NewSpecialWire(components.WireID(w.ID), special, ctrl, gt)
		} else {
			wire = components.NewWire(components.WireID(w.ID), w.Name, pull, ctrl, gt)
		}
		for _, a := range w.Aliases {
			wire.AddName(a)
		}
		if err := store.InsertWire(wire); err != nil {
			return nil, nil, err
		}
	}

	for _, t := range d.Transistors {
		polarity, _ := parsePolarity(t.Type)
		tr := components.NewTransistor(components.TransistorID(t.ID), t.Name,
			components.WireID(t.Gate), components.WireID(t.Source), components.WireID(t.Drain), polarity)
		if err := store.InsertTransistor(tr); err != nil {
			return nil, nil, err
		}
	}

	regs := make([]*register.Register, 0, len(d.Registers))
	for _, r := range d.Registers {
		ids := make([]components.WireID, len(r.WireIDs))
		for i, id := range r.WireIDs {
			ids[i] = components.WireID(id)
		}
		reg, err := register.New(r.Name, ids)
		if err != nil {
			return nil, nil, err
		}
		reg.Bind(store)
		regs = append(regs, reg)
	}

	return store, regs, nil
}
