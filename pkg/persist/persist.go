// Package persist implements the persisted-state contract named in spec
// §6 and supplemented in SPEC_FULL.md §12.6: persistence to an external
// store is out of scope for this module (spec §1's non-goals), but the
// data model must be losslessly round-trippable, so this package
// provides the Codec contract plus one reference implementation.
// GobCodec is grounded on the teacher's pkg/result/checkpoint.go
// (gob-encoded search-state snapshots written to disk so a run can
// resume); here the snapshot is a whole circuit instead of a search
// frontier. The integer/string list packing functions are grounded on
// original_source/lib/common/include/circsim/common/EndianOperations.hpp,
// which defines the big-endian wire/transistor row layout this module's
// external store would need to reproduce.
package persist

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/circuit"
	"github.com/oisee/circsim/pkg/components"
)

// Codec encodes and decodes individual components and whole-circuit
// snapshots. An external relational store would implement this against
// its own schema; GobCodec below is the in-memory reference.
type Codec interface {
	EncodeWire(w *components.Wire) ([]byte, error)
	DecodeWire([]byte) (*components.Wire, error)
	EncodeTransistor(t *components.Transistor) ([]byte, error)
	DecodeTransistor([]byte) (*components.Transistor, error)
	EncodeSnapshot(store *circuit.Store) ([]byte, error)
	DecodeSnapshot([]byte) (*circuit.Store, error)
}

// snapshot is the gob-serializable whole-circuit form. Wire and
// Transistor already expose only exported fields, so gob can encode them
// directly — the same property pkg/result/checkpoint.go relies on for
// its Table.
type snapshot struct {
	Wires       []components.Wire
	Transistors []components.Transistor
}

// GobCodec implements Codec using encoding/gob.
type GobCodec struct{}

func (GobCodec) EncodeWire(w *components.Wire) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, circerr.Wrap(circerr.KindFormatError, err, "persist: encode wire")
	}
	return buf.Bytes(), nil
}

func (GobCodec) DecodeWire(data []byte) (*components.Wire, error) {
	var w components.Wire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, circerr.Wrap(circerr.KindFormatError, err, "persist: decode wire")
	}
	return &w, nil
}

func (GobCodec) EncodeTransistor(t *components.Transistor) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t); err != nil {
		return nil, circerr.Wrap(circerr.KindFormatError, err, "persist: encode transistor")
	}
	return buf.Bytes(), nil
}

func (GobCodec) DecodeTransistor(data []byte) (*components.Transistor, error) {
	var t components.Transistor
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&t); err != nil {
		return nil, circerr.Wrap(circerr.KindFormatError, err, "persist: decode transistor")
	}
	return &t, nil
}

// EncodeSnapshot serializes every wire and transistor in store. Ordering
// is whatever circuit.Store.AllWireIDs/AllTransistorIDs happen to
// return — a round trip through DecodeSnapshot restores the same set,
// not necessarily the same slice order, which is fine since Store is
// ID-indexed rather than order-sensitive.
func (c GobCodec) EncodeSnapshot(store *circuit.Store) ([]byte, error) {
	snap := snapshot{}
	for _, id := range store.AllWireIDs() {
		w, err := store.GetWire(id)
		if err != nil {
			return nil, err
		}
		snap.Wires = append(snap.Wires, *w)
	}
	for _, id := range store.AllTransistorIDs() {
		t, err := store.GetTransistor(id)
		if err != nil {
			return nil, err
		}
		snap.Transistors = append(snap.Transistors, *t)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return nil, circerr.Wrap(circerr.KindFormatError, err, "persist: encode snapshot")
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot rebuilds a circuit.Store from a snapshot produced by
// EncodeSnapshot.
func (c GobCodec) DecodeSnapshot(data []byte) (*circuit.Store, error) {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, circerr.Wrap(circerr.KindFormatError, err, "persist: decode snapshot")
	}
	store := circuit.New()
	for i := range snap.Wires {
		if err := store.InsertWire(&snap.Wires[i]); err != nil {
			return nil, err
		}
	}
	for i := range snap.Transistors {
		if err := store.InsertTransistor(&snap.Transistors[i]); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// PackUint64List encodes vals as big-endian uint64s, back to back.
// Mirrors EndianOperations.cpp's byteswap-on-write convention for the
// integer-list row fields named in spec §6 (wire control/gate lists,
// register wire-id lists).
func PackUint64List(vals []uint64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

// UnpackUint64List decodes the output of PackUint64List. Fails with
// FormatError if data is not a multiple of 8 bytes.
func UnpackUint64List(data []byte) ([]uint64, error) {
	if len(data)%8 != 0 {
		return nil, circerr.Newf(circerr.KindFormatError, "persist: uint64 list length %d not a multiple of 8", len(data))
	}
	out := make([]uint64, len(data)/8)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(data[i*8:])
	}
	return out, nil
}

// PackStringList encodes vals as NUL-terminated UTF-8 strings,
// concatenated. Fails if any value itself contains a NUL byte.
func PackStringList(vals []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range vals {
		if bytes.IndexByte([]byte(v), 0) != -1 {
			return nil, circerr.Newf(circerr.KindFormatError, "persist: string %q contains embedded NUL", v)
		}
		buf.WriteString(v)
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

// UnpackStringList decodes the output of PackStringList.
func UnpackStringList(data []byte) ([]string, error) {
	var out []string
	start := 0
	for i, b := range data {
		if b == 0 {
			out = append(out, string(data[start:i]))
			start = i + 1
		}
	}
	if start != len(data) {
		return nil, circerr.Newf(circerr.KindFormatError, "persist: string list missing trailing NUL terminator")
	}
	return out, nil
}

var _ Codec = GobCodec{}
var _ fmt.Stringer = (*components.Wire)(nil)
