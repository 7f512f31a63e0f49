// Package register implements the bit-packing abstraction over an
// ordered list of wire IDs: read/write a register's value as an unsigned
// or signed integer by projecting onto/from its bound circuit's wire
// levels. Grounded on pkg/cpu/flags.go's bit manipulation idioms
// (precomputed masks, shift-and-mask accessors) generalized from the
// teacher's fixed 8-bit flag register to an arbitrary 1-64 bit width.
package register

import (
	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/circuit"
	"github.com/oisee/circsim/pkg/components"
)

// Register names an ordered list of wire IDs, least-significant bit
// first, per spec §4.5. A Register is a thin view: it holds no level
// state of its own, only the wire ID list and a pointer to the store it
// is bound to.
type Register struct {
	name    string
	wireIDs []components.WireID
	store   *circuit.Store
}

// New constructs an unbound register over 1-64 wire IDs, LSB first.
// Fails with OutOfRange if the list length is not in [1, 64].
func New(name string, wireIDs []components.WireID) (*Register, error) {
	if len(wireIDs) < 1 || len(wireIDs) > 64 {
		return nil, circerr.Newf(circerr.KindOutOfRange, "register %q: width %d out of range [1,64]", name, len(wireIDs))
	}
	ids := make([]components.WireID, len(wireIDs))
	copy(ids, wireIDs)
	return &Register{name: name, wireIDs: ids}, nil
}

// Name returns the register's name.
func (r *Register) Name() string { return r.name }

// Width returns the number of bits in the register.
func (r *Register) Width() int { return len(r.wireIDs) }

// WireIDs returns the register's wire IDs, LSB first. The returned slice
// is a copy; callers may not mutate the register through it.
func (r *Register) WireIDs() []components.WireID {
	ids := make([]components.WireID, len(r.wireIDs))
	copy(ids, r.wireIDs)
	return ids
}

// Bind attaches the register to a circuit store, enabling reads/writes.
// Mirrors original_source's Register::set_circuit.
func (r *Register) Bind(store *circuit.Store) {
	r.store = store
}

// Unbind detaches the register from its store, matching
// original_source/lib/components/src/Register.cpp's clear_circuit.
// Operations on an unbound register fail with UninitializedComponent.
func (r *Register) Unbind() {
	r.store = nil
}

// Bound reports whether the register is currently attached to a store.
func (r *Register) Bound() bool { return r.store != nil }

func (r *Register) requireBound() error {
	if r.store == nil {
		return circerr.Newf(circerr.KindUninitializedComponent, "register %q is not bound to a circuit", r.name)
	}
	return nil
}

// ReadUnsigned projects the bound wires' current levels onto an unsigned
// integer, LSB first, per spec §4.5. Fails with UninitializedComponent if
// unbound.
func (r *Register) ReadUnsigned() (uint64, error) {
	if err := r.requireBound(); err != nil {
		return 0, err
	}
	var value uint64
	for i, id := range r.wireIDs {
		w, err := r.store.GetWire(id)
		if err != nil {
			return 0, err
		}
		if w.High() {
			value |= 1 << uint(i)
		}
	}
	return value, nil
}

// ReadSigned reads the register as a two's-complement signed integer of
// its own width, sign-extended to int64. Mirrors
// original_source/lib/components/src/Register.cpp's signed read template,
// which negates-and-adds-one bit by bit rather than relying on the host's
// native two's complement representation, since the register width need
// not match any native integer width.
func (r *Register) ReadSigned() (int64, error) {
	raw, err := r.ReadUnsigned()
	if err != nil {
		return 0, err
	}
	width := uint(r.Width())
	signBit := uint64(1) << (width - 1)
	if raw&signBit == 0 {
		return int64(raw), nil
	}
	// Negative: two's-complement decode by inverting the low `width` bits
	// and adding one, then negating.
	mask := (uint64(1) << width) - 1
	magnitude := (^raw & mask) + 1
	return -int64(magnitude), nil
}

// WriteUnsigned drives every bound wire directly (via SetHighLow, the
// hard write path — see pkg/components.Wire.SetHighLow) to the bit
// pattern of value, LSB first. Fails with OutOfRange if value does not
// fit in the register's width, or UninitializedComponent if unbound.
func (r *Register) WriteUnsigned(value uint64) error {
	if err := r.requireBound(); err != nil {
		return err
	}
	width := uint(r.Width())
	if width < 64 {
		limit := uint64(1) << width
		if value >= limit {
			return circerr.Newf(circerr.KindOutOfRange, "register %q: value %d exceeds %d-bit width", r.name, value, width)
		}
	}
	for i, id := range r.wireIDs {
		w, err := r.store.GetWire(id)
		if err != nil {
			return err
		}
		bit := (value >> uint(i)) & 1
		w.SetHighLow(bit == 1)
	}
	return nil
}

// WriteSigned encodes value into the register's two's-complement bit
// pattern and writes it. Fails with OutOfRange if value does not fit in
// the signed range representable by the register's width.
func (r *Register) WriteSigned(value int64) error {
	width := uint(r.Width())
	min := -(int64(1) << (width - 1))
	max := (int64(1) << (width - 1)) - 1
	if value < min || value > max {
		return circerr.Newf(circerr.KindOutOfRange, "register %q: value %d outside signed %d-bit range [%d,%d]", r.name, value, width, min, max)
	}
	mask := (uint64(1) << width) - 1
	var encoded uint64
	if value >= 0 {
		encoded = uint64(value)
	} else {
		encoded = (uint64(-value) ^ mask) + 1
		encoded &= mask
	}
	return r.WriteUnsigned(encoded)
}
