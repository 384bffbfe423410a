// Package repdata implements delta-state replicated data types: values
// that are mutated locally, periodically emit a compact delta of the
// mutations, and converge when those deltas are applied on other
// replicas in any cross-key order.
package repdata

import (
	"github.com/dotdelta/repdata/codec"
	"github.com/pkg/errors"
)

// Kind is a one-letter discriminant for a replicated data type,
// also used as the TLV literal of its deltas on the wire.
type Kind byte

const (
	KindCounter  = Kind('C')
	KindMap      = Kind('M')
	KindSet      = Kind('E')
	KindRegister = Kind('R')
)

func (k Kind) String() string { return string(byte(k)) }

// RDT is a replicated data type. Mutations accumulate into a delta;
// GetAndResetDelta drains the accumulator, ApplyDelta replays a delta
// that some other replica drained.
//
// An RDT instance is owned by one logical thread of control; none of
// the implementations in this package lock. Applying a delta while the
// local accumulator is non-empty is the host's mistake.
type RDT interface {
	Kind() Kind
	// GetAndResetDelta returns the net change since the previous call
	// and atomically resets the accumulator. It returns nil when there
	// is no net change, unless initial is set, in which case it returns
	// the full state as a bootstrap delta (possibly empty).
	GetAndResetDelta(initial bool) Delta
	// ApplyDelta replays a remote delta. The local accumulator is not
	// touched: a remote change is already someone else's delta.
	ApplyDelta(d Delta) error
}

// Factory constructs an empty RDT for a delta discriminant. A map needs
// one to build nested values for the added entries it receives, since
// their concrete type is only known from the delta itself.
type Factory func(k Kind) (RDT, error)

// MakeFactory returns the closed-set factory over every kind this
// package implements. Nested maps and sets share the given key codec.
func MakeFactory(c codec.Codec) Factory {
	var f Factory
	f = func(k Kind) (RDT, error) {
		switch k {
		case KindCounter:
			return NewCounter(), nil
		case KindMap:
			return NewMap(c, f), nil
		case KindSet:
			return NewSet(c), nil
		case KindRegister:
			return NewRegister(0), nil
		default:
			return nil, errors.Wrapf(ErrUnknownKind, "kind %q", byte(k))
		}
	}
	return f
}

// FromDelta builds a fresh RDT of the delta's kind and bootstraps it,
// the receiving half of first-contact replication.
func FromDelta(d Delta, f Factory) (RDT, error) {
	if d == nil {
		return nil, errors.Wrap(ErrBadDelta, "nil delta")
	}
	data, err := f(d.Kind())
	if err != nil {
		return nil, err
	}
	if err = data.ApplyDelta(d); err != nil {
		return nil, err
	}
	return data, nil
}
