package repdata

import (
	"fmt"

	"github.com/learn-decentralized-systems/toytlv"
	"github.com/pkg/errors"
)

// Delta is the wire-ready net change of one RDT over one delta window.
// A delta is self-contained: applying it never needs history that is
// not in the delta itself.
//
// On the wire a delta is a single TLV record whose literal is the Kind.
// Inside a map delta: 'X' the cleared flag, 'A' an added entry ('K' key
// record followed by the nested delta record), 'R' a removed key,
// 'U' an updated entry (same shape as 'A').
type Delta interface {
	Kind() Kind
	AppendTLV(into []byte) []byte
}

type CounterDelta struct {
	Change int64
}

func (d CounterDelta) Kind() Kind { return KindCounter }

func (d CounterDelta) AppendTLV(into []byte) []byte {
	return toytlv.Append(into, byte(KindCounter), ZipZagInt64(d.Change))
}

func (d CounterDelta) String() string {
	return fmt.Sprintf("C{%+d}", d.Change)
}

// MapEntry is one added or updated key of a map delta. The key is the
// canonical codec encoding; this package never interprets the bytes.
type MapEntry struct {
	Key   []byte
	Delta Delta
}

type MapDelta struct {
	Cleared bool
	Added   []MapEntry
	Removed [][]byte
	Updated []MapEntry
}

func (d *MapDelta) Kind() Kind { return KindMap }

func (d *MapDelta) empty() bool {
	return !d.Cleared && len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

func (d *MapDelta) AppendTLV(into []byte) []byte {
	var body []byte
	if d.Cleared {
		body = toytlv.Append(body, 'X')
	}
	for _, e := range d.Added {
		body = toytlv.Append(body, 'A', toytlv.Record('K', e.Key), e.Delta.AppendTLV(nil))
	}
	for _, key := range d.Removed {
		body = toytlv.Append(body, 'R', key)
	}
	for _, e := range d.Updated {
		body = toytlv.Append(body, 'U', toytlv.Record('K', e.Key), e.Delta.AppendTLV(nil))
	}
	return toytlv.Append(into, byte(KindMap), body)
}

func (d *MapDelta) String() string {
	return fmt.Sprintf("M{cleared:%v +%d -%d ~%d}",
		d.Cleared, len(d.Added), len(d.Removed), len(d.Updated))
}

type SetDelta struct {
	Cleared bool
	Added   [][]byte
	Removed [][]byte
}

func (d *SetDelta) Kind() Kind { return KindSet }

func (d *SetDelta) empty() bool {
	return !d.Cleared && len(d.Added) == 0 && len(d.Removed) == 0
}

func (d *SetDelta) AppendTLV(into []byte) []byte {
	var body []byte
	if d.Cleared {
		body = toytlv.Append(body, 'X')
	}
	for _, e := range d.Added {
		body = toytlv.Append(body, 'A', e)
	}
	for _, e := range d.Removed {
		body = toytlv.Append(body, 'R', e)
	}
	return toytlv.Append(into, byte(KindSet), body)
}

func (d *SetDelta) String() string {
	return fmt.Sprintf("E{cleared:%v +%d -%d}", d.Cleared, len(d.Added), len(d.Removed))
}

// RegisterDelta is a full-state delta: the winning write and its
// logical timestamp. 'T' carries the revision, 'O' the origin replica,
// 'V' the opaque encoded value.
type RegisterDelta struct {
	Rev   uint64
	Src   uint64
	Value []byte
}

func (d RegisterDelta) Kind() Kind { return KindRegister }

func (d RegisterDelta) AppendTLV(into []byte) []byte {
	return toytlv.Append(into, byte(KindRegister),
		toytlv.Record('T', ZipUint64(d.Rev)),
		toytlv.Record('O', ZipUint64(d.Src)),
		toytlv.Record('V', d.Value))
}

func (d RegisterDelta) String() string {
	return fmt.Sprintf("R{%d-%d %q}", d.Rev, d.Src, d.Value)
}

// wins reports whether d supersedes other, comparing (Rev, Src).
func (d RegisterDelta) wins(other RegisterDelta) bool {
	if d.Rev != other.Rev {
		return d.Rev > other.Rev
	}
	return d.Src > other.Src
}

// ParseDelta reads one delta record off the head of data and returns
// the remainder, so several deltas can travel concatenated.
func ParseDelta(data []byte) (d Delta, rest []byte, err error) {
	lit, body, rest := toytlv.TakeAny(data)
	if body == nil {
		return nil, data, errors.Wrap(ErrBadDelta, "bad or truncated record")
	}
	switch Kind(lit) {
	case KindCounter:
		return CounterDelta{Change: UnzipZagInt64(body)}, rest, nil
	case KindMap:
		d, err := parseMapDelta(body)
		return d, rest, err
	case KindSet:
		d, err := parseSetDelta(body)
		return d, rest, err
	case KindRegister:
		d, err := parseRegisterDelta(body)
		return d, rest, err
	default:
		return nil, data, errors.Wrapf(ErrUnknownKind, "delta record %q", lit)
	}
}

func parseMapDelta(body []byte) (*MapDelta, error) {
	d := MapDelta{}
	rest := body
	for len(rest) > 0 {
		var lit byte
		var rec []byte
		lit, rec, rest = toytlv.TakeAny(rest)
		if rec == nil {
			return nil, errors.Wrap(ErrBadDelta, "bad record in a map delta")
		}
		switch lit {
		case 'X':
			d.Cleared = true
		case 'R':
			d.Removed = append(d.Removed, rec)
		case 'A', 'U':
			e, err := parseMapEntry(rec)
			if err != nil {
				return nil, err
			}
			if lit == 'A' {
				d.Added = append(d.Added, e)
			} else {
				d.Updated = append(d.Updated, e)
			}
		default:
			return nil, errors.Wrapf(ErrBadDelta, "record %q in a map delta", lit)
		}
	}
	return &d, nil
}

func parseMapEntry(rec []byte) (e MapEntry, err error) {
	key, rest := toytlv.Take('K', rec)
	if key == nil {
		return e, errors.Wrap(ErrBadDelta, "map entry without a key")
	}
	nested, tail, err := ParseDelta(rest)
	if err != nil {
		return e, err
	}
	if len(tail) != 0 {
		return e, errors.Wrap(ErrBadDelta, "map entry with trailing data")
	}
	return MapEntry{Key: key, Delta: nested}, nil
}

func parseSetDelta(body []byte) (*SetDelta, error) {
	d := SetDelta{}
	rest := body
	for len(rest) > 0 {
		var lit byte
		var rec []byte
		lit, rec, rest = toytlv.TakeAny(rest)
		if rec == nil {
			return nil, errors.Wrap(ErrBadDelta, "bad record in a set delta")
		}
		switch lit {
		case 'X':
			d.Cleared = true
		case 'A':
			d.Added = append(d.Added, rec)
		case 'R':
			d.Removed = append(d.Removed, rec)
		default:
			return nil, errors.Wrapf(ErrBadDelta, "record %q in a set delta", lit)
		}
	}
	return &d, nil
}

func parseRegisterDelta(body []byte) (d RegisterDelta, err error) {
	rev, rest := toytlv.Take('T', body)
	if rev == nil {
		return d, errors.Wrap(ErrBadDelta, "register delta without a timestamp")
	}
	src, rest := toytlv.Take('O', rest)
	if src == nil {
		return d, errors.Wrap(ErrBadDelta, "register delta without an origin")
	}
	value, _ := toytlv.Take('V', rest)
	if value == nil {
		return d, errors.Wrap(ErrBadDelta, "register delta without a value")
	}
	return RegisterDelta{Rev: UnzipUint64(rev), Src: UnzipUint64(src), Value: value}, nil
}
