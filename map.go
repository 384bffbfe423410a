package repdata

import (
	"sort"

	"github.com/dotdelta/repdata/codec"
	"github.com/pkg/errors"
)

// Map is a replicated associative container; values are themselves
// RDTs, owned by the map. Keys are normalized through the injected
// codec into a canonical byte form, and that form is the identity both
// in memory and on the wire: two application keys that encode the same
// are the same entry.
//
// Per delta window the map tracks which keys were added and which
// pre-window keys were removed. Transitions collapse: add then delete
// cancels out, replacing an existing key records a remove plus an add
// (a replaced value's delta history dies with it, never an update),
// deleting an absent key is a no-op. Nested in-place mutations are
// collected lazily at extraction by draining each surviving entry's own
// accumulator, which makes the report exactly-once per window.
type Map struct {
	codec   codec.Codec
	factory Factory

	entries map[string]RDT
	added   map[string]struct{}
	removed map[string]struct{}
	cleared bool
}

func NewMap(c codec.Codec, f Factory) *Map {
	return &Map{
		codec:   c,
		factory: f,
		entries: make(map[string]RDT),
		added:   make(map[string]struct{}),
		removed: make(map[string]struct{}),
	}
}

// MapFromDelta bootstraps a replica from an initial delta.
func MapFromDelta(d Delta, c codec.Codec, f Factory) (*Map, error) {
	m := NewMap(c, f)
	if err := m.ApplyDelta(d); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map) Kind() Kind { return KindMap }

func (m *Map) Len() int { return len(m.entries) }

func (m *Map) key(key any) (string, error) {
	ck, err := m.codec.Encode(key)
	if err != nil {
		return "", err
	}
	return string(ck), nil
}

// Get returns the value for the key, nil if absent. The reference
// grants mutation rights, not ownership: once the key is removed or
// the map cleared, mutating the old reference no longer reaches any
// delta.
func (m *Map) Get(key any) (RDT, error) {
	ck, err := m.key(key)
	if err != nil {
		return nil, err
	}
	return m.entries[ck], nil
}

// Set inserts or replaces the value for the key. The map takes
// ownership of value, which must be fresh, not shared and not taken
// from another container.
func (m *Map) Set(key any, value RDT) error {
	ck, err := m.key(key)
	if err != nil {
		return err
	}
	if _, exists := m.entries[ck]; exists {
		if _, fresh := m.added[ck]; !fresh {
			// replacing a pre-window entry: remove the old identity,
			// add the new one
			m.removed[ck] = struct{}{}
		}
	}
	m.added[ck] = struct{}{}
	m.entries[ck] = value
	return nil
}

func (m *Map) Delete(key any) error {
	ck, err := m.key(key)
	if err != nil {
		return err
	}
	if _, exists := m.entries[ck]; !exists {
		return nil
	}
	delete(m.entries, ck)
	if _, fresh := m.added[ck]; fresh {
		// the add never left this replica, cancel it; if this was a
		// replacement, the remove of the old entry stays recorded
		delete(m.added, ck)
	} else {
		m.removed[ck] = struct{}{}
	}
	return nil
}

// Clear drops every entry. Prior bookkeeping of this window is
// subsumed; sets that happen after the clear still ride in the same
// delta, which remote replicas apply after the clear.
func (m *Map) Clear() {
	m.entries = make(map[string]RDT)
	m.added = make(map[string]struct{})
	m.removed = make(map[string]struct{})
	m.cleared = true
}

// Counter returns the counter at the key, creating it if absent.
func (m *Map) Counter(key any) (*Counter, error) {
	v, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		c := NewCounter()
		return c, m.Set(key, c)
	}
	c, ok := v.(*Counter)
	if !ok {
		return nil, kindMismatch(KindCounter, v.Kind())
	}
	return c, nil
}

// Keys returns the decoded keys in canonical byte order.
func (m *Map) Keys() (keys []any, err error) {
	for _, ck := range sortedKeys(m.entries) {
		key, err := m.codec.Decode([]byte(ck))
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return
}

func (m *Map) GetAndResetDelta(initial bool) Delta {
	if initial {
		return m.snapshotDelta()
	}
	d := MapDelta{Cleared: m.cleared}
	for _, ck := range sortedKeys(m.added) {
		// the add delta is the value's full state as of extraction,
		// not a stale snapshot from insertion time
		nested := m.entries[ck].GetAndResetDelta(true)
		d.Added = append(d.Added, MapEntry{Key: []byte(ck), Delta: nested})
	}
	for _, ck := range sortedKeys(m.removed) {
		d.Removed = append(d.Removed, []byte(ck))
	}
	for _, ck := range sortedKeys(m.entries) {
		if _, fresh := m.added[ck]; fresh {
			continue
		}
		if nested := m.entries[ck].GetAndResetDelta(false); nested != nil {
			d.Updated = append(d.Updated, MapEntry{Key: []byte(ck), Delta: nested})
		}
	}
	m.resetBookkeeping()
	if d.empty() {
		return nil
	}
	return &d
}

// snapshotDelta emits the whole map as added entries, the bootstrap
// form a blank replica is constructed from.
func (m *Map) snapshotDelta() *MapDelta {
	d := MapDelta{}
	for _, ck := range sortedKeys(m.entries) {
		nested := m.entries[ck].GetAndResetDelta(true)
		d.Added = append(d.Added, MapEntry{Key: []byte(ck), Delta: nested})
	}
	m.resetBookkeeping()
	return &d
}

func (m *Map) resetBookkeeping() {
	if len(m.added) > 0 {
		m.added = make(map[string]struct{})
	}
	if len(m.removed) > 0 {
		m.removed = make(map[string]struct{})
	}
	m.cleared = false
}

// ApplyDelta replays a remote structural delta: clear first, then
// removes, then adds, then updates.
func (m *Map) ApplyDelta(d Delta) error {
	md, ok := d.(*MapDelta)
	if !ok {
		return kindMismatch(KindMap, d.Kind())
	}
	if md.Cleared {
		m.entries = make(map[string]RDT)
	}
	for _, key := range md.Removed {
		// removes of keys this replica never saw are tolerated
		delete(m.entries, string(key))
	}
	for _, e := range md.Added {
		value, err := FromDelta(e.Delta, m.factory)
		if err != nil {
			return errors.Wrapf(err, "added entry %x", e.Key)
		}
		m.entries[string(e.Key)] = value
	}
	for _, e := range md.Updated {
		value, ok := m.entries[string(e.Key)]
		if !ok {
			return errors.Wrapf(ErrUnknownKey, "key %x", e.Key)
		}
		if err := value.ApplyDelta(e.Delta); err != nil {
			return errors.Wrapf(err, "updated entry %x", e.Key)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
