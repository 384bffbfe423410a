package repdata

import "github.com/dotdelta/repdata/codec"

// Set is a replicated set of opaque elements, identified by their
// canonical codec encoding. Unlike map values, elements carry no
// nested identity, so add/remove transitions within one window cancel
// out symmetrically in both directions.
type Set struct {
	codec codec.Codec

	elems   map[string]struct{}
	added   map[string]struct{}
	removed map[string]struct{}
	cleared bool
}

func NewSet(c codec.Codec) *Set {
	return &Set{
		codec:   c,
		elems:   make(map[string]struct{}),
		added:   make(map[string]struct{}),
		removed: make(map[string]struct{}),
	}
}

func SetFromDelta(d Delta, c codec.Codec) (*Set, error) {
	s := NewSet(c)
	if err := s.ApplyDelta(d); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) Kind() Kind { return KindSet }

func (s *Set) Len() int { return len(s.elems) }

func (s *Set) elem(e any) (string, error) {
	ce, err := s.codec.Encode(e)
	if err != nil {
		return "", err
	}
	return string(ce), nil
}

func (s *Set) Contains(e any) (bool, error) {
	ce, err := s.elem(e)
	if err != nil {
		return false, err
	}
	_, ok := s.elems[ce]
	return ok, nil
}

func (s *Set) Add(e any) error {
	ce, err := s.elem(e)
	if err != nil {
		return err
	}
	if _, ok := s.elems[ce]; ok {
		return nil
	}
	s.elems[ce] = struct{}{}
	if _, gone := s.removed[ce]; gone {
		// remove-then-readd of a pre-window element nets to nothing
		delete(s.removed, ce)
	} else {
		s.added[ce] = struct{}{}
	}
	return nil
}

func (s *Set) Remove(e any) error {
	ce, err := s.elem(e)
	if err != nil {
		return err
	}
	if _, ok := s.elems[ce]; !ok {
		return nil
	}
	delete(s.elems, ce)
	if _, fresh := s.added[ce]; fresh {
		delete(s.added, ce)
	} else {
		s.removed[ce] = struct{}{}
	}
	return nil
}

func (s *Set) Clear() {
	s.elems = make(map[string]struct{})
	s.added = make(map[string]struct{})
	s.removed = make(map[string]struct{})
	s.cleared = true
}

// Elements returns the decoded elements in canonical byte order.
func (s *Set) Elements() (elems []any, err error) {
	for _, ce := range sortedKeys(s.elems) {
		e, err := s.codec.Decode([]byte(ce))
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return
}

func (s *Set) GetAndResetDelta(initial bool) Delta {
	if initial {
		d := SetDelta{}
		for _, ce := range sortedKeys(s.elems) {
			d.Added = append(d.Added, []byte(ce))
		}
		s.resetBookkeeping()
		return &d
	}
	d := SetDelta{Cleared: s.cleared}
	for _, ce := range sortedKeys(s.added) {
		d.Added = append(d.Added, []byte(ce))
	}
	for _, ce := range sortedKeys(s.removed) {
		d.Removed = append(d.Removed, []byte(ce))
	}
	s.resetBookkeeping()
	if d.empty() {
		return nil
	}
	return &d
}

func (s *Set) resetBookkeeping() {
	if len(s.added) > 0 {
		s.added = make(map[string]struct{})
	}
	if len(s.removed) > 0 {
		s.removed = make(map[string]struct{})
	}
	s.cleared = false
}

func (s *Set) ApplyDelta(d Delta) error {
	sd, ok := d.(*SetDelta)
	if !ok {
		return kindMismatch(KindSet, d.Kind())
	}
	if sd.Cleared {
		s.elems = make(map[string]struct{})
	}
	for _, ce := range sd.Removed {
		delete(s.elems, string(ce))
	}
	for _, ce := range sd.Added {
		s.elems[string(ce)] = struct{}{}
	}
	return nil
}
