package repdata

// Delta coalescing: folding consecutive extracted deltas of one
// instance into a single equivalent delta. Hosts use it to compact a
// backlog for a lagging peer instead of replaying every window.
// Folding follows the same collapse rules as live window bookkeeping;
// applying the coalesced delta must land a receiver in the same state
// as applying the originals in order.

// Coalesce folds next over acc. Either argument may be nil. The inputs
// are consumed: the result may alias their allocations.
func Coalesce(acc, next Delta) (Delta, error) {
	if acc == nil {
		return next, nil
	}
	if next == nil {
		return acc, nil
	}
	if acc.Kind() != next.Kind() {
		return nil, kindMismatch(acc.Kind(), next.Kind())
	}
	switch a := acc.(type) {
	case CounterDelta:
		return CounterDelta{Change: a.Change + next.(CounterDelta).Change}, nil
	case RegisterDelta:
		n := next.(RegisterDelta)
		if n.wins(a) {
			return n, nil
		}
		return a, nil
	case *SetDelta:
		return coalesceSet(a, next.(*SetDelta)), nil
	case *MapDelta:
		return coalesceMap(a, next.(*MapDelta))
	default:
		return nil, kindMismatch(acc.Kind(), next.Kind())
	}
}

func coalesceSet(acc, next *SetDelta) *SetDelta {
	added := byteSet(acc.Added)
	removed := byteSet(acc.Removed)
	cleared := acc.Cleared
	if next.Cleared {
		cleared = true
		added = map[string]struct{}{}
		removed = map[string]struct{}{}
	}
	for _, e := range next.Removed {
		delete(added, string(e))
		removed[string(e)] = struct{}{}
	}
	for _, e := range next.Added {
		delete(removed, string(e))
		added[string(e)] = struct{}{}
	}
	d := SetDelta{Cleared: cleared}
	for _, e := range sortedKeys(added) {
		d.Added = append(d.Added, []byte(e))
	}
	for _, e := range sortedKeys(removed) {
		d.Removed = append(d.Removed, []byte(e))
	}
	return &d
}

func coalesceMap(acc, next *MapDelta) (*MapDelta, error) {
	added := entryMap(acc.Added)
	updated := entryMap(acc.Updated)
	removed := byteSet(acc.Removed)
	cleared := acc.Cleared
	if next.Cleared {
		cleared = true
		added = map[string]Delta{}
		updated = map[string]Delta{}
		removed = map[string]struct{}{}
	}
	for _, key := range next.Removed {
		k := string(key)
		delete(added, k)
		delete(updated, k)
		removed[k] = struct{}{}
	}
	for _, e := range next.Added {
		k := string(e.Key)
		// a later add is a fresh identity, it buries any earlier
		// add or update; an earlier remove stays recorded
		delete(updated, k)
		added[k] = e.Delta
	}
	for _, e := range next.Updated {
		k := string(e.Key)
		if prev, ok := added[k]; ok {
			folded, err := Coalesce(prev, e.Delta)
			if err != nil {
				return nil, err
			}
			added[k] = folded
		} else if prev, ok := updated[k]; ok {
			folded, err := Coalesce(prev, e.Delta)
			if err != nil {
				return nil, err
			}
			updated[k] = folded
		} else {
			updated[k] = e.Delta
		}
	}
	d := MapDelta{Cleared: cleared}
	for _, k := range sortedKeys(added) {
		d.Added = append(d.Added, MapEntry{Key: []byte(k), Delta: added[k]})
	}
	for _, k := range sortedKeys(removed) {
		d.Removed = append(d.Removed, []byte(k))
	}
	for _, k := range sortedKeys(updated) {
		d.Updated = append(d.Updated, MapEntry{Key: []byte(k), Delta: updated[k]})
	}
	return &d, nil
}

func byteSet(keys [][]byte) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[string(k)] = struct{}{}
	}
	return m
}

func entryMap(entries []MapEntry) map[string]Delta {
	m := make(map[string]Delta, len(entries))
	for _, e := range entries {
		m[string(e.Key)] = e.Delta
	}
	return m
}
