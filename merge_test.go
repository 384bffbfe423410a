package repdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesceCounter(t *testing.T) {
	d, err := Coalesce(CounterDelta{Change: 5}, CounterDelta{Change: -2})
	require.NoError(t, err)
	assert.Equal(t, CounterDelta{Change: 3}, d)

	d, err = Coalesce(nil, CounterDelta{Change: 1})
	require.NoError(t, err)
	assert.Equal(t, CounterDelta{Change: 1}, d)

	d, err = Coalesce(CounterDelta{Change: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, CounterDelta{Change: 1}, d)

	_, err = Coalesce(CounterDelta{}, &SetDelta{})
	assert.ErrorIs(t, err, ErrDeltaKindMismatch)
}

func TestCoalesceRegister(t *testing.T) {
	older := RegisterDelta{Rev: 1, Src: 2, Value: []byte("old")}
	newer := RegisterDelta{Rev: 2, Src: 1, Value: []byte("new")}
	d, err := Coalesce(older, newer)
	require.NoError(t, err)
	assert.Equal(t, newer, d)
	d, err = Coalesce(newer, older)
	require.NoError(t, err)
	assert.Equal(t, newer, d)
}

func TestCoalesceSet(t *testing.T) {
	w1 := &SetDelta{Added: [][]byte{[]byte("a"), []byte("b")}}
	w2 := &SetDelta{Removed: [][]byte{[]byte("a")}}
	d, err := Coalesce(w1, w2)
	require.NoError(t, err)
	sd := d.(*SetDelta)
	assert.Equal(t, [][]byte{[]byte("b")}, sd.Added)
	assert.Equal(t, [][]byte{[]byte("a")}, sd.Removed)

	cleared := &SetDelta{Cleared: true, Added: [][]byte{[]byte("c")}}
	d, err = Coalesce(w1, cleared)
	require.NoError(t, err)
	sd = d.(*SetDelta)
	assert.True(t, sd.Cleared)
	assert.Equal(t, [][]byte{[]byte("c")}, sd.Added)
	assert.Empty(t, sd.Removed)
}

// Coalescing a replica's consecutive window deltas must land a lagging
// peer in the same state as replaying them one by one.
func TestCoalesceMapEquivalence(t *testing.T) {
	m := testMap()
	var windows []Delta

	require.NoError(t, m.Set("a", NewCounter()))
	require.NoError(t, m.Set("b", NewCounter()))
	windows = append(windows, m.GetAndResetDelta(false))

	ca, _ := m.Counter("a")
	ca.Increment(5)
	require.NoError(t, m.Delete("b"))
	windows = append(windows, m.GetAndResetDelta(false))

	ca.Increment(2)
	require.NoError(t, m.Set("c", NewCounter()))
	windows = append(windows, m.GetAndResetDelta(false))

	replay := testMap()
	for _, w := range windows {
		require.NoError(t, replay.ApplyDelta(w))
	}

	var folded Delta
	var err error
	for _, w := range windows {
		folded, err = Coalesce(folded, w)
		require.NoError(t, err)
	}
	lagging := testMap()
	require.NoError(t, lagging.ApplyDelta(folded))

	assert.Equal(t,
		replay.GetAndResetDelta(true).AppendTLV(nil),
		lagging.GetAndResetDelta(true).AppendTLV(nil))

	// and the fold itself stays compact
	fd := folded.(*MapDelta)
	require.Len(t, fd.Added, 2) // a with +7, c
	assert.Equal(t, CounterDelta{Change: 7}, fd.Added[0].Delta)
	assert.Empty(t, fd.Updated)
}

func TestCoalesceMapUpdateChains(t *testing.T) {
	w1 := &MapDelta{Updated: []MapEntry{{Key: []byte("k"), Delta: CounterDelta{Change: 1}}}}
	w2 := &MapDelta{Updated: []MapEntry{{Key: []byte("k"), Delta: CounterDelta{Change: 2}}}}
	d, err := Coalesce(w1, w2)
	require.NoError(t, err)
	md := d.(*MapDelta)
	require.Len(t, md.Updated, 1)
	assert.Equal(t, CounterDelta{Change: 3}, md.Updated[0].Delta)

	// a remove buries earlier updates
	w3 := &MapDelta{Removed: [][]byte{[]byte("k")}}
	d, err = Coalesce(d, w3)
	require.NoError(t, err)
	md = d.(*MapDelta)
	assert.Empty(t, md.Updated)
	assert.Equal(t, [][]byte{[]byte("k")}, md.Removed)
}
