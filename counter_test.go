package repdata

import (
	"testing"

	"github.com/learn-decentralized-systems/toytlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRoundTrip(t *testing.T) {
	c := NewCounter()
	c.Increment(5)
	c.Decrement(2)
	assert.Equal(t, int64(3), c.Value())

	d := c.GetAndResetDelta(false)
	require.NotNil(t, d)
	assert.Equal(t, CounterDelta{Change: 3}, d)

	fresh, err := CounterFromDelta(d)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fresh.Value())
}

func TestCounterNoopElision(t *testing.T) {
	c := NewCounter()
	assert.Nil(t, c.GetAndResetDelta(false))

	c.Increment(7)
	require.NotNil(t, c.GetAndResetDelta(false))
	assert.Nil(t, c.GetAndResetDelta(false))

	// changed back to the original is also no change
	c.Increment(4)
	c.Decrement(4)
	assert.Nil(t, c.GetAndResetDelta(false))
}

func TestCounterInitialDelta(t *testing.T) {
	c := NewCounter()
	d := c.GetAndResetDelta(true)
	require.NotNil(t, d)
	assert.Equal(t, CounterDelta{Change: 0}, d)

	// an aged replica bootstraps a peer with its full value
	require.NoError(t, c.ApplyDelta(CounterDelta{Change: 40}))
	c.Increment(2)
	_ = c.GetAndResetDelta(false)
	d = c.GetAndResetDelta(true)
	assert.Equal(t, CounterDelta{Change: 42}, d)
}

func TestCounterDeltaCommutes(t *testing.T) {
	da := CounterDelta{Change: 5}
	db := CounterDelta{Change: -8}

	x, y := NewCounter(), NewCounter()
	require.NoError(t, x.ApplyDelta(da))
	require.NoError(t, x.ApplyDelta(db))
	require.NoError(t, y.ApplyDelta(db))
	require.NoError(t, y.ApplyDelta(da))
	assert.Equal(t, x.Value(), y.Value())
	assert.Equal(t, int64(-3), x.Value())
}

func TestCounterKindMismatch(t *testing.T) {
	c := NewCounter()
	err := c.ApplyDelta(&SetDelta{})
	assert.ErrorIs(t, err, ErrDeltaKindMismatch)
	assert.Contains(t, err.Error(), "want C, got E")
}

func TestCounterWireForm(t *testing.T) {
	wire := CounterDelta{Change: 3}.AppendTLV(nil)
	assert.Equal(t, toytlv.Record('C', ZipZagInt64(3)), wire)

	d, rest, err := ParseDelta(wire)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, CounterDelta{Change: 3}, d)
}

func TestCounterFloat(t *testing.T) {
	c := NewCounter()
	c.Increment(1 << 20)
	assert.Equal(t, float64(1<<20), c.Float64())
}
