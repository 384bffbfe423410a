package repdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLastWriterWins(t *testing.T) {
	a := NewRegister(1)
	b := NewRegister(2)

	a.Set([]byte("from a"))
	b.Set([]byte("from b"))
	da := a.GetAndResetDelta(false)
	db := b.GetAndResetDelta(false)
	require.NotNil(t, da)
	require.NotNil(t, db)

	// same revision, the higher source breaks the tie on both sides
	require.NoError(t, a.ApplyDelta(db))
	require.NoError(t, b.ApplyDelta(da))
	assert.Equal(t, []byte("from b"), a.Value())
	assert.Equal(t, []byte("from b"), b.Value())

	// a later revision beats a higher source
	a.Set([]byte("newer"))
	require.NoError(t, b.ApplyDelta(a.GetAndResetDelta(false)))
	assert.Equal(t, []byte("newer"), b.Value())
}

func TestRegisterDeltaWindow(t *testing.T) {
	r := NewRegister(7)
	assert.Nil(t, r.GetAndResetDelta(false))

	r.Set([]byte("v1"))
	r.Set([]byte("v2"))
	d := r.GetAndResetDelta(false)
	require.NotNil(t, d)
	assert.Equal(t, RegisterDelta{Rev: 2, Src: 7, Value: []byte("v2")}, d)
	assert.Nil(t, r.GetAndResetDelta(false))

	snap := r.GetAndResetDelta(true)
	assert.Equal(t, d, snap)
}

func TestRegisterWire(t *testing.T) {
	d := RegisterDelta{Rev: 3, Src: 9, Value: []byte("hello")}
	parsed, rest, err := ParseDelta(d.AppendTLV(nil))
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, d, parsed)
}

func TestRegisterKindMismatch(t *testing.T) {
	r := NewRegister(1)
	assert.ErrorIs(t, r.ApplyDelta(CounterDelta{}), ErrDeltaKindMismatch)
}
