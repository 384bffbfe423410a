package repdata

// Counter is a replicated signed 64-bit counter. Increments and
// decrements fold into one accumulated change, so a thousand bumps
// still ship as a single delta.
//
// Values outside the int64 range are out of contract; overflow is not
// detected and not defended against.
type Counter struct {
	value int64
	delta int64
}

func NewCounter() *Counter { return &Counter{} }

// CounterFromDelta bootstraps a replica from an initial delta.
func CounterFromDelta(d Delta) (*Counter, error) {
	c := NewCounter()
	if err := c.ApplyDelta(d); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Counter) Kind() Kind { return KindCounter }

// Value returns the exact current value.
func (c *Counter) Value() int64 { return c.value }

// Float64 returns the value as a machine float, imprecise once the
// magnitude exceeds 2^53.
func (c *Counter) Float64() float64 { return float64(c.value) }

func (c *Counter) Increment(n int64) {
	c.value += n
	c.delta += n
}

// Decrement subtracts n; a negative n is a signed increment.
func (c *Counter) Decrement(n int64) {
	c.Increment(-n)
}

func (c *Counter) GetAndResetDelta(initial bool) Delta {
	if initial {
		// a bootstrap delta carries the full value, which for a value
		// created this window equals the accumulated change
		c.delta = 0
		return CounterDelta{Change: c.value}
	}
	if c.delta == 0 {
		return nil
	}
	d := CounterDelta{Change: c.delta}
	c.delta = 0
	return d
}

func (c *Counter) ApplyDelta(d Delta) error {
	cd, ok := d.(CounterDelta)
	if !ok {
		return kindMismatch(KindCounter, d.Kind())
	}
	c.value += cd.Change
	return nil
}
