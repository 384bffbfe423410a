package repdata

// Register is a last-writer-wins cell over an opaque encoded value.
// Writes are stamped with a (rev, src) logical timestamp; concurrent
// writes resolve to the highest stamp, ties to the highest source, so
// every replica picks the same winner.
type Register struct {
	src   uint64
	state RegisterDelta
	dirty bool
}

// NewRegister creates an empty register writing as replica src.
func NewRegister(src uint64) *Register {
	return &Register{src: src}
}

func RegisterFromDelta(d Delta, src uint64) (*Register, error) {
	r := NewRegister(src)
	if err := r.ApplyDelta(d); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Register) Kind() Kind { return KindRegister }

// Value returns the current encoded value, nil if never written.
func (r *Register) Value() []byte { return r.state.Value }

// Time returns the logical timestamp of the current value.
func (r *Register) Time() (rev, src uint64) { return r.state.Rev, r.state.Src }

// Set writes a new value, stamped one revision past the current one.
func (r *Register) Set(value []byte) {
	r.state = RegisterDelta{Rev: r.state.Rev + 1, Src: r.src, Value: value}
	r.dirty = true
}

func (r *Register) GetAndResetDelta(initial bool) Delta {
	if !r.dirty && !initial {
		return nil
	}
	r.dirty = false
	// a register delta is always the full state
	return r.state
}

func (r *Register) ApplyDelta(d Delta) error {
	rd, ok := d.(RegisterDelta)
	if !ok {
		return kindMismatch(KindRegister, d.Kind())
	}
	if rd.wins(r.state) {
		r.state = rd
	}
	return nil
}
