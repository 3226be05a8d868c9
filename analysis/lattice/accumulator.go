package lattice

// Accumulator is a monotone guard set: values are joined into it, never
// assigned, so earlier contributions are never forgotten.
type Accumulator struct {
	val GuardSet
}

// NewAccumulator starts an accumulator at the given value.
func NewAccumulator(init GuardSet) *Accumulator {
	return &Accumulator{init}
}

// Merge joins s into the accumulated value. It reports whether the value grew.
func (a *Accumulator) Merge(s GuardSet) bool {
	joined := a.val.Join(s)
	grew := joined.Size() != a.val.Size()
	a.val = joined
	return grew
}

// Get returns the accumulated value.
func (a *Accumulator) Get() GuardSet {
	return a.val
}
