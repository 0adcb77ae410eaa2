package cache

// Var remembers the last value it was given and whether the most recent Set
// changed it. The zero Var treats any first value as a change.
type Var[T comparable] struct {
	value   T
	set     bool
	changed bool
}

// Set stores v and reports whether it differs from the previous value.
// Each fn runs only when the value changed.
func (v *Var[T]) Set(x T, fn ...func(T)) bool {
	v.changed = !v.set || v.value != x
	v.value, v.set = x, true
	if v.changed {
		for _, f := range fn {
			f(x)
		}
	}
	return v.changed
}

// Get returns the stored value.
func (v *Var[T]) Get() T { return v.value }

// Changed reports whether the last Set changed the value.
func (v *Var[T]) Changed() bool { return v.changed }

// Invalidate forgets the stored value so the next Set counts as a change.
func (v *Var[T]) Invalidate() {
	var zero T
	v.value, v.set, v.changed = zero, false, false
}
