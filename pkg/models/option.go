package models

// Option holds a value that may be absent. Store lookups return it instead
// of a nil pointer so callers must decide what "missing" means.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an empty Option
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether a value is present
func (o Option[T]) IsSome() bool {
	return o.ok
}

// OrElse returns the value or def when absent
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}
