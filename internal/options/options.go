// Package options implements the generic functional-option pattern shared by
// the uio constructors (buffer, bitio, rio, content).
package options

// Option configures a target of type T. T is normally a pointer to a
// package-private config struct.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a function to the Option interface.
type Func[T any] struct {
	fn func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.fn(target)
}

// New creates an option from a function that may reject its input.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{fn: fn}
}

// NoError creates an option from a setter that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		fn: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts in order and stops at the first error.
// Nil options are skipped so callers can build option lists conditionally.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

// Group bundles several options into one, applied in order.
func Group[T any](opts ...Option[T]) Option[T] {
	return New(func(target T) error {
		return Apply(target, opts...)
	})
}
