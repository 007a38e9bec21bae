// Package ring provides a fixed-capacity replacement ring.
package ring

// Ring holds at most Cap elements. Once full, every Add replaces the oldest
// element, which is returned to the caller. Ring is not safe for concurrent use.
type Ring[E any] struct {
	elements []E
	filled   []bool
	index    int
	length   int
}

// New creates a ring with the given capacity. Panics if capacity is not positive.
func New[E any](capacity int) *Ring[E] {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}

	return &Ring[E]{
		elements: make([]E, capacity),
		filled:   make([]bool, capacity),
	}
}

// Add inserts e and returns the element it replaced. evicted is false until
// the ring has wrapped around once.
func (r *Ring[E]) Add(e E) (old E, evicted bool) {
	old, evicted = r.elements[r.index], r.filled[r.index]
	r.elements[r.index] = e
	r.filled[r.index] = true
	r.index = (r.index + 1) % len(r.elements)

	if !evicted {
		r.length++
	}

	return old, evicted
}

// Len returns the number of elements currently held.
func (r *Ring[E]) Len() int {
	return r.length
}

// Cap returns the ring capacity.
func (r *Ring[E]) Cap() int {
	return len(r.elements)
}

// Each calls fn for every held element, oldest first.
func (r *Ring[E]) Each(fn func(E)) {
	n := len(r.elements)
	start := r.index
	if r.length < n {
		start = 0
	}

	for i := range r.length {
		fn(r.elements[(start+i)%n])
	}
}

// Reset removes every element.
func (r *Ring[E]) Reset() {
	clear(r.elements)
	clear(r.filled)
	r.index = 0
	r.length = 0
}
