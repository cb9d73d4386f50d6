package pool

// Poolable is implemented by values that can be reset and reused.
// ClearObject must release everything the value owns and restore
// every field to its default.
type Poolable interface {
	ClearObject()
}

// Pool is a free list of reusable values of a single type.
// Reduces GC pressure for short-lived tree nodes that are created
// and dropped every tick.
//
// Not safe for concurrent use: each worker owns its own Pool.
// Put transfers ownership to the pool; the caller must not touch
// the value afterwards. No leak or double-put detection is done.
type Pool[T Poolable] struct {
	name  string
	newFn func() T
	free  []T

	gets   uint64
	allocs uint64
	puts   uint64
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Name   string
	Gets   uint64 // total Get calls
	Allocs uint64 // Get calls served by newFn
	Puts   uint64 // total Put calls
	Free   int    // values currently waiting for reuse
}

// New creates a pool whose fresh values come from newFn.
func New[T Poolable](name string, newFn func() T) *Pool[T] {
	return &Pool[T]{
		name:  name,
		newFn: newFn,
		free:  make([]T, 0, 16),
	}
}

// Name returns the pool name used in metrics and logs.
func (p *Pool[T]) Name() string { return p.name }

// Prealloc fills the free list up to n values.
func (p *Pool[T]) Prealloc(n int) {
	for len(p.free) < n {
		p.allocs++
		p.free = append(p.free, p.newFn())
	}
}

// Get returns a value in its default state, recycled when possible.
func (p *Pool[T]) Get() T {
	p.gets++

	n := len(p.free)
	if n == 0 {
		p.allocs++
		return p.newFn()
	}

	v := p.free[n-1]
	var zero T
	p.free[n-1] = zero
	p.free = p.free[:n-1]
	return v
}

// Put clears v and keeps it for the next Get.
func (p *Pool[T]) Put(v T) {
	p.puts++
	v.ClearObject()
	p.free = append(p.free, v)
}

// Len returns the number of values waiting for reuse.
func (p *Pool[T]) Len() int { return len(p.free) }

// Stats returns a snapshot of the pool counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Name:   p.name,
		Gets:   p.gets,
		Allocs: p.allocs,
		Puts:   p.puts,
		Free:   len(p.free),
	}
}
