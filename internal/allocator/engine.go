package allocator

// Config tunes the heap's collaborators. It follows the teacher's
// functional-options pattern (Config struct + Option funcs) from
// internal/allocator's original Config/Option design.
type Config struct {
	// HeapReserve is the capacity reserved up front for the default
	// bump-pointer heap extender. Extending past it fails OUT_OF_MEMORY.
	HeapReserve uintptr
}

type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		HeapReserve: 256 * 1024 * 1024,
	}
}

// WithHeapReserve overrides the default heap backing-store capacity.
func WithHeapReserve(n uintptr) Option {
	return func(c *Config) { c.HeapReserve = n }
}

// Heap owns the process-wide heap endpoints, the free-list index, and the
// two external collaborators. It is single-threaded; see sync.go for a
// locking wrapper.
type Heap struct {
	heapStart uintptr
	heapEnd   uintptr

	free freeList

	extender HeapExtender
	mapper   PageMapper

	// mappedRegions tracks (header address -> mapped byte length) for
	// mapping-resident blocks, so Release can recover the exact span
	// UnmapPages requires. Adapted from the teacher's Pool.chunks /
	// containsPointer bookkeeping in its now-retired pool.go.
	mappedRegions map[uintptr]uintptr
}

// NewHeap builds a Heap backed by the default collaborators: a bump-pointer
// heap extender and the platform page mapper.
func NewHeap(opts ...Option) (*Heap, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	extender, err := newBumpExtender(cfg.HeapReserve)
	if err != nil {
		return nil, err
	}

	return newHeap(extender, newDefaultPageMapper()), nil
}

// NewHeapFrom builds a Heap over caller-supplied collaborators, primarily
// for tests that need deterministic, small-scale heap/page behavior.
func NewHeapFrom(extender HeapExtender, mapper PageMapper) *Heap {
	return newHeap(extender, mapper)
}

func newHeap(extender HeapExtender, mapper PageMapper) *Heap {
	return &Heap{
		extender:      extender,
		mapper:        mapper,
		mappedRegions: make(map[uintptr]uintptr),
	}
}

// isFirstHeapBlock reports whether b's header sits at heap_start.
func (h *Heap) isFirstHeapBlock(b blockAddr) bool {
	return uintptr(b) == h.heapStart
}

// isLastHeapBlock reports whether the byte immediately following b's
// footer is heap_end.
func (h *Heap) isLastHeapBlock(b blockAddr) bool {
	return b.nextHeapBlockAddr() == h.heapEnd
}
