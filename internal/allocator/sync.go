package allocator

import (
	"sync"
	"unsafe"
)

// SyncHeap is a thin locking wrapper around Heap: a single mutex guarding
// every public operation, pushed to the outermost struct the same way the
// teacher's PoolAllocatorImpl and SystemAllocatorImpl guard their own state
// rather than locking inside each inner helper. Heap itself is
// single-threaded; callers needing concurrent access use this instead.
type SyncHeap struct {
	mu sync.Mutex
	h  *Heap
}

// NewSyncHeap builds a SyncHeap over the default collaborators.
func NewSyncHeap(opts ...Option) (*SyncHeap, error) {
	h, err := NewHeap(opts...)
	if err != nil {
		return nil, err
	}

	return &SyncHeap{h: h}, nil
}

func (s *SyncHeap) Allocate(size uintptr) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.h.Allocate(size)
}

func (s *SyncHeap) ZeroAllocate(count, elemSize uintptr) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.h.ZeroAllocate(count, elemSize)
}

func (s *SyncHeap) Reallocate(ptr unsafe.Pointer, newSize uintptr) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.h.Reallocate(ptr, newSize)
}

func (s *SyncHeap) Release(ptr unsafe.Pointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.h.Release(ptr)
}
