//go:build !linux && !darwin && !freebsd

package allocator

import (
	"fmt"
	"sync"
	"unsafe"
)

// genericPageMapper backs PageMapper on platforms without mmap. It still
// returns independently addressed, page-rounded regions; pinning each
// region's slice in a map keeps it alive until UnmapPages releases it,
// the same pinning idiom the teacher uses for its SystemAllocatorImpl
// allocatedSlices map.
type genericPageMapper struct {
	mu      sync.Mutex
	regions map[uintptr][]byte
}

func newDefaultPageMapper() PageMapper {
	return &genericPageMapper{regions: make(map[uintptr][]byte)}
}

func (m *genericPageMapper) PageSize() uintptr { return 4096 }

func (m *genericPageMapper) MapPages(n uintptr) (uintptr, error) {
	buf := make([]byte, n)
	if len(buf) == 0 {
		return 0, wrapOutOfMemory(fmt.Errorf("allocator: failed to map %d bytes", n))
	}

	addr := uintptr(unsafe.Pointer(&buf[0]))

	m.mu.Lock()
	m.regions[addr] = buf
	m.mu.Unlock()

	return addr, nil
}

func (m *genericPageMapper) UnmapPages(addr uintptr, _ uintptr) error {
	m.mu.Lock()
	delete(m.regions, addr)
	m.mu.Unlock()

	return nil
}
