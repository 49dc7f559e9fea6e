package allocator

import (
	"fmt"
	"testing"
	"unsafe"
)

// fakePageMapper backs PageMapper in tests with plain Go-heap buffers
// instead of a real mmap syscall, so the block-engine tests stay
// deterministic and sandbox-friendly. It mirrors genericPageMapper's
// pinning technique (pagemap_other.go) but lives in the test package so it
// runs regardless of build tags.
type fakePageMapper struct {
	pageSize uintptr
	regions  map[uintptr][]byte
}

func newFakePageMapper(pageSize uintptr) *fakePageMapper {
	return &fakePageMapper{pageSize: pageSize, regions: make(map[uintptr][]byte)}
}

func (m *fakePageMapper) PageSize() uintptr { return m.pageSize }

func (m *fakePageMapper) MapPages(n uintptr) (uintptr, error) {
	buf := make([]byte, n)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	m.regions[addr] = buf

	return addr, nil
}

func (m *fakePageMapper) UnmapPages(addr uintptr, _ uintptr) error {
	if _, ok := m.regions[addr]; !ok {
		return fmt.Errorf("fakePageMapper: unmap of unknown region %#x", addr)
	}

	delete(m.regions, addr)

	return nil
}

// newTestHeap builds a Heap over a small deterministic bump extender and
// the fake page mapper, enough headroom for the scenarios in this package's
// tests.
func newTestHeap(t *testing.T, reserve uintptr) *Heap {
	t.Helper()

	if reserve == 0 {
		reserve = 1 << 20
	}

	ext, err := newBumpExtender(reserve)
	if err != nil {
		t.Fatalf("newBumpExtender: %v", err)
	}

	return NewHeapFrom(ext, newFakePageMapper(4096))
}

func writeBytes(ptr unsafe.Pointer, n uintptr, value byte) {
	buf := unsafe.Slice((*byte)(ptr), n)
	for i := range buf {
		buf[i] = value
	}
}

func readByte(ptr unsafe.Pointer, offset uintptr) byte {
	buf := unsafe.Slice((*byte)(ptr), offset+1)
	return buf[offset]
}
