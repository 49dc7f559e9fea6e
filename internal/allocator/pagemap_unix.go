//go:build linux || darwin || freebsd

package allocator

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// unixPageMapper is the default PageMapper on platforms with mmap/munmap,
// grounded in the teacher's own unix build-tag convention
// (internal/runtime/asyncio/zerocopy_unix_file.go, kqueue_poller_bsd.go) and
// in the balloc buddy allocator's use of golang.org/x/sys/unix.Mmap for
// anonymous private mappings.
type unixPageMapper struct{}

func newDefaultPageMapper() PageMapper { return &unixPageMapper{} }

func (m *unixPageMapper) PageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

// MapPages reserves a standalone region of at least n bytes. Each mapping
// is independently addressed and never coalesced with any other block.
func (m *unixPageMapper) MapPages(n uintptr) (uintptr, error) {
	data, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return 0, wrapOutOfMemory(fmt.Errorf("mmap %d bytes: %w", n, err))
	}

	return uintptr(unsafe.Pointer(&data[0])), nil
}

// UnmapPages releases exactly what a prior MapPages returned.
func (m *unixPageMapper) UnmapPages(addr uintptr, n uintptr) error {
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)

	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap %#x (%d bytes): %w", addr, n, err)
	}

	return nil
}
