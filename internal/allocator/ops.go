package allocator

import "unsafe"

// Allocate services a request for size bytes, returning an 8-byte-aligned
// pointer to the payload.
func (h *Heap) Allocate(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, errInvalidArgument("size must be greater than zero")
	}

	req, err := roundedPayloadSize(size)
	if err != nil {
		return nil, err
	}

	b, err := h.getFree(req)
	if err != nil {
		return nil, err
	}

	b.markAllocated()

	return unsafe.Pointer(b.payload()), nil
}

// ZeroAllocate allocates room for count elements of elemSize bytes each and
// zero-initializes the region.
func (h *Heap) ZeroAllocate(count, elemSize uintptr) (unsafe.Pointer, error) {
	if count == 0 || elemSize == 0 {
		return nil, errInvalidArgument("count and elemSize must both be greater than zero")
	}

	total, ok := safeMul(count, elemSize)
	if !ok {
		return nil, errSizeOverflow("count * elemSize overflows")
	}

	ptr, err := h.Allocate(total)
	if err != nil {
		return nil, err
	}

	zeroBytes(ptr, total)

	return ptr, nil
}

// Reallocate resizes the block at ptr, copying min(old payload, newSize)
// bytes into the new location. ptr == nil behaves as Allocate(newSize);
// newSize == 0 releases ptr and returns nil.
func (h *Heap) Reallocate(ptr unsafe.Pointer, newSize uintptr) (unsafe.Pointer, error) {
	if ptr == nil {
		return h.Allocate(newSize)
	}

	if newSize == 0 {
		if err := h.Release(ptr); err != nil {
			return nil, err
		}

		return nil, nil
	}

	b, err := h.blockFromPayload(ptr)
	if err != nil {
		return nil, err
	}

	if !b.allocated() {
		return nil, errDoubleFree("pointer passed to reallocate refers to an already-freed block")
	}

	oldSize := b.size()

	newPtr, err := h.Allocate(newSize)
	if err != nil {
		return nil, err
	}

	copySize := oldSize
	if newSize < copySize {
		copySize = newSize
	}

	copyBytes(newPtr, ptr, copySize)

	if err := h.Release(ptr); err != nil {
		return nil, err
	}

	return newPtr, nil
}

// Release returns the block at ptr to the allocator: mapping-resident
// blocks go straight back to the page mapper, heap-resident blocks are
// coalesced with their free neighbors and reinserted into the free-list
// index.
func (h *Heap) Release(ptr unsafe.Pointer) error {
	if ptr == nil {
		return errInvalidArgument("pointer must not be nil")
	}

	b, err := h.blockFromPayload(ptr)
	if err != nil {
		return err
	}

	if !b.allocated() {
		return errDoubleFree("double free detected")
	}

	if b.mapped() {
		length := h.mappedRegions[uintptr(b)]
		delete(h.mappedRegions, uintptr(b))

		return h.mapper.UnmapPages(uintptr(b), length)
	}

	b.markFree()
	h.coalesceAndInsert(b)

	return nil
}

// blockFromPayload recovers the header address for a payload pointer,
// distinguishing mapping-resident blocks (tracked in mappedRegions) from
// heap-resident ones (bounded by heap_start/heap_end).
func (h *Heap) blockFromPayload(ptr unsafe.Pointer) (blockAddr, error) {
	header := uintptr(ptr) - headerSize

	if _, mapped := h.mappedRegions[header]; mapped {
		return blockAddr(header), nil
	}

	if h.heapStart == 0 || header < h.heapStart || header >= h.heapEnd {
		return 0, errInvalidPointer("pointer does not lie within the heap and was never mapped")
	}

	return blockAddr(header), nil
}

// safeMul multiplies a and b, reporting false if the result overflows.
func safeMul(a, b uintptr) (uintptr, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}

	product := a * b
	if product/a != b {
		return 0, false
	}

	return product, true
}

func zeroBytes(ptr unsafe.Pointer, n uintptr) {
	buf := unsafe.Slice((*byte)(ptr), n)
	for i := range buf {
		buf[i] = 0
	}
}

func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
