package allocator

// getFree returns a free block with payload size >= req, creating a fresh
// one on miss. Heap-resident hits are split when profitable.
func (h *Heap) getFree(req uintptr) (blockAddr, error) {
	start := bucketIndex(req)

	for idx := start; idx < numBuckets; idx++ {
		if b := h.free.firstFit(idx, req); b != 0 {
			h.free.remove(b)
			return h.maybeSplit(b, req), nil
		}
	}

	if req <= largeThreshold {
		return h.growHeap(req)
	}

	return h.mapLarge(req)
}

// growHeap extends the heap by req+2A bytes and returns the resulting
// free block, whose payload is exactly req. The block is not inserted into
// the free-list index; the caller marks it allocated directly.
func (h *Heap) growHeap(req uintptr) (blockAddr, error) {
	total := req + headerSize + footerSize

	addr, err := h.extender.ExtendHeap(total)
	if err != nil {
		return 0, err
	}

	b := blockAddr(addr)
	b.writeHeapBlock(req, false)

	if h.heapStart == 0 {
		h.heapStart = addr
	}

	h.heapEnd = addr + total

	return b, nil
}

// mapLarge acquires a fresh mapping-resident block for a request above the
// heap/map threshold. Mapping-resident blocks are never inserted into the
// free-list index and never split.
func (h *Heap) mapLarge(req uintptr) (blockAddr, error) {
	pageSize := h.mapper.PageSize()
	needed := req + headerSize
	pages := (needed + pageSize - 1) / pageSize
	mappedLen := pages * pageSize

	addr, err := h.mapper.MapPages(mappedLen)
	if err != nil {
		return 0, err
	}

	b := blockAddr(addr)
	b.writeMappedBlock(req)
	h.mappedRegions[addr] = mappedLen

	return b, nil
}

// maybeSplit applies the split policy to a heap-resident free block already
// removed from its bucket: carve a left block of payload req and, if the
// remainder is at least MIN_BLOCK, insert the right remainder into its own
// bucket. Every block reachable through getFree's buckets is heap-resident
// (mapping-resident blocks are never inserted into the free-list index), so
// this is always safe to call on a firstFit/growHeap result.
func (h *Heap) maybeSplit(b blockAddr, req uintptr) blockAddr {
	remainder := b.size()
	if remainder < req+minBlockSize {
		return b
	}

	right := h.splitBlock(b, req)
	h.free.insert(right)

	return b
}

// splitBlock partitions b in place into a left block of payload leftSize
// and a right block spanning the remainder, writing all four header/footer
// words with A=0. The caller is responsible for marking the left half
// allocated and for inserting the right half (already done by maybeSplit).
func (h *Heap) splitBlock(b blockAddr, leftSize uintptr) blockAddr {
	total := b.size()
	rightSize := total - leftSize - headerSize - footerSize

	b.writeHeapBlock(leftSize, false)

	right := blockAddr(b.nextHeapBlockAddr())
	right.writeHeapBlock(rightSize, false)

	return right
}
