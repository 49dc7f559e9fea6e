package allocator

// prevNeighbor examines the footer immediately before b, if any, and
// reports whether the previous physical block is free.
func (h *Heap) prevNeighbor(b blockAddr) (blockAddr, bool) {
	if h.isFirstHeapBlock(b) {
		return 0, false
	}

	footerAddr := uintptr(b) - footerSize
	w := loadWord(footerAddr)

	if unpackAllocated(w) {
		return 0, false
	}

	size := unpackSize(w)
	start := footerAddr - headerSize - size

	return blockAddr(start), true
}

// nextNeighbor examines the header immediately after b's footer, if it
// lies before heap_end, and reports whether the next physical block is
// free.
func (h *Heap) nextNeighbor(b blockAddr) (blockAddr, bool) {
	if h.isLastHeapBlock(b) {
		return 0, false
	}

	next := b.nextHeapBlockAddr()
	w := loadWord(next)
	if unpackAllocated(w) {
		return 0, false
	}

	return blockAddr(next), true
}

// mergeSpan rewrites start..end as a single free block. prev and next, if
// nonzero, are absorbed internal boundary tags whose header+footer pair
// contributes 2*A to the merged payload size.
func mergeSpan(prev, mid, next blockAddr) blockAddr {
	total := mid.size()
	start := mid

	if prev != 0 {
		start = prev
		total += prev.size() + headerSize + footerSize
	}

	if next != 0 {
		total += next.size() + headerSize + footerSize
	}

	start.writeHeapBlock(total, false)

	return start
}

// coalesceAndInsert merges a just-freed heap-resident block with its
// immediate free neighbors (previous first, then next, per the spec's
// fixed tie-break order) and inserts the resulting block into its bucket.
func (h *Heap) coalesceAndInsert(b blockAddr) {
	prev, prevFree := h.prevNeighbor(b)
	next, nextFree := h.nextNeighbor(b)

	merged := b

	switch {
	case prevFree && nextFree:
		h.free.remove(prev)
		h.free.remove(next)
		merged = mergeSpan(prev, b, next)
	case prevFree:
		h.free.remove(prev)
		merged = mergeSpan(prev, b, 0)
	case nextFree:
		h.free.remove(next)
		merged = mergeSpan(0, b, next)
	}

	h.free.insert(merged)
}
