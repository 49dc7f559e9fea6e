// Package allocator implements a segregated free-list heap allocator with
// boundary-tag coalescing for small requests and direct page mapping for
// large ones. The engine is single-threaded; SyncHeap in sync.go supplies a
// thin locking wrapper for callers that need concurrent access.
package allocator

import "unsafe"

// wordSize is A, the alignment unit every offset and size is a multiple of.
const wordSize = 8

// minPayload is the floor every requested size is promoted to: small enough
// payloads can't also hold the two free-list link words.
const minPayload = 16

const (
	headerSize = wordSize
	footerSize = wordSize
)

// minBlockSize is MIN_BLOCK: the smallest block that can hold a header, a
// 16-byte payload, and a footer. Split never leaves a remainder below this.
const minBlockSize = minPayload + headerSize + footerSize

// largeThreshold is the payload size above which a request is serviced by
// the page mapper instead of the heap.
const largeThreshold = 1024

// maxPayloadSize bounds what a header's size field can encode: two bits are
// reserved for the A/M flags, leaving 62 of a 64-bit word for size.
const maxPayloadSize = uintptr(1) << 62

const (
	flagAllocated uintptr = 1 << 0
	flagMapped    uintptr = 1 << 1
	sizeShift             = 2
)

func packHeader(size uintptr, allocated, mapped bool) uintptr {
	w := size << sizeShift
	if allocated {
		w |= flagAllocated
	}

	if mapped {
		w |= flagMapped
	}

	return w
}

func unpackSize(w uintptr) uintptr    { return w >> sizeShift }
func unpackAllocated(w uintptr) bool  { return w&flagAllocated != 0 }
func unpackMapped(w uintptr) bool     { return w&flagMapped != 0 }

func loadWord(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}

func storeWord(addr uintptr, w uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = w
}

// alignUp rounds size up to the next multiple of A with a 16-byte floor:
// anything smaller can't also hold the two free-list link words once free.
func alignUp(size uintptr) uintptr {
	if size < minPayload {
		return minPayload
	}

	return (size + wordSize - 1) &^ (wordSize - 1)
}

// roundedPayloadSize validates and rounds a caller-requested size.
func roundedPayloadSize(size uintptr) (uintptr, error) {
	// Checked before rounding: alignUp wraps to 0 for sizes near 2^64.
	if size >= maxPayloadSize {
		return 0, errSizeOverflow("requested size exceeds the addressable payload range")
	}

	r := alignUp(size)
	if r >= maxPayloadSize {
		return 0, errSizeOverflow("requested size exceeds the addressable payload range")
	}

	return r, nil
}

// blockAddr is the address of a block's header word. It is never treated as
// a Go pointer directly; all access goes through loadWord/storeWord, mirroring
// how the examined corpus overlays typed views on raw heap addresses.
type blockAddr uintptr

func (b blockAddr) header() uintptr        { return loadWord(uintptr(b)) }
func (b blockAddr) setHeader(w uintptr)    { storeWord(uintptr(b), w) }
func (b blockAddr) payload() uintptr       { return uintptr(b) + headerSize }
func (b blockAddr) size() uintptr          { return unpackSize(b.header()) }
func (b blockAddr) allocated() bool        { return unpackAllocated(b.header()) }
func (b blockAddr) mapped() bool           { return unpackMapped(b.header()) }

// footer is only meaningful for heap-resident (non-mapped) blocks.
func (b blockAddr) footer() uintptr     { return b.payload() + b.size() }
func (b blockAddr) setFooter(w uintptr) { storeWord(b.footer(), w) }
func (b blockAddr) footerWord() uintptr { return loadWord(b.footer()) }

// nextHeapBlockAddr is the header address immediately following b's footer.
func (b blockAddr) nextHeapBlockAddr() uintptr { return b.footer() + footerSize }

// writeHeapBlock writes matching header and footer words for a heap-resident
// block of the given payload size and allocation state.
func (b blockAddr) writeHeapBlock(size uintptr, allocated bool) {
	w := packHeader(size, allocated, false)
	b.setHeader(w)
	b.setFooter(w)
}

// writeMappedBlock writes the header-only layout used by mapping-resident
// blocks; they never carry a footer because they are never coalesced.
func (b blockAddr) writeMappedBlock(size uintptr) {
	b.setHeader(packHeader(size, false, true))
}

func (b blockAddr) markAllocated() {
	w := packHeader(b.size(), true, b.mapped())
	b.setHeader(w)

	if !b.mapped() {
		b.setFooter(w)
	}
}

func (b blockAddr) markFree() {
	w := packHeader(b.size(), false, b.mapped())
	b.setHeader(w)

	if !b.mapped() {
		b.setFooter(w)
	}
}

// Free-list link words: the first two words of a free block's payload.
func (b blockAddr) freeNext() blockAddr     { return blockAddr(loadWord(b.payload())) }
func (b blockAddr) setFreeNext(n blockAddr) { storeWord(b.payload(), uintptr(n)) }
func (b blockAddr) freePrev() blockAddr     { return blockAddr(loadWord(b.payload() + wordSize)) }
func (b blockAddr) setFreePrev(p blockAddr) { storeWord(b.payload()+wordSize, uintptr(p)) }
