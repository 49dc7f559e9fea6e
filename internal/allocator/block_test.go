package allocator

import (
	"errors"
	"testing"
)

func TestAlignUp(t *testing.T) {
	cases := []struct {
		in, want uintptr
	}{
		{0, minPayload},
		{1, minPayload},
		{16, 16},
		{17, 24},
		{24, 24},
		{100, 104},
		{1024, 1024},
		{1025, 1032},
	}

	for _, c := range cases {
		if got := alignUp(c.in); got != c.want {
			t.Errorf("alignUp(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestBucketIndex(t *testing.T) {
	cases := []struct {
		size uintptr
		want int
	}{
		{16, 0},
		{17, 1},
		{32, 1},
		{33, 2},
		{64, 2},
		{65, 3},
		{128, 3},
		{256, 4},
		{512, 5},
		{1024, 6},
		{1025, 7},
		{1 << 20, 7},
	}

	for _, c := range cases {
		if got := bucketIndex(c.size); got != c.want {
			t.Errorf("bucketIndex(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestHeaderPacking(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		w := packHeader(256, true, false)
		if unpackSize(w) != 256 {
			t.Errorf("size = %d, want 256", unpackSize(w))
		}
		if !unpackAllocated(w) {
			t.Error("expected allocated bit set")
		}
		if unpackMapped(w) {
			t.Error("expected mapped bit clear")
		}
	})

	t.Run("MappedFreeBlock", func(t *testing.T) {
		w := packHeader(4096, false, true)
		if unpackAllocated(w) {
			t.Error("expected allocated bit clear")
		}
		if !unpackMapped(w) {
			t.Error("expected mapped bit set")
		}
	})
}

func TestRoundedPayloadSizeOverflow(t *testing.T) {
	_, err := roundedPayloadSize(maxPayloadSize)
	if err == nil {
		t.Fatal("expected SIZE_OVERFLOW error")
	}

	var allocErr *AllocError
	if !errors.As(err, &allocErr) || allocErr.Code != CodeSizeOverflow {
		t.Errorf("got error %v, want SIZE_OVERFLOW", err)
	}
}

func TestAllocateFloorsAtSixteenBytes(t *testing.T) {
	h := newTestHeap(t, 0)

	ptr, err := h.Allocate(1)
	if err != nil {
		t.Fatalf("Allocate(1): %v", err)
	}

	b, err := h.blockFromPayload(ptr)
	if err != nil {
		t.Fatalf("blockFromPayload: %v", err)
	}

	if b.size() != minPayload {
		t.Errorf("payload size = %d, want %d", b.size(), minPayload)
	}
}

func TestHeapMapBoundary(t *testing.T) {
	h := newTestHeap(t, 0)

	heapPtr, err := h.Allocate(1024)
	if err != nil {
		t.Fatalf("Allocate(1024): %v", err)
	}

	b, err := h.blockFromPayload(heapPtr)
	if err != nil {
		t.Fatalf("blockFromPayload: %v", err)
	}

	if b.mapped() {
		t.Error("Allocate(1024) should stay in the heap regime (M=0)")
	}

	mapPtr, err := h.Allocate(1025)
	if err != nil {
		t.Fatalf("Allocate(1025): %v", err)
	}

	mb, err := h.blockFromPayload(mapPtr)
	if err != nil {
		t.Fatalf("blockFromPayload: %v", err)
	}

	if !mb.mapped() {
		t.Error("Allocate(1025) should cross into the mapping regime (M=1)")
	}
}

func TestSplitThreshold(t *testing.T) {
	t.Run("ExactlyMinBlockRemainderSplits", func(t *testing.T) {
		h := newTestHeap(t, 0)

		// Grow a single free block of size R+32, then request R: the
		// remainder is exactly MIN_BLOCK and must split.
		const r = 64

		total := uintptr(r + minBlockSize)
		addr, err := h.extender.ExtendHeap(total + headerSize + footerSize)
		if err != nil {
			t.Fatalf("ExtendHeap: %v", err)
		}

		b := blockAddr(addr)
		b.writeHeapBlock(total, false)
		h.heapStart = addr
		h.heapEnd = addr + total + headerSize + footerSize
		h.free.insert(b)

		got, err := h.getFree(r)
		if err != nil {
			t.Fatalf("getFree: %v", err)
		}

		if got.size() != r {
			t.Fatalf("left half size = %d, want %d", got.size(), r)
		}

		blocks, err := h.heapWalk()
		if err != nil {
			t.Fatalf("heapWalk: %v", err)
		}

		if len(blocks) != 2 {
			t.Fatalf("expected split into 2 blocks, got %d", len(blocks))
		}

		if blocks[1].Size != minPayload {
			t.Errorf("remainder payload = %d, want %d", blocks[1].Size, minPayload)
		}
	})

	t.Run("OneByteShortDoesNotSplit", func(t *testing.T) {
		h := newTestHeap(t, 0)

		const r = 64

		total := uintptr(r + minBlockSize - 1)
		addr, err := h.extender.ExtendHeap(total + headerSize + footerSize)
		if err != nil {
			t.Fatalf("ExtendHeap: %v", err)
		}

		b := blockAddr(addr)
		b.writeHeapBlock(total, false)
		h.heapStart = addr
		h.heapEnd = addr + total + headerSize + footerSize
		h.free.insert(b)

		got, err := h.getFree(r)
		if err != nil {
			t.Fatalf("getFree: %v", err)
		}

		if got.size() != total {
			t.Errorf("block should not have split: size = %d, want %d", got.size(), total)
		}

		blocks, err := h.heapWalk()
		if err != nil {
			t.Fatalf("heapWalk: %v", err)
		}

		if len(blocks) != 1 {
			t.Fatalf("expected no split, got %d blocks", len(blocks))
		}
	})
}
