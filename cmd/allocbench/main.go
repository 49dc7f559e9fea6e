// Command allocbench drives the segregated free-list heap through a mixed
// allocate/release/reallocate workload and reports per-kind operation
// counts, failures and elapsed time. It exists to exercise the allocator end-to-end
// outside of unit tests, in the style of the profiling tools under cmd/.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
	"unsafe"

	"github.com/student-go/memalloc/internal/allocator"
)

func main() {
	var (
		reserve    = flag.Int64("reserve", 64<<20, "bytes reserved for the heap backing store")
		ops        = flag.Int("ops", 200000, "number of allocator operations to perform")
		maxSize    = flag.Int("max-size", 4096, "maximum request size in bytes")
		seed       = flag.Int64("seed", 1, "PRNG seed for the operation mix")
		reallocPct = flag.Int("realloc-pct", 10, "percentage of operations that are reallocate calls")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Drives the heap allocator through a synthetic workload.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	h, err := allocator.NewHeap(allocator.WithHeapReserve(uintptr(*reserve)))
	if err != nil {
		log.Fatalf("allocbench: NewHeap: %v", err)
	}

	report := run(h, *ops, *maxSize, *reallocPct, rand.New(rand.NewSource(*seed)))

	log.Printf("operations=%d allocs=%d releases=%d reallocs=%d failures=%d elapsed=%s",
		report.ops, report.allocs, report.releases, report.reallocs, report.failures, report.elapsed)
}

type benchReport struct {
	ops      int
	allocs   int
	releases int
	reallocs int
	failures int
	elapsed  time.Duration
}

func run(h *allocator.Heap, ops, maxSize, reallocPct int, rng *rand.Rand) benchReport {
	live := make([]unsafe.Pointer, 0, ops)
	report := benchReport{}

	start := time.Now()

	for i := 0; i < ops; i++ {
		report.ops++

		switch roll := rng.Intn(100); {
		case len(live) == 0 || roll < 55:
			size := uintptr(rng.Intn(maxSize) + 1)

			p, err := h.Allocate(size)
			if err != nil {
				report.failures++
				continue
			}

			live = append(live, p)
			report.allocs++

		case roll >= 100-reallocPct:
			idx := rng.Intn(len(live))
			newSize := uintptr(rng.Intn(maxSize) + 1)

			p, err := h.Reallocate(live[idx], newSize)
			if err != nil {
				report.failures++
				continue
			}

			live[idx] = p
			report.reallocs++

		default:
			idx := rng.Intn(len(live))

			if err := h.Release(live[idx]); err != nil {
				report.failures++
				continue
			}

			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
			report.releases++
		}
	}

	report.elapsed = time.Since(start)

	return report
}
