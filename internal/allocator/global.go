package allocator

import "unsafe"

// defaultHeap backs the package-level convenience functions below, adapted
// from the teacher's GlobalAllocator/Initialize pattern. Unlike the
// teacher's Alloc/Free/Realloc, which panic when uninitialized, these
// return INVALID_ARGUMENT: every public operation reports failure by value,
// never by throwing.
var defaultHeap *SyncHeap

// Init creates the process-wide default heap. It must be called once
// before using the package-level Allocate/ZeroAllocate/Reallocate/Release
// functions.
func Init(opts ...Option) error {
	h, err := NewSyncHeap(opts...)
	if err != nil {
		return err
	}

	defaultHeap = h

	return nil
}

func Allocate(size uintptr) (unsafe.Pointer, error) {
	if defaultHeap == nil {
		return nil, errInvalidArgument("default heap not initialized; call Init first")
	}

	return defaultHeap.Allocate(size)
}

func ZeroAllocate(count, elemSize uintptr) (unsafe.Pointer, error) {
	if defaultHeap == nil {
		return nil, errInvalidArgument("default heap not initialized; call Init first")
	}

	return defaultHeap.ZeroAllocate(count, elemSize)
}

func Reallocate(ptr unsafe.Pointer, newSize uintptr) (unsafe.Pointer, error) {
	if defaultHeap == nil {
		return nil, errInvalidArgument("default heap not initialized; call Init first")
	}

	return defaultHeap.Reallocate(ptr, newSize)
}

func Release(ptr unsafe.Pointer) error {
	if defaultHeap == nil {
		return errInvalidArgument("default heap not initialized; call Init first")
	}

	return defaultHeap.Release(ptr)
}
