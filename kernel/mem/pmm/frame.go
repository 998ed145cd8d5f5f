// Package pmm manages physical memory frame allocations. It exposes Frame,
// the physical-page vocabulary type shared by the virtual memory manager,
// and a stack-based allocator that tracks free 4 KiB frames above a reserved
// low region (see stack_allocator.go).
package pmm

import (
	"math"

	"github.com/marmot-os/kernel/kernel/mem"
)

// Frame describes a physical memory page index. Ownership of a Frame passes
// from the allocator to the caller on Allocate and back on Free; double-free
// and use-after-free are undefined.
type Frame uintptr

// InvalidFrame is returned by the allocator when it fails to reserve a frame.
const InvalidFrame = Frame(math.MaxUint32)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address pointed to by this Frame.
func (f Frame) Address() uintptr {
	return uintptr(f) << mem.PageShift
}

// FrameFromAddress returns the Frame that contains the given physical
// address, rounding down to the nearest frame boundary.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame(physAddr >> mem.PageShift)
}
