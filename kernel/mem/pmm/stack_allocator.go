package pmm

import (
	"reflect"
	"unsafe"

	"github.com/marmot-os/kernel/kernel"
	"github.com/marmot-os/kernel/kernel/cpu"
	"github.com/marmot-os/kernel/kernel/hal/multiboot"
	"github.com/marmot-os/kernel/kernel/mem"
)

var (
	// the following functions are mocked by tests and are automatically
	// inlined by the compiler.
	memUpperFn        = multiboot.MemUpper
	lastModuleEndFn   = multiboot.LastModuleEnd
	visitMemRegionsFn = multiboot.VisitMemRegions
	panicFn           = kernel.Panic

	// newStackFn builds the slice backing the free-frame stack. In
	// production it points the slice header directly at physical memory
	// (see newStack); tests override it with a regular heap slice so
	// Initialize can be exercised without touching raw addresses.
	newStackFn = newStack

	errNoMemoryMap = &kernel.Error{Module: "pmm", Message: "bootloader did not supply a memory map"}
	errOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of memory"}

	// stack is the free-frame stack: a slice whose backing array is not
	// heap-allocated but placed directly at the page-aligned physical
	// address just past the last bootloader module. slots [0, index) hold
	// the addresses of currently-free frames.
	stack []uintptr
	index int

	// stackEnd is the page-aligned physical address just past the
	// free-frame stack's backing storage, set by Initialize. vmm consults
	// it via StackEnd to assert the stack fits below the identity-mapped
	// region before it allocates the kernel page directory.
	stackEnd uintptr
)

// Initialize places the free-frame stack just past the last bootloader
// module, sizes it from the upper-memory size the bootloader reported, and
// pushes every page in every AVAILABLE memory-map region at or above the
// stack's own end, reserving everything below.
func Initialize() *kernel.Error {
	memUpperKiB := memUpperFn()
	if memUpperKiB == 0 {
		return errNoMemoryMap
	}

	stackAddr := cpu.PageAlign(lastModuleEndFn())
	capacity := uintptr(memUpperKiB) * 1024 / uintptr(mem.PageSize)

	stack = newStackFn(stackAddr, capacity)
	index = 0

	stackEnd = cpu.PageAlign(stackAddr + capacity*unsafe.Sizeof(uintptr(0)))

	var sawMemoryMap bool
	visitMemRegionsFn(func(region *multiboot.MemoryMapEntry) bool {
		sawMemoryMap = true
		if region.Type != multiboot.MemAvailable {
			return true
		}

		start := uintptr(region.PhysAddress)
		end := start + uintptr(region.Length)
		if start < stackEnd {
			start = stackEnd
		}

		for addr := cpu.PageAlign(start); addr < end; addr += uintptr(mem.PageSize) {
			free(addr)
		}
		return true
	})

	if !sawMemoryMap {
		return errNoMemoryMap
	}

	return nil
}

// Available returns the number of bytes reclaimable via Allocate.
func Available() mem.Size {
	return mem.Size(index) * mem.PageSize
}

// StackEnd returns the page-aligned physical address just past the
// free-frame stack's backing storage, as computed by the most recent
// Initialize call.
func StackEnd() uintptr {
	return stackEnd
}

// Allocate reserves and returns a single physical frame; its contents are
// not zeroed. There is no reservation or low-watermark mechanism: if no
// free frame remains, Allocate panics with "out of memory" rather than
// returning an error.
func Allocate() Frame {
	var frame Frame

	cpu.CriticalSection(func() {
		if index == 0 {
			panicFn(errOutOfMemory)
			frame = InvalidFrame
			return
		}

		index--
		frame = FrameFromAddress(stack[index])
	})

	return frame
}

// Free returns a frame to the allocator, making it available to a future
// Allocate call.
func Free(f Frame) {
	cpu.CriticalSection(func() {
		free(f.Address())
	})
}

// free pushes a physical address onto the free-frame stack, rounding it
// down to its containing page. Callers must already hold the allocator's
// critical section.
func free(addr uintptr) {
	stack[index] = cpu.PageBase(addr)
	index++
}

// newStack builds a []uintptr of the given capacity whose backing array is
// the raw memory starting at addr, rather than a Go heap allocation: the
// free-frame stack is itself physical memory the allocator is about to hand
// out, and placing it via the Go heap would require a working allocator
// this package exists to provide.
func newStack(addr, capacity uintptr) []uintptr {
	var hdr reflect.SliceHeader
	hdr.Data = addr
	hdr.Len = int(capacity)
	hdr.Cap = int(capacity)
	return *(*[]uintptr)(unsafe.Pointer(&hdr))
}
