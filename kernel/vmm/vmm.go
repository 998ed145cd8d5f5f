package vmm

import (
	"unsafe"

	"github.com/marmot-os/kernel/kernel"
	"github.com/marmot-os/kernel/kernel/cpu"
	"github.com/marmot-os/kernel/kernel/irq"
	"github.com/marmot-os/kernel/kernel/kfmt/early"
	"github.com/marmot-os/kernel/kernel/layout"
	"github.com/marmot-os/kernel/kernel/mem"
	"github.com/marmot-os/kernel/kernel/mem/pmm"
)

var (
	// the following functions are mocked by tests and are automatically
	// inlined by the compiler.
	readCR2Fn      = cpu.ReadCR2
	enablePagingFn = cpu.EnablePaging
	registerIRQFn  = irq.Register
	panicFn        = kernel.Panic
	stackEndFn     = pmm.StackEnd

	errStackOverlapsIdentity = &kernel.Error{Module: "vmm", Message: "PMEM free-frame stack does not fit below the identity-mapped region"}

	// kernelPDPtrFn resolves the freshly allocated kernel page directory
	// frame to a pointer, before paging (and so the recursive self-map)
	// exists. Physical and virtual addresses coincide here because
	// nothing is mapped yet; tests replace it with a pointer into a plain
	// Go array.
	kernelPDPtrFn = func(f pmm.Frame) unsafe.Pointer { return unsafe.Pointer(f.Address()) }

	// destroyCurrentThreadFn is called when a page fault hits the
	// layout.ThreadDestroy sentinel. It is wired to the scheduler by
	// sched.Initialize rather than imported directly, so vmm does not
	// depend on sched.
	destroyCurrentThreadFn func()
)

// SetThreadDestroyHandler installs fn as the callback the page-fault
// handler invokes when a fault is recognized as a layout.ThreadDestroy
// cooperative exit signal.
func SetThreadDestroyHandler(fn func()) {
	destroyCurrentThreadFn = fn
}

// pageFault is registered against irq.PageFaultException by Initialize. A
// fault at exactly layout.ThreadDestroy is the cooperative "thread
// finished" signal; any other fault is fatal.
func pageFault(ctx *irq.Context) {
	faultAddr := readCR2Fn()

	if faultAddr == layout.ThreadDestroy {
		if destroyCurrentThreadFn != nil {
			destroyCurrentThreadFn()
		}
		return
	}

	nonPresent := ctx.ErrorCode&0x1 == 0
	write := ctx.ErrorCode&0x2 != 0
	user := ctx.ErrorCode&0x4 != 0

	early.Printf("\npage fault while accessing address: 0x%x\n", faultAddr)
	early.Printf("reason: ")
	if nonPresent {
		early.Printf("non-present page, ")
	} else {
		early.Printf("protection violation, ")
	}
	if write {
		early.Printf("write, ")
	} else {
		early.Printf("read, ")
	}
	if user {
		early.Printf("user-mode\n")
	} else {
		early.Printf("kernel-mode\n")
	}

	panicFn(&kernel.Error{Module: "vmm", Message: "unrecoverable page fault"})
}

// Initialize allocates the kernel page directory, installs the 0-8MiB
// identity map as two global 4MiB pages and the recursive self-map at slot
// 1023, registers the page-fault handler, and enables paging. It must run
// before any other vmm operation, and only after pmm.Initialize.
func Initialize() *kernel.Error {
	if stackEndFn() > layout.Identity {
		panicFn(errStackOverlapsIdentity)
		return errStackOverlapsIdentity
	}

	pdFrame := allocateFn()

	pd := (*[1024]pageTableEntry)(kernelPDPtrFn(pdFrame))
	for i := range pd {
		pd[i] = 0
	}

	pd[0] = 0
	pd[0].SetFrame(0)
	pd[0].SetFlags(FlagPresent | FlagRW | FlagHugePage | FlagGlobal)

	pd[1] = 0
	pd[1].SetFrame(pmm.FrameFromAddress(4 * uintptr(mem.Mb)))
	pd[1].SetFlags(FlagPresent | FlagRW | FlagHugePage | FlagGlobal)

	pd[1023] = 0
	pd[1023].SetFrame(pdFrame)
	pd[1023].SetFlags(FlagPresent | FlagRW)

	registerIRQFn(irq.PageFaultException, pageFault)
	enablePagingFn(pdFrame.Address())

	return nil
}
