package kmain

import (
	"github.com/marmot-os/kernel/kernel"
	"github.com/marmot-os/kernel/kernel/hal"
	"github.com/marmot-os/kernel/kernel/hal/multiboot"
	"github.com/marmot-os/kernel/kernel/mem/pmm"
	"github.com/marmot-os/kernel/kernel/sched"
	"github.com/marmot-os/kernel/kernel/seg"
	"github.com/marmot-os/kernel/kernel/vmm"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
)

// Kmain is the real kernel entrypoint. It is invoked by the cmd/kernel
// trampoline (main), which the rt0 assembly code calls after setting up a
// minimal g0 struct that allows Go code to run on the stack allocated by
// the assembly code.
//
// Its only argument is the address of the multiboot info payload provided by
// the bootloader.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	hal.InitTerminal()
	hal.ActiveTerminal.Clear()

	seg.Initialize()

	var err *kernel.Error
	if err = pmm.Initialize(); err != nil {
		panic(err)
	} else if err = vmm.Initialize(); err != nil {
		panic(err)
	}

	sched.Initialize()

	// Use kernel.Panic instead of panic to prevent the compiler from
	// treating kernel.Panic as dead-code and eliminating it.
	kernel.Panic(errKmainReturned)
}
