package seg

import (
	"unsafe"

	"github.com/marmot-os/kernel/kernel/cpu"
)

// loadGDTFn is mocked by tests so Initialize's descriptor-construction logic
// can be exercised without loading a real GDTR.
var loadGDTFn = cpu.LoadGDT

// loadTaskRegisterFn is mocked by tests for the same reason.
var loadTaskRegisterFn = cpu.LoadTaskRegister

// Initialize builds the six fixed GDT entries, patches in the TSS
// descriptor once the TSS's address is known, loads the GDTR and loads the
// task register. It must run once, before any ring-3 transition.
func Initialize() {
	table[0] = newDescriptor(0, 0, 0, 0)
	table[1] = newDescriptor(0, 0xFFFFF, 0x9A, 0xC)
	table[2] = newDescriptor(0, 0xFFFFF, 0x92, 0xC)
	table[3] = newDescriptor(0, 0xFFFFF, 0xFA, 0xC)
	table[4] = newDescriptor(0, 0xFFFFF, 0xF2, 0xC)

	kernelTSS = tss{}
	kernelTSS.ss0 = uint32(KernelDataSelector)
	kernelTSS.iomapBase = tssSize

	tssBase := uint32(uintptr(unsafe.Pointer(&kernelTSS)))
	table[5] = newDescriptor(tssBase, tssSize-1, 0x89, 0x4)

	gdtr = registerImage{
		limit: uint16(unsafe.Sizeof(table)) - 1,
		base:  uint32(uintptr(unsafe.Pointer(&table[0]))),
	}

	loadGDTFn(uintptr(unsafe.Pointer(&gdtr)))
	loadTaskRegisterFn(uint16(TSSSelector))
}

// SetKernelStack stores esp0 into the TSS. The scheduler calls this on every
// context switch: esp0 is the address the CPU loads into ESP the next time
// a ring-3 to ring-0 transition occurs for the thread being switched in.
func SetKernelStack(esp0 uintptr) {
	kernelTSS.esp0 = uint32(esp0)
}

// KernelStack returns the value most recently installed by SetKernelStack.
func KernelStack() uintptr {
	return uintptr(kernelTSS.esp0)
}
