package vmm

import (
	"unsafe"

	"github.com/marmot-os/kernel/kernel"
	"github.com/marmot-os/kernel/kernel/layout"
	"github.com/marmot-os/kernel/kernel/mem"
	"github.com/marmot-os/kernel/kernel/mem/pmm"
)

// tmpPDPtrFn resolves the scratch mapping at layout.Tmp to a real pointer.
// Tests replace it, same as pdPtrFn/ptPtrFn.
var tmpPDPtrFn = func() unsafe.Pointer { return unsafe.Pointer(uintptr(layout.Tmp)) }

// tmpPDEntries views the page directory temporarily mapped at layout.Tmp
// during CreateAddressSpace, before it has a recursive self-map of its own
// and so cannot yet be reached through layout.PD.
func tmpPDEntries() *[1024]pageTableEntry {
	return (*[1024]pageTableEntry)(tmpPDPtrFn())
}

// CreateAddressSpace allocates and initializes a new page directory: kernel
// entries [0, pdIndex(layout.User)) are copied by value from the currently
// active page directory (a snapshot — later kernel mappings do not
// propagate to address spaces created before them), and entry 1023 is set
// up as the new directory's own recursive self-map, active only once CR3
// points at it. It returns the physical frame backing the new directory.
func CreateAddressSpace() (pmm.Frame, *kernel.Error) {
	pdFrame := allocateFn()

	if err := Map(layout.Tmp, &pdFrame, FlagRW); err != nil {
		return pmm.InvalidFrame, err
	}

	active := pdEntries()
	newPD := tmpPDEntries()
	for i := range newPD {
		newPD[i] = 0
	}

	userPDIndex := pdIndex(layout.User)
	for i := uintptr(0); i < userPDIndex; i++ {
		newPD[i] = active[i]
	}

	newPD[1023] = 0
	newPD[1023].SetFrame(pdFrame)
	newPD[1023].SetFlags(FlagPresent | FlagRW)

	if err := Unmap(layout.Tmp); err != nil {
		return pmm.InvalidFrame, err
	}

	return pdFrame, nil
}

// DestroyAddressSpace unmaps every userspace page directory slot
// [pdIndex(layout.User), 1023) of the currently active address space.
// Entry 1023 is preserved: dismantling the recursive self-map while it is
// still active would make the directory itself unreachable. The page
// directory frame and any now-empty page table frames are not reclaimed
// (see the design notes on address-space teardown).
func DestroyAddressSpace() *kernel.Error {
	pd := pdEntries()

	for i := pdIndex(layout.User); i < 1023; i++ {
		if !pd[i].HasAnyFlag(FlagPresent) {
			continue
		}

		if err := UnmapZone(i<<22, mem.Size(4)*mem.Mb); err != nil {
			return err
		}
	}

	return nil
}
