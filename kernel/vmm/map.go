package vmm

import (
	"unsafe"

	"github.com/marmot-os/kernel/kernel"
	"github.com/marmot-os/kernel/kernel/cpu"
	"github.com/marmot-os/kernel/kernel/layout"
	"github.com/marmot-os/kernel/kernel/mem"
	"github.com/marmot-os/kernel/kernel/mem/pmm"
)

var (
	// the following functions are mocked by tests and are automatically
	// inlined by the compiler.
	allocateFn       = pmm.Allocate
	freeFn           = pmm.Free
	invalidatePageFn = cpu.InvalidatePage

	// pdPtrFn and ptPtrFn resolve the recursive self-map addresses to
	// real pointers. Tests replace them with pointers into plain Go
	// arrays so the package can be exercised without an MMU; production
	// code never needs to override them, since layout.PD and layout.PTs
	// are only valid once paging is enabled.
	pdPtrFn = func() unsafe.Pointer { return unsafe.Pointer(uintptr(layout.PD)) }
	ptPtrFn = func(pdi uintptr) unsafe.Pointer {
		return unsafe.Pointer(uintptr(layout.PTs) + pdi*uintptr(mem.PageSize))
	}

	errIdentityRegion = &kernel.Error{Module: "vmm", Message: "map/unmap address below the identity-mapped region"}

	// ErrInvalidMapping is returned by VirtualToPhysical when called on a
	// virtual address that has no page table present.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "invalid mapping"}
)

// pdEntries returns the active page directory, viewed through the
// recursive self-map at layout.PD.
func pdEntries() *[1024]pageTableEntry {
	return (*[1024]pageTableEntry)(pdPtrFn())
}

// ptEntries returns the page table for page directory slot pdi, viewed
// through the recursive self-map at layout.PTs. The page table must be
// present; callers check the corresponding PD entry first.
func ptEntries(pdi uintptr) *[1024]pageTableEntry {
	return (*[1024]pageTableEntry)(ptPtrFn(pdi))
}

// ptVirtualAddress returns the virtual address through which page table pdi
// is visible, for TLB invalidation purposes.
func ptVirtualAddress(pdi uintptr) uintptr {
	return uintptr(layout.PTs) + pdi*uintptr(mem.PageSize)
}

// virtualToPhysical returns the physical address mapped for v, or
// ErrInvalidMapping if the page directory entry covering v is empty. The
// caller is responsible for checking FlagPresent on the result if that
// distinction matters to it.
func virtualToPhysical(v uintptr) (uintptr, *kernel.Error) {
	pdi, pti := pdIndex(v), ptIndex(v)

	pd := pdEntries()
	if !pd[pdi].HasAnyFlag(FlagPresent) {
		return 0, ErrInvalidMapping
	}

	pte := ptEntries(pdi)[pti]
	return pte.Frame().Address() + (v & (uintptr(mem.PageSize) - 1)), nil
}

// Map installs a mapping from virtual page v to a physical frame. If p is
// non-nil, the mapping points at *p and vmm never frees that frame on
// Unmap (ownership stays with the caller); if p is nil, Map allocates or
// reuses a frame from pmm and flags it FlagAllocated so Unmap reclaims it.
//
// Map refuses addresses below layout.Identity: the identity-mapped kernel
// region is immutable at the paging layer.
func Map(v uintptr, p *pmm.Frame, flags PageTableEntryFlag) *kernel.Error {
	if v < layout.Identity {
		return errIdentityRegion
	}

	pdi, pti := pdIndex(v), ptIndex(v)
	pd := pdEntries()

	if !pd[pdi].HasAnyFlag(FlagPresent) {
		newPT := allocateFn()
		pd[pdi] = 0
		pd[pdi].SetFrame(newPT)
		pd[pdi].SetFlags(flags | FlagPresent | FlagRW | FlagUser)

		invalidatePageFn(ptVirtualAddress(pdi))

		newPTEntries := ptEntries(pdi)
		for i := range newPTEntries {
			newPTEntries[i] = 0
		}
	}

	pt := ptEntries(pdi)
	existing := pt[pti]

	switch {
	case p != nil:
		if existing.HasFlags(FlagAllocated) {
			freeFn(existing.Frame())
		}
		pt[pti] = 0
		pt[pti].SetFrame(*p)
		pt[pti].SetFlags(flags | FlagPresent)
	case existing.HasFlags(FlagAllocated):
		frame := existing.Frame()
		pt[pti] = 0
		pt[pti].SetFrame(frame)
		pt[pti].SetFlags(flags | FlagPresent | FlagAllocated)
	default:
		frame := allocateFn()
		pt[pti] = 0
		pt[pti].SetFrame(frame)
		pt[pti].SetFlags(flags | FlagPresent | FlagAllocated)
	}

	invalidatePageFn(v)
	return nil
}

// Unmap removes the mapping at virtual page v, freeing its backing frame
// if and only if vmm allocated it (FlagAllocated). Two consecutive calls
// to Unmap on the same address are equivalent to one: unmapping an address
// with no page directory entry is a no-op.
//
// Unmap refuses addresses below layout.Identity.
func Unmap(v uintptr) *kernel.Error {
	if v < layout.Identity {
		return errIdentityRegion
	}

	pdi, pti := pdIndex(v), ptIndex(v)
	pd := pdEntries()
	if !pd[pdi].HasAnyFlag(FlagPresent) {
		return nil
	}

	pt := ptEntries(pdi)
	if pt[pti].HasFlags(FlagAllocated) {
		freeFn(pt[pti].Frame())
	}
	pt[pti] = 0

	invalidatePageFn(v)
	return nil
}

// MapZone calls Map for every page in [v, v+size), striding the physical
// address in lockstep with v when p is non-nil. A zero size is a no-op.
func MapZone(v uintptr, p *pmm.Frame, size mem.Size, flags PageTableEntryFlag) *kernel.Error {
	for off := mem.Size(0); off < size; off += mem.PageSize {
		var framePtr *pmm.Frame
		if p != nil {
			f := pmm.Frame(uintptr(*p) + uintptr(off>>mem.PageShift))
			framePtr = &f
		}

		if err := Map(v+uintptr(off), framePtr, flags); err != nil {
			return err
		}
	}
	return nil
}

// UnmapZone calls Unmap for every page in [v, v+size). A zero size is a
// no-op.
func UnmapZone(v uintptr, size mem.Size) *kernel.Error {
	for off := mem.Size(0); off < size; off += mem.PageSize {
		if err := Unmap(v + uintptr(off)); err != nil {
			return err
		}
	}
	return nil
}
