package vmm

import "github.com/marmot-os/kernel/kernel/mem"

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address pointed to by this page.
func (p Page) Address() uintptr {
	return uintptr(p) << mem.PageShift
}

// PageFromAddress returns the Page containing the given virtual address,
// rounding down to the nearest page boundary.
func PageFromAddress(virtAddr uintptr) Page {
	return Page((virtAddr &^ (uintptr(mem.PageSize) - 1)) >> mem.PageShift)
}

// pdIndex returns the page directory index for a virtual address: bits
// 31-22, selecting one of 1024 4MiB regions.
func pdIndex(virtAddr uintptr) uintptr {
	return virtAddr >> 22
}

// ptIndex returns the page table index for a virtual address: bits 21-12,
// selecting one of 1024 4KiB pages within its page directory's region.
func ptIndex(virtAddr uintptr) uintptr {
	return (virtAddr >> 12) & 0x3FF
}
