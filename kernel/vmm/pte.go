// Package vmm implements the two-level paging scheme used to manage virtual
// memory: page-directory and page-table entries, map/unmap over the active
// address space, per-process address-space lifecycle, and the page-fault
// handler. Every exported operation assumes the recursive self-map
// installed by Initialize is in place: the active page directory's own
// entries are reachable at layout.PD, and entry i's page table is reachable
// at layout.PTs + i*PageSize, regardless of which address space is active.
package vmm

import "github.com/marmot-os/kernel/kernel/mem/pmm"

// PageTableEntryFlag describes the flag bits of a page directory or page
// table entry.
type PageTableEntryFlag uint32

const (
	// FlagPresent marks an entry as present in memory.
	FlagPresent PageTableEntryFlag = 1 << 0

	// FlagRW marks an entry as writable; without it the region is read-only.
	FlagRW PageTableEntryFlag = 1 << 1

	// FlagUser marks an entry as accessible from ring 3.
	FlagUser PageTableEntryFlag = 1 << 2

	// FlagHugePage marks a page directory entry as mapping a 4MiB page
	// directly rather than pointing at a page table.
	FlagHugePage PageTableEntryFlag = 1 << 7

	// FlagGlobal marks an entry's TLB translation as surviving a CR3
	// write (non-global entries are flushed on every address-space
	// switch).
	FlagGlobal PageTableEntryFlag = 1 << 8

	// FlagAllocated is a software-only bit: it records that this entry's
	// frame was allocated by vmm itself (as opposed to an explicitly
	// supplied frame), so unmap knows whether to free it.
	FlagAllocated PageTableEntryFlag = 1 << 9
)

// pageTableEntry is a single 32-bit page directory or page table entry: the
// upper 20 bits hold a physical frame number, the lower 12 hold flags.
type pageTableEntry uint32

// HasFlags returns true if all bits in flags are set.
func (e pageTableEntry) HasFlags(flags PageTableEntryFlag) bool {
	return PageTableEntryFlag(e)&flags == flags
}

// HasAnyFlag returns true if any bit in flags is set.
func (e pageTableEntry) HasAnyFlag(flags PageTableEntryFlag) bool {
	return PageTableEntryFlag(e)&flags != 0
}

// SetFlags ORs flags into the entry, leaving the frame number untouched.
func (e *pageTableEntry) SetFlags(flags PageTableEntryFlag) {
	*e |= pageTableEntry(flags)
}

// ClearFlags clears flags from the entry, leaving the frame number untouched.
func (e *pageTableEntry) ClearFlags(flags PageTableEntryFlag) {
	*e &^= pageTableEntry(flags)
}

// Frame returns the physical frame this entry points at.
func (e pageTableEntry) Frame() pmm.Frame {
	return pmm.Frame(e >> 12)
}

// SetFrame sets the physical frame this entry points at, leaving its flags
// untouched.
func (e *pageTableEntry) SetFrame(f pmm.Frame) {
	*e = (*e & 0xFFF) | pageTableEntry(f<<12)
}
