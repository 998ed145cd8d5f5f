// +build 386

package cpu

// EnableInterrupts enables interrupt handling (STI).
func EnableInterrupts()

// DisableInterrupts disables interrupt handling (CLI).
func DisableInterrupts()

// Halt stops instruction execution until the next interrupt (HLT).
func Halt()

// InvalidatePage flushes the TLB entry for a single virtual address
// (INVLPG).
func InvalidatePage(virtAddr uintptr)

// WriteCR3 switches the active page directory to the one at the given
// physical address. Writing CR3 flushes all non-global TLB entries; global
// entries (the kernel identity map) survive.
func WriteCR3(pdPhysAddr uintptr)

// ReadCR2 returns the faulting linear address recorded by the CPU for the
// page fault currently being handled.
func ReadCR2() uintptr

// LoadTaskRegister loads the task register with the given GDT selector
// (LTR). The corresponding TSS descriptor's busy bit must be clear before
// this is called; calling it twice in a row without an intervening task
// switch faults.
func LoadTaskRegister(selector uint16)

// LoadGDT loads the CPU's GDTR from the descriptor at gdtr (limit:base
// pair) and reloads the segment registers from the new table.
func LoadGDT(gdtr uintptr)

// EnablePaging installs pdPhysAddr as the root page directory and enables
// PG, PSE and PGE in CR0/CR4.
func EnablePaging(pdPhysAddr uintptr)
