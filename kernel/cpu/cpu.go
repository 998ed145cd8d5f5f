// Package cpu provides the architecture-specific primitives the rest of the
// kernel core builds on: page-address masking (pure, unit-tested here) and
// the hardware-touching stubs declared without a body in cpu_386.go, whose
// implementations live in assembly that is outside this module's scope.
package cpu

import "github.com/marmot-os/kernel/kernel/mem"

// PageBase rounds x down to the start of the page that contains it.
func PageBase(x uintptr) uintptr {
	return x &^ (uintptr(mem.PageSize) - 1)
}

// PageAlign rounds x up to the start of the next page boundary. If x is
// already page-aligned it is returned unchanged.
func PageAlign(x uintptr) uintptr {
	return (x + uintptr(mem.PageSize) - 1) &^ (uintptr(mem.PageSize) - 1)
}

// CriticalSection disables interrupts for the duration of fn and enables
// them afterwards, whatever their state was before the call; the previous
// state is not saved, so calls must not be nested. PMEM and the scheduler use this
// to serialize access to the free-frame stack and the ready queue against
// the timer tick, per the single-CPU interrupt-discipline model.
//
// criticalSectionFn is swapped out by tests so that package-level tests do
// not attempt to execute a CLI/STI pair on the host CPU.
var criticalSectionFn = func(fn func()) {
	DisableInterrupts()
	defer EnableInterrupts()
	fn()
}

// CriticalSection runs fn with interrupts disabled.
func CriticalSection(fn func()) {
	criticalSectionFn(fn)
}
