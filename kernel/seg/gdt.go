// Package seg builds and loads the kernel's Global Descriptor Table and
// Task State Segment: the fixed ring-0/ring-3 code and data segments, and
// the kernel stack pointer the CPU picks up on a ring-3 to ring-0
// transition.
package seg

// Selector identifies one of the six fixed GDT entries.
type Selector uint16

const (
	// NullSelector must never be loaded into a segment register.
	NullSelector Selector = 0x00
	// KernelCodeSelector is the ring-0 code segment (CS while in the kernel).
	KernelCodeSelector Selector = 0x08
	// KernelDataSelector is the ring-0 data segment (DS/ES/SS while in the kernel).
	KernelDataSelector Selector = 0x10
	// UserCodeSelector is the ring-3 code segment, RPL 3.
	UserCodeSelector Selector = 0x18
	// UserDataSelector is the ring-3 data segment, RPL 3.
	UserDataSelector Selector = 0x20
	// TSSSelector references the lone TSS descriptor, loaded with LTR.
	TSSSelector Selector = 0x28
)

const entryCount = 6

// descriptor is the raw 8-byte layout of one GDT entry. Field splits follow
// the hardware layout exactly; nothing here is rearranged for readability.
type descriptor struct {
	limitLow   uint16
	baseLow    uint16
	baseMiddle uint8
	access     uint8
	flagsLimit uint8 // high nibble: flags; low nibble: limit bits 16-19
	baseHigh   uint8
}

func newDescriptor(base uint32, limit uint32, access, flags uint8) descriptor {
	return descriptor{
		limitLow:   uint16(limit & 0xFFFF),
		baseLow:    uint16(base & 0xFFFF),
		baseMiddle: uint8((base >> 16) & 0xFF),
		access:     access,
		flagsLimit: (flags << 4) | uint8((limit>>16)&0x0F),
		baseHigh:   uint8((base >> 24) & 0xFF),
	}
}

// table is the process-wide GDT. It is a fixed array: entries are replaced
// in place (slot 5 is patched at Initialize time once the TSS address is
// known), never appended to.
var table [entryCount]descriptor

// gdtr is the descriptor register image loaded via cpu.LoadGDT: a 16-bit
// limit followed by a 32-bit base, packed with no padding.
type registerImage struct {
	limit uint16
	base  uint32
}

var gdtr registerImage
