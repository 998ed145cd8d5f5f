package seg

// tss is the 104-byte Task State Segment. Only esp0, ss0 and iomapBase are
// meaningful: this kernel never uses hardware task switching, so every
// other field is left zeroed and unused.
type tss struct {
	prevTask               uint32
	esp0                   uint32
	ss0                    uint32
	esp1, ss1              uint32
	esp2, ss2              uint32
	cr3                    uint32
	eip                    uint32
	eflags                 uint32
	eax, ecx, edx, ebx     uint32
	esp, ebp, esi, edi     uint32
	es, cs, ss, ds, fs, gs uint32
	ldt                    uint32
	trap                   uint16
	iomapBase              uint16
}

var kernelTSS tss

const tssSize = 104
