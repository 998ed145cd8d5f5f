package vmm

import "github.com/marmot-os/kernel/kernel"

// VirtualToPhysical returns the physical address mapped for the virtual
// address v, or ErrInvalidMapping if the page directory entry covering v is
// empty.
func VirtualToPhysical(v uintptr) (uintptr, *kernel.Error) {
	return virtualToPhysical(v)
}
