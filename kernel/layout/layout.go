// Package layout defines the virtual memory layout constants fixed by the
// recursive page-directory trick. These addresses are design constraints,
// not values vmm is free to choose: PD and PTs follow mechanically from
// dedicating page directory entry 1023 to the recursive self-map, and
// Identity/User/Tmp/ThreadDestroy partition the rest of the 32-bit address
// space between the kernel's permanent identity map, user space, a scratch
// slot for initializing foreign address spaces, and the cooperative
// thread-exit sentinel.
package layout

const (
	// Identity marks the end of the identity-mapped kernel region
	// (0-8 MiB, see vmm.Initialize). Map and Unmap refuse any address
	// below this: the identity map is immutable at the paging layer.
	Identity = 0x00800000

	// User is the first virtual address available to user-space
	// mappings.
	User = 0x40000000

	// Tmp is the scratch virtual address vmm uses to initialize a page
	// directory that is not yet active (CreateAddressSpace).
	Tmp = 0xFFBFF000

	// PTs is the base of the virtual range that the recursive self-map
	// exposes all page tables through: page table i is visible at
	// PTs + i*4KiB, so PTs + i*4KiB + j*4 is the virtual address of
	// page-table entry j of page table i.
	PTs = 0xFFC00000

	// PD is the fixed virtual address at which the active page
	// directory is visible as a page table, by virtue of its own last
	// entry (index 1023) pointing back at itself.
	PD = 0xFFFFF000

	// ThreadDestroy is a sentinel user-space virtual address. A page
	// fault at exactly this address is not an error: it is the
	// cooperative signal a thread uses to ask the scheduler to tear it
	// down (see vmm's page fault handler).
	ThreadDestroy = 0x7FFFF000
)
