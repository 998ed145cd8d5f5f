package vmm

import (
	"testing"

	"github.com/marmot-os/kernel/kernel/mem"
)

func TestPageFromAddress(t *testing.T) {
	specs := []struct {
		addr uintptr
		exp  Page
	}{
		{0, 0},
		{uintptr(mem.PageSize) - 1, 0},
		{uintptr(mem.PageSize), Page(1)},
		{uintptr(mem.PageSize) + 123, Page(1)},
	}

	for i, spec := range specs {
		if got := PageFromAddress(spec.addr); got != spec.exp {
			t.Errorf("[spec %d] expected PageFromAddress(0x%x) = %v; got %v", i, spec.addr, spec.exp, got)
		}
	}
}

func TestPageAddressRoundTrip(t *testing.T) {
	p := Page(42)
	if got := PageFromAddress(p.Address()); got != p {
		t.Fatalf("expected PageFromAddress(p.Address()) to return p; got %v", got)
	}
}

func TestPdIndexAndPtIndex(t *testing.T) {
	// 0xC0401000 -> PD index 0x301, PT index 1
	addr := uintptr(0xC0401000)

	if got, exp := pdIndex(addr), uintptr(0x301); got != exp {
		t.Fatalf("expected pdIndex(0x%x) = 0x%x; got 0x%x", addr, exp, got)
	}
	if got, exp := ptIndex(addr), uintptr(1); got != exp {
		t.Fatalf("expected ptIndex(0x%x) = %d; got %d", addr, exp, got)
	}
}
