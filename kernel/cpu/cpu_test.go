package cpu

import (
	"testing"

	"github.com/marmot-os/kernel/kernel/mem"
)

func TestPageBase(t *testing.T) {
	specs := []struct{ in, exp uintptr }{
		{0, 0},
		{1, 0},
		{uintptr(mem.PageSize) - 1, 0},
		{uintptr(mem.PageSize), uintptr(mem.PageSize)},
		{uintptr(mem.PageSize) + 123, uintptr(mem.PageSize)},
	}

	for specIndex, spec := range specs {
		if got := PageBase(spec.in); got != spec.exp {
			t.Errorf("[spec %d] expected PageBase(0x%x) to be 0x%x; got 0x%x", specIndex, spec.in, spec.exp, got)
		}
	}
}

func TestPageAlign(t *testing.T) {
	specs := []struct{ in, exp uintptr }{
		{0, 0},
		{1, uintptr(mem.PageSize)},
		{uintptr(mem.PageSize), uintptr(mem.PageSize)},
		{uintptr(mem.PageSize) + 1, 2 * uintptr(mem.PageSize)},
	}

	for specIndex, spec := range specs {
		if got := PageAlign(spec.in); got != spec.exp {
			t.Errorf("[spec %d] expected PageAlign(0x%x) to be 0x%x; got 0x%x", specIndex, spec.in, spec.exp, got)
		}
	}
}

func TestCriticalSection(t *testing.T) {
	var ran bool
	origFn := criticalSectionFn
	defer func() { criticalSectionFn = origFn }()

	criticalSectionFn = func(fn func()) { fn() }

	CriticalSection(func() { ran = true })

	if !ran {
		t.Fatal("expected CriticalSection to invoke fn")
	}
}
