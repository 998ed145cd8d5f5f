package seg

import (
	"testing"
	"unsafe"
)

func installFakeLoaders(t *testing.T) (gdtrCalls *int, ltrSelectors *[]uint16) {
	t.Helper()

	origLoadGDT, origLoadTR := loadGDTFn, loadTaskRegisterFn
	t.Cleanup(func() { loadGDTFn, loadTaskRegisterFn = origLoadGDT, origLoadTR })

	calls := 0
	var selectors []uint16
	loadGDTFn = func(uintptr) { calls++ }
	loadTaskRegisterFn = func(sel uint16) { selectors = append(selectors, sel) }

	return &calls, &selectors
}

func TestInitializeBuildsFixedSixEntryGDT(t *testing.T) {
	installFakeLoaders(t)

	Initialize()

	specs := []struct {
		idx            int
		limit, access, flags uint8
		flagsHighNibble uint8
	}{
		{1, 0xF, 0x9A, 0xC, 0xC},
		{2, 0xF, 0x92, 0xC, 0xC},
		{3, 0xF, 0xFA, 0xC, 0xC},
		{4, 0xF, 0xF2, 0xC, 0xC},
	}

	for _, s := range specs {
		d := table[s.idx]
		if d.access != s.access {
			t.Errorf("[entry %d] expected access 0x%x; got 0x%x", s.idx, s.access, d.access)
		}
		if d.flagsLimit>>4 != s.flagsHighNibble {
			t.Errorf("[entry %d] expected flags nibble 0x%x; got 0x%x", s.idx, s.flagsHighNibble, d.flagsLimit>>4)
		}
		if d.flagsLimit&0xF != s.limit {
			t.Errorf("[entry %d] expected limit high nibble 0x%x; got 0x%x", s.idx, s.limit, d.flagsLimit&0xF)
		}
		if d.limitLow != 0xFFFF {
			t.Errorf("[entry %d] expected limitLow 0xFFFF; got 0x%x", s.idx, d.limitLow)
		}
	}

	if table[0] != (descriptor{}) {
		t.Fatal("expected the null descriptor to stay all-zero")
	}
}

func TestInitializePatchesTSSDescriptor(t *testing.T) {
	installFakeLoaders(t)

	Initialize()

	tssDesc := table[5]
	if tssDesc.access != 0x89 {
		t.Fatalf("expected TSS descriptor access 0x89; got 0x%x", tssDesc.access)
	}
	if tssDesc.flagsLimit>>4 != 0x4 {
		t.Fatalf("expected TSS descriptor flags 0x4; got 0x%x", tssDesc.flagsLimit>>4)
	}

	wantBase := uint32(uintptr(unsafe.Pointer(&kernelTSS)))
	gotBase := uint32(tssDesc.baseLow) | uint32(tssDesc.baseMiddle)<<16 | uint32(tssDesc.baseHigh)<<24
	if gotBase != wantBase {
		t.Fatalf("expected TSS descriptor base 0x%x; got 0x%x", wantBase, gotBase)
	}

	wantLimit := uint32(tssSize - 1)
	gotLimit := uint32(tssDesc.limitLow) | uint32(tssDesc.flagsLimit&0xF)<<16
	if gotLimit != wantLimit {
		t.Fatalf("expected TSS descriptor limit 0x%x; got 0x%x", wantLimit, gotLimit)
	}

	if kernelTSS.ss0 != uint32(KernelDataSelector) {
		t.Fatalf("expected TSS.ss0 = KernelDataSelector (0x%x); got 0x%x", KernelDataSelector, kernelTSS.ss0)
	}
	if kernelTSS.iomapBase != tssSize {
		t.Fatalf("expected TSS.iomapBase = sizeof(TSS) (%d); got %d", tssSize, kernelTSS.iomapBase)
	}
}

func TestInitializeLoadsGDTAndTaskRegister(t *testing.T) {
	gdtrCalls, ltrSelectors := installFakeLoaders(t)

	Initialize()

	if *gdtrCalls != 1 {
		t.Fatalf("expected loadGDTFn to be called exactly once; got %d", *gdtrCalls)
	}
	if len(*ltrSelectors) != 1 || (*ltrSelectors)[0] != uint16(TSSSelector) {
		t.Fatalf("expected loadTaskRegisterFn to be called once with 0x%x; got %v", TSSSelector, *ltrSelectors)
	}
}

func TestSetKernelStackRoundTrip(t *testing.T) {
	installFakeLoaders(t)
	Initialize()

	SetKernelStack(0xDEADBEEF)

	if got := KernelStack(); got != 0xDEADBEEF {
		t.Fatalf("expected SetKernelStack(x) followed by KernelStack() to yield x; got 0x%x", got)
	}
}
