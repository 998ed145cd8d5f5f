package vmm

import (
	"testing"

	"github.com/marmot-os/kernel/kernel/mem/pmm"
)

func TestPageTableEntryFlags(t *testing.T) {
	var pte pageTableEntry

	if pte.HasAnyFlag(FlagPresent | FlagRW) {
		t.Fatal("expected a zero entry to have no flags set")
	}

	pte.SetFlags(FlagPresent | FlagRW)

	if !pte.HasFlags(FlagPresent | FlagRW) {
		t.Fatal("expected HasFlags to return true after SetFlags")
	}

	pte.ClearFlags(FlagRW)

	if pte.HasFlags(FlagRW) {
		t.Fatal("expected HasFlags(FlagRW) to be false after ClearFlags(FlagRW)")
	}
	if !pte.HasFlags(FlagPresent) {
		t.Fatal("expected ClearFlags to leave unrelated flags untouched")
	}
}

func TestPageTableEntryFrameEncoding(t *testing.T) {
	var pte pageTableEntry

	pte.SetFlags(FlagPresent | FlagAllocated)
	pte.SetFrame(pmm.Frame(123))

	if got := pte.Frame(); got != pmm.Frame(123) {
		t.Fatalf("expected Frame() to return 123; got %v", got)
	}
	if !pte.HasFlags(FlagPresent | FlagAllocated) {
		t.Fatal("expected SetFrame to leave flags untouched")
	}
}
