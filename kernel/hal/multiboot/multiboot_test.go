package multiboot

import (
	"encoding/binary"
	"testing"
	"unsafe"
)

// buildInfo assembles a minimal multiboot2 info blob: the 8-byte info
// header, followed by the given already-encoded tags, followed by the
// mandatory end tag.
func buildInfo(tags ...[]byte) []byte {
	buf := make([]byte, 8)
	for _, tag := range tags {
		buf = append(buf, tag...)
	}
	buf = append(buf, le32(0)...) // end tag type
	buf = append(buf, le32(8)...) // end tag size

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	return buf
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func basicMemoryInfoTag(memLower, memUpper uint32) []byte {
	tag := append(le32(uint32(tagBasicMemoryInfo)), le32(16)...)
	tag = append(tag, le32(memLower)...)
	tag = append(tag, le32(memUpper)...)
	return tag
}

func moduleTag(modStart, modEnd uint32) []byte {
	tag := append(le32(uint32(tagModules)), le32(16)...)
	tag = append(tag, le32(modStart)...)
	tag = append(tag, le32(modEnd)...)
	return tag
}

func TestMemUpper(t *testing.T) {
	data := buildInfo(basicMemoryInfoTag(639, 130048))
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	if got := MemUpper(); got != 130048 {
		t.Fatalf("expected MemUpper() to return 130048; got %d", got)
	}
}

func TestMemUpperMissingTag(t *testing.T) {
	data := buildInfo()
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	if got := MemUpper(); got != 0 {
		t.Fatalf("expected MemUpper() to return 0 when the tag is absent; got %d", got)
	}
}

func TestLastModuleEnd(t *testing.T) {
	data := buildInfo(
		moduleTag(0x100000, 0x110000),
		moduleTag(0x200000, 0x300000),
	)
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	if got, exp := LastModuleEnd(), uintptr(0x300000); got != exp {
		t.Fatalf("expected LastModuleEnd() to return the highest module end 0x%x; got 0x%x", exp, got)
	}
}

func TestLastModuleEndNoModules(t *testing.T) {
	data := buildInfo()
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	if got := LastModuleEnd(); got != 0 {
		t.Fatalf("expected LastModuleEnd() to return 0 when no modules are present; got %d", got)
	}
}

func TestFindTagByTypeWithMissingTag(t *testing.T) {
	data := buildInfo()
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	if offset, size := findTagByType(tagModules); offset != 0 || size != 0 {
		t.Fatalf("expected findTagByType to return (0,0) for a missing tag; got (%d, %d)", offset, size)
	}
}

func TestVisitMemRegion(t *testing.T) {
	var visitCount int

	data := buildInfo()
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))
	VisitMemRegions(func(_ *MemoryMapEntry) bool {
		visitCount++
		return true
	})

	if visitCount != 0 {
		t.Fatal("expected visitor not to be invoked when no memory map tag is present")
	}

	mmapTag := append(le32(uint32(tagMemoryMap)), le32(8+8+2*24)...)
	mmapTag = append(mmapTag, le32(24)...) // entrySize
	mmapTag = append(mmapTag, le32(0)...)  // entryVersion

	entry1 := append(append([]byte{}, u64(0)...), append(u64(0x100000), le32(uint32(MemAvailable))...)...)
	entry1 = append(entry1, make([]byte, 4)...) // padding to 24 bytes
	entry2 := append(append([]byte{}, u64(0x100000)...), append(u64(0x1000), le32(uint32(MemReserved))...)...)
	entry2 = append(entry2, make([]byte, 4)...)

	mmapTag = append(mmapTag, entry1...)
	mmapTag = append(mmapTag, entry2...)

	data = buildInfo(mmapTag)
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	specs := []struct {
		expPhys uint64
		expLen  uint64
		expType MemoryEntryType
	}{
		{0, 0x100000, MemAvailable},
		{0x100000, 0x1000, MemReserved},
	}

	visitCount = 0
	VisitMemRegions(func(entry *MemoryMapEntry) bool {
		if entry.PhysAddress != specs[visitCount].expPhys {
			t.Errorf("[visit %d] expected physical address to be %x; got %x", visitCount, specs[visitCount].expPhys, entry.PhysAddress)
		}
		if entry.Length != specs[visitCount].expLen {
			t.Errorf("[visit %d] expected region len to be %x; got %x", visitCount, specs[visitCount].expLen, entry.Length)
		}
		if entry.Type != specs[visitCount].expType {
			t.Errorf("[visit %d] expected region type to be %d; got %d", visitCount, specs[visitCount].expType, entry.Type)
		}
		visitCount++
		return true
	})

	if visitCount != len(specs) {
		t.Errorf("expected the visitor func to be invoked %d times; got %d", len(specs), visitCount)
	}
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func TestGetFramebufferInfo(t *testing.T) {
	data := buildInfo()
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))

	if GetFramebufferInfo() != nil {
		t.Fatal("expected GetFramebufferInfo() to return nil when no framebuffer tag is present")
	}

	fbTag := append(le32(uint32(tagFramebufferInfo)), le32(8+24)...)
	fbTag = append(fbTag, u64(0xB8000)...)                         // PhysAddr
	fbTag = append(fbTag, le32(160)...)                            // Pitch
	fbTag = append(fbTag, le32(80)...)                             // Width
	fbTag = append(fbTag, le32(25)...)                             // Height
	fbTag = append(fbTag, byte(0), byte(FramebufferTypeEGA), 0, 0) // Bpp, Type, pad

	data = buildInfo(fbTag)
	SetInfoPtr(uintptr(unsafe.Pointer(&data[0])))
	fbInfo := GetFramebufferInfo()

	if fbInfo.Type != FramebufferTypeEGA {
		t.Errorf("expected framebuffer type to be %d; got %d", FramebufferTypeEGA, fbInfo.Type)
	}
	if fbInfo.PhysAddr != 0xB8000 {
		t.Errorf("expected physical address for EGA text mode to be 0xB8000; got %x", fbInfo.PhysAddr)
	}
	if fbInfo.Width != 80 || fbInfo.Height != 25 {
		t.Errorf("expected framebuffer dimensions to be 80x25; got %dx%d", fbInfo.Width, fbInfo.Height)
	}
	if fbInfo.Pitch != 160 {
		t.Errorf("expected pitch to be 160; got %x", fbInfo.Pitch)
	}
}
