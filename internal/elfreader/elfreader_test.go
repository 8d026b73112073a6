package elfreader

import (
	"encoding/binary"
	"testing"

	"github.com/Decompollaborate/spimdisasm/internal/address"
	"github.com/Decompollaborate/spimdisasm/internal/reloc"
)

func TestMipsRelType(t *testing.T) {
	// symbol index 0x12345, type R_MIPS_HI16 (5)
	info := uint32(0x12345)<<8 | 5
	symIdx, relType := mipsRelType(info)
	if symIdx != 0x12345 {
		t.Errorf("expected symIdx 0x12345, got 0x%x", symIdx)
	}
	if relType != reloc.R_MIPS_HI16 {
		t.Errorf("expected R_MIPS_HI16, got %s", relType)
	}
}

func TestDecodeRel(t *testing.T) {
	var data []byte
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:], 0x80001000)
	binary.LittleEndian.PutUint32(buf[4:], uint32(7)<<8|uint32(reloc.R_MIPS_LO16))
	data = append(data, buf...)

	entries := DecodeRel(".rel.text", data, binary.LittleEndian)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Offset != address.Vram(0x80001000) {
		t.Errorf("unexpected offset: %s", e.Offset)
	}
	if e.Type != reloc.R_MIPS_LO16 {
		t.Errorf("unexpected type: %s", e.Type)
	}
	if e.SymIdx != 7 {
		t.Errorf("unexpected symIdx: %d", e.SymIdx)
	}
	if e.Addend != 0 {
		t.Errorf("Elf32_Rel entries should carry no explicit addend, got %d", e.Addend)
	}
}

func TestDecodeRela(t *testing.T) {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:], 0x80002000)
	binary.BigEndian.PutUint32(buf[4:], uint32(3)<<8|uint32(reloc.R_MIPS_GOT16))
	addend := int32(-4)
	binary.BigEndian.PutUint32(buf[8:], uint32(addend))

	entries := DecodeRela(".rela.data", buf, binary.BigEndian)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Addend != -4 {
		t.Errorf("expected addend -4, got %d", e.Addend)
	}
	if e.Type != reloc.R_MIPS_GOT16 {
		t.Errorf("unexpected type: %s", e.Type)
	}
}
