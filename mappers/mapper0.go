package mappers

func init() {
	RegisterMapper(0, &mapper0{
		baseMapper: newBaseMapper(0, "NROM"),
	})
}

// mapper0 implements NROM, grounded on
// original_source/src/mapper/mapper_0.rs: CPU addresses $8000-$FFFF
// map straight into PRG-ROM, mirrored down to a single 16KB bank when
// only one is present; PPU addresses $0000-$1FFF map straight into
// CHR, which is writable only when the cartridge has no CHR-ROM
// (CHR-RAM boards, zero CHR banks in the header).
type mapper0 struct {
	*baseMapper
}

// cpuMap translates a CPU address into a PRG-ROM offset. ok is false
// for addresses below $8000, which NROM does not claim.
func (m *mapper0) cpuMap(addr uint16) (offset uint16, ok bool) {
	if addr < 0x8000 {
		return 0, false
	}

	if m.rom.NumPrgBlocks() > 1 {
		return addr & 0x7FFF, true
	}
	return addr & 0x3FFF, true
}

// ppuReadMap translates a PPU address into a CHR offset.
func (m *mapper0) ppuReadMap(addr uint16) (offset uint16, ok bool) {
	if addr <= 0x1FFF {
		return addr, true
	}
	return 0, false
}

// ppuWriteMap is like ppuReadMap but only claims the address when
// the board has CHR-RAM (no CHR-ROM banks in the header).
func (m *mapper0) ppuWriteMap(addr uint16) (offset uint16, ok bool) {
	if addr <= 0x1FFF && m.rom.NumChrBlocks() == 0 {
		return addr, true
	}
	return 0, false
}

func (m *mapper0) PrgRead(addr uint16) uint8 {
	if offset, ok := m.cpuMap(addr); ok {
		return m.rom.PrgRead(offset)
	}
	return 0
}

func (m *mapper0) PrgWrite(addr uint16, val uint8) {
	// PRG-ROM writes are discarded; NROM exposes no mapper registers.
}

func (m *mapper0) ChrRead(addr uint16) uint8 {
	if offset, ok := m.ppuReadMap(addr); ok {
		return m.rom.ChrRead(offset)
	}
	return 0
}

func (m *mapper0) ChrWrite(addr uint16, val uint8) {
	if offset, ok := m.ppuWriteMap(addr); ok {
		m.rom.ChrWrite(offset, val)
	}
}
