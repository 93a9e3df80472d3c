// Package bus wires the CPU, PPU, APU, joypads and cartridge mapper
// together behind the 16-bit CPU address space, and exposes the
// ebiten.Game interface the host drives the emulator through.
package bus

import (
	"context"
	"math"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/bdwalton/gintendo/apu"
	"github.com/bdwalton/gintendo/frame"
	"github.com/bdwalton/gintendo/joypad"
	"github.com/bdwalton/gintendo/mappers"
	"github.com/bdwalton/gintendo/mos6502"
	"github.com/bdwalton/gintendo/ppu"
)

const (
	NES_BASE_MEMORY = 0x0800 // 2KB built-in RAM

	MAX_ADDRESS          = math.MaxUint16
	MAX_NES_BASE_RAM     = 0x1FFF
	MAX_PPU_REG_MIRRORED = 0x3FFF
	MAX_IO_REG           = 0x4020
	MAX_SRAM             = 0x6000
)

// Address map (CPU view).
const (
	OAMDMA   = 0x4014
	JOYPAD1  = 0x4016
	JOYPAD2  = 0x4017
	APU_LOW  = 0x4000
	APU_HIGH = 0x4015
)

// VBlankFunc is invoked once per NMI low->high transition, with a
// read-only PPU view and both joypads, so the host can poll input
// and present the completed frame.
type VBlankFunc func(*ppu.PPU, *joypad.Joypad, *joypad.Joypad)

// Bus implements the full NES CPU address space and drives the
// CPU/PPU/APU tick relationship: one CPU cycle for every three PPU
// cycles, with OAM DMA able to stall the CPU for 513-514 cycles.
type Bus struct {
	cpu      *mos6502.CPU
	ppu      *ppu.PPU
	apu      *apu.APU
	mapper   mappers.Mapper
	joypad1  joypad.Joypad
	joypad2  joypad.Joypad
	ram      []uint8
	onVBlank VBlankFunc

	cycles uint64

	dma      bool
	dmaPage  uint8
	dmaIdx   uint8
	dmaEven  bool
	dmaLatch uint8
	dmaIdled bool
}

// New creates a Bus wired to cartridge m. onVBlank may be nil, in
// which case NMI edges are detected but produce no host callback.
func New(m mappers.Mapper, onVBlank VBlankFunc) *Bus {
	b := &Bus{
		mapper:   m,
		ram:      make([]uint8, NES_BASE_MEMORY),
		apu:      apu.New(),
		onVBlank: onVBlank,
	}

	b.cpu = mos6502.New(b)
	b.ppu = ppu.New(b)
	b.ppu.SetMirrorMode(m.MirroringMode())

	w, h := b.ppu.Resolution()
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowTitle("Gintendo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return b
}

// Joypads returns the two controllers, for the host to wire up key
// polling against.
func (b *Bus) Joypads() (*joypad.Joypad, *joypad.Joypad) {
	return &b.joypad1, &b.joypad2
}

// ChrRead is the PPU's view into cartridge CHR space.
func (b *Bus) ChrRead(addr uint16) uint8 {
	return b.mapper.ChrRead(addr)
}

// ChrWrite is the PPU's view into cartridge CHR space (CHR-RAM only).
func (b *Bus) ChrWrite(addr uint16, val uint8) {
	b.mapper.ChrWrite(addr, val)
}

// Read implements the CPU's view of the address space.
// https://www.nesdev.org/wiki/CPU_memory_map
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= MAX_NES_BASE_RAM:
		return b.ram[addr&0x07FF]
	case addr <= MAX_PPU_REG_MIRRORED:
		return b.ppu.ReadReg(0x2000 + addr&0x0007)
	case addr == JOYPAD1:
		return b.joypad1.Read()
	case addr == JOYPAD2:
		return b.joypad2.Read()
	case addr >= APU_LOW && addr <= APU_HIGH:
		return b.apu.Read(addr)
	case addr < MAX_IO_REG:
		glog.Infof("unmapped IO read: 0x%04x", addr)
		return 0
	case addr < MAX_SRAM:
		return 0
	case addr <= MAX_ADDRESS:
		return b.mapper.PrgRead(addr)
	}

	glog.Warningf("unmapped CPU read: 0x%04x", addr)
	return 0
}

// Write implements the CPU's view of the address space.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr <= MAX_NES_BASE_RAM:
		b.ram[addr&0x07FF] = val
	case addr <= MAX_PPU_REG_MIRRORED:
		b.ppu.WriteReg(0x2000+addr&0x0007, val)
	case addr == OAMDMA:
		b.startDMA(val)
	case addr == JOYPAD1:
		b.joypad1.Write(val)
	case addr == JOYPAD2:
		b.joypad2.Write(val)
	case addr >= APU_LOW && addr <= APU_HIGH:
		b.apu.Write(addr, val)
	case addr < MAX_IO_REG:
		glog.Infof("unmapped IO write: 0x%04x = 0x%02x", addr, val)
	case addr < MAX_SRAM:
		// no SRAM support yet
	case addr <= MAX_ADDRESS:
		b.mapper.PrgWrite(addr, val)
	}
}

// startDMA latches the source page and begins the OAM DMA state
// machine. The transfer opens with one halt cycle; the first read is
// then deferred until the next even CPU cycle, inserting the 1-cycle
// idle the hardware requires when the write happens on an odd cycle.
func (b *Bus) startDMA(page uint8) {
	b.dma = true
	b.dmaPage = page
	b.dmaIdx = 0
	b.dmaEven = true
	b.dmaIdled = false
}

// stepDMA runs one CPU-cycle's worth of the OAM DMA transfer: a read
// from CPU memory on even cycles, a write into OAM on odd cycles.
// Returns true once all 256 bytes have been copied.
func (b *Bus) stepDMA() bool {
	if !b.dmaIdled {
		b.dmaIdled = true
		return false
	}
	if b.dmaEven && b.cycles%2 != 0 {
		// Reads only happen on even cycles: idle to realign.
		return false
	}

	if b.dmaEven {
		b.dmaLatch = b.Read(uint16(b.dmaPage)<<8 | uint16(b.dmaIdx))
	} else {
		b.ppu.WriteOAMByte(b.dmaLatch)
		b.dmaIdx++
		if b.dmaIdx == 0 {
			b.dmaEven = true
			return true
		}
	}
	b.dmaEven = !b.dmaEven
	return false
}

// Tick advances the whole system by one CPU cycle: three PPU dots
// first, with NMI edge detection around them, then either an OAM DMA
// transfer cycle or a CPU cycle.
func (b *Bus) Tick() {
	b.cycles++
	before := b.ppu.NMISignal()
	for i := 0; i < 3; i++ {
		b.ppu.Tick()
	}
	after := b.ppu.NMISignal()

	if !before && after {
		b.cpu.TriggerNMI()
		if b.onVBlank != nil {
			b.onVBlank(b.ppu, &b.joypad1, &b.joypad2)
		}
	}

	if b.dma {
		if b.stepDMA() {
			b.dma = false
		}
		return
	}

	b.cpu.Tick()
}

// Run drives the system until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			b.Tick()
		}
	}
}

// Layout returns the fixed NES picture size; ebiten scales the
// window around it.
func (b *Bus) Layout(outsideWidth, outsideHeight int) (int, int) {
	return b.ppu.Resolution()
}

// Draw copies the PPU's last completed frame into screen.
func (b *Bus) Draw(screen *ebiten.Image) {
	f := b.ppu.Frame()
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := f.At(x, y)
			screen.Set(x, y, ebitenColor(c))
		}
	}
}

// Update is a no-op: Run drives the emulation from its own
// goroutine, independent of ebiten's 60Hz callback.
func (b *Bus) Update() error {
	return nil
}

func ebitenColor(c frame.RGB) rgbaColor {
	return rgbaColor{c.R, c.G, c.B, 0xFF}
}

// rgbaColor satisfies color.Color without importing the whole
// image/color RGBA niceties we don't need.
type rgbaColor struct {
	R, G, B, A uint8
}

func (c rgbaColor) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}
