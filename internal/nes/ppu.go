package nes

const (
	ppuDotsPerLine   = 341
	ppuLinesPerFrame = 262
	ppuVBlankLine    = 241
	ppuPreRenderLine = 261

	// PPU dots per CPU cycle on NTSC
	ppuDotsPerCycle = 3
)

const (
	ctrlIncrement32 = 0x04
	ctrlNMIEnable   = 0x80

	statusVBlank = 0x80
)

// PPU is the register file and timing of the 2C02. Nothing is rendered:
// the PPU keeps its memory, counts dots and raises NMI at vertical blank.
type PPU struct {
	// Registers
	ppuctrl   uint8
	ppumask   uint8
	ppustatus uint8
	oamaddr   uint8

	// last value written to any register, read back from write-only ones
	openBus uint8

	v          uint16 // current VRAM address
	t          uint16 // temporary VRAM address
	w          bool   // first or second write toggle of $2005/$2006
	fineX      uint8
	readBuffer uint8

	oam [0x100]uint8
	mem *ppuMemory

	cycles   uint16
	scanLine uint16
	frame    uint64

	nmi func()
}

// NewPPU returns a PPU reading its pattern tables from mapper.
// nmi is called on every NMI edge the PPU produces.
func NewPPU(mapper Mapper, mirror Mirror, nmi func()) *PPU {
	return &PPU{
		mem: newPpuMemory(mapper, mirror),
		nmi: nmi,
	}
}

func (p *PPU) Reset() {
	p.ppuctrl = 0
	p.ppumask = 0
	p.ppustatus = 0
	p.w = false
	p.readBuffer = 0
	p.cycles = 0
	p.scanLine = 0
}

// Read8 reads a register. addr is $2000-$2007.
func (p *PPU) Read8(addr uint16) uint8 {
	switch addr & 0x7 {
	case 0x2:
		data := p.ppustatus&0xe0 | p.openBus&0x1f
		p.ppustatus &^= statusVBlank
		p.w = false
		return data
	case 0x4:
		return p.oam[p.oamaddr]
	case 0x7:
		// reads below the palette come through a one byte buffer
		data := p.readBuffer
		p.readBuffer = p.mem.Read8(p.v)
		if p.v&0x3fff >= 0x3f00 {
			data = p.readBuffer
			p.readBuffer = p.mem.Read8(p.v - 0x1000)
		}
		p.incrementAddr()
		return data
	}
	return p.openBus
}

// Peek8 reads a register without clearing flags or moving the VRAM address.
func (p *PPU) Peek8(addr uint16) uint8 {
	switch addr & 0x7 {
	case 0x2:
		return p.ppustatus&0xe0 | p.openBus&0x1f
	case 0x4:
		return p.oam[p.oamaddr]
	case 0x7:
		return p.readBuffer
	}
	return p.openBus
}

// Write8 writes a register. addr is $2000-$2007.
func (p *PPU) Write8(addr uint16, data uint8) {
	p.openBus = data
	switch addr & 0x7 {
	case 0x0:
		wasEnabled := p.ppuctrl&ctrlNMIEnable != 0
		p.ppuctrl = data
		p.t = p.t&0xf3ff | uint16(data&0x3)<<10
		// enabling NMI during vertical blank produces an edge right away
		if !wasEnabled && data&ctrlNMIEnable != 0 && p.ppustatus&statusVBlank != 0 {
			p.raiseNMI()
		}
	case 0x1:
		p.ppumask = data
	case 0x3:
		p.oamaddr = data
	case 0x4:
		p.oam[p.oamaddr] = data
		p.oamaddr++
	case 0x5:
		if !p.w {
			p.t = p.t&0xffe0 | uint16(data)>>3
			p.fineX = data & 0x7
		} else {
			p.t = p.t&0x8c1f | uint16(data&0x7)<<12 | uint16(data&0xf8)<<2
		}
		p.w = !p.w
	case 0x6:
		if !p.w {
			p.t = p.t&0x00ff | uint16(data&0x3f)<<8
		} else {
			p.t = p.t&0xff00 | uint16(data)
			p.v = p.t
		}
		p.w = !p.w
	case 0x7:
		p.mem.Write8(p.v, data)
		p.incrementAddr()
	}
}

// WriteOAM stores one byte of an OAM DMA transfer.
func (p *PPU) WriteOAM(data uint8) {
	p.oam[p.oamaddr] = data
	p.oamaddr++
}

func (p *PPU) incrementAddr() {
	if p.ppuctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7fff
}

func (p *PPU) raiseNMI() {
	if p.nmi != nil {
		p.nmi()
	}
}

// Tic advances the PPU by one dot.
func (p *PPU) Tic() {
	if p.cycles == 1 {
		switch p.scanLine {
		case ppuVBlankLine:
			p.ppustatus |= statusVBlank
			if p.ppuctrl&ctrlNMIEnable != 0 {
				p.raiseNMI()
			}
		case ppuPreRenderLine:
			// vblank, sprite 0 hit and overflow
			p.ppustatus &^= 0xe0
		}
	}

	p.cycles++
	if p.cycles >= ppuDotsPerLine {
		p.cycles = 0
		p.scanLine++

		if p.scanLine >= ppuLinesPerFrame {
			p.scanLine = 0
			p.frame++
		}
	}
}

// Frame returns the number of frames completed since power on.
func (p *PPU) Frame() uint64 {
	return p.frame
}

// Position returns the scanline and dot about to be processed.
func (p *PPU) Position() (scanLine, dot int) {
	return int(p.scanLine), int(p.cycles)
}

func (p *PPU) VBlank() bool {
	return p.ppustatus&statusVBlank != 0
}
