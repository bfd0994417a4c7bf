package nes

// $0000-$0FFF: Pattern table 0
// $1000-$1FFF: Pattern table 1
// $2000-$23FF: Nametable 0
// $2400-$27FF: Nametable 1
// $2800-$2BFF: Nametable 2
// $2C00-$2FFF: Nametable 3
// $3000-$3EFF: Mirrors of $2000-$2FFF
// $3F00-$3F1F: Palette RAM indexes
// $3F20-$3FFF: Mirrors of $3F00-$3F1F
//
// The console has 2KB of nametable RAM: two of the four nametables are
// mirrors, chosen by the cartridge wiring.
type ppuMemory struct {
	mapper Mapper
	mirror Mirror

	tableNames   [2][0x400]uint8
	tablePalette [0x20]uint8
}

func newPpuMemory(mapper Mapper, mirror Mirror) *ppuMemory {
	return &ppuMemory{mapper: mapper, mirror: mirror}
}

func (p *ppuMemory) nameTable(addr uint16) (table int, offset uint16) {
	addr = (addr - 0x2000) & 0x0fff
	quadrant := addr / 0x400
	switch p.mirror {
	case MirrorVertical:
		table = int(quadrant & 0x1)
	default:
		table = int(quadrant >> 1)
	}
	return table, addr & 0x3ff
}

func paletteIndex(addr uint16) uint16 {
	i := addr & 0x1f
	// $3F10/$3F14/$3F18/$3F1C mirror the background entries
	if i&0x13 == 0x10 {
		i &^= 0x10
	}
	return i
}

func (p *ppuMemory) Read8(addr uint16) uint8 {
	addr &= 0x3fff
	switch {
	case addr < 0x2000:
		if p.mapper == nil {
			return 0
		}
		return p.mapper.ReadCHR(addr)
	case addr < 0x3f00:
		table, offset := p.nameTable(addr)
		return p.tableNames[table][offset]
	default:
		return p.tablePalette[paletteIndex(addr)]
	}
}

func (p *ppuMemory) Write8(addr uint16, data uint8) {
	addr &= 0x3fff
	switch {
	case addr < 0x2000:
		if p.mapper != nil {
			p.mapper.WriteCHR(addr, data)
		}
	case addr < 0x3f00:
		table, offset := p.nameTable(addr)
		p.tableNames[table][offset] = data
	default:
		p.tablePalette[paletteIndex(addr)] = data
	}
}
