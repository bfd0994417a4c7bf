package nes

import "fmt"

// Mapper translates cartridge addresses to PRG and CHR memory.
// CPU addresses are $4020-$FFFF, PPU addresses $0000-$1FFF.
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, data uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, data uint8)
}

func NewMapper(cart *Cart) (Mapper, error) {
	switch cart.mapperID {
	case 0:
		return &Mapper0{cart}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, cart.mapperID)
}

// Mapper0 is NROM: 16KB or 32KB of PRG-ROM, 8KB of CHR and no bank switching.
// NROM-128 mirrors its single bank at $C000.
type Mapper0 struct {
	cart *Cart
}

func (m Mapper0) mapPRG(addr uint16) uint16 {
	if m.cart.prgBanks > 1 {
		return addr & 0x7fff
	}
	return addr & 0x3fff
}

func (m Mapper0) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.cart.prgMem[m.mapPRG(addr)]
	case addr >= 0x6000:
		return m.cart.prgRAM[addr&(prgRAMSizeBytes-1)]
	}
	// $4020-$5FFF is not connected on NROM
	return 0
}

func (m *Mapper0) WritePRG(addr uint16, data uint8) {
	// PRG-ROM ignores writes
	if addr >= 0x6000 && addr < 0x8000 {
		m.cart.prgRAM[addr&(prgRAMSizeBytes-1)] = data
	}
}

func (m Mapper0) ReadCHR(addr uint16) uint8 {
	return m.cart.chrMem[addr&(chrBankSizeBytes-1)]
}

func (m *Mapper0) WriteCHR(addr uint16, data uint8) {
	if m.cart.chrRAM {
		m.cart.chrMem[addr&(chrBankSizeBytes-1)] = data
	}
}
