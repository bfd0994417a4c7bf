package nes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	inesMagic        = 0x1a53454e
	trainerSizeBytes = 512
	prgBankSizeBytes = 0x4000
	chrBankSizeBytes = 0x2000
	prgRAMSizeBytes  = 0x2000
)

var (
	ErrInvalidHeader     = errors.New("nes: invalid iNES header")
	ErrUnsupportedMapper = errors.New("nes: unsupported mapper")
)

// Mirror is the nametable arrangement wired on the cartridge.
type Mirror uint8

const (
	MirrorHorizontal Mirror = iota
	MirrorVertical
)

func (m Mirror) String() string {
	if m == MirrorVertical {
		return "vertical"
	}
	return "horizontal"
}

// Cart is a cartridge. It is attached to the CPU bus at $4020-$FFFF and
// provides the pattern tables to the PPU.
type Cart struct {
	prgMem []uint8
	chrMem []uint8
	prgRAM [prgRAMSizeBytes]uint8
	chrRAM bool

	prgBanks uint8
	chrBanks uint8
	mapperID uint8
	mirror   Mirror

	mapper Mapper
}

// NewCartFromFile reads a .nes file and returns a Cart struct.
// Supported NES format: iNES
func NewCartFromFile(path string) (*Cart, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the file: %w", err)
	}
	defer file.Close()

	return NewCart(file)
}

// NewCartFromBytes parses an in-memory iNES image.
func NewCartFromBytes(data []byte) (*Cart, error) {
	return NewCart(bytes.NewReader(data))
}

// NewCart parses an iNES image from r.
func NewCart(r io.Reader) (*Cart, error) {
	var header struct {
		Magic      uint32
		PrgRomSize uint8
		ChrRomSize uint8
		Flags6     uint8
		Flags7     uint8
		Flags8     uint8
		Flags9     uint8
		Flags10    uint8
		_          [5]uint8 // unused
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if header.Magic != inesMagic {
		return nil, fmt.Errorf("%w: bad magic %08X", ErrInvalidHeader, header.Magic)
	}
	if header.PrgRomSize == 0 {
		return nil, fmt.Errorf("%w: no PRG-ROM", ErrInvalidHeader)
	}
	// the second bit of flags6 is the trainer flag
	if header.Flags6&0x4 != 0 {
		if _, err := io.CopyN(io.Discard, r, trainerSizeBytes); err != nil {
			return nil, fmt.Errorf("couldn't skip the trainer: %w", err)
		}
	}

	// flag6 and flag7 contain part of the mapper ID in 4 high bits
	// flag6: lower 4 bits of mapper ID
	// flag7: upper 4 bits of mapper ID
	mapperID := (header.Flags7 & 0xf0) | (header.Flags6 >> 4)

	cart := &Cart{
		prgMem:   make([]uint8, int(header.PrgRomSize)*prgBankSizeBytes),
		prgBanks: header.PrgRomSize,
		chrBanks: header.ChrRomSize,
		mapperID: mapperID,
		mirror:   Mirror(header.Flags6 & 0x1),
	}
	// no CHR-ROM means the board carries 8KB of CHR-RAM
	if header.ChrRomSize == 0 {
		cart.chrMem = make([]uint8, chrBankSizeBytes)
		cart.chrRAM = true
	} else {
		cart.chrMem = make([]uint8, int(header.ChrRomSize)*chrBankSizeBytes)
	}

	mapper, err := NewMapper(cart)
	if err != nil {
		return nil, err
	}
	cart.mapper = mapper

	if _, err := io.ReadFull(r, cart.prgMem); err != nil {
		return nil, fmt.Errorf("couldn't read PRG ROM: %w", err)
	}
	if !cart.chrRAM {
		if _, err := io.ReadFull(r, cart.chrMem); err != nil {
			return nil, fmt.Errorf("couldn't read CHR ROM: %w", err)
		}
	}

	return cart, nil
}

func (c *Cart) Read8(addr uint16) uint8 {
	return c.mapper.ReadPRG(addr)
}

func (c *Cart) Write8(addr uint16, data uint8) {
	c.mapper.WritePRG(addr, data)
}

func (c *Cart) MapperID() uint8 {
	return c.mapperID
}

func (c *Cart) Mirror() Mirror {
	return c.mirror
}

// PRGBanks returns the number of 16KB PRG-ROM banks.
func (c *Cart) PRGBanks() int {
	return int(c.prgBanks)
}

func (c *Cart) String() string {
	return fmt.Sprintf("mapper %d, %d x 16KB PRG, %d x 8KB CHR, %s mirroring",
		c.mapperID, c.prgBanks, c.chrBanks, c.mirror)
}
