package nes

import (
	"fmt"

	"github.com/nevisdale/nescore/internal/bus"
	"github.com/nevisdale/nescore/internal/cpu"
)

const (
	ramSizeBytes = 0x800

	// CPU cycles in one NTSC frame, rounded down
	cyclesPerFrame = ppuDotsPerLine * ppuLinesPerFrame / ppuDotsPerCycle
)

// Machine is a CPU together with the bus it runs on. The monitor, the
// script engine and the UI drive either a Console or a Flat through it.
type Machine interface {
	CPU() *cpu.CPU
	Bus() *bus.Bus
	// Step runs one CPU step and everything clocked by it.
	Step() int
	// RunFrame steps until the next frame boundary.
	RunFrame() int
	Frame() uint64
	Reset()
}

// Console is the NES CPU side: 2A03, work RAM, PPU registers,
// APU/IO registers and a cartridge.
type Console struct {
	cpu  *cpu.CPU
	ppu  *PPU
	io   *IO
	ram  *bus.RAM
	cart *Cart
	bus  *bus.Bus

	stall  int // CPU cycles owed to OAM DMA
	cycles uint64
}

func NewConsole(cart *Cart, cfg cpu.Config) (*Console, error) {
	ram, err := bus.NewRAM(0x0000, ramSizeBytes)
	if err != nil {
		return nil, err
	}
	c := &Console{
		cart: cart,
		ram:  ram,
	}
	c.cpu = cpu.New(nil, cfg)
	c.ppu = NewPPU(cart.mapper, cart.mirror, c.cpu.RequestNMI)
	c.io = NewIO(c.oamDMA)

	b, err := bus.New(
		bus.Region{Name: "RAM", Start: 0x0000, End: 0x1fff, Mask: ramSizeBytes - 1, Handler: c.ram},
		bus.Region{Name: "PPU", Start: 0x2000, End: 0x3fff, Mask: 0x0007, Handler: c.ppu},
		bus.Region{Name: "APU/IO", Start: 0x4000, End: 0x401f, Handler: c.io},
		bus.Region{Name: "Cartridge", Start: 0x4020, End: 0xffff, Handler: cart},
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't build the CPU bus: %w", err)
	}
	c.bus = b
	c.cpu.ConnectBus(b)
	c.Reset()
	return c, nil
}

func (c *Console) Reset() {
	c.cpu.Reset()
	c.ppu.Reset()
	c.stall = 0
	c.cycles = c.cpu.Cycles()
}

// Step runs one CPU step, then the PPU for the same time.
func (c *Console) Step() int {
	n := c.cpu.Step()
	// a DMA started by this step is paid right away
	n += c.stall
	c.stall = 0
	for i := 0; i < n*ppuDotsPerCycle; i++ {
		c.ppu.Tic()
	}
	c.cycles += uint64(n)
	return n
}

// RunFrame steps until the PPU finishes the current frame.
func (c *Console) RunFrame() int {
	frame := c.ppu.Frame()
	total := 0
	for c.ppu.Frame() == frame {
		total += c.Step()
	}
	return total
}

func (c *Console) oamDMA(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 0x100; i++ {
		c.ppu.WriteOAM(c.bus.Read8(base | i))
	}
	c.stall += oamDMACycles
	if c.cpu.Cycles()%2 == 1 {
		c.stall++
	}
}

func (c *Console) CPU() *cpu.CPU {
	return c.cpu
}

func (c *Console) Bus() *bus.Bus {
	return c.bus
}

func (c *Console) PPU() *PPU {
	return c.ppu
}

func (c *Console) IO() *IO {
	return c.io
}

func (c *Console) Cart() *Cart {
	return c.cart
}

func (c *Console) Frame() uint64 {
	return c.ppu.Frame()
}

// Cycles returns the CPU cycles run since the last reset, DMA stalls included.
func (c *Console) Cycles() uint64 {
	return c.cycles
}
