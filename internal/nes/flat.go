package nes

import (
	"github.com/nevisdale/nescore/internal/bus"
	"github.com/nevisdale/nescore/internal/cpu"
)

const resetVector = 0xfffc

// Flat is a bare CPU on 64KB of RAM, for raw binaries such as the
// functional test suites. A frame is a fixed number of cycles.
type Flat struct {
	cpu *cpu.CPU
	bus *bus.Bus

	frame       uint64
	frameCycles int
}

func NewFlat(cfg cpu.Config) *Flat {
	b, _ := bus.NewFlat()
	return &Flat{
		cpu: cpu.New(b, cfg),
		bus: b,
	}
}

// Load copies data to memory at org.
func (f *Flat) Load(org uint16, data []byte) {
	bus.Load(f.bus, org, data)
}

// LoadImage copies a raw program image to org. An image that does not
// cover the reset vector starts at org.
func (f *Flat) LoadImage(org uint16, data []byte) {
	f.Load(org, data)
	if int(org) > resetVector || int(org)+len(data) < resetVector+2 {
		f.SetResetVector(org)
	}
}

// SetResetVector points the reset vector at addr.
func (f *Flat) SetResetVector(addr uint16) {
	f.bus.Write8(resetVector, uint8(addr))
	f.bus.Write8(resetVector+1, uint8(addr>>8))
}

func (f *Flat) Reset() {
	f.cpu.Reset()
	f.frameCycles = 0
}

func (f *Flat) Step() int {
	n := f.cpu.Step()
	f.frameCycles += n
	if f.frameCycles >= cyclesPerFrame {
		f.frameCycles -= cyclesPerFrame
		f.frame++
	}
	return n
}

func (f *Flat) RunFrame() int {
	frame := f.frame
	total := 0
	for f.frame == frame {
		total += f.Step()
	}
	return total
}

func (f *Flat) CPU() *cpu.CPU {
	return f.cpu
}

func (f *Flat) Bus() *bus.Bus {
	return f.bus
}

func (f *Flat) Frame() uint64 {
	return f.frame
}
