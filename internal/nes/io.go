package nes

// Controller buttons in the order the pad shifts them out.
const (
	ButtonA uint8 = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

const (
	regOAMDMA = 0x4014
	regStatus = 0x4015
	regJoy1   = 0x4016
	regJoy2   = 0x4017

	// CPU cycles an OAM DMA transfer halts the CPU, one more on an odd cycle
	oamDMACycles = 513
)

// IO is the APU and I/O register block at $4000-$401F. Sound registers
// only store what is written. The first controller port and OAM DMA work.
type IO struct {
	regs [0x20]uint8

	buttons uint8
	shift   uint8
	strobe  bool

	dma func(page uint8)
}

func NewIO(dma func(page uint8)) *IO {
	return &IO{dma: dma}
}

// SetButtons sets the state of the pad in port 1.
func (r *IO) SetButtons(buttons uint8) {
	r.buttons = buttons
}

func (r *IO) Buttons() uint8 {
	return r.buttons
}

func (r *IO) Read8(addr uint16) uint8 {
	switch addr {
	case regJoy1:
		if r.strobe {
			return r.buttons & 0x1
		}
		data := r.shift & 0x1
		// an official pad returns 1 once all 8 buttons are read
		r.shift = r.shift>>1 | 0x80
		return data
	case regStatus, regJoy2:
		return 0
	}
	// write-only registers
	return 0
}

func (r *IO) Peek8(addr uint16) uint8 {
	if addr == regJoy1 {
		if r.strobe {
			return r.buttons & 0x1
		}
		return r.shift & 0x1
	}
	return r.regs[addr&0x1f]
}

func (r *IO) Write8(addr uint16, data uint8) {
	r.regs[addr&0x1f] = data
	switch addr {
	case regOAMDMA:
		if r.dma != nil {
			r.dma(data)
		}
	case regJoy1:
		// the pad latches its buttons while strobe is high
		r.strobe = data&0x1 != 0
		r.shift = r.buttons
	}
}
