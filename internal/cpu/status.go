package cpu

const (
	FlagC = Status(1 << iota) // Carry
	FlagZ                     // Zero
	FlagI                     // Interrupt Disable
	FlagD                     // Decimal Mode
	FlagB                     // Break Command, only ever present in pushed copies of P
	FlagU                     // Unused, always set
	FlagV                     // Overflow
	FlagN                     // Negative
)

// Status is the processor status register P.
type Status uint8

func (p Status) Has(flag Status) bool {
	return p&flag != 0
}

func (p *Status) set(flag Status, v bool) {
	if v {
		*p |= flag
		return
	}
	*p &^= flag
}

func (p *Status) setZN(value uint8) {
	p.set(FlagZ, value == 0)
	p.set(FlagN, value&0x80 != 0)
}

// pushed returns the byte written to the stack: U always set, B as requested.
func (p Status) pushed(brk bool) uint8 {
	v := p | FlagU
	if brk {
		v |= FlagB
	} else {
		v &^= FlagB
	}
	return uint8(v)
}

// pulled converts a byte taken from the stack back into a register value.
// B does not exist in the register and U always reads as set.
func pulled(v uint8) Status {
	return (Status(v) &^ FlagB) | FlagU
}

// String renders P as NV-BDIZC with lowercase letters for clear flags.
func (p Status) String() string {
	const names = "czidbuvn"
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		c := names[i]
		if p&(1<<i) != 0 {
			c -= 'a' - 'A'
		}
		out[7-i] = c
	}
	return string(out)
}

func isSameSign(a, b uint8) bool {
	return (a^b)&0x80 == 0
}

func isDiffPage(a, b uint16) bool {
	return a&0xff00 != b&0xff00
}
