package cpu

type addrMode uint8

const (
	// Immediate
	// Operand is a constant value.
	// Example: LDA #$10
	addrModeIMM addrMode = iota + 1

	// Zero Page
	// Operand is located in the first 256 bytes of memory.
	// Example: LDA $10
	addrModeZP

	// Zero Page, X
	// Zero page address plus X, wrapped within the zero page.
	// Example: LDA $10,X
	addrModeZPX

	// Zero Page, Y
	// Zero page address plus Y, wrapped within the zero page.
	// Example: LDX $10,Y
	addrModeZPY

	// Absolute
	// Full 16-bit address.
	// Example: LDA $1234
	addrModeABS

	// Absolute, X
	// Full 16-bit address plus X, carrying into the high byte.
	// Example: LDA $1234,X
	addrModeABSX

	// Absolute, Y
	// Full 16-bit address plus Y, carrying into the high byte.
	// Example: LDA $1234,Y
	addrModeABSY

	// Indirect
	// Only used by JMP. The pointer high byte is fetched without carry:
	// JMP ($10FF) reads $10FF and $1000.
	// Example: JMP ($1234)
	addrModeIND

	// Indexed Indirect (X)
	// Pointer at zero page operand plus X, both bytes wrapped within the zero page.
	// Example: LDA ($10,X)
	addrModeINDX

	// Indirect Indexed (Y)
	// Pointer at zero page operand, then plus Y with carry.
	// Example: LDA ($10),Y
	addrModeINDY

	// Relative
	// Used for branching instructions.
	// The operand is a signed 8-bit offset from the address of the next instruction.
	// Example: BNE $10
	addrModeREL

	// Accumulator
	// Operand is the accumulator.
	// Example: LSR A
	addrModeACC

	// Implied
	// Operand is implicit.
	// Example: CLC
	addrModeIMP
)

func (mode addrMode) String() string {
	switch mode {
	case addrModeIMM:
		return "IMM"
	case addrModeZP:
		return "ZP"
	case addrModeZPX:
		return "ZPX"
	case addrModeZPY:
		return "ZPY"
	case addrModeABS:
		return "ABS"
	case addrModeABSX:
		return "ABSX"
	case addrModeABSY:
		return "ABSY"
	case addrModeIND:
		return "IND"
	case addrModeINDX:
		return "INDX"
	case addrModeINDY:
		return "INDY"
	case addrModeREL:
		return "REL"
	case addrModeACC:
		return "ACC"
	case addrModeIMP:
		return "IMP"
	}
	return "???"
}

// operandBytes returns how many bytes follow the opcode.
func (mode addrMode) operandBytes() int {
	switch mode {
	case addrModeACC, addrModeIMP:
		return 0
	case addrModeABS, addrModeABSX, addrModeABSY, addrModeIND:
		return 2
	}
	return 1
}

// fetch resolves the operand of the current instruction and advances PC past it.
// The operand value is loaded only when load is set, so that store
// instructions never read the location they write.
func (c *CPU) fetch(mode addrMode, load bool) {
	c.addrMode = mode
	c.pageCrossed = false
	c.operandAddr = 0
	c.operandValue = 0

	switch mode {
	case addrModeIMM:
		c.operandAddr = c.pc
		c.pc++

	case addrModeZP:
		c.operandAddr = uint16(c.read8(c.pc))
		c.pc++

	case addrModeZPX:
		c.operandAddr = uint16(c.read8(c.pc) + c.x)
		c.pc++

	case addrModeZPY:
		c.operandAddr = uint16(c.read8(c.pc) + c.y)
		c.pc++

	case addrModeABS:
		c.operandAddr = c.read16(c.pc)
		c.pc += 2

	case addrModeABSX:
		baseAddr := c.read16(c.pc)
		c.pc += 2
		c.operandAddr = baseAddr + uint16(c.x)
		c.pageCrossed = isDiffPage(baseAddr, c.operandAddr)

	case addrModeABSY:
		baseAddr := c.read16(c.pc)
		c.pc += 2
		c.operandAddr = baseAddr + uint16(c.y)
		c.pageCrossed = isDiffPage(baseAddr, c.operandAddr)

	case addrModeIND:
		ptr := c.read16(c.pc)
		c.pc += 2
		// simulate 6502 bug: the pointer never carries into its high byte
		hi := (ptr & 0xff00) | uint16(uint8(ptr)+1)
		c.operandAddr = uint16(c.read8(ptr)) | uint16(c.read8(hi))<<8

	case addrModeINDX:
		zp := c.read8(c.pc) + c.x
		c.pc++
		lo := uint16(c.read8(uint16(zp)))
		hi := uint16(c.read8(uint16(zp + 1)))
		c.operandAddr = lo | hi<<8

	case addrModeINDY:
		zp := c.read8(c.pc)
		c.pc++
		lo := uint16(c.read8(uint16(zp)))
		hi := uint16(c.read8(uint16(zp + 1)))
		baseAddr := lo | hi<<8
		c.operandAddr = baseAddr + uint16(c.y)
		c.pageCrossed = isDiffPage(baseAddr, c.operandAddr)

	case addrModeREL:
		c.operandAddr = uint16(c.read8(c.pc))
		c.pc++
		if c.operandAddr&0x80 > 0 {
			c.operandAddr |= 0xff00 // add leading 1 s to save the sign
		}
		return

	case addrModeACC:
		c.operandValue = c.a
		return

	case addrModeIMP:
		return
	}

	if load {
		c.operandValue = c.read8(c.operandAddr)
	}
}

// store writes the result of a read-modify-write instruction back to its operand.
func (c *CPU) store(v uint8) {
	if c.addrMode == addrModeACC {
		c.a = v
		return
	}
	c.write8(c.operandAddr, v)
}
