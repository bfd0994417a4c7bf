package cpu

// Add with Carry
// A = A + M + C
//
// Flags affected: C, Z, N, V
func (c *CPU) adc() {
	if c.cfg.Decimal && c.p.Has(FlagD) {
		c.adcDecimal(c.operandValue)
		return
	}
	c.addBinary(c.operandValue)
}

func (c *CPU) addBinary(m uint8) {
	r16 := uint16(c.a) + uint16(m)
	if c.p.Has(FlagC) {
		r16++
	}
	r8 := uint8(r16)
	c.p.set(FlagC, r16 > 0xff)
	c.p.setZN(r8)
	c.p.set(FlagV, isSameSign(c.a, m) && !isSameSign(c.a, r8))
	c.a = r8
}

// adcDecimal follows the NMOS 6502: Z comes from the binary sum,
// N and V from the intermediate result after the low nibble fix-up.
func (c *CPU) adcDecimal(m uint8) {
	carry := uint8(c.p & FlagC)

	lo := (c.a & 0x0f) + (m & 0x0f) + carry
	if lo >= 0x0a {
		lo = ((lo + 0x06) & 0x0f) + 0x10
	}
	sum := uint16(c.a&0xf0) + uint16(m&0xf0) + uint16(lo)
	seq := uint8(sum)
	if sum >= 0xa0 {
		sum += 0x60
	}

	c.p.set(FlagZ, c.a+m+carry == 0)
	c.p.set(FlagN, seq&0x80 != 0)
	c.p.set(FlagV, isSameSign(c.a, m) && !isSameSign(c.a, seq))
	c.p.set(FlagC, sum > 0xff)
	c.a = uint8(sum)
}

// Subtract with Carry
// A = A - M - (1 - C)
//
// Flags affected: C, Z, N, V
func (c *CPU) sbc() {
	if c.cfg.Decimal && c.p.Has(FlagD) {
		c.sbcDecimal(c.operandValue)
		return
	}
	c.addBinary(^c.operandValue)
}

// sbcDecimal sets every flag from the binary subtraction, as the NMOS 6502 does.
func (c *CPU) sbcDecimal(m uint8) {
	a := c.a
	borrow := int16(1 - uint8(c.p&FlagC))

	lo := int16(a&0x0f) - int16(m&0x0f) - borrow
	if lo < 0 {
		lo = ((lo - 0x06) & 0x0f) - 0x10
	}
	r := int16(a&0xf0) - int16(m&0xf0) + lo
	if r < 0 {
		r -= 0x60
	}

	c.addBinary(^m)
	c.a = uint8(r)
}

// Logical AND
// A = A & M
//
// Flags affected: Z, N
func (c *CPU) and() {
	c.a &= c.operandValue
	c.p.setZN(c.a)
}

// Arithmetic Shift Left
// C <- (A or M)7, (A or M) << 1
//
// Flags affected: C, Z, N
func (c *CPU) asl() {
	c.p.set(FlagC, c.operandValue&0x80 > 0)
	r := c.operandValue << 1
	c.p.setZN(r)
	c.store(r)
}

// jmpIf takes a branch. A taken branch costs one more cycle,
// and one more again when the target is on another page.
func (c *CPU) jmpIf(condition bool) {
	if !condition {
		return
	}
	c.cycles++
	addr := c.pc + c.operandAddr
	if isDiffPage(c.pc, addr) {
		c.cycles++
	}
	c.pc = addr
}

func (c *CPU) bcc() { c.jmpIf(!c.p.Has(FlagC)) }
func (c *CPU) bcs() { c.jmpIf(c.p.Has(FlagC)) }
func (c *CPU) beq() { c.jmpIf(c.p.Has(FlagZ)) }
func (c *CPU) bmi() { c.jmpIf(c.p.Has(FlagN)) }
func (c *CPU) bne() { c.jmpIf(!c.p.Has(FlagZ)) }
func (c *CPU) bpl() { c.jmpIf(!c.p.Has(FlagN)) }
func (c *CPU) bvc() { c.jmpIf(!c.p.Has(FlagV)) }
func (c *CPU) bvs() { c.jmpIf(c.p.Has(FlagV)) }

// Bit Test
// A & M, N <- M7, V <- M6
//
// Flags affected: Z, N, V
func (c *CPU) bit() {
	c.p.set(FlagZ, c.a&c.operandValue == 0)
	c.p.set(FlagN, c.operandValue&0x80 > 0)
	c.p.set(FlagV, c.operandValue&0x40 > 0)
}

// Force Interrupt
// The byte after BRK is skipped, so the pushed return address is BRK + 2.
//
// Flags affected: I
func (c *CPU) brk() {
	c.pc++
	c.interrupt(vectorIRQ, true)
}

func (c *CPU) clc() { c.p.set(FlagC, false) }
func (c *CPU) cld() { c.p.set(FlagD, false) }
func (c *CPU) cli() { c.p.set(FlagI, false) }
func (c *CPU) clv() { c.p.set(FlagV, false) }
func (c *CPU) sec() { c.p.set(FlagC, true) }
func (c *CPU) sed() { c.p.set(FlagD, true) }
func (c *CPU) sei() { c.p.set(FlagI, true) }

func (c *CPU) compare(reg uint8) {
	c.p.set(FlagC, reg >= c.operandValue)
	c.p.setZN(reg - c.operandValue)
}

// Compare
// A - M
//
// Flags affected: C, Z, N
func (c *CPU) cmp() { c.compare(c.a) }
func (c *CPU) cpx() { c.compare(c.x) }
func (c *CPU) cpy() { c.compare(c.y) }

// Decrement Memory
// M - 1
//
// Flags affected: Z, N
func (c *CPU) dec() {
	r := c.operandValue - 1
	c.p.setZN(r)
	c.write8(c.operandAddr, r)
}

func (c *CPU) dex() {
	c.x--
	c.p.setZN(c.x)
}

func (c *CPU) dey() {
	c.y--
	c.p.setZN(c.y)
}

// Exclusive OR
// A ^ M
//
// Flags affected: Z, N
func (c *CPU) eor() {
	c.a ^= c.operandValue
	c.p.setZN(c.a)
}

// Increment Memory
// M + 1
//
// Flags affected: Z, N
func (c *CPU) inc() {
	r := c.operandValue + 1
	c.p.setZN(r)
	c.write8(c.operandAddr, r)
}

func (c *CPU) inx() {
	c.x++
	c.p.setZN(c.x)
}

func (c *CPU) iny() {
	c.y++
	c.p.setZN(c.y)
}

func (c *CPU) jmp() {
	c.pc = c.operandAddr
}

// Jump to Subroutine
// Pushes the address of the last byte of the JSR instruction, RTS adds one.
func (c *CPU) jsr() {
	c.stackPush16(c.pc - 1)
	c.pc = c.operandAddr
}

func (c *CPU) lda() {
	c.a = c.operandValue
	c.p.setZN(c.a)
}

func (c *CPU) ldx() {
	c.x = c.operandValue
	c.p.setZN(c.x)
}

func (c *CPU) ldy() {
	c.y = c.operandValue
	c.p.setZN(c.y)
}

// Logical Shift Right
// C <- (A or M)0, (A or M) >> 1
//
// Flags affected: C, Z, N
func (c *CPU) lsr() {
	c.p.set(FlagC, c.operandValue&0x1 > 0)
	r := c.operandValue >> 1
	c.p.setZN(r)
	c.store(r)
}

func (c *CPU) nop() {}

// Logical Inclusive OR
// A | M
//
// Flags affected: Z, N
func (c *CPU) ora() {
	c.a |= c.operandValue
	c.p.setZN(c.a)
}

func (c *CPU) pha() {
	c.stackPush8(c.a)
}

// Push Processor Status
// The pushed copy always has B and U set.
func (c *CPU) php() {
	c.stackPush8(c.p.pushed(true))
}

func (c *CPU) pla() {
	c.a = c.stackPop8()
	c.p.setZN(c.a)
}

// Pull Processor Status
// B is ignored, U stays set.
func (c *CPU) plp() {
	c.p = pulled(c.stackPop8())
}

// Rotate Left
// C <- (A or M)7, (A or M) << 1, bit 0 <- C
//
// Flags affected: C, Z, N
func (c *CPU) rol() {
	carry := c.operandValue&0x80 > 0
	r := c.operandValue << 1
	if c.p.Has(FlagC) {
		r |= 0x1
	}
	c.p.set(FlagC, carry)
	c.p.setZN(r)
	c.store(r)
}

// Rotate Right
// C -> (A or M)0, (A or M) >> 1, bit 7 <- C
//
// Flags affected: C, Z, N
func (c *CPU) ror() {
	carry := c.operandValue&0x1 > 0
	r := c.operandValue >> 1
	if c.p.Has(FlagC) {
		r |= 0x80
	}
	c.p.set(FlagC, carry)
	c.p.setZN(r)
	c.store(r)
}

// Return from Interrupt
// P <- stack, PC <- stack
func (c *CPU) rti() {
	c.p = pulled(c.stackPop8())
	c.pc = c.stackPop16()
}

// Return from Subroutine
// PC <- stack + 1
func (c *CPU) rts() {
	c.pc = c.stackPop16() + 1
}

func (c *CPU) sta() { c.write8(c.operandAddr, c.a) }
func (c *CPU) stx() { c.write8(c.operandAddr, c.x) }
func (c *CPU) sty() { c.write8(c.operandAddr, c.y) }

func (c *CPU) tax() {
	c.x = c.a
	c.p.setZN(c.x)
}

func (c *CPU) tay() {
	c.y = c.a
	c.p.setZN(c.y)
}

func (c *CPU) tsx() {
	c.x = c.sp
	c.p.setZN(c.x)
}

func (c *CPU) txa() {
	c.a = c.x
	c.p.setZN(c.a)
}

// Transfer X to Stack Pointer
// Flags affected: None
func (c *CPU) txs() {
	c.sp = c.x
}

func (c *CPU) tya() {
	c.a = c.y
	c.p.setZN(c.a)
}

// Undocumented opcodes. Only the ones with stable behavior are emulated.

func (c *CPU) lax() {
	c.a = c.operandValue
	c.x = c.operandValue
	c.p.setZN(c.a)
}

func (c *CPU) sax() {
	c.write8(c.operandAddr, c.a&c.x)
}

func (c *CPU) dcp() {
	c.operandValue--
	c.write8(c.operandAddr, c.operandValue)
	c.cmp()
}

func (c *CPU) isc() {
	c.operandValue++
	c.write8(c.operandAddr, c.operandValue)
	c.sbc()
}

func (c *CPU) slo() {
	c.p.set(FlagC, c.operandValue&0x80 > 0)
	r := c.operandValue << 1
	c.write8(c.operandAddr, r)
	c.a |= r
	c.p.setZN(c.a)
}

func (c *CPU) rla() {
	carry := c.operandValue&0x80 > 0
	r := c.operandValue << 1
	if c.p.Has(FlagC) {
		r |= 0x1
	}
	c.write8(c.operandAddr, r)
	c.a &= r
	c.p.set(FlagC, carry)
	c.p.setZN(c.a)
}

func (c *CPU) sre() {
	c.p.set(FlagC, c.operandValue&0x1 > 0)
	r := c.operandValue >> 1
	c.write8(c.operandAddr, r)
	c.a ^= r
	c.p.setZN(c.a)
}

func (c *CPU) rra() {
	r := c.operandValue >> 1
	if c.p.Has(FlagC) {
		r |= 0x80
	}
	c.p.set(FlagC, c.operandValue&0x1 > 0)
	c.operandValue = r
	c.write8(c.operandAddr, r)
	c.adc()
}

func (c *CPU) anc() {
	c.a &= c.operandValue
	c.p.setZN(c.a)
	c.p.set(FlagC, c.a&0x80 > 0)
}

func (c *CPU) alr() {
	c.a &= c.operandValue
	c.p.set(FlagC, c.a&0x1 > 0)
	c.a >>= 1
	c.p.setZN(c.a)
}

// ARR: AND then ROR A, with C from bit 6 and V from bit 6 xor bit 5.
func (c *CPU) arr() {
	c.a &= c.operandValue
	c.a >>= 1
	if c.p.Has(FlagC) {
		c.a |= 0x80
	}
	c.p.setZN(c.a)
	c.p.set(FlagC, c.a&0x40 != 0)
	c.p.set(FlagV, (c.a>>6^c.a>>5)&0x1 != 0)
}

// AXS: X = (A & X) - M, carry as in CMP, no borrow in.
func (c *CPU) axs() {
	ax := c.a & c.x
	c.p.set(FlagC, ax >= c.operandValue)
	c.x = ax - c.operandValue
	c.p.setZN(c.x)
}

func (c *CPU) las() {
	r := c.operandValue & c.sp
	c.a = r
	c.x = r
	c.sp = r
	c.p.setZN(r)
}
