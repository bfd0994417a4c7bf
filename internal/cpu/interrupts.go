package cpu

// State is the interrupt controller state after a Step.
type State uint8

const (
	Running State = iota
	ServicingReset
	ServicingNMI
	ServicingIRQ
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ServicingReset:
		return "reset"
	case ServicingNMI:
		return "nmi"
	case ServicingIRQ:
		return "irq"
	}
	return "???"
}

// Reset the CPU to its initial state and restart the cycle counter.
func (c *CPU) Reset() {
	c.cycles = 0
	c.reset()
	c.state = ServicingReset
	c.totalCycles = uint64(c.cycles)
}

func (c *CPU) reset() {
	c.a = 0
	c.x = 0
	c.y = 0
	c.p = FlagU | FlagI
	c.sp = 0xfd
	c.pc = c.read16(vectorReset)
	c.cycles += interruptCycles
	c.resetPending = false
	c.nmiPending = 0
	c.diag.Resets++
}

// RequestReset asserts RESET. It is serviced by the next Step and, unlike
// Reset, keeps the cycle counter running.
func (c *CPU) RequestReset() {
	c.resetPending = true
}

// RequestNMI signals an NMI edge.
func (c *CPU) RequestNMI() {
	if c.nmiPending > 0 && !c.cfg.QueueNMI {
		c.diag.CoalescedNMIs++
		return
	}
	c.nmiPending++
}

// SetIRQ drives the level-triggered IRQ line. The line stays asserted until
// the device releases it; while it is asserted and I is clear an IRQ is
// serviced at every instruction boundary.
func (c *CPU) SetIRQ(level bool) {
	c.irqLine = level
}

// NMIPending reports the number of NMI edges waiting to be serviced.
func (c *CPU) NMIPending() int {
	return c.nmiPending
}

func (c *CPU) IRQLine() bool {
	return c.irqLine
}

// serviceInterrupt runs the highest priority pending interrupt, if any.
// RESET wins over NMI, NMI wins over IRQ, IRQ is masked by I.
func (c *CPU) serviceInterrupt() bool {
	switch {
	case c.resetPending:
		c.reset()
		c.state = ServicingReset
	case c.nmiPending > 0:
		c.nmiPending--
		c.interrupt(vectorNMI, false)
		c.diag.NMIs++
		c.state = ServicingNMI
	case c.irqLine && !c.p.Has(FlagI):
		c.interrupt(vectorIRQ, false)
		c.diag.IRQs++
		c.state = ServicingIRQ
	default:
		return false
	}
	return true
}

// interrupt pushes PC and P, masks IRQs and jumps through vector.
// brk tells whether the pushed P carries the B flag.
func (c *CPU) interrupt(vector uint16, brk bool) {
	c.stackPush16(c.pc)
	c.stackPush8(c.p.pushed(brk))
	c.p.set(FlagI, true)
	c.pc = c.read16(vector)
	if !brk {
		c.cycles += interruptCycles
	}
}
