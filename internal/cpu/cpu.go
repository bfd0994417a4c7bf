package cpu

import (
	"log"
)

type ReadWriter interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, data uint8)
}

// Peeker reads memory without side effects. The disassembler and tracer
// use it when the memory behind the CPU provides it.
type Peeker interface {
	Peek8(addr uint16) uint8
}

const (
	// The stack is located in the fixed memory page $0100 to $01FF.
	stackStartAddr = uint16(0x100)

	vectorNMI   = uint16(0xfffa)
	vectorReset = uint16(0xfffc)
	vectorIRQ   = uint16(0xfffe)

	interruptCycles = 7
	illegalCycles   = 2
)

// Config selects the CPU variant and the policies for the corner cases
// real hardware leaves open.
type Config struct {
	// Decimal enables BCD arithmetic in ADC/SBC when the D flag is set.
	// The NES 2A03 has it disabled, a stock NMOS 6502 has it enabled.
	Decimal bool

	// Unofficial enables the stable undocumented opcodes (LAX, SAX, DCP...).
	// When false, every undocumented opcode is a 2-cycle diagnostic no-op.
	Unofficial bool

	// QueueNMI services every NMI edge. When false, edges arriving while an
	// NMI is already pending are coalesced into one.
	QueueNMI bool

	// Logger receives diagnostics. nil means log.Default().
	Logger *log.Logger
}

// DefaultConfig describes the NES 2A03.
func DefaultConfig() Config {
	return Config{Unofficial: true}
}

// Registers is a snapshot of the programmer-visible CPU state.
type Registers struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16
	P  Status
}

// Diagnostics counts events that do not stop emulation but are worth knowing about.
type Diagnostics struct {
	IllegalOpcodes uint64 // undocumented or unstable opcodes executed as no-ops
	LastIllegal    uint8
	LastIllegalPC  uint16
	NMIs           uint64 // serviced
	IRQs           uint64 // serviced, BRK not included
	CoalescedNMIs  uint64 // edges merged into an already pending NMI
	Resets         uint64
}

type CPU struct {
	a           uint8
	x           uint8
	y           uint8
	p           Status
	sp          uint8
	pc          uint16
	mem         ReadWriter
	cfg         Config
	logger      *log.Logger
	cycles      int // cycles spent by the current step
	totalCycles uint64

	addrMode     addrMode
	operandAddr  uint16
	operandValue uint8
	pageCrossed  bool

	resetPending bool
	nmiPending   int
	irqLine      bool
	state        State

	diag     Diagnostics
	reported [0x100]bool
}

// New returns a CPU connected to mem. The CPU is not reset: call Reset once
// the program is in memory.
func New(mem ReadWriter, cfg Config) *CPU {
	c := &CPU{
		mem:    mem,
		cfg:    cfg,
		logger: cfg.Logger,
		p:      FlagU | FlagI,
		sp:     0xfd,
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// NewCPU returns a 2A03 CPU connected to mem.
func NewCPU(mem ReadWriter) *CPU {
	return New(mem, DefaultConfig())
}

func (c *CPU) ConnectBus(mem ReadWriter) {
	c.mem = mem
}

func (c *CPU) Config() Config {
	return c.cfg
}

func (c *CPU) read8(addr uint16) uint8 {
	return c.mem.Read8(addr)
}

func (c *CPU) read16(addr uint16) uint16 {
	return uint16(c.read8(addr)) | uint16(c.read8(addr+1))<<8
}

func (c *CPU) write8(addr uint16, data uint8) {
	c.mem.Write8(addr, data)
}

func (c *CPU) peek8(addr uint16) uint8 {
	if p, ok := c.mem.(Peeker); ok {
		return p.Peek8(addr)
	}
	return c.mem.Read8(addr)
}

func (c *CPU) stackPop8() uint8 {
	c.sp++
	return c.read8(stackStartAddr | uint16(c.sp))
}

func (c *CPU) stackPop16() uint16 {
	lo := uint16(c.stackPop8())
	hi := uint16(c.stackPop8())
	return lo | hi<<8
}

func (c *CPU) stackPush8(data uint8) {
	c.write8(stackStartAddr|uint16(c.sp), data)
	c.sp--
}

func (c *CPU) stackPush16(data uint16) {
	c.stackPush8(uint8(data >> 8))
	c.stackPush8(uint8(data & 0xff))
}

// Step executes exactly one instruction, or services one pending interrupt,
// and returns the number of cycles it took.
//
// Interrupt lines are sampled here, between instructions, so a request made
// by a device while an instruction runs is serviced by the next Step.
func (c *CPU) Step() int {
	c.cycles = 0

	if !c.serviceInterrupt() {
		c.state = Running
		c.execute()
	}

	c.totalCycles += uint64(c.cycles)
	return c.cycles
}

func (c *CPU) execute() {
	opcode := c.read8(c.pc)
	c.pc++

	in := &instrs[opcode]
	def := &ops[in.op]
	if def.fn == nil || (!in.legal && !c.cfg.Unofficial) {
		c.illegal(opcode)
		return
	}

	c.fetch(in.mode, def.reads)
	def.fn(c)
	c.cycles += int(in.cycles)
	if in.page && c.pageCrossed {
		c.cycles++
	}

	c.addrMode = 0
	c.operandAddr = 0
	c.operandValue = 0
	c.pageCrossed = false
}

// illegal executes an opcode the CPU does not emulate. Emulation carries on:
// the opcode costs 2 cycles, changes nothing but PC and is reported once.
func (c *CPU) illegal(opcode uint8) {
	c.cycles += illegalCycles
	c.diag.IllegalOpcodes++
	c.diag.LastIllegal = opcode
	c.diag.LastIllegalPC = c.pc - 1
	if !c.reported[opcode] {
		c.reported[opcode] = true
		c.logger.Printf("unsupported opcode %02X (%s) at PC %04X, treated as NOP\n", opcode, ops[instrs[opcode].op].name, c.pc-1)
	}
}

// PC returns the program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// SetPC moves the program counter, e.g. to start a test ROM at a fixed address.
func (c *CPU) SetPC(addr uint16) {
	c.pc = addr
}

func (c *CPU) Registers() Registers {
	return Registers{A: c.a, X: c.x, Y: c.y, SP: c.sp, PC: c.pc, P: c.p}
}

// SetRegisters loads a register snapshot. B is dropped and U forced on P.
func (c *CPU) SetRegisters(r Registers) {
	c.a, c.x, c.y, c.sp, c.pc = r.A, r.X, r.Y, r.SP, r.PC
	c.p = pulled(uint8(r.P))
}

// Cycles returns the number of cycles executed since the last Reset.
func (c *CPU) Cycles() uint64 {
	return c.totalCycles
}

func (c *CPU) Diagnostics() Diagnostics {
	return c.diag
}

// State reports what the most recent Step did.
func (c *CPU) State() State {
	return c.state
}
