package monitor

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/bradleyjkemp/memviz"
	"github.com/nevisdale/nescore/internal/cpu"
	"github.com/nevisdale/nescore/internal/nes"
)

var (
	ErrUnknownCommand   = errors.New("monitor: unknown command")
	ErrAmbiguousCommand = errors.New("monitor: ambiguous command")
	ErrBadArgument      = errors.New("monitor: bad argument")
)

// command is one monitor command. Commands are looked up by their
// shortest unambiguous prefix or by their shortcut. A shortcut must not
// be a prefix of another command.
type command struct {
	name     string
	shortcut string
	usage    string
	help     string
	run      func(m *Monitor, args []string) error
}

var commands = []command{
	{"step", "", "step [n]", "run n instructions, printing each one", (*Monitor).cmdStep},
	{"run", "", "run [frames]", "run until a breakpoint or for a number of frames (default 60)", (*Monitor).cmdRun},
	{"regs", "", "regs", "show registers", (*Monitor).cmdRegs},
	{"mem", "", "mem <addr> [len]", "dump memory without side effects", (*Monitor).cmdMem},
	{"poke", "", "poke <addr> <byte>...", "write bytes through the bus", (*Monitor).cmdPoke},
	{"disasm", "", "disasm [addr] [n]", "disassemble n instructions", (*Monitor).cmdDisasm},
	{"break", "", "break [addr]", "toggle a breakpoint, or list them", (*Monitor).cmdBreak},
	{"reset", "", "reset", "reset the machine", (*Monitor).cmdReset},
	{"nmi", "", "nmi", "signal an NMI edge", (*Monitor).cmdNMI},
	{"irq", "", "irq [on|off]", "drive the IRQ line, or show it", (*Monitor).cmdIRQ},
	{"diag", "", "diag", "show CPU diagnostics", (*Monitor).cmdDiag},
	{"map", "", "map", "show the bus regions", (*Monitor).cmdMap},
	{"graph", "", "graph <file>", "write a Graphviz graph of the CPU state", (*Monitor).cmdGraph},
	{"help", "?", "help", "show this help", (*Monitor).cmdHelp},
	{"quit", "", "quit", "leave the monitor", (*Monitor).cmdQuit},
}

func newCommandTree(list []command) *prefixtree.Tree[*command] {
	tree := prefixtree.New[*command]()
	for i := range list {
		c := &list[i]
		tree.Add(c.name, c)
		if c.shortcut != "" {
			tree.Add(c.shortcut, c)
		}
	}
	return tree
}

func (m *Monitor) lookup(name string) (*command, error) {
	c, err := m.commands.FindValue(strings.ToLower(name))
	switch {
	case errors.Is(err, prefixtree.ErrPrefixAmbiguous):
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousCommand, name)
	case err != nil:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return c, nil
}

// parseAddr accepts $1234, 0x1234 and plain hex.
func parseAddr(s string) (uint16, error) {
	v, err := parseHex(s, 16)
	return uint16(v), err
}

func parseByte(s string) (uint8, error) {
	v, err := parseHex(s, 8)
	return uint8(v), err
}

func parseHex(s string, bits int) (uint64, error) {
	t := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	v, err := strconv.ParseUint(t, 16, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadArgument, s)
	}
	return v, nil
}

func parseCount(args []string, i int, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadArgument, args[i])
	}
	return n, nil
}

func (m *Monitor) cmdStep(args []string) error {
	n, err := parseCount(args, 0, 1)
	if err != nil {
		return err
	}
	c := m.machine.CPU()
	for i := 0; i < n; i++ {
		m.printf("%s\n", c.Trace())
		m.machine.Step()
		if c.State() != cpu.Running {
			m.printf("-- %s\n", c.State())
		}
	}
	m.nextDisasm = c.PC()
	return nil
}

func (m *Monitor) cmdRun(args []string) error {
	frames, err := parseCount(args, 0, 60)
	if err != nil {
		return err
	}
	c := m.machine.CPU()
	start := m.machine.Frame()
	steps := 0
	for m.machine.Frame()-start < uint64(frames) {
		if m.ctx != nil && m.ctx.Err() != nil {
			return m.ctx.Err()
		}
		m.machine.Step()
		steps++
		if m.breakpoints[c.PC()] {
			m.printf("breakpoint at $%04X after %d steps\n", c.PC(), steps)
			m.nextDisasm = c.PC()
			return nil
		}
	}
	m.printf("ran %d frames, %d steps\n", frames, steps)
	m.nextDisasm = c.PC()
	return nil
}

func (m *Monitor) cmdRegs([]string) error {
	c := m.machine.CPU()
	r := c.Registers()
	m.printf("PC:%04X A:%02X X:%02X Y:%02X SP:%02X P:%02X [%s]\n", r.PC, r.A, r.X, r.Y, r.SP, uint8(r.P), r.P)
	m.printf("cycles:%d frame:%d state:%s nmi pending:%d irq:%t\n",
		c.Cycles(), m.machine.Frame(), c.State(), c.NMIPending(), c.IRQLine())
	return nil
}

func (m *Monitor) cmdMem(args []string) error {
	addr := m.nextMem
	if len(args) > 0 {
		var err error
		if addr, err = parseAddr(args[0]); err != nil {
			return err
		}
	}
	n, err := parseCount(args, 1, 0x40)
	if err != nil {
		return err
	}

	b := m.machine.Bus()
	for row := 0; row < n; row += 16 {
		var hex, text strings.Builder
		for i := 0; i < 16 && row+i < n; i++ {
			v := b.Peek8(addr + uint16(row+i))
			fmt.Fprintf(&hex, " %02X", v)
			if v >= 0x20 && v < 0x7f {
				text.WriteByte(v)
			} else {
				text.WriteByte('.')
			}
		}
		m.printf("$%04X:%-48s  %s\n", addr+uint16(row), hex.String(), text.String())
	}
	m.nextMem = addr + uint16(n)
	return nil
}

func (m *Monitor) cmdPoke(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: poke <addr> <byte>...", ErrBadArgument)
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	data := make([]uint8, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := parseByte(a)
		if err != nil {
			return err
		}
		data = append(data, v)
	}
	for i, v := range data {
		m.machine.Bus().Write8(addr+uint16(i), v)
	}
	return nil
}

func (m *Monitor) cmdDisasm(args []string) error {
	addr := m.nextDisasm
	if len(args) > 0 {
		var err error
		if addr, err = parseAddr(args[0]); err != nil {
			return err
		}
	}
	n, err := parseCount(args, 1, 10)
	if err != nil {
		return err
	}

	pc := m.machine.CPU().PC()
	for _, l := range cpu.DisassembleN(m.machine.Bus(), addr, n) {
		marker := " "
		switch {
		case l.Addr == pc:
			marker = ">"
		case m.breakpoints[l.Addr]:
			marker = "*"
		}
		m.printf("%s %s\n", marker, l)
		addr = l.Next()
	}
	m.nextDisasm = addr
	return nil
}

func (m *Monitor) cmdBreak(args []string) error {
	if len(args) == 0 {
		if len(m.breakpoints) == 0 {
			m.printf("no breakpoints\n")
			return nil
		}
		addrs := make([]int, 0, len(m.breakpoints))
		for addr := range m.breakpoints {
			addrs = append(addrs, int(addr))
		}
		sort.Ints(addrs)
		for _, addr := range addrs {
			m.printf("$%04X\n", addr)
		}
		return nil
	}

	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	if m.breakpoints[addr] {
		delete(m.breakpoints, addr)
		m.printf("breakpoint at $%04X removed\n", addr)
		return nil
	}
	m.breakpoints[addr] = true
	m.printf("breakpoint at $%04X\n", addr)
	return nil
}

func (m *Monitor) cmdReset([]string) error {
	m.machine.Reset()
	m.nextDisasm = m.machine.CPU().PC()
	return m.cmdRegs(nil)
}

func (m *Monitor) cmdNMI([]string) error {
	m.machine.CPU().RequestNMI()
	return nil
}

func (m *Monitor) cmdIRQ(args []string) error {
	c := m.machine.CPU()
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on", "1":
			c.SetIRQ(true)
		case "off", "0":
			c.SetIRQ(false)
		default:
			return fmt.Errorf("%w: %q", ErrBadArgument, args[0])
		}
	}
	m.printf("irq line: %t\n", c.IRQLine())
	return nil
}

func (m *Monitor) cmdDiag([]string) error {
	d := m.machine.CPU().Diagnostics()
	m.printf("illegal opcodes: %d", d.IllegalOpcodes)
	if d.IllegalOpcodes > 0 {
		m.printf(" (last %02X %s at $%04X)", d.LastIllegal, cpu.Mnemonic(d.LastIllegal), d.LastIllegalPC)
	}
	m.printf("\nresets: %d nmis: %d irqs: %d coalesced nmis: %d\n", d.Resets, d.NMIs, d.IRQs, d.CoalescedNMIs)
	return nil
}

func (m *Monitor) cmdMap([]string) error {
	for _, r := range m.machine.Bus().Regions() {
		m.printf("%s\n", r)
	}
	if console, ok := m.machine.(*nes.Console); ok {
		cart := console.Cart()
		m.printf("cartridge: mapper %d, %d x 16KB PRG, %s mirroring\n", cart.MapperID(), cart.PRGBanks(), cart.Mirror())
	}
	return nil
}

// snapshot is what the graph command draws. It holds copies only,
// so the graph does not walk into the memory devices.
type snapshot struct {
	Registers   cpu.Registers
	Flags       string
	State       string
	Cycles      uint64
	Frame       uint64
	Diagnostics cpu.Diagnostics
	Regions     []string
}

func (m *Monitor) takeSnapshot() *snapshot {
	c := m.machine.CPU()
	s := &snapshot{
		Registers:   c.Registers(),
		Flags:       c.Registers().P.String(),
		State:       c.State().String(),
		Cycles:      c.Cycles(),
		Frame:       m.machine.Frame(),
		Diagnostics: c.Diagnostics(),
	}
	for _, r := range m.machine.Bus().Regions() {
		s.Regions = append(s.Regions, r.String())
	}
	return s
}

func (m *Monitor) cmdGraph(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: graph <file>", ErrBadArgument)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("couldn't create graph file: %w", err)
	}
	defer f.Close()

	memviz.Map(f, m.takeSnapshot())
	m.printf("graph written to %s\n", args[0])
	return nil
}

func (m *Monitor) cmdHelp([]string) error {
	for _, c := range m.list {
		short := ""
		if c.shortcut != "" {
			short = "(" + c.shortcut + ")"
		}
		m.printf("  %-22s %-4s %s\n", c.usage, short, c.help)
	}
	m.printf("commands may be abbreviated, an empty line repeats step, mem and disasm\n")
	return nil
}

func (m *Monitor) cmdQuit([]string) error {
	m.quit = true
	return nil
}
