// Package monitor is an interactive machine-language monitor: it steps and
// runs the CPU, inspects and patches memory, disassembles, sets breakpoints
// and injects interrupts.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/nevisdale/nescore/internal/nes"
	"golang.org/x/term"
)

const prompt = "> "

type Monitor struct {
	machine     nes.Machine
	out         io.Writer
	ctx         context.Context
	list        []command
	commands    *prefixtree.Tree[*command]
	breakpoints map[uint16]bool

	// where disasm and mem continue when given no address
	nextDisasm uint16
	nextMem    uint16
	repeat     string
	quit       bool
}

func New(machine nes.Machine, out io.Writer) *Monitor {
	return &Monitor{
		machine:     machine,
		out:         out,
		list:        commands,
		commands:    newCommandTree(commands),
		breakpoints: make(map[uint16]bool),
		nextDisasm:  machine.CPU().PC(),
	}
}

func (m *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// Exec runs one command line. An empty line repeats the last step,
// mem or disasm command.
func (m *Monitor) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		if m.repeat == "" {
			return nil
		}
		fields = []string{m.repeat}
	}

	c, err := m.lookup(fields[0])
	if err != nil {
		return err
	}
	switch c.name {
	case "step", "mem", "disasm":
		m.repeat = c.name
	default:
		m.repeat = ""
	}
	return c.run(m, fields[1:])
}

// Breakpoints returns the active breakpoints.
func (m *Monitor) Breakpoints() []uint16 {
	addrs := make([]uint16, 0, len(m.breakpoints))
	for addr := range m.breakpoints {
		addrs = append(addrs, addr)
	}
	return addrs
}

// Done reports whether quit was entered.
func (m *Monitor) Done() bool {
	return m.quit
}

// Run reads commands from in until quit, end of input or ctx is done.
// A terminal gets line editing and history, anything else is read line by line.
func (m *Monitor) Run(ctx context.Context, in io.Reader) error {
	m.ctx = ctx
	defer func() { m.ctx = nil }()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return m.runTerminal(ctx, f)
	}

	scanner := bufio.NewScanner(in)
	for !m.quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printf("%s", prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		m.report(m.Exec(scanner.Text()))
	}
	return nil
}

func (m *Monitor) runTerminal(ctx context.Context, f *os.File) error {
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("couldn't set up the terminal: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, m.out}, prompt)

	// raw mode needs \r\n, which the terminal writer adds
	out := m.out
	m.out = t
	defer func() { m.out = out }()

	for !m.quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		m.report(m.Exec(line))
	}
	return nil
}

func (m *Monitor) report(err error) {
	if err != nil {
		m.printf("error: %s\n", err)
	}
}
