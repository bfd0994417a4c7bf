package cpu

import (
	"fmt"
	"strings"
)

// Line is one disassembled instruction.
type Line struct {
	Addr  uint16
	Bytes []uint8
	Text  string
}

// Next returns the address of the instruction that follows.
func (l Line) Next() uint16 {
	return l.Addr + uint16(len(l.Bytes))
}

func (l Line) String() string {
	var hex strings.Builder
	for i, b := range l.Bytes {
		if i > 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02X", b)
	}
	return fmt.Sprintf("$%04X: %-8s  %s", l.Addr, hex.String(), l.Text)
}

// Disassemble decodes the instruction at addr without side effects on mem.
func Disassemble(mem Peeker, addr uint16) Line {
	opcode := mem.Peek8(addr)
	in := instrs[opcode]
	line := Line{Addr: addr, Bytes: []uint8{opcode}}
	for i := 0; i < in.mode.operandBytes(); i++ {
		line.Bytes = append(line.Bytes, mem.Peek8(addr+1+uint16(i)))
	}

	name := in.op.String()
	if !in.legal {
		name = "*" + name
	}

	var operand8 uint8
	var operand16 uint16
	if len(line.Bytes) > 1 {
		operand8 = line.Bytes[1]
		operand16 = uint16(operand8)
	}
	if len(line.Bytes) > 2 {
		operand16 |= uint16(line.Bytes[2]) << 8
	}

	switch in.mode {
	case addrModeIMM:
		line.Text = fmt.Sprintf("%s #$%02X", name, operand8)
	case addrModeZP:
		line.Text = fmt.Sprintf("%s $%02X", name, operand8)
	case addrModeZPX:
		line.Text = fmt.Sprintf("%s $%02X,X", name, operand8)
	case addrModeZPY:
		line.Text = fmt.Sprintf("%s $%02X,Y", name, operand8)
	case addrModeABS:
		line.Text = fmt.Sprintf("%s $%04X", name, operand16)
	case addrModeABSX:
		line.Text = fmt.Sprintf("%s $%04X,X", name, operand16)
	case addrModeABSY:
		line.Text = fmt.Sprintf("%s $%04X,Y", name, operand16)
	case addrModeIND:
		line.Text = fmt.Sprintf("%s ($%04X)", name, operand16)
	case addrModeINDX:
		line.Text = fmt.Sprintf("%s ($%02X,X)", name, operand8)
	case addrModeINDY:
		line.Text = fmt.Sprintf("%s ($%02X),Y", name, operand8)
	case addrModeREL:
		target := addr + 2 + uint16(int8(operand8))
		line.Text = fmt.Sprintf("%s $%04X", name, target)
	case addrModeACC:
		line.Text = fmt.Sprintf("%s A", name)
	default:
		line.Text = name
	}
	return line
}

// DisassembleN decodes n consecutive instructions starting at addr.
func DisassembleN(mem Peeker, addr uint16, n int) []Line {
	lines := make([]Line, 0, n)
	for i := 0; i < n; i++ {
		l := Disassemble(mem, addr)
		lines = append(lines, l)
		addr = l.Next()
	}
	return lines
}

type cpuPeeker struct {
	c *CPU
}

func (p cpuPeeker) Peek8(addr uint16) uint8 {
	return p.c.peek8(addr)
}

// Disassemble decodes the instruction at addr through the CPU's memory.
func (c *CPU) Disassemble(addr uint16) Line {
	return Disassemble(cpuPeeker{c}, addr)
}

// Trace formats the next instruction and the registers before it runs,
// in the layout of the well known nestest log.
func (c *CPU) Trace() string {
	l := c.Disassemble(c.pc)
	var hex strings.Builder
	for i, b := range l.Bytes {
		if i > 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02X", b)
	}
	return fmt.Sprintf("%04X  %-8s  %-30s  A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		c.pc, hex.String(), l.Text, c.a, c.x, c.y, uint8(c.p), c.sp, c.totalCycles)
}
