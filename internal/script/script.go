// Package script drives a machine from Lua.
//
// Scripts get an "emu" table:
//
//	emu.step([n])        run n steps, returns the cycles taken
//	emu.frame()          run one frame, returns the cycles taken
//	emu.peek(addr)       read memory without side effects
//	emu.poke(addr, v)    write memory through the bus
//	emu.regs()           table with a, x, y, sp, pc, p, cycles
//	emu.trace()          nestest style line for the next instruction
//	emu.nmi()            signal an NMI edge
//	emu.irq(level)       drive the IRQ line
//	emu.reset()          reset the machine
//	emu.log(msg)         write a line to the output
//
// A global function on_frame(n) is called after every frame.
package script

import (
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"

	"github.com/nevisdale/nescore/internal/nes"
)

const onFrameHook = "on_frame"

type Engine struct {
	L       *lua.LState
	machine nes.Machine
	out     io.Writer
	inHook  bool
}

func New(machine nes.Machine, out io.Writer) *Engine {
	e := &Engine{
		L:       lua.NewState(),
		machine: machine,
		out:     out,
	}
	e.L.SetGlobal("emu", e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"step":  e.step,
		"frame": e.frame,
		"peek":  e.peek,
		"poke":  e.poke,
		"regs":  e.regs,
		"trace": e.trace,
		"nmi":   e.nmi,
		"irq":   e.irq,
		"reset": e.reset,
		"log":   e.log,
	}))
	return e
}

func (e *Engine) Close() {
	e.L.Close()
}

func (e *Engine) DoFile(path string) error {
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func (e *Engine) DoString(src string) error {
	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// RunFrame runs one frame of the machine, then the on_frame hook if the
// script defines one.
func (e *Engine) RunFrame() error {
	e.machine.RunFrame()
	return e.callHook()
}

func (e *Engine) callHook() error {
	hook, ok := e.L.GetGlobal(onFrameHook).(*lua.LFunction)
	if !ok || e.inHook {
		return nil
	}
	e.inHook = true
	defer func() { e.inHook = false }()

	err := e.L.CallByParam(lua.P{
		Fn:      hook,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(e.machine.Frame()))
	if err != nil {
		return fmt.Errorf("%s: %w", onFrameHook, err)
	}
	return nil
}

func checkAddr(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xffff {
		L.ArgError(n, "address out of range")
	}
	return uint16(v)
}

func (e *Engine) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	cycles := 0
	for i := 0; i < n; i++ {
		cycles += e.machine.Step()
	}
	L.Push(lua.LNumber(cycles))
	return 1
}

func (e *Engine) frame(L *lua.LState) int {
	cycles := e.machine.RunFrame()
	if err := e.callHook(); err != nil {
		L.RaiseError("%s", err)
	}
	L.Push(lua.LNumber(cycles))
	return 1
}

func (e *Engine) peek(L *lua.LState) int {
	addr := checkAddr(L, 1)
	L.Push(lua.LNumber(e.machine.Bus().Peek8(addr)))
	return 1
}

func (e *Engine) poke(L *lua.LState) int {
	addr := checkAddr(L, 1)
	v := L.CheckInt(2)
	if v < 0 || v > 0xff {
		L.ArgError(2, "byte out of range")
	}
	e.machine.Bus().Write8(addr, uint8(v))
	return 0
}

func (e *Engine) regs(L *lua.LState) int {
	c := e.machine.CPU()
	r := c.Registers()
	t := L.NewTable()
	t.RawSetString("a", lua.LNumber(r.A))
	t.RawSetString("x", lua.LNumber(r.X))
	t.RawSetString("y", lua.LNumber(r.Y))
	t.RawSetString("sp", lua.LNumber(r.SP))
	t.RawSetString("pc", lua.LNumber(r.PC))
	t.RawSetString("p", lua.LNumber(r.P))
	t.RawSetString("flags", lua.LString(r.P.String()))
	t.RawSetString("cycles", lua.LNumber(c.Cycles()))
	L.Push(t)
	return 1
}

func (e *Engine) trace(L *lua.LState) int {
	L.Push(lua.LString(e.machine.CPU().Trace()))
	return 1
}

func (e *Engine) nmi(L *lua.LState) int {
	e.machine.CPU().RequestNMI()
	return 0
}

func (e *Engine) irq(L *lua.LState) int {
	e.machine.CPU().SetIRQ(L.CheckBool(1))
	return 0
}

func (e *Engine) reset(L *lua.LState) int {
	e.machine.Reset()
	return 0
}

func (e *Engine) log(L *lua.LState) int {
	fmt.Fprintln(e.out, L.CheckString(1))
	return 0
}
