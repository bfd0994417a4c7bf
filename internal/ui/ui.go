package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/nevisdale/nescore/internal/cpu"
	"github.com/nevisdale/nescore/internal/nes"
)

// P - pause
// S - one step while paused
// N - signal NMI
// I - toggle the IRQ line
// R - reset
//
// The pad in port 1 is on the arrows, X (A), Z (B), Enter (Start)
// and Right Shift (Select) when the machine is a console.

type UI struct {
	machine  nes.Machine
	runFrame func() error
	paused   bool
}

type Option func(*UI)

// WithFrameFunc replaces the per-tick frame runner, e.g. by a script engine.
func WithFrameFunc(fn func() error) Option {
	return func(ui *UI) {
		ui.runFrame = fn
	}
}

func New(machine nes.Machine, opts ...Option) *UI {
	ui := &UI{machine: machine}
	ui.runFrame = func() error {
		machine.RunFrame()
		return nil
	}
	for _, opt := range opts {
		opt(ui)
	}
	return ui
}

var padKeys = []struct {
	key    ebiten.Key
	button uint8
}{
	{ebiten.KeyX, nes.ButtonA},
	{ebiten.KeyZ, nes.ButtonB},
	{ebiten.KeyShiftRight, nes.ButtonSelect},
	{ebiten.KeyEnter, nes.ButtonStart},
	{ebiten.KeyArrowUp, nes.ButtonUp},
	{ebiten.KeyArrowDown, nes.ButtonDown},
	{ebiten.KeyArrowLeft, nes.ButtonLeft},
	{ebiten.KeyArrowRight, nes.ButtonRight},
}

func (ui *UI) Update() error {
	c := ui.machine.CPU()

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		ui.paused = !ui.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		c.RequestNMI()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		c.SetIRQ(!c.IRQLine())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		ui.machine.Reset()
	}

	if console, ok := ui.machine.(*nes.Console); ok {
		var buttons uint8
		for _, k := range padKeys {
			if ebiten.IsKeyPressed(k.key) {
				buttons |= k.button
			}
		}
		console.IO().SetButtons(buttons)
	}

	if ui.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyS) {
			ui.machine.Step()
		}
		return nil
	}
	return ui.runFrame()
}

func (ui *UI) Draw(screen *ebiten.Image) {
	c := ui.machine.CPU()
	regs := c.Registers()
	diag := c.Diagnostics()

	var infoStr strings.Builder
	fmt.Fprintf(&infoStr, " FPS: %0.0f  FRAME: %d\n", ebiten.ActualFPS(), ui.machine.Frame())
	if ui.paused {
		infoStr.WriteString(" PAUSED\n")
	} else {
		infoStr.WriteString(" RUNNING\n")
	}
	fmt.Fprintf(&infoStr, " STATUS: %s  %s\n", regs.P, c.State())
	fmt.Fprintf(&infoStr, " PC: %04X  CYC: %d\n", regs.PC, c.Cycles())
	fmt.Fprintf(&infoStr, " A: $%02X [%03d]", regs.A, regs.A)
	fmt.Fprintf(&infoStr, " X: $%02X [%03d]", regs.X, regs.X)
	fmt.Fprintf(&infoStr, " Y: $%02X [%03d]\n", regs.Y, regs.Y)
	fmt.Fprintf(&infoStr, " SP: $%02X  IRQ: %t  NMI PENDING: %d\n", regs.SP, c.IRQLine(), c.NMIPending())
	fmt.Fprintf(&infoStr, " NMIS: %d  IRQS: %d  ILLEGAL: %d\n", diag.NMIs, diag.IRQs, diag.IllegalOpcodes)
	if console, ok := ui.machine.(*nes.Console); ok {
		fmt.Fprintf(&infoStr, " PAD: %08b\n", console.IO().Buttons())
	}
	infoStr.WriteString("\n")

	for i, l := range cpu.DisassembleN(ui.machine.Bus(), regs.PC, 12) {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		infoStr.WriteString(marker + l.String() + "\n")
	}

	infoStr.WriteString("\n ZERO PAGE\n")
	b := ui.machine.Bus()
	for row := uint16(0); row < 0x100; row += 0x10 {
		fmt.Fprintf(&infoStr, " %02X:", row)
		for i := uint16(0); i < 0x10; i++ {
			fmt.Fprintf(&infoStr, " %02X", b.Peek8(row+i))
		}
		infoStr.WriteString("\n")
	}
	infoStr.WriteString("\n P PAUSE  S STEP  N NMI  I IRQ  R RESET\n")

	vector.DrawFilledRect(screen, 0, 0, screenWidth, screenHeight, color.RGBA{50, 50, 50, 255}, false)
	ebitenutil.DebugPrintAt(screen, infoStr.String(), 0, 0)
}

const (
	screenWidth  = 400
	screenHeight = 480
	screenScale  = 2
)

func (ui *UI) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func RunUI(ui *UI) error {
	ebiten.SetWindowTitle("nescore")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth*screenScale, screenHeight*screenScale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(ui)
}
