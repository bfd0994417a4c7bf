package nes

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/nevisdale/nescore/internal/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nmiCounter is a cartridge program that enables the vblank NMI and spins.
// The NMI handler counts into $10.
func nmiCounter() *testROM {
	return newTestROM(1, 1).
		load(0x8000,
			0xa9, 0x80, // LDA #$80
			0x8d, 0x00, 0x20, // STA $2000
			0x4c, 0x05, 0x80, // JMP $8005
		).
		load(0x8100,
			0xe6, 0x10, // INC $10
			0x40, // RTI
		).
		vectors(0x8100, 0x8000, 0x8100)
}

func newTestConsole(t *testing.T, rom *testROM) *Console {
	t.Helper()
	cart, err := NewCartFromBytes(rom.bytes())
	require.NoError(t, err)
	c, err := NewConsole(cart, testConfig())
	require.NoError(t, err)
	return c
}

func Test_Console_Map(t *testing.T) {
	c := newTestConsole(t, nmiCounter())

	var names []string
	for _, r := range c.Bus().Regions() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"RAM", "PPU", "APU/IO", "Cartridge"}, names)
	assert.Equal(t, "PPU", c.Bus().RegionOf(0x3ffa).Name)
	assert.Equal(t, "Cartridge", c.Bus().RegionOf(0x4020).Name)

	t.Run("work RAM is mirrored", func(t *testing.T) {
		c.Bus().Write8(0x0801, 0x42)
		assert.Equal(t, uint8(0x42), c.Bus().Read8(0x0001))
		assert.Equal(t, uint8(0x42), c.Bus().Read8(0x1801))
	})

	t.Run("PPU registers are mirrored", func(t *testing.T) {
		c.Bus().Write8(0x3ff8+0x6, 0x20)
		c.Bus().Write8(0x2006, 0x00)
		c.Bus().Write8(0x2007, 0x99)
		assert.Equal(t, uint8(0x99), c.PPU().mem.Read8(0x2000))
	})

	t.Run("reset vector comes from the cartridge", func(t *testing.T) {
		assert.Equal(t, uint16(0x8000), c.CPU().PC())
	})
}

func Test_Console_NMIEveryFrame(t *testing.T) {
	c := newTestConsole(t, nmiCounter())

	cycles := c.RunFrame()
	assert.InDelta(t, cyclesPerFrame, cycles, 10)
	assert.Equal(t, uint8(1), c.Bus().Read8(0x10))
	assert.Equal(t, uint64(1), c.Frame())

	c.RunFrame()
	c.RunFrame()
	assert.Equal(t, uint8(3), c.Bus().Read8(0x10))
	assert.Equal(t, uint64(3), c.CPU().Diagnostics().NMIs)
	assert.Zero(t, c.CPU().Diagnostics().IllegalOpcodes)
}

func Test_Console_Reset(t *testing.T) {
	c := newTestConsole(t, nmiCounter())
	c.RunFrame()
	require.NotEqual(t, uint16(0x8000), c.CPU().PC())

	c.Reset()
	assert.Equal(t, uint16(0x8000), c.CPU().PC())
	assert.Equal(t, uint64(7), c.Cycles())
	line, dot := c.PPU().Position()
	assert.Zero(t, line)
	assert.Zero(t, dot)
}

func Test_Console_OAMDMA(t *testing.T) {
	rom := newTestROM(1, 1).
		load(0x8000,
			0xa9, 0x02, // LDA #$02
			0x8d, 0x14, 0x40, // STA $4014
			0xea, // NOP
		).
		vectors(0x8000, 0x8000, 0x8000)
	c := newTestConsole(t, rom)
	for i := 0; i < 0x100; i++ {
		c.Bus().Write8(0x0200+uint16(i), uint8(i))
	}

	c.Step()
	n := c.Step()
	assert.GreaterOrEqual(t, n, 4+oamDMACycles)
	assert.LessOrEqual(t, n, 4+oamDMACycles+1)
	assert.Equal(t, uint8(0x00), c.PPU().oam[0x00])
	assert.Equal(t, uint8(0xff), c.PPU().oam[0xff])

	assert.Equal(t, 2, c.Step(), "the stall is paid once")
}

func Test_Console_Controller(t *testing.T) {
	c := newTestConsole(t, nmiCounter())
	c.IO().SetButtons(ButtonA | ButtonStart | ButtonRight)

	c.Bus().Write8(0x4016, 1)
	c.Bus().Write8(0x4016, 0)

	var got []uint8
	for i := 0; i < 10; i++ {
		got = append(got, c.Bus().Read8(0x4016)&0x1)
	}
	assert.Equal(t, []uint8{1, 0, 0, 1, 0, 0, 0, 1, 1, 1}, got)
	assert.Equal(t, ButtonA|ButtonStart|ButtonRight, c.IO().Buttons())
}

func Test_Console_ControllerPeek(t *testing.T) {
	c := newTestConsole(t, nmiCounter())
	c.IO().SetButtons(ButtonB)

	// strobe high: the pad keeps reporting A, whatever was latched
	c.Bus().Write8(0x4016, 1)
	c.IO().SetButtons(ButtonA)
	assert.Equal(t, c.Bus().Read8(0x4016)&0x1, c.Bus().Peek8(0x4016))
	assert.Equal(t, uint8(1), c.Bus().Peek8(0x4016))

	c.IO().SetButtons(0)
	assert.Equal(t, uint8(0), c.Bus().Peek8(0x4016))

	c.IO().SetButtons(ButtonB)
	c.Bus().Write8(0x4016, 0)
	for i := 0; i < 3; i++ {
		peeked := c.Bus().Peek8(0x4016)
		assert.Equal(t, peeked, c.Bus().Peek8(0x4016), "peek does not shift")
		assert.Equal(t, peeked, c.Bus().Read8(0x4016)&0x1, "read %d", i)
	}
}

func Test_Flat(t *testing.T) {
	f := NewFlat(testConfig())
	f.Load(0x0400, []byte{
		0xe8,             // INX
		0x4c, 0x00, 0x04, // JMP $0400
	})
	f.SetResetVector(0x0400)
	f.Reset()
	assert.Equal(t, uint16(0x0400), f.CPU().PC())

	cycles := f.RunFrame()
	assert.GreaterOrEqual(t, cycles, cyclesPerFrame-7)
	assert.Equal(t, uint64(1), f.Frame())
	assert.NotZero(t, f.CPU().Registers().X)
}

func Test_Flat_LoadImage(t *testing.T) {
	t.Run("image without vectors starts at its origin", func(t *testing.T) {
		f := NewFlat(testConfig())
		f.LoadImage(0x8000, []byte{0xe8, 0x4c, 0x00, 0x80})
		f.Reset()
		assert.Equal(t, uint16(0x8000), f.CPU().PC())
	})

	t.Run("image with vectors keeps them", func(t *testing.T) {
		image := make([]byte, 0x8000)
		image[0x7ffc], image[0x7ffd] = 0x34, 0x92
		f := NewFlat(testConfig())
		f.LoadImage(0x8000, image)
		f.Reset()
		assert.Equal(t, uint16(0x9234), f.CPU().PC())
	})

	t.Run("image ending before the vectors", func(t *testing.T) {
		f := NewFlat(testConfig())
		f.LoadImage(0xc000, make([]byte, 0x3ffd))
		f.Reset()
		assert.Equal(t, uint16(0xc000), f.CPU().PC())
	})
}

func Test_Console_Nestest(t *testing.T) {
	nestestBinFile := os.Getenv("NESTEST_BIN")
	nestestLogFile := os.Getenv("NESTEST_LOG")
	if nestestBinFile == "" || nestestLogFile == "" {
		t.Skip("skipping test because NESTEST_BIN or NESTEST_LOG is not set")
		return
	}

	cart, err := NewCartFromFile(nestestBinFile)
	require.NoError(t, err, "Failed to load nestest rom")

	console, err := NewConsole(cart, testConfig())
	require.NoError(t, err)
	// nestest (all tests) starts at 0xC000
	console.CPU().SetPC(0xC000)

	re := regexp.MustCompile(`([A-F0-9]{4}).+A:([A-F0-9]{2}) X:([A-F0-9]{2}) Y:([A-F0-9]{2}) P:([A-F0-9]{2}) SP:([A-F0-9]{2}).+CYC:(\d+)`)
	type state struct {
		pc uint16
		// before executing the instruction
		a   uint8
		x   uint8
		y   uint8
		sp  uint8
		p   uint8
		cyc uint64
	}

	parseHex := func(s string, bits int) uint64 {
		v, err := strconv.ParseUint(s, 16, bits)
		require.NoError(t, err)
		return v
	}

	parseLogLine := func(s string) state {
		match := re.FindStringSubmatch(s)
		require.NotNil(t, match, "unexpected log line %q", s)

		// from 1 to skip full match
		cyc, err := strconv.ParseUint(match[7], 10, 64)
		require.NoError(t, err)
		return state{
			pc:  uint16(parseHex(match[1], 16)),
			a:   uint8(parseHex(match[2], 8)),
			x:   uint8(parseHex(match[3], 8)),
			y:   uint8(parseHex(match[4], 8)),
			p:   uint8(parseHex(match[5], 8)),
			sp:  uint8(parseHex(match[6], 8)),
			cyc: cyc,
		}
	}

	logFileData, err := os.ReadFile(nestestLogFile)
	require.NoError(t, err, "Failed to open nestest log file")

	var expectedStates []state
	for _, line := range strings.Split(string(logFileData), "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		expectedStates = append(expectedStates, parseLogLine(line))
	}

	c := console.CPU()
	for i, expectedState := range expectedStates {
		regs := c.Registers()
		actualState := state{
			pc:  regs.PC,
			a:   regs.A,
			x:   regs.X,
			y:   regs.Y,
			sp:  regs.SP,
			p:   uint8(regs.P),
			cyc: c.Cycles(),
		}
		if !assert.Equal(t, expectedState, actualState, "failed at instruction %s:%d\n%s", nestestLogFile, i, c.Trace()) {
			return
		}
		console.Step()
	}

	// nestest leaves its result codes in $02 and $03
	assert.Zero(t, console.Bus().Read8(0x02), "official opcode failure code")
	assert.Zero(t, console.Bus().Read8(0x03), "unofficial opcode failure code")
	assert.Equal(t, cpu.Running, c.State())
}
