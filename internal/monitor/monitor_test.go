package monitor

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nevisdale/nescore/internal/cpu"
	"github.com/nevisdale/nescore/internal/nes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// program counts X up forever:
//
//	$0400 INX
//	$0401 JMP $0400
var program = []byte{0xe8, 0x4c, 0x00, 0x04}

func newTestMonitor(t *testing.T) (*Monitor, *nes.Flat, *bytes.Buffer) {
	t.Helper()
	cfg := cpu.DefaultConfig()
	cfg.Logger = log.New(io.Discard, "", 0)
	f := nes.NewFlat(cfg)
	f.Load(0x0400, program)
	f.SetResetVector(0x0400)
	f.Reset()

	var out bytes.Buffer
	return New(f, &out), f, &out
}

func Test_Lookup(t *testing.T) {
	m, _, _ := newTestMonitor(t)

	tests := []struct {
		in   string
		name string
		err  error
	}{
		{"step", "step", nil},
		{"s", "step", nil},
		{"dis", "disasm", nil},
		{"DIA", "diag", nil},
		{"?", "help", nil},
		{"d", "", ErrAmbiguousCommand},
		{"r", "", ErrAmbiguousCommand},
		{"xyzzy", "", ErrUnknownCommand},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := m.lookup(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.name)
		})
	}
}

func Test_Step(t *testing.T) {
	m, f, out := newTestMonitor(t)

	require.NoError(t, m.Exec("step 3"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "0400  E8"))
	assert.True(t, strings.HasPrefix(lines[1], "0401  4C 00 04"))
	assert.Equal(t, uint8(2), f.CPU().Registers().X)

	// an empty line repeats the step
	require.NoError(t, m.Exec(""))
	assert.Equal(t, uint16(0x0400), f.CPU().PC())
}

func Test_Breakpoint(t *testing.T) {
	m, f, out := newTestMonitor(t)

	require.NoError(t, m.Exec("break $0401"))
	assert.Equal(t, []uint16{0x0401}, m.Breakpoints())

	require.NoError(t, m.Exec("run"))
	assert.Contains(t, out.String(), "breakpoint at $0401 after 1 steps")
	assert.Equal(t, uint16(0x0401), f.CPU().PC())

	require.NoError(t, m.Exec("break 401"))
	assert.Empty(t, m.Breakpoints())

	out.Reset()
	require.NoError(t, m.Exec("run 2"))
	assert.Contains(t, out.String(), "ran 2 frames")
	assert.Equal(t, uint64(2), f.Frame())
}

func Test_MemAndPoke(t *testing.T) {
	m, f, out := newTestMonitor(t)

	require.NoError(t, m.Exec("poke 0x0200 48 49 ff"))
	assert.Equal(t, uint8(0xff), f.Bus().Read8(0x0202))

	require.NoError(t, m.Exec("mem $0200 4"))
	assert.Equal(t, "$0200: 48 49 FF 00"+strings.Repeat(" ", 36)+"  HI..\n", out.String())

	assert.ErrorIs(t, m.Exec("poke 0200"), ErrBadArgument)
	assert.ErrorIs(t, m.Exec("poke 0200 100"), ErrBadArgument)
	assert.ErrorIs(t, m.Exec("mem zz"), ErrBadArgument)
}

func Test_Disasm(t *testing.T) {
	m, _, out := newTestMonitor(t)
	require.NoError(t, m.Exec("break 0401"))
	out.Reset()

	require.NoError(t, m.Exec("disasm 0400 2"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "> $0400: E8        INX", lines[0])
	assert.Equal(t, "* $0401: 4C 00 04  JMP $0400", lines[1])
}

func Test_Interrupts(t *testing.T) {
	m, f, out := newTestMonitor(t)
	f.Bus().Write8(0xfffa, 0x00)
	f.Bus().Write8(0xfffb, 0x05)

	require.NoError(t, m.Exec("nmi"))
	require.NoError(t, m.Exec("step"))
	assert.Contains(t, out.String(), "-- nmi")
	assert.Equal(t, uint16(0x0500), f.CPU().PC())

	require.NoError(t, m.Exec("irq on"))
	assert.True(t, f.CPU().IRQLine())
	require.NoError(t, m.Exec("irq off"))
	assert.False(t, f.CPU().IRQLine())
	assert.ErrorIs(t, m.Exec("irq maybe"), ErrBadArgument)

	out.Reset()
	require.NoError(t, m.Exec("diag"))
	assert.Contains(t, out.String(), "nmis: 1")
}

func Test_ResetAndRegs(t *testing.T) {
	m, f, out := newTestMonitor(t)
	require.NoError(t, m.Exec("step 4"))

	out.Reset()
	require.NoError(t, m.Exec("reset"))
	assert.Equal(t, uint16(0x0400), f.CPU().PC())
	assert.Contains(t, out.String(), "PC:0400 A:00 X:00 Y:00 SP:FD P:24 [nvUbdIzc]")
	assert.Contains(t, out.String(), "state:reset")
}

func Test_Map(t *testing.T) {
	m, _, out := newTestMonitor(t)
	require.NoError(t, m.Exec("map"))
	assert.Equal(t, "$0000-$FFFF RAM\n", out.String())
}

func Test_Map_Console(t *testing.T) {
	// NROM-128: one PRG bank, no CHR-ROM, vertical mirroring
	image := make([]byte, 16+0x4000)
	copy(image, []byte{'N', 'E', 'S', 0x1a, 1, 0, 0x01})
	prg := image[16:]
	copy(prg, []byte{0x4c, 0x00, 0x80}) // JMP $8000
	prg[0x3ffc], prg[0x3ffd] = 0x00, 0x80

	cart, err := nes.NewCartFromBytes(image)
	require.NoError(t, err)
	cfg := cpu.DefaultConfig()
	cfg.Logger = log.New(io.Discard, "", 0)
	console, err := nes.NewConsole(cart, cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	m := New(console, &out)
	require.NoError(t, m.Exec("map"))
	assert.Contains(t, out.String(), "$0000-$1FFF RAM (mirror mask $07FF)\n")
	assert.Contains(t, out.String(), "$4020-$FFFF Cartridge\n")
	assert.Contains(t, out.String(), "cartridge: mapper 0, 1 x 16KB PRG, vertical mirroring\n")
}

func Test_Graph(t *testing.T) {
	m, _, _ := newTestMonitor(t)
	path := filepath.Join(t.TempDir(), "cpu.dot")

	require.NoError(t, m.Exec("graph "+path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
	assert.Contains(t, string(data), "Registers")
}

func Test_Run(t *testing.T) {
	m, f, out := newTestMonitor(t)

	in := strings.NewReader("step\nhelp\nbogus\nquit\nstep\n")
	require.NoError(t, m.Run(context.Background(), in))

	assert.True(t, m.Done())
	assert.Equal(t, uint16(0x0401), f.CPU().PC(), "nothing runs after quit")
	assert.Contains(t, out.String(), "graph <file>")
	assert.Contains(t, out.String(), "error: monitor: unknown command: bogus")
}

func Test_Run_Canceled(t *testing.T) {
	m, _, _ := newTestMonitor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Run(ctx, strings.NewReader("step\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
