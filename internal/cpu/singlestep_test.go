package cpu

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_CPU_SingleStepTest runs the per-opcode JSON suites of the
// SingleStepTests/65x02 "nes6502" set when SINGLE_STEP_TEST_DIR points at them.
func Test_CPU_SingleStepTest(t *testing.T) {
	t.Parallel()

	type cpuState struct {
		PC uint16 `json:"pc"`
		S  uint8  `json:"s"`
		A  uint8  `json:"a"`
		X  uint8  `json:"x"`
		Y  uint8  `json:"y"`
		P  uint8  `json:"p"`

		// slice of elements where
		// element[0] is address
		// element[1] is value
		RAM [][]uint16 `json:"ram"`
	}

	type testInstance struct {
		Name    string   `json:"name"`
		Initial cpuState `json:"initial"`
		Final   cpuState `json:"final"`

		// slice of elements where
		// element[0] is address
		// element[1] is value
		// element[2] is operation (read/write)
		Cycles [][]any `json:"cycles"`
	}

	dir := os.Getenv("SINGLE_STEP_TEST_DIR")
	if dir == "" {
		t.Skip("skipping test because SINGLE_STEP_TEST_DIR is not set")
		return
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Logger = quietLogger

	mem := newCheckedMem(t)
	doTest := func(t *testing.T, test testInstance) {
		mem.reset()
		for _, addrVal := range test.Initial.RAM {
			mem.data[addrVal[0]] = uint8(addrVal[1])
		}
		for _, cyc := range test.Cycles {
			if cyc[2].(string) != "write" {
				continue
			}
			mem.allow(uint16(cyc[0].(float64)), uint8(cyc[1].(float64)))
		}

		cpu := New(mem, cfg)
		cpu.SetRegisters(Registers{
			A:  test.Initial.A,
			X:  test.Initial.X,
			Y:  test.Initial.Y,
			SP: test.Initial.S,
			PC: test.Initial.PC,
			P:  Status(test.Initial.P),
		})

		cycles := cpu.Step()

		regs := cpu.Registers()
		require.Equalf(t, test.Final.PC, regs.PC, "%s: PC", test.Name)
		require.Equalf(t, test.Final.S, regs.SP, "%s: S", test.Name)
		require.Equalf(t, test.Final.A, regs.A, "%s: A", test.Name)
		require.Equalf(t, test.Final.X, regs.X, "%s: X", test.Name)
		require.Equalf(t, test.Final.Y, regs.Y, "%s: Y", test.Name)
		// B and U do not exist in the register
		require.Equalf(t, test.Final.P|0x30, uint8(regs.P)|0x30, "%s: P", test.Name)
		require.Equalf(t, len(test.Cycles), cycles, "%s: cycles", test.Name)

		for _, addrVal := range test.Final.RAM {
			require.Equalf(t, uint8(addrVal[1]), mem.data[addrVal[0]], "%s: memory at %04X", test.Name, addrVal[0])
		}
	}

	for _, file := range files {
		opcode, err := strconv.ParseUint(filepath.Base(file.Name())[:2], 16, 8)
		if err != nil {
			t.Fatalf("failed to parse opcode from file name %s: %v", file.Name(), err)
		}

		t.Run(file.Name(), func(t *testing.T) {
			if !Emulated(uint8(opcode), cfg) {
				t.Skipf("skipping test for opcode %02X because it is not emulated", opcode)
				return
			}

			fileData, err := os.ReadFile(filepath.Join(dir, file.Name()))
			require.NoError(t, err)

			var tests []testInstance
			require.NoError(t, json.Unmarshal(fileData, &tests))
			for _, test := range tests {
				doTest(t, test)
			}
		})
	}
}

// checkedMem fails the test on any write the suite does not list for the instruction.
type checkedMem struct {
	t       *testing.T
	data    [0x10000]uint8
	allowed map[uint32]struct{}
}

func newCheckedMem(t *testing.T) *checkedMem {
	return &checkedMem{t: t, allowed: make(map[uint32]struct{})}
}

func (m *checkedMem) key(addr uint16, data uint8) uint32 {
	return uint32(addr) | uint32(data)<<16
}

func (m *checkedMem) allow(addr uint16, data uint8) {
	m.allowed[m.key(addr, data)] = struct{}{}
}

func (m *checkedMem) reset() {
	m.data = [0x10000]uint8{}
	clear(m.allowed)
}

func (m *checkedMem) Read8(addr uint16) uint8 {
	return m.data[addr]
}

func (m *checkedMem) Write8(addr uint16, data uint8) {
	if _, ok := m.allowed[m.key(addr, data)]; !ok {
		m.t.Fatalf("not allowed write to address %04X with value %02X", addr, data)
	}
	m.data[addr] = data
}
