package cpu

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/mock"
)

// testMem is a flat 64KB memory that counts reads and can run a hook on a
// read, which is how devices raise interrupt lines in the middle of an instruction.
type testMem struct {
	data   [0x10000]uint8
	reads  map[uint16]int
	onRead map[uint16]func()
}

func newTestMem() *testMem {
	return &testMem{
		reads:  make(map[uint16]int),
		onRead: make(map[uint16]func()),
	}
}

func (m *testMem) Read8(addr uint16) uint8 {
	m.reads[addr]++
	if fn, ok := m.onRead[addr]; ok {
		fn()
	}
	return m.data[addr]
}

func (m *testMem) Write8(addr uint16, data uint8) {
	m.data[addr] = data
}

func (m *testMem) load(addr uint16, data ...uint8) {
	for i, v := range data {
		m.data[addr+uint16(i)] = v
	}
}

func (m *testMem) setVector(vector, addr uint16) {
	m.data[vector] = uint8(addr)
	m.data[vector+1] = uint8(addr >> 8)
}

var quietLogger = log.New(io.Discard, "", 0)

// newTestCPU loads program at $8000, points the reset vector at it and resets.
func newTestCPU(t *testing.T, cfg Config, program ...uint8) (*CPU, *testMem) {
	t.Helper()
	mem := newTestMem()
	mem.load(0x8000, program...)
	mem.setVector(vectorReset, 0x8000)
	mem.setVector(vectorIRQ, 0x9000)
	mem.setVector(vectorNMI, 0xa000)
	if cfg.Logger == nil {
		cfg.Logger = quietLogger
	}
	c := New(mem, cfg)
	c.Reset()
	return c, mem
}

// stepN runs n steps and returns the cycles they took.
func stepN(c *CPU, n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += c.Step()
	}
	return total
}

type memMock struct {
	mock.Mock
}

func (m *memMock) Read8(addr uint16) uint8 {
	args := m.Called(addr)
	return args.Get(0).(uint8)
}

func (m *memMock) Write8(addr uint16, data uint8) {
	m.Called(addr, data)
}
