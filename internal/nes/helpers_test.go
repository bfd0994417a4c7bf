package nes

import (
	"bytes"
	"io"
	"log"

	"github.com/nevisdale/nescore/internal/cpu"
)

// testROM builds iNES images for NROM boards.
type testROM struct {
	flags6  uint8
	flags7  uint8
	trainer bool
	prg     []byte
	chr     []byte
}

func newTestROM(prgBanks, chrBanks int) *testROM {
	return &testROM{
		prg: make([]byte, prgBanks*prgBankSizeBytes),
		chr: make([]byte, chrBanks*chrBankSizeBytes),
	}
}

// load writes data at a CPU address in $8000-$FFFF, mirrored into the PRG size.
func (r *testROM) load(addr uint16, data ...byte) *testROM {
	for i, v := range data {
		r.prg[int(addr-0x8000+uint16(i))%len(r.prg)] = v
	}
	return r
}

func (r *testROM) vectors(nmi, reset, irq uint16) *testROM {
	return r.load(0xfffa, uint8(nmi), uint8(nmi>>8), uint8(reset), uint8(reset>>8), uint8(irq), uint8(irq>>8))
}

func (r *testROM) bytes() []byte {
	var buf bytes.Buffer
	flags6 := r.flags6
	if r.trainer {
		flags6 |= 0x4
	}
	buf.Write([]byte{'N', 'E', 'S', 0x1a, uint8(len(r.prg) / prgBankSizeBytes), uint8(len(r.chr) / chrBankSizeBytes), flags6, r.flags7})
	buf.Write(make([]byte, 8))
	if r.trainer {
		buf.Write(bytes.Repeat([]byte{0xee}, trainerSizeBytes))
	}
	buf.Write(r.prg)
	buf.Write(r.chr)
	return buf.Bytes()
}

func testConfig() cpu.Config {
	cfg := cpu.DefaultConfig()
	cfg.Logger = log.New(io.Discard, "", 0)
	return cfg
}
