package cpu

type op uint8

const (
	opADC op = iota + 1
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA

	// undocumented, emulated
	opALR
	opANC
	opARR
	opAXS
	opDCP
	opISC
	opLAS
	opLAX
	opRLA
	opRRA
	opSAX
	opSLO
	opSRE

	// undocumented, unstable or locking the CPU: diagnostic no-op
	opAHX
	opJAM
	opLXA
	opSHX
	opSHY
	opTAS
	opXAA

	opCount
)

// operation describes what an op does, independent of its addressing mode.
// reads tells the resolver to load the operand value before fn runs.
type operation struct {
	name  string
	fn    func(*CPU)
	reads bool
}

var ops = [opCount]operation{
	opADC: {"ADC", (*CPU).adc, true},
	opAND: {"AND", (*CPU).and, true},
	opASL: {"ASL", (*CPU).asl, true},
	opBCC: {"BCC", (*CPU).bcc, false},
	opBCS: {"BCS", (*CPU).bcs, false},
	opBEQ: {"BEQ", (*CPU).beq, false},
	opBIT: {"BIT", (*CPU).bit, true},
	opBMI: {"BMI", (*CPU).bmi, false},
	opBNE: {"BNE", (*CPU).bne, false},
	opBPL: {"BPL", (*CPU).bpl, false},
	opBRK: {"BRK", (*CPU).brk, false},
	opBVC: {"BVC", (*CPU).bvc, false},
	opBVS: {"BVS", (*CPU).bvs, false},
	opCLC: {"CLC", (*CPU).clc, false},
	opCLD: {"CLD", (*CPU).cld, false},
	opCLI: {"CLI", (*CPU).cli, false},
	opCLV: {"CLV", (*CPU).clv, false},
	opCMP: {"CMP", (*CPU).cmp, true},
	opCPX: {"CPX", (*CPU).cpx, true},
	opCPY: {"CPY", (*CPU).cpy, true},
	opDEC: {"DEC", (*CPU).dec, true},
	opDEX: {"DEX", (*CPU).dex, false},
	opDEY: {"DEY", (*CPU).dey, false},
	opEOR: {"EOR", (*CPU).eor, true},
	opINC: {"INC", (*CPU).inc, true},
	opINX: {"INX", (*CPU).inx, false},
	opINY: {"INY", (*CPU).iny, false},
	opJMP: {"JMP", (*CPU).jmp, false},
	opJSR: {"JSR", (*CPU).jsr, false},
	opLDA: {"LDA", (*CPU).lda, true},
	opLDX: {"LDX", (*CPU).ldx, true},
	opLDY: {"LDY", (*CPU).ldy, true},
	opLSR: {"LSR", (*CPU).lsr, true},
	opNOP: {"NOP", (*CPU).nop, true},
	opORA: {"ORA", (*CPU).ora, true},
	opPHA: {"PHA", (*CPU).pha, false},
	opPHP: {"PHP", (*CPU).php, false},
	opPLA: {"PLA", (*CPU).pla, false},
	opPLP: {"PLP", (*CPU).plp, false},
	opROL: {"ROL", (*CPU).rol, true},
	opROR: {"ROR", (*CPU).ror, true},
	opRTI: {"RTI", (*CPU).rti, false},
	opRTS: {"RTS", (*CPU).rts, false},
	opSBC: {"SBC", (*CPU).sbc, true},
	opSEC: {"SEC", (*CPU).sec, false},
	opSED: {"SED", (*CPU).sed, false},
	opSEI: {"SEI", (*CPU).sei, false},
	opSTA: {"STA", (*CPU).sta, false},
	opSTX: {"STX", (*CPU).stx, false},
	opSTY: {"STY", (*CPU).sty, false},
	opTAX: {"TAX", (*CPU).tax, false},
	opTAY: {"TAY", (*CPU).tay, false},
	opTSX: {"TSX", (*CPU).tsx, false},
	opTXA: {"TXA", (*CPU).txa, false},
	opTXS: {"TXS", (*CPU).txs, false},
	opTYA: {"TYA", (*CPU).tya, false},

	opALR: {"ALR", (*CPU).alr, true},
	opANC: {"ANC", (*CPU).anc, true},
	opARR: {"ARR", (*CPU).arr, true},
	opAXS: {"AXS", (*CPU).axs, true},
	opDCP: {"DCP", (*CPU).dcp, true},
	opISC: {"ISC", (*CPU).isc, true},
	opLAS: {"LAS", (*CPU).las, true},
	opLAX: {"LAX", (*CPU).lax, true},
	opRLA: {"RLA", (*CPU).rla, true},
	opRRA: {"RRA", (*CPU).rra, true},
	opSAX: {"SAX", (*CPU).sax, false},
	opSLO: {"SLO", (*CPU).slo, true},
	opSRE: {"SRE", (*CPU).sre, true},

	opAHX: {name: "AHX"},
	opJAM: {name: "JAM"},
	opLXA: {name: "LXA"},
	opSHX: {name: "SHX"},
	opSHY: {name: "SHY"},
	opTAS: {name: "TAS"},
	opXAA: {name: "XAA"},
}

func (o op) String() string {
	if o == 0 || o >= opCount {
		return "???"
	}
	return ops[o].name
}

// instr is the decoded form of one opcode.
type instr struct {
	op     op
	mode   addrMode
	cycles uint8 // base cycles
	page   bool  // +1 cycle when indexing crosses a page
	legal  bool  // one of the 151 documented opcodes
}

const (
	imm  = addrModeIMM
	zp   = addrModeZP
	zpx  = addrModeZPX
	zpy  = addrModeZPY
	abs  = addrModeABS
	absx = addrModeABSX
	absy = addrModeABSY
	ind  = addrModeIND
	indx = addrModeINDX
	indy = addrModeINDY
	rel  = addrModeREL
	acc  = addrModeACC
	imp  = addrModeIMP
)

// instrs maps every opcode to its instruction. Unstable opcodes are listed
// as implied 2-cycle entries because they are executed as no-ops.
var instrs = [0x100]instr{
	0x00: {opBRK, imp, 7, false, true},
	0x01: {opORA, indx, 6, false, true},
	0x02: {opJAM, imp, 2, false, false},
	0x03: {opSLO, indx, 8, false, false},
	0x04: {opNOP, zp, 3, false, false},
	0x05: {opORA, zp, 3, false, true},
	0x06: {opASL, zp, 5, false, true},
	0x07: {opSLO, zp, 5, false, false},
	0x08: {opPHP, imp, 3, false, true},
	0x09: {opORA, imm, 2, false, true},
	0x0a: {opASL, acc, 2, false, true},
	0x0b: {opANC, imm, 2, false, false},
	0x0c: {opNOP, abs, 4, false, false},
	0x0d: {opORA, abs, 4, false, true},
	0x0e: {opASL, abs, 6, false, true},
	0x0f: {opSLO, abs, 6, false, false},

	0x10: {opBPL, rel, 2, false, true},
	0x11: {opORA, indy, 5, true, true},
	0x12: {opJAM, imp, 2, false, false},
	0x13: {opSLO, indy, 8, false, false},
	0x14: {opNOP, zpx, 4, false, false},
	0x15: {opORA, zpx, 4, false, true},
	0x16: {opASL, zpx, 6, false, true},
	0x17: {opSLO, zpx, 6, false, false},
	0x18: {opCLC, imp, 2, false, true},
	0x19: {opORA, absy, 4, true, true},
	0x1a: {opNOP, imp, 2, false, false},
	0x1b: {opSLO, absy, 7, false, false},
	0x1c: {opNOP, absx, 4, true, false},
	0x1d: {opORA, absx, 4, true, true},
	0x1e: {opASL, absx, 7, false, true},
	0x1f: {opSLO, absx, 7, false, false},

	0x20: {opJSR, abs, 6, false, true},
	0x21: {opAND, indx, 6, false, true},
	0x22: {opJAM, imp, 2, false, false},
	0x23: {opRLA, indx, 8, false, false},
	0x24: {opBIT, zp, 3, false, true},
	0x25: {opAND, zp, 3, false, true},
	0x26: {opROL, zp, 5, false, true},
	0x27: {opRLA, zp, 5, false, false},
	0x28: {opPLP, imp, 4, false, true},
	0x29: {opAND, imm, 2, false, true},
	0x2a: {opROL, acc, 2, false, true},
	0x2b: {opANC, imm, 2, false, false},
	0x2c: {opBIT, abs, 4, false, true},
	0x2d: {opAND, abs, 4, false, true},
	0x2e: {opROL, abs, 6, false, true},
	0x2f: {opRLA, abs, 6, false, false},

	0x30: {opBMI, rel, 2, false, true},
	0x31: {opAND, indy, 5, true, true},
	0x32: {opJAM, imp, 2, false, false},
	0x33: {opRLA, indy, 8, false, false},
	0x34: {opNOP, zpx, 4, false, false},
	0x35: {opAND, zpx, 4, false, true},
	0x36: {opROL, zpx, 6, false, true},
	0x37: {opRLA, zpx, 6, false, false},
	0x38: {opSEC, imp, 2, false, true},
	0x39: {opAND, absy, 4, true, true},
	0x3a: {opNOP, imp, 2, false, false},
	0x3b: {opRLA, absy, 7, false, false},
	0x3c: {opNOP, absx, 4, true, false},
	0x3d: {opAND, absx, 4, true, true},
	0x3e: {opROL, absx, 7, false, true},
	0x3f: {opRLA, absx, 7, false, false},

	0x40: {opRTI, imp, 6, false, true},
	0x41: {opEOR, indx, 6, false, true},
	0x42: {opJAM, imp, 2, false, false},
	0x43: {opSRE, indx, 8, false, false},
	0x44: {opNOP, zp, 3, false, false},
	0x45: {opEOR, zp, 3, false, true},
	0x46: {opLSR, zp, 5, false, true},
	0x47: {opSRE, zp, 5, false, false},
	0x48: {opPHA, imp, 3, false, true},
	0x49: {opEOR, imm, 2, false, true},
	0x4a: {opLSR, acc, 2, false, true},
	0x4b: {opALR, imm, 2, false, false},
	0x4c: {opJMP, abs, 3, false, true},
	0x4d: {opEOR, abs, 4, false, true},
	0x4e: {opLSR, abs, 6, false, true},
	0x4f: {opSRE, abs, 6, false, false},

	0x50: {opBVC, rel, 2, false, true},
	0x51: {opEOR, indy, 5, true, true},
	0x52: {opJAM, imp, 2, false, false},
	0x53: {opSRE, indy, 8, false, false},
	0x54: {opNOP, zpx, 4, false, false},
	0x55: {opEOR, zpx, 4, false, true},
	0x56: {opLSR, zpx, 6, false, true},
	0x57: {opSRE, zpx, 6, false, false},
	0x58: {opCLI, imp, 2, false, true},
	0x59: {opEOR, absy, 4, true, true},
	0x5a: {opNOP, imp, 2, false, false},
	0x5b: {opSRE, absy, 7, false, false},
	0x5c: {opNOP, absx, 4, true, false},
	0x5d: {opEOR, absx, 4, true, true},
	0x5e: {opLSR, absx, 7, false, true},
	0x5f: {opSRE, absx, 7, false, false},

	0x60: {opRTS, imp, 6, false, true},
	0x61: {opADC, indx, 6, false, true},
	0x62: {opJAM, imp, 2, false, false},
	0x63: {opRRA, indx, 8, false, false},
	0x64: {opNOP, zp, 3, false, false},
	0x65: {opADC, zp, 3, false, true},
	0x66: {opROR, zp, 5, false, true},
	0x67: {opRRA, zp, 5, false, false},
	0x68: {opPLA, imp, 4, false, true},
	0x69: {opADC, imm, 2, false, true},
	0x6a: {opROR, acc, 2, false, true},
	0x6b: {opARR, imm, 2, false, false},
	0x6c: {opJMP, ind, 5, false, true},
	0x6d: {opADC, abs, 4, false, true},
	0x6e: {opROR, abs, 6, false, true},
	0x6f: {opRRA, abs, 6, false, false},

	0x70: {opBVS, rel, 2, false, true},
	0x71: {opADC, indy, 5, true, true},
	0x72: {opJAM, imp, 2, false, false},
	0x73: {opRRA, indy, 8, false, false},
	0x74: {opNOP, zpx, 4, false, false},
	0x75: {opADC, zpx, 4, false, true},
	0x76: {opROR, zpx, 6, false, true},
	0x77: {opRRA, zpx, 6, false, false},
	0x78: {opSEI, imp, 2, false, true},
	0x79: {opADC, absy, 4, true, true},
	0x7a: {opNOP, imp, 2, false, false},
	0x7b: {opRRA, absy, 7, false, false},
	0x7c: {opNOP, absx, 4, true, false},
	0x7d: {opADC, absx, 4, true, true},
	0x7e: {opROR, absx, 7, false, true},
	0x7f: {opRRA, absx, 7, false, false},

	0x80: {opNOP, imm, 2, false, false},
	0x81: {opSTA, indx, 6, false, true},
	0x82: {opNOP, imm, 2, false, false},
	0x83: {opSAX, indx, 6, false, false},
	0x84: {opSTY, zp, 3, false, true},
	0x85: {opSTA, zp, 3, false, true},
	0x86: {opSTX, zp, 3, false, true},
	0x87: {opSAX, zp, 3, false, false},
	0x88: {opDEY, imp, 2, false, true},
	0x89: {opNOP, imm, 2, false, false},
	0x8a: {opTXA, imp, 2, false, true},
	0x8b: {opXAA, imp, 2, false, false},
	0x8c: {opSTY, abs, 4, false, true},
	0x8d: {opSTA, abs, 4, false, true},
	0x8e: {opSTX, abs, 4, false, true},
	0x8f: {opSAX, abs, 4, false, false},

	0x90: {opBCC, rel, 2, false, true},
	0x91: {opSTA, indy, 6, false, true},
	0x92: {opJAM, imp, 2, false, false},
	0x93: {opAHX, imp, 2, false, false},
	0x94: {opSTY, zpx, 4, false, true},
	0x95: {opSTA, zpx, 4, false, true},
	0x96: {opSTX, zpy, 4, false, true},
	0x97: {opSAX, zpy, 4, false, false},
	0x98: {opTYA, imp, 2, false, true},
	0x99: {opSTA, absy, 5, false, true},
	0x9a: {opTXS, imp, 2, false, true},
	0x9b: {opTAS, imp, 2, false, false},
	0x9c: {opSHY, imp, 2, false, false},
	0x9d: {opSTA, absx, 5, false, true},
	0x9e: {opSHX, imp, 2, false, false},
	0x9f: {opAHX, imp, 2, false, false},

	0xa0: {opLDY, imm, 2, false, true},
	0xa1: {opLDA, indx, 6, false, true},
	0xa2: {opLDX, imm, 2, false, true},
	0xa3: {opLAX, indx, 6, false, false},
	0xa4: {opLDY, zp, 3, false, true},
	0xa5: {opLDA, zp, 3, false, true},
	0xa6: {opLDX, zp, 3, false, true},
	0xa7: {opLAX, zp, 3, false, false},
	0xa8: {opTAY, imp, 2, false, true},
	0xa9: {opLDA, imm, 2, false, true},
	0xaa: {opTAX, imp, 2, false, true},
	0xab: {opLXA, imp, 2, false, false},
	0xac: {opLDY, abs, 4, false, true},
	0xad: {opLDA, abs, 4, false, true},
	0xae: {opLDX, abs, 4, false, true},
	0xaf: {opLAX, abs, 4, false, false},

	0xb0: {opBCS, rel, 2, false, true},
	0xb1: {opLDA, indy, 5, true, true},
	0xb2: {opJAM, imp, 2, false, false},
	0xb3: {opLAX, indy, 5, true, false},
	0xb4: {opLDY, zpx, 4, false, true},
	0xb5: {opLDA, zpx, 4, false, true},
	0xb6: {opLDX, zpy, 4, false, true},
	0xb7: {opLAX, zpy, 4, false, false},
	0xb8: {opCLV, imp, 2, false, true},
	0xb9: {opLDA, absy, 4, true, true},
	0xba: {opTSX, imp, 2, false, true},
	0xbb: {opLAS, absy, 4, true, false},
	0xbc: {opLDY, absx, 4, true, true},
	0xbd: {opLDA, absx, 4, true, true},
	0xbe: {opLDX, absy, 4, true, true},
	0xbf: {opLAX, absy, 4, true, false},

	0xc0: {opCPY, imm, 2, false, true},
	0xc1: {opCMP, indx, 6, false, true},
	0xc2: {opNOP, imm, 2, false, false},
	0xc3: {opDCP, indx, 8, false, false},
	0xc4: {opCPY, zp, 3, false, true},
	0xc5: {opCMP, zp, 3, false, true},
	0xc6: {opDEC, zp, 5, false, true},
	0xc7: {opDCP, zp, 5, false, false},
	0xc8: {opINY, imp, 2, false, true},
	0xc9: {opCMP, imm, 2, false, true},
	0xca: {opDEX, imp, 2, false, true},
	0xcb: {opAXS, imm, 2, false, false},
	0xcc: {opCPY, abs, 4, false, true},
	0xcd: {opCMP, abs, 4, false, true},
	0xce: {opDEC, abs, 6, false, true},
	0xcf: {opDCP, abs, 6, false, false},

	0xd0: {opBNE, rel, 2, false, true},
	0xd1: {opCMP, indy, 5, true, true},
	0xd2: {opJAM, imp, 2, false, false},
	0xd3: {opDCP, indy, 8, false, false},
	0xd4: {opNOP, zpx, 4, false, false},
	0xd5: {opCMP, zpx, 4, false, true},
	0xd6: {opDEC, zpx, 6, false, true},
	0xd7: {opDCP, zpx, 6, false, false},
	0xd8: {opCLD, imp, 2, false, true},
	0xd9: {opCMP, absy, 4, true, true},
	0xda: {opNOP, imp, 2, false, false},
	0xdb: {opDCP, absy, 7, false, false},
	0xdc: {opNOP, absx, 4, true, false},
	0xdd: {opCMP, absx, 4, true, true},
	0xde: {opDEC, absx, 7, false, true},
	0xdf: {opDCP, absx, 7, false, false},

	0xe0: {opCPX, imm, 2, false, true},
	0xe1: {opSBC, indx, 6, false, true},
	0xe2: {opNOP, imm, 2, false, false},
	0xe3: {opISC, indx, 8, false, false},
	0xe4: {opCPX, zp, 3, false, true},
	0xe5: {opSBC, zp, 3, false, true},
	0xe6: {opINC, zp, 5, false, true},
	0xe7: {opISC, zp, 5, false, false},
	0xe8: {opINX, imp, 2, false, true},
	0xe9: {opSBC, imm, 2, false, true},
	0xea: {opNOP, imp, 2, false, true},
	0xeb: {opSBC, imm, 2, false, false},
	0xec: {opCPX, abs, 4, false, true},
	0xed: {opSBC, abs, 4, false, true},
	0xee: {opINC, abs, 6, false, true},
	0xef: {opISC, abs, 6, false, false},

	0xf0: {opBEQ, rel, 2, false, true},
	0xf1: {opSBC, indy, 5, true, true},
	0xf2: {opJAM, imp, 2, false, false},
	0xf3: {opISC, indy, 8, false, false},
	0xf4: {opNOP, zpx, 4, false, false},
	0xf5: {opSBC, zpx, 4, false, true},
	0xf6: {opINC, zpx, 6, false, true},
	0xf7: {opISC, zpx, 6, false, false},
	0xf8: {opSED, imp, 2, false, true},
	0xf9: {opSBC, absy, 4, true, true},
	0xfa: {opNOP, imp, 2, false, false},
	0xfb: {opISC, absy, 7, false, false},
	0xfc: {opNOP, absx, 4, true, false},
	0xfd: {opSBC, absx, 4, true, true},
	0xfe: {opINC, absx, 7, false, true},
	0xff: {opISC, absx, 7, false, false},
}

// Mnemonic returns the assembler name of opcode.
func Mnemonic(opcode uint8) string {
	return instrs[opcode].op.String()
}

// Legal reports whether opcode is one of the 151 documented opcodes.
func Legal(opcode uint8) bool {
	return instrs[opcode].legal
}

// Emulated reports whether opcode is executed, as opposed to being a
// diagnostic no-op, under cfg.
func Emulated(opcode uint8, cfg Config) bool {
	in := instrs[opcode]
	return ops[in.op].fn != nil && (in.legal || cfg.Unofficial)
}
