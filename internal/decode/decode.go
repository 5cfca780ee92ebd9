// Package decode turns a fetched opcode byte into an Instruction, a
// tagged union describing what the CPU must do without touching any
// machine state itself. decode and DecodeCB are pure lookup functions
// built from the same opcode tables as the reference interpreter.
package decode

// Reg8 names an 8-bit operand location, including the (HL) indirect form.
type Reg8 int

const (
	RegB Reg8 = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegHLInd
	RegA
)

// Reg16 names a 16-bit register pair, including the post-update HL forms
// used by LD (HL+),A / LD (HL-),A and their loads.
type Reg16 int

const (
	RegBC Reg16 = iota
	RegDE
	RegHL
	RegHLIncr
	RegHLDecr
	RegSP
	RegAF
)

// OperandKind discriminates the Operand union.
type OperandKind int

const (
	OperandReg8 OperandKind = iota
	OperandReg16
	OperandImm8
	OperandImm16
)

// Operand is a tagged union: a register name or an immediate that the
// CPU must fetch from the instruction stream.
type Operand struct {
	Kind OperandKind
	R8   Reg8
	R16  Reg16
}

func opReg8(r Reg8) Operand   { return Operand{Kind: OperandReg8, R8: r} }
func opReg16(r Reg16) Operand { return Operand{Kind: OperandReg16, R16: r} }

var (
	opA      = opReg8(RegA)
	opHL     = opReg16(RegHL)
	opImm8   = Operand{Kind: OperandImm8}
	opImm16  = Operand{Kind: OperandImm16}
	opSP     = opReg16(RegSP)
	regGroup = [8]Operand{opReg8(RegB), opReg8(RegC), opReg8(RegD), opReg8(RegE), opReg8(RegH), opReg8(RegL), opReg8(RegHLInd), opA}
	pairGrp1 = [4]Operand{opReg16(RegBC), opReg16(RegDE), opHL, opSP}
	pairGrp2 = [4]Operand{opReg16(RegBC), opReg16(RegDE), opReg16(RegHLIncr), opReg16(RegHLDecr)}
	pairGrp3 = [4]Operand{opReg16(RegBC), opReg16(RegDE), opHL, opReg16(RegAF)}
)

// Condition names a branch condition; ALWAYS marks unconditional jumps.
type Condition int

const (
	CondNZ Condition = iota
	CondZ
	CondNC
	CondC
	CondAlways
)

var condGroup = [4]Condition{CondNZ, CondZ, CondNC, CondC}

// Op names the operation an Instruction performs.
type Op int

const (
	OpNOP Op = iota
	OpHALT
	OpSTOP
	OpDI
	OpEI
	OpJR
	OpJP
	OpJPHL
	OpRET
	OpRETI
	OpCALL
	OpPUSH
	OpPOP
	OpLD
	OpLD16
	OpLDOffset
	OpINC
	OpDEC
	OpADD
	OpADDHL
	OpADDSP
	OpADC
	OpSUB
	OpSBC
	OpAND
	OpOR
	OpXOR
	OpCP
	OpCPL
	OpCCF
	OpSCF
	OpRRA
	OpRLA
	OpRRCA
	OpRLCA
	OpRR
	OpRL
	OpRRC
	OpRLC
	OpDAA
	OpBIT
	OpSET
	OpRES
	OpSLA
	OpSRA
	OpSWAP
	OpSRL
	OpRST
	OpPREFIX
)

// Instruction is the fully decoded, immutable description of one opcode.
// Dst/Src are populated per Op; Bit and RST hold the embedded literal for
// BIT/SET/RES and RST respectively. Cond is meaningful for JR/JP/CALL/RET.
type Instruction struct {
	Op   Op
	Dst  Operand
	Src  Operand
	Cond Condition
	Bit  byte
	RST  byte
}

func simple(op Op) Instruction { return Instruction{Op: op} }

// Decode maps a fetched opcode byte to its Instruction, or false if the
// byte is one of the base table's 11 undefined opcodes.
func Decode(b byte) (Instruction, bool) {
	switch {
	case b == 0x00:
		return simple(OpNOP), true
	case b == 0x10:
		return simple(OpSTOP), true
	case b == 0x76:
		return simple(OpHALT), true
	case b == 0xCB:
		return simple(OpPREFIX), true
	case b == 0xF3:
		return simple(OpDI), true
	case b == 0xFB:
		return simple(OpEI), true
	case b == 0x01 || b == 0x11 || b == 0x21 || b == 0x31:
		return Instruction{Op: OpLD16, Dst: pairGrp1[b>>4], Src: opImm16}, true
	case b == 0x02 || b == 0x12 || b == 0x22 || b == 0x32:
		return Instruction{Op: OpLD, Dst: pairGrp2[b>>4], Src: opA}, true
	case b == 0x03 || b == 0x13 || b == 0x23 || b == 0x33:
		return Instruction{Op: OpINC, Dst: pairGrp1[b>>4]}, true
	case isIn(b, 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C):
		return Instruction{Op: OpINC, Dst: regGroup[b>>3]}, true
	case isIn(b, 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D):
		return Instruction{Op: OpDEC, Dst: regGroup[b>>3]}, true
	case isIn(b, 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E):
		return Instruction{Op: OpLD, Dst: regGroup[b>>3], Src: opImm8}, true
	case b == 0x07:
		return simple(OpRLCA), true
	case b == 0x17:
		return simple(OpRLA), true
	case b == 0x27:
		return simple(OpDAA), true
	case b == 0x37:
		return simple(OpSCF), true
	case b == 0x08:
		return Instruction{Op: OpLD16, Dst: opImm16, Src: opSP}, true
	case b == 0x18 || b == 0x20 || b == 0x28 || b == 0x30 || b == 0x38:
		cond := CondAlways
		if b != 0x18 {
			cond = condGroup[(b>>3)&0x03]
		}
		return Instruction{Op: OpJR, Cond: cond}, true
	case b == 0x09 || b == 0x19 || b == 0x29 || b == 0x39:
		return Instruction{Op: OpADDHL, Src: pairGrp1[b>>4]}, true
	case b == 0x0A || b == 0x1A || b == 0x2A || b == 0x3A:
		return Instruction{Op: OpLD, Dst: opA, Src: pairGrp2[b>>4]}, true
	case b == 0x0B || b == 0x1B || b == 0x2B || b == 0x3B:
		return Instruction{Op: OpDEC, Dst: pairGrp1[b>>4]}, true
	case b == 0x0F:
		return simple(OpRRCA), true
	case b == 0x1F:
		return simple(OpRRA), true
	case b == 0x2F:
		return simple(OpCPL), true
	case b == 0x3F:
		return simple(OpCCF), true
	case (b >= 0x40 && b <= 0x75) || (b >= 0x77 && b <= 0x7F):
		return Instruction{Op: OpLD, Dst: regGroup[(b>>3)&0x07], Src: regGroup[b&0x07]}, true
	case inRange(b, 0x80, 0x87) || b == 0xC6:
		return Instruction{Op: OpADD, Src: aluSrc(b, 0xC6)}, true
	case inRange(b, 0x88, 0x8F) || b == 0xCE:
		return Instruction{Op: OpADC, Src: aluSrc(b, 0xCE)}, true
	case inRange(b, 0x90, 0x97) || b == 0xD6:
		return Instruction{Op: OpSUB, Src: aluSrc(b, 0xD6)}, true
	case inRange(b, 0x98, 0x9F) || b == 0xDE:
		return Instruction{Op: OpSBC, Src: aluSrc(b, 0xDE)}, true
	case inRange(b, 0xA0, 0xA7) || b == 0xE6:
		return Instruction{Op: OpAND, Src: aluSrc(b, 0xE6)}, true
	case inRange(b, 0xA8, 0xAF) || b == 0xEE:
		return Instruction{Op: OpXOR, Src: aluSrc(b, 0xEE)}, true
	case inRange(b, 0xB0, 0xB7) || b == 0xF6:
		return Instruction{Op: OpOR, Src: aluSrc(b, 0xF6)}, true
	case inRange(b, 0xB8, 0xBF) || b == 0xFE:
		return Instruction{Op: OpCP, Src: aluSrc(b, 0xFE)}, true
	case b == 0xC0 || b == 0xC8 || b == 0xD0 || b == 0xD8 || b == 0xC9:
		cond := CondAlways
		if b != 0xC9 {
			cond = condGroup[(b>>3)&0x03]
		}
		return Instruction{Op: OpRET, Cond: cond}, true
	case b == 0xC1 || b == 0xD1 || b == 0xE1 || b == 0xF1:
		return Instruction{Op: OpPOP, Dst: pairGrp3[(b>>4)&0x03]}, true
	case b == 0xC2 || b == 0xCA || b == 0xD2 || b == 0xDA || b == 0xC3:
		cond := CondAlways
		if b != 0xC3 {
			cond = condGroup[(b>>3)&0x03]
		}
		return Instruction{Op: OpJP, Cond: cond}, true
	case b == 0xC4 || b == 0xCC || b == 0xD4 || b == 0xDC || b == 0xCD:
		cond := CondAlways
		if b != 0xCD {
			cond = condGroup[(b>>3)&0x03]
		}
		return Instruction{Op: OpCALL, Cond: cond}, true
	case b == 0xC5 || b == 0xD5 || b == 0xE5 || b == 0xF5:
		return Instruction{Op: OpPUSH, Dst: pairGrp3[(b>>4)&0x03]}, true
	case isIn(b, 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF):
		return Instruction{Op: OpRST, RST: b - 0xC7}, true
	case b == 0xD9:
		return simple(OpRETI), true
	case b == 0xE0:
		return Instruction{Op: OpLDOffset, Dst: opImm8, Src: opA}, true
	case b == 0xE2:
		return Instruction{Op: OpLDOffset, Dst: opReg8(RegC), Src: opA}, true
	case b == 0xF0:
		return Instruction{Op: OpLDOffset, Dst: opA, Src: opImm8}, true
	case b == 0xF2:
		return Instruction{Op: OpLDOffset, Dst: opA, Src: opReg8(RegC)}, true
	case b == 0xF9:
		return Instruction{Op: OpLD16, Dst: opSP, Src: opHL}, true
	case b == 0xEA:
		return Instruction{Op: OpLD, Dst: opImm16, Src: opA}, true
	case b == 0xFA:
		return Instruction{Op: OpLD, Dst: opA, Src: opImm16}, true
	case b == 0xE8:
		return simple(OpADDSP), true
	case b == 0xF8:
		return Instruction{Op: OpLDOffset, Dst: opHL, Src: opImm8}, true
	case b == 0xE9:
		return simple(OpJPHL), true
	default:
		return Instruction{}, false
	}
}

// DecodeCB maps a byte following a 0xCB prefix. Every value is defined.
func DecodeCB(b byte) Instruction {
	reg := regGroup[b&0x07]
	switch {
	case inRange(b, 0x00, 0x07):
		return Instruction{Op: OpRLC, Dst: reg}
	case inRange(b, 0x08, 0x0F):
		return Instruction{Op: OpRRC, Dst: reg}
	case inRange(b, 0x10, 0x17):
		return Instruction{Op: OpRL, Dst: reg}
	case inRange(b, 0x18, 0x1F):
		return Instruction{Op: OpRR, Dst: reg}
	case inRange(b, 0x20, 0x27):
		return Instruction{Op: OpSLA, Dst: reg}
	case inRange(b, 0x28, 0x2F):
		return Instruction{Op: OpSRA, Dst: reg}
	case inRange(b, 0x30, 0x37):
		return Instruction{Op: OpSWAP, Dst: reg}
	case inRange(b, 0x38, 0x3F):
		return Instruction{Op: OpSRL, Dst: reg}
	case inRange(b, 0x40, 0x7F):
		return Instruction{Op: OpBIT, Bit: (b >> 3) & 0x07, Dst: reg}
	case inRange(b, 0x80, 0xBF):
		return Instruction{Op: OpRES, Bit: (b >> 3) & 0x07, Dst: reg}
	default:
		return Instruction{Op: OpSET, Bit: (b >> 3) & 0x07, Dst: reg}
	}
}

func aluSrc(b, immOpcode byte) Operand {
	if b == immOpcode {
		return opImm8
	}
	return regGroup[b&0x07]
}

func inRange(b, lo, hi byte) bool { return b >= lo && b <= hi }

func isIn(b byte, vals ...byte) bool {
	for _, v := range vals {
		if b == v {
			return true
		}
	}
	return false
}
