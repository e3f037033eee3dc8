// disasm.go - instruction disassembler, used only by round-trip tests

/*
disasm.go walks an assembled binary and recovers opcode, mode bytes and
operand words, generalising the teacher's debug_disasm_ie32.go
opcode-name-table-plus-operand-formatting pattern to this processor's
fixed per-opcode widths. It is not part of the normative toolchain (the
specification has no disassembler requirement); it exists so package
tests can verify that assembling then decoding reproduces every
instruction exactly.
*/

package asm

import "encoding/binary"

var opcodeNames = map[byte]string{
	0x00: "NOP",
	0x01: "ADD",
	0x02: "MULT",
	0x03: "COPY",
	0x04: "MOVE",
	0x05: "TERM_OK",
	0x06: "META",
	0x07: "JMP",
	0x08: "JMPNUL",
	0x09: "JMPEQL",
	0x0A: "TERM_ERR",
	0x0B: "CPYBLK",
	0x0C: "MOVBLK",
	0x0D: "MOD",
	0x0E: "DIV",
}

// opcodeParamBytes mirrors machine.paramBytes; duplicated here rather
// than imported so the disassembler can walk a raw binary with no
// dependency on a live Bus.
var opcodeParamBytes = map[byte]int{
	0x00: 0, 0x01: 9, 0x02: 9, 0x03: 6, 0x04: 6, 0x05: 0,
	0x06: 3, 0x07: 3, 0x08: 6, 0x09: 9, 0x0A: 0,
	0x0B: 7, 0x0C: 7, 0x0D: 9, 0x0E: 9,
}

// Instruction is one decoded instruction: its address, opcode name,
// raw mode bytes and 16-bit operand words (CPYBLK's leading size byte
// is reported separately as Size).
type Instruction struct {
	Addr     int
	Opcode   byte
	Name     string
	Modes    []byte
	Operands []uint16
	Size     *uint8
}

// Disassemble decodes every instruction in a stripped instruction
// stream (header already removed), starting at baseAddr.
func Disassemble(code []byte, baseAddr int) ([]Instruction, error) {
	var out []Instruction
	i := 0
	for i < len(code) {
		opcode := code[i]
		pb, ok := opcodeParamBytes[opcode]
		if !ok {
			return nil, fault(ErrSyntax, 0, "unknown opcode during disassembly", opcode)
		}
		if i+1+pb > len(code) {
			return nil, fault(ErrSyntax, 0, "truncated instruction during disassembly", opcode)
		}

		inst := Instruction{Addr: baseAddr + i, Opcode: opcode, Name: opcodeNames[opcode]}

		body := code[i+1 : i+1+pb]
		switch opcode {
		case 0x0B, 0x0C: // CPYBLK, MOVBLK: mode, mode, size(u8), operand, operand
			inst.Modes = body[0:2]
			size := body[2]
			inst.Size = &size
			inst.Operands = []uint16{
				binary.LittleEndian.Uint16(body[3:5]),
				binary.LittleEndian.Uint16(body[5:7]),
			}
		default:
			modeCount := modeCountFor(opcode)
			inst.Modes = body[0:modeCount]
			operandBytes := body[modeCount:]
			for o := 0; o+2 <= len(operandBytes); o += 2 {
				inst.Operands = append(inst.Operands, binary.LittleEndian.Uint16(operandBytes[o:o+2]))
			}
		}

		out = append(out, inst)
		i += 1 + pb
	}
	return out, nil
}

func modeCountFor(opcode byte) int {
	switch opcode {
	case 0x00, 0x05, 0x0A: // NOP, TERM_OK, TERM_ERR
		return 0
	case 0x06, 0x07: // META, JMP
		return 1
	case 0x03, 0x04, 0x08: // COPY, MOVE, JMPNUL
		return 2
	case 0x01, 0x02, 0x09, 0x0D, 0x0E: // ADD, MULT, JMPEQL, MOD, DIV
		return 3
	default:
		return 0
	}
}
