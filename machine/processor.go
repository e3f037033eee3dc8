// processor.go - fetch/decode/execute loop

/*
processor.go implements the opcode table and addressing modes described
in components/processor.py, generalised to match the fixed widths this
module documents (mode-byte counts and operand widths are identical
between the two; only naming differs — CPY/MOV/DISPLAY here are
COPY/MOVE/META). IPT and OPC are kept as processor-local fields rather
than reserved RAM addresses, which the specification allows ("an
implementation may hold these in host-side variables").

Opcode 12 (MOVBLK) has no emitting assembler syntax and is treated as a
no-op with a logged warning, matching the original's "MOVEBLK
UNIMPLEMENTED" stub.
*/

package machine

import "log"

const (
	OpNOP     = 0
	OpADD     = 1
	OpMULT    = 2
	OpCOPY    = 3
	OpMOVE    = 4
	OpTERMOK  = 5
	OpMETA    = 6
	OpJMP     = 7
	OpJMPNUL  = 8
	OpJMPEQL  = 9
	OpTERMERR = 10
	OpCPYBLK  = 11
	OpMOVBLK  = 12
	OpMOD     = 13
	OpDIV     = 14

	maxOpcode = OpDIV

	loadAddress = 32 // reserved boundary; programs load and run from here
)

// paramBytes is the number of mode+operand bytes following the opcode
// byte, indexed by opcode.
var paramBytes = [...]int{
	OpNOP:     0,
	OpADD:     9,
	OpMULT:    9,
	OpCOPY:    6,
	OpMOVE:    6,
	OpTERMOK:  0,
	OpMETA:    3,
	OpJMP:     3,
	OpJMPNUL:  6,
	OpJMPEQL:  9,
	OpTERMERR: 0,
	OpCPYBLK:  7,
	OpMOVBLK:  7,
	OpMOD:     9,
	OpDIV:     9,
}

const (
	modeDirect          = 0
	modePointer         = 1
	modeDirectRelative  = 2
	modePointerRelative = 3
)

// Processor runs the fetch-decode-execute loop over a Bus.
type Processor struct {
	bus *Bus
	ipt uint16
	opc byte
}

func NewProcessor(bus *Bus) *Processor {
	return &Processor{bus: bus}
}

// IPT returns the current instruction pointer, useful for tests and BIOS
// introspection commands.
func (p *Processor) IPT() uint16 { return p.ipt }

// OPC returns the most recently executed or terminating opcode.
func (p *Processor) OPC() byte { return p.opc }

// Load writes instruction bytes starting at loadAddress and resets IPT
// to that address, matching the reference loader.
func (p *Processor) Load(program []byte) error {
	for i, b := range program {
		if _, err := p.bus.IO(SignalWrite, uint64(loadAddress+i), uint64(b)); err != nil {
			return err
		}
	}
	p.ipt = loadAddress
	p.opc = OpNOP
	return nil
}

func (p *Processor) readByte(addr uint16) (byte, error) {
	v, err := p.bus.IO(SignalReadInt, uint64(addr), uint64(1))
	if err != nil {
		return 0, err
	}
	return byte(v.(uint64)), nil
}

func (p *Processor) readWord(addr uint16) (uint16, error) {
	v, err := p.bus.IO(SignalReadInt, uint64(addr), uint64(2))
	if err != nil {
		return 0, err
	}
	return uint16(v.(uint64)), nil
}

func (p *Processor) readBytes(addr uint16, size uint8) ([]byte, error) {
	v, err := p.bus.IO(SignalReadBytes, uint64(addr), uint64(size))
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (p *Processor) writeWord(addr uint16, val uint16) error {
	_, err := p.bus.IO(SignalWrite, uint64(addr), uint64(val))
	return err
}

func (p *Processor) writeBytes(addr uint16, data []byte) error {
	_, err := p.bus.IO(SignalWrite, uint64(addr), data)
	return err
}

// deref resolves a read operand: mode 0 passes the raw value straight
// through, mode 1 treats it as an address and returns its contents.
func (p *Processor) deref(mode byte, raw uint16) (uint16, error) {
	switch mode {
	case modeDirect:
		return raw, nil
	case modePointer:
		return p.readWord(raw)
	default:
		return 0, fault(SubsystemProcessor, "unknown parameter mode", mode)
	}
}

// resolveDest resolves a write destination the same way: mode 0 is the
// address itself, mode 1 is the address stored at that address.
func (p *Processor) resolveDest(mode byte, raw uint16) (uint16, error) {
	switch mode {
	case modeDirect:
		return raw, nil
	case modePointer:
		return p.readWord(raw)
	default:
		return 0, fault(SubsystemProcessor, "unknown output mode", mode)
	}
}

// Step executes a single instruction. It returns true once a
// terminating opcode has run (OPC settles at OpTERMOK).
func (p *Processor) Step() (bool, error) {
	start := p.ipt

	opcode, err := p.readByte(start)
	if err != nil {
		return false, err
	}
	if int(opcode) > maxOpcode {
		return false, fault(SubsystemProcessor, "unknown opcode", opcode, "at", start)
	}
	pb := paramBytes[opcode]

	nextBase := start // default: sequential advance from the current instruction

	switch opcode {
	case OpNOP:
		// nothing

	case OpADD, OpMULT, OpMOD, OpDIV:
		if err := p.binaryOp(opcode, start); err != nil {
			return false, err
		}

	case OpCOPY:
		if err := p.copy(start); err != nil {
			return false, err
		}

	case OpMOVE:
		if err := p.move(start); err != nil {
			return false, err
		}

	case OpTERMOK:
		p.opc = OpTERMOK
		return true, nil

	case OpMETA:
		iMode, err := p.readByte(start + 1)
		if err != nil {
			return false, err
		}
		raw, err := p.readWord(start + 2)
		if err != nil {
			return false, err
		}
		v, err := p.deref(iMode, raw)
		if err != nil {
			return false, err
		}
		log.Printf("META: %d", v)

	case OpJMP:
		base, err := p.jumpTarget(start, start+1, start+2, pb)
		if err != nil {
			return false, err
		}
		nextBase = base

	case OpJMPNUL:
		base, err := p.conditionalJump(start, start+3, pb, func(ipCur uint16) (bool, uint16, error) {
			p1Mode, err := p.readByte(ipCur + 2)
			if err != nil {
				return false, 0, err
			}
			rawP1, err := p.readWord(ipCur + 5)
			if err != nil {
				return false, 0, err
			}
			p1, err := p.deref(p1Mode, rawP1)
			if err != nil {
				return false, 0, err
			}
			return p1 == 0, 0, nil
		})
		if err != nil {
			return false, err
		}
		nextBase = base

	case OpJMPEQL:
		base, err := p.conditionalJump(start, start+4, pb, func(ipCur uint16) (bool, uint16, error) {
			p1Mode, err := p.readByte(ipCur + 2)
			if err != nil {
				return false, 0, err
			}
			p2Mode, err := p.readByte(ipCur + 3)
			if err != nil {
				return false, 0, err
			}
			rawP1, err := p.readWord(ipCur + 6)
			if err != nil {
				return false, 0, err
			}
			rawP2, err := p.readWord(ipCur + 8)
			if err != nil {
				return false, 0, err
			}
			p1, err := p.deref(p1Mode, rawP1)
			if err != nil {
				return false, 0, err
			}
			p2, err := p.deref(p2Mode, rawP2)
			if err != nil {
				return false, 0, err
			}
			return p1 == p2, 0, nil
		})
		if err != nil {
			return false, err
		}
		nextBase = base

	case OpTERMERR:
		log.Printf("processor: terminated with error at %d", start)
		p.opc = OpTERMOK
		p.ipt = nextBase + 1 + uint16(pb)
		return true, nil

	case OpCPYBLK:
		if err := p.cpyblk(start); err != nil {
			return false, err
		}

	case OpMOVBLK:
		log.Printf("processor: MOVBLK is unimplemented, treated as NOP at %d", start)

	default:
		return false, fault(SubsystemProcessor, "unknown opcode", opcode, "at", start)
	}

	p.opc = opcode
	p.ipt = nextBase + 1 + uint16(pb)
	return false, nil
}

// Run steps the processor until it terminates.
func (p *Processor) Run() error {
	for {
		done, err := p.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (p *Processor) binaryOp(opcode byte, ip uint16) error {
	p1Mode, err := p.readByte(ip + 1)
	if err != nil {
		return err
	}
	p2Mode, err := p.readByte(ip + 2)
	if err != nil {
		return err
	}
	oMode, err := p.readByte(ip + 3)
	if err != nil {
		return err
	}

	rawP1, err := p.readWord(ip + 4)
	if err != nil {
		return err
	}
	rawP2, err := p.readWord(ip + 6)
	if err != nil {
		return err
	}
	rawOut, err := p.readWord(ip + 8)
	if err != nil {
		return err
	}

	p1, err := p.deref(p1Mode, rawP1)
	if err != nil {
		return err
	}
	p2, err := p.deref(p2Mode, rawP2)
	if err != nil {
		return err
	}

	var result uint16
	switch opcode {
	case OpADD:
		result = p1 + p2
	case OpMULT:
		result = p1 * p2
	case OpMOD, OpDIV:
		if p2 == 0 {
			return fault(SubsystemProcessor, "division by zero", "at", ip)
		}
		if opcode == OpMOD {
			result = p1 % p2
		} else {
			result = p1 / p2
		}
	}

	out, err := p.resolveDest(oMode, rawOut)
	if err != nil {
		return err
	}
	return p.writeWord(out, result)
}

func (p *Processor) copy(ip uint16) error {
	iMode, err := p.readByte(ip + 1)
	if err != nil {
		return err
	}
	oMode, err := p.readByte(ip + 2)
	if err != nil {
		return err
	}
	rawP1, err := p.readWord(ip + 3)
	if err != nil {
		return err
	}
	rawOut, err := p.readWord(ip + 5)
	if err != nil {
		return err
	}

	p1, err := p.deref(iMode, rawP1)
	if err != nil {
		return err
	}
	out, err := p.resolveDest(oMode, rawOut)
	if err != nil {
		return err
	}
	return p.writeWord(out, p1)
}

func (p *Processor) move(ip uint16) error {
	iMode, err := p.readByte(ip + 1)
	if err != nil {
		return err
	}
	oMode, err := p.readByte(ip + 2)
	if err != nil {
		return err
	}
	rawP1, err := p.readWord(ip + 3)
	if err != nil {
		return err
	}
	rawOut, err := p.readWord(ip + 5)
	if err != nil {
		return err
	}

	var p1, clearAddr uint16
	switch iMode {
	case modeDirect:
		aP1 := rawP1
		v, err := p.readWord(aP1)
		if err != nil {
			return err
		}
		p1, clearAddr = v, aP1
	case modePointer:
		aaP1 := rawP1
		aP1, err := p.readWord(aaP1)
		if err != nil {
			return err
		}
		v, err := p.readWord(aP1)
		if err != nil {
			return err
		}
		p1, clearAddr = v, aP1
	default:
		return fault(SubsystemProcessor, "unknown parameter mode", iMode)
	}
	if err := p.writeWord(clearAddr, 0); err != nil {
		return err
	}

	out, err := p.resolveDest(oMode, rawOut)
	if err != nil {
		return err
	}
	return p.writeWord(out, p1)
}

func (p *Processor) cpyblk(ip uint16) error {
	iMode, err := p.readByte(ip + 1)
	if err != nil {
		return err
	}
	oMode, err := p.readByte(ip + 2)
	if err != nil {
		return err
	}
	size, err := p.readByte(ip + 3)
	if err != nil {
		return err
	}
	rawP1, err := p.readWord(ip + 4)
	if err != nil {
		return err
	}
	rawOut, err := p.readWord(ip + 6)
	if err != nil {
		return err
	}

	var srcAddr uint16
	switch iMode {
	case modeDirect:
		srcAddr = rawP1
	case modePointer:
		v, err := p.readWord(rawP1)
		if err != nil {
			return err
		}
		srcAddr = v
	default:
		return fault(SubsystemProcessor, "unknown parameter mode", iMode)
	}
	data, err := p.readBytes(srcAddr, size)
	if err != nil {
		return err
	}

	out, err := p.resolveDest(oMode, rawOut)
	if err != nil {
		return err
	}
	return p.writeBytes(out, data)
}

// jumpTarget resolves an unconditional jump's mode/operand pair starting
// at modeAddr/operandAddr and returns the IPT base the trailing advance
// should apply to (so that after +1+pb it lands on the intended target).
func (p *Processor) jumpTarget(ip, modeAddr, operandAddr uint16, pb int) (uint16, error) {
	mode, err := p.readByte(modeAddr)
	if err != nil {
		return 0, err
	}
	raw, err := p.readWord(operandAddr)
	if err != nil {
		return 0, err
	}

	switch mode {
	case modeDirect, modeDirectRelative:
		// raw is used as-is below
	case modePointer, modePointerRelative:
		raw, err = p.readWord(raw)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fault(SubsystemProcessor, "unknown parameter mode", mode)
	}

	switch mode {
	case modeDirect, modePointer:
		return raw - uint16(pb) - 1, nil
	case modeDirectRelative, modePointerRelative:
		return ip + raw, nil
	default:
		return 0, fault(SubsystemProcessor, "unknown parameter mode", mode)
	}
}

// conditionalJump handles JMPNUL/JMPEQL: it evaluates cond against the
// instruction and only resolves/takes the jump (reading from
// operandAddr) if cond returns true.
func (p *Processor) conditionalJump(ip, operandAddr uint16, pb int, cond func(ip uint16) (bool, uint16, error)) (uint16, error) {
	take, _, err := cond(ip)
	if err != nil {
		return 0, err
	}
	if !take {
		return ip, nil
	}
	return p.jumpTarget(ip, ip+1, operandAddr, pb)
}
