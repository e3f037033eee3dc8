// assembler.go - line-numbered assembler for the FVC instruction set

/*
assembler.go translates FVC assembly source into the binary format
§3/§6 of the specification describe, following FVC_Assembly's
fvcal_assembler.py structure: New validates every line, then Assemble
first records a line-number -> byte-address map (using a fixed
per-operator length table, not the operator's actual emitted size —
PRINT's real size depends on string length, but the map entry is always
the nominal 8 bytes, exactly mirroring the original) and then emits
machine code, expanding PRINT/GOTO/GTNUL/GTEQL as it goes.

Validation, the line map and emission are kept as separate methods on
Assembler (parse, buildLineMap, Assemble) rather than one combined walk,
matching the teacher's ie32asm.go convention of a dedicated pass per
concern.
*/

package asm

import (
	"strconv"
	"strings"

	"github.com/calendis/fvc/machine"
)

const (
	assemblerVersion = 3
	loadAddress      = 32
	printVRAMBase    = 0x61A8
	commentChar      = "/"
)

var header = []byte{0x39, 0x49, 0x36, assemblerVersion}

// opInfo describes one operator: how many parameters it takes, its
// machine opcode, how many of those parameters carry a mode byte, and
// the nominal post-opcode byte length used for the line->address map.
type opInfo struct {
	arity     int
	opcode    byte
	modeCount int
	length    int
}

var opTable = map[string]opInfo{
	"NOP":     {0, 0x00, 0, 0},
	"ADD":     {3, 0x01, 3, 9},
	"MULT":    {3, 0x02, 3, 9},
	"COPY":    {2, 0x03, 2, 6},
	"MOVE":    {2, 0x04, 2, 6},
	"TERM_OK": {0, 0x05, 0, 0},
	"META":    {1, 0x06, 1, 3},
	"JMP":     {1, 0x07, 1, 3},
	"JMPNUL":  {2, 0x08, 2, 6},
	"JMPEQL":  {3, 0x09, 3, 9},
	"TERM_ERR": {0, 0x0A, 0, 0},
	"PRINT":   {1, 0x03, 1, 7},
	"CPYBLK":  {2, 0x0B, 2, 7},
	"MOD":     {3, 0x0D, 3, 9},
	"DIV":     {3, 0x0E, 3, 9},
	"GOTO":    {1, 0x07, 1, 3},
	"GTNUL":   {2, 0x08, 2, 6},
	"GTEQL":   {3, 0x09, 3, 9},
}

var prefixToMode = map[byte]byte{
	'#': 0x00,
	'$': 0x01,
	'%': 0x02,
	'^': 0x03,
}

var validPrefixes = "$#'%^"

// keywordAddrs maps the assembler's recognised address keywords to
// their reserved register addresses.
var keywordAddrs = map[string]uint16{
	"OPC": 9,
	"IPT": 10,
	"PAL": 12,
	"MOD": 21,
}

type sourceLine struct {
	number int // -1 for a comment line
	op     string
	params []string
	raw    string
}

// Assembler compiles FVC assembly source to the FVC binary format.
type Assembler struct {
	lines       []sourceLine
	lineAddress map[int]int
}

// New parses source into validated lines, ready for Assemble.
func New(source string) (*Assembler, error) {
	a := &Assembler{lineAddress: map[int]int{}}
	if err := a.parse(source); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Assembler) parse(source string) error {
	lastNumber := -1
	lineNo := 0

	for _, raw := range strings.Split(source, "\n") {
		lineNo++
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)

		if fields[0] == commentChar {
			continue
		}

		if len(fields) < 2 {
			return fault(ErrSyntax, lineNo, "line has no operator", raw)
		}

		number, err := strconv.Atoi(fields[0])
		if err != nil {
			return fault(ErrSyntax, lineNo, "bad line number", fields[0])
		}
		if number <= lastNumber {
			return fault(ErrValue, lineNo, "small or duplicate line number", number)
		}
		lastNumber = number

		op := fields[1]
		info, ok := opTable[op]
		if !ok {
			return fault(ErrSyntax, lineNo, "bad operator", op)
		}

		params := fields[2:]
		if len(params) != info.arity {
			return fault(ErrSyntax, lineNo, "wrong number of parameters", op)
		}

		for _, p := range params {
			if err := validateParam(p, lineNo); err != nil {
				return err
			}
		}

		a.lines = append(a.lines, sourceLine{number: number, op: op, params: params, raw: raw})
	}

	return nil
}

func validateParam(p string, lineNo int) error {
	if p == "" || !strings.ContainsRune(validPrefixes, rune(p[0])) {
		return fault(ErrSyntax, lineNo, "unprefixed parameter", p)
	}
	if p[0] == '\'' {
		return nil
	}
	body := p[1:]
	if _, err := strconv.Atoi(body); err == nil {
		return nil
	}
	if _, ok := keywordAddrs[body]; ok {
		return nil
	}
	return fault(ErrSyntax, lineNo, "bad parameter", p)
}

// buildLineMap walks the validated lines and records the byte address
// each line's first emitted instruction will start at.
func (a *Assembler) buildLineMap() {
	addr := loadAddress
	for _, l := range a.lines {
		a.lineAddress[l.number] = addr
		addr += opTable[l.op].length + 1
	}
}

// Assemble compiles the parsed source and returns the full binary
// (header included).
func (a *Assembler) Assemble() ([]byte, error) {
	a.buildLineMap()

	var code []byte
	textCursor := 0

	for _, l := range a.lines {
		var emitted []byte
		var err error

		switch l.op {
		case "PRINT":
			emitted, textCursor, err = a.expandPrint(l, code, textCursor)
		case "GOTO":
			emitted, err = a.expandGoto(l)
		case "GTNUL":
			emitted, err = a.expandGtnul(l)
		case "GTEQL":
			emitted, err = a.expandGteql(l)
		default:
			emitted, err = a.encodeRegular(l)
		}
		if err != nil {
			return nil, err
		}
		code = append(code, emitted...)
	}

	out := make([]byte, 0, len(header)+len(code))
	out = append(out, header...)
	out = append(out, code...)
	return out, nil
}

func le16(v int) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

func paramAddr(p string, lineNo int) (byte, uint16, error) {
	mode := prefixToMode[p[0]]
	body := p[1:]
	if n, err := strconv.Atoi(body); err == nil {
		return mode, uint16(n), nil
	}
	addr, ok := keywordAddrs[body]
	if !ok {
		return 0, 0, fault(ErrSyntax, lineNo, "bad parameter", p)
	}
	return mode, addr, nil
}

func (a *Assembler) encodeRegular(l sourceLine) ([]byte, error) {
	info := opTable[l.op]
	out := []byte{info.opcode}

	modes := make([]byte, len(l.params))
	values := make([]uint16, len(l.params))
	for i, p := range l.params {
		m, v, err := paramAddr(p, l.number)
		if err != nil {
			return nil, err
		}
		modes[i] = m
		values[i] = v
	}

	out = append(out, modes...)
	for _, v := range values {
		out = append(out, le16(int(v))...)
	}
	return out, nil
}

func (a *Assembler) expandPrint(l sourceLine, codeSoFar []byte, textCursor int) ([]byte, int, error) {
	p := l.params[0]
	vramAddr := printVRAMBase + textCursor

	switch p[0] {
	case '\'':
		text := p[1:]
		strlen := len(text)

		textBytes, err := machine.EncodeText(text)
		if err != nil {
			return nil, textCursor, fault(ErrSyntax, l.number, "bad parameter", p)
		}

		var out []byte
		out = append(out, 0x07, 0x02) // JMP, direct-relative
		out = append(out, le16(strlen)...)
		out = append(out, textBytes...)

		stringDataAddr := loadAddress + len(codeSoFar) + 4
		out = append(out, 0x0B, 0x00, 0x00, byte(strlen))
		out = append(out, le16(stringDataAddr)...)
		out = append(out, le16(vramAddr)...)

		return out, textCursor + strlen, nil

	case '#':
		addr, err := strconv.Atoi(p[1:])
		if err != nil {
			return nil, textCursor, fault(ErrSyntax, l.number, "bad parameter", p)
		}
		var out []byte
		out = append(out, 0x0B, 0x00, 0x00, 0x02)
		out = append(out, le16(addr)...)
		out = append(out, le16(vramAddr)...)
		return out, textCursor + 2, nil

	default:
		return nil, textCursor, fault(ErrSyntax, l.number, "bad parameter", p)
	}
}

func (a *Assembler) resolveLine(ref string, lineNo int) (int, error) {
	target, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fault(ErrSyntax, lineNo, "bad parameter", ref)
	}
	addr, ok := a.lineAddress[target]
	if !ok {
		return 0, fault(ErrValue, lineNo, "unknown line", target)
	}
	return addr, nil
}

func (a *Assembler) expandGoto(l sourceLine) ([]byte, error) {
	addr, err := a.resolveLine(l.params[0][1:], l.number)
	if err != nil {
		return nil, err
	}
	out := []byte{0x07, 0x00}
	out = append(out, le16(addr)...)
	return out, nil
}

func (a *Assembler) expandGtnul(l sourceLine) ([]byte, error) {
	mode, value, err := paramAddr(l.params[0], l.number)
	if err != nil {
		return nil, err
	}
	addr, err := a.resolveLine(l.params[1][1:], l.number)
	if err != nil {
		return nil, err
	}
	out := []byte{0x08, 0x00, mode}
	out = append(out, le16(addr)...)
	out = append(out, le16(int(value))...)
	return out, nil
}

func (a *Assembler) expandGteql(l sourceLine) ([]byte, error) {
	mode1, v1, err := paramAddr(l.params[0], l.number)
	if err != nil {
		return nil, err
	}
	mode2, v2, err := paramAddr(l.params[1], l.number)
	if err != nil {
		return nil, err
	}
	addr, err := a.resolveLine(l.params[2][1:], l.number)
	if err != nil {
		return nil, err
	}
	out := []byte{0x09, 0x00, mode1, mode2}
	out = append(out, le16(addr)...)
	out = append(out, le16(int(v1))...)
	out = append(out, le16(int(v2))...)
	return out, nil
}
