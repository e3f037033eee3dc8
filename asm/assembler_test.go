package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssembleHeaderAndTermOK(t *testing.T) {
	a, err := New("10 TERM_OK\n")
	require.NoError(t, err)

	bin, err := a.Assemble()
	require.NoError(t, err)

	require.Equal(t, []byte{0x39, 0x49, 0x36, assemblerVersion}, bin[:4])
	require.Equal(t, []byte{0x05}, bin[4:])
}

func TestAssembleAddDirectAndPointer(t *testing.T) {
	src := "10 ADD #5 $7 #100\n20 TERM_OK\n"
	a, err := New(src)
	require.NoError(t, err)

	bin, err := a.Assemble()
	require.NoError(t, err)

	body := bin[4:]
	require.Equal(t, byte(0x01), body[0]) // ADD opcode
	require.Equal(t, []byte{0x00, 0x01, 0x00}, body[1:4])
	require.Equal(t, []byte{5, 0}, body[4:6])
	require.Equal(t, []byte{7, 0}, body[6:8])
	require.Equal(t, []byte{100, 0}, body[8:10])
	require.Equal(t, byte(0x05), body[10])
}

func TestAssembleGotoResolvesLineAddress(t *testing.T) {
	src := "10 GOTO $30\n20 TERM_ERR\n30 TERM_OK\n"
	a, err := New(src)
	require.NoError(t, err)

	bin, err := a.Assemble()
	require.NoError(t, err)
	body := bin[4:]

	// GOTO emits JMP direct -> line 30's address.
	require.Equal(t, byte(0x07), body[0])
	require.Equal(t, byte(0x00), body[1])
	target := int(body[2]) | int(body[3])<<8
	require.Equal(t, loadAddress+len(body)-1, target) // last byte is line 30's TERM_OK
}

func TestAssembleUnknownGotoLineIsValueError(t *testing.T) {
	a, err := New("10 GOTO $99\n")
	require.NoError(t, err)

	_, err = a.Assemble()
	require.Error(t, err)
	var f *Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, ErrValue, f.Kind)
}

func TestAssembleRejectsNonIncreasingLineNumbers(t *testing.T) {
	_, err := New("20 TERM_OK\n10 TERM_OK\n")
	require.Error(t, err)
}

func TestAssembleRejectsUnprefixedParameter(t *testing.T) {
	_, err := New("10 ADD 5 #7 #100\n")
	require.Error(t, err)
}

func TestAssembleRejectsBadOperator(t *testing.T) {
	_, err := New("10 NOTANOP\n")
	require.Error(t, err)
}

func TestAssemblePrintStringEncoding(t *testing.T) {
	src := "10 PRINT 'hi\n20 TERM_OK\n"
	a, err := New(src)
	require.NoError(t, err)

	bin, err := a.Assemble()
	require.NoError(t, err)
	body := bin[4:]

	// JMP direct-relative, 0x02, skip length = 2
	require.Equal(t, []byte{0x07, 0x02, 0x02, 0x00}, body[0:4])
	// 'h' -> 0x21, 'i' -> 0x22 in the FVC text encoding
	require.Equal(t, []byte{0x21, 0x22}, body[4:6])
}

func TestAssembleCommentAndBlankLinesIgnored(t *testing.T) {
	src := "/ this is a comment\n\n10 TERM_OK\n"
	a, err := New(src)
	require.NoError(t, err)
	bin, err := a.Assemble()
	require.NoError(t, err)
	require.Equal(t, []byte{0x05}, bin[4:])
}
