package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisassembleRoundTripsAddInstruction(t *testing.T) {
	a, err := New("10 ADD #5 #7 #100\n20 TERM_OK\n")
	require.NoError(t, err)
	bin, err := a.Assemble()
	require.NoError(t, err)

	insts, err := Disassemble(bin[4:], loadAddress)
	require.NoError(t, err)
	require.Len(t, insts, 2)

	require.Equal(t, "ADD", insts[0].Name)
	require.Equal(t, loadAddress, insts[0].Addr)
	require.Equal(t, []byte{0, 0, 0}, insts[0].Modes)
	require.Equal(t, []uint16{5, 7, 100}, insts[0].Operands)

	require.Equal(t, "TERM_OK", insts[1].Name)
}

func TestDisassembleDecodesCPYBLKSizeField(t *testing.T) {
	// A hand-assembled CPYBLK: i_mode=0, o_mode=0, size=1, p1=40, a_out=25000.
	code := []byte{
		0x0B, 0x00, 0x00, 0x01,
		40, 0,
		0xA8, 0x61, // 25000 little-endian
		0x05, // TERM_OK
	}

	insts, err := Disassemble(code, loadAddress)
	require.NoError(t, err)
	require.Len(t, insts, 2)

	require.Equal(t, "CPYBLK", insts[0].Name)
	require.NotNil(t, insts[0].Size)
	require.Equal(t, uint8(1), *insts[0].Size)
	require.Equal(t, []uint16{40, 25000}, insts[0].Operands)

	require.Equal(t, "TERM_OK", insts[1].Name)
}
