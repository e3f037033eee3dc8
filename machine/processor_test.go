package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T) (*Bus, *Processor) {
	t.Helper()
	bus, err := NewBus(nil, nil)
	require.NoError(t, err)
	return bus, NewProcessor(bus)
}

func TestProcessorAddDirectMode(t *testing.T) {
	bus, p := newTestProcessor(t)

	program := []byte{
		OpADD, 0, 0, 0, 5, 0, 7, 0, 100, 0, // ADD direct 5 + direct 7 -> *100
		OpTERMOK,
	}
	require.NoError(t, p.Load(program))
	require.NoError(t, p.Run())

	require.Equal(t, byte(OpTERMOK), p.OPC())
	v, err := bus.IO(SignalReadInt, 100, uint64(2))
	require.NoError(t, err)
	require.Equal(t, uint64(12), v)
}

func TestProcessorIPTAdvancesByOneyPlusParamBytes(t *testing.T) {
	_, p := newTestProcessor(t)
	program := []byte{OpNOP, OpTERMOK}
	require.NoError(t, p.Load(program))

	before := p.IPT()
	done, err := p.Step()
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, before+1, p.IPT())
}

func TestProcessorJMPDirectSkipsBytes(t *testing.T) {
	_, p := newTestProcessor(t)

	// addr32: JMP direct -> addr37 (4 bytes: opcode, mode, addr lo/hi)
	// addr36: NOP (never executed)
	// addr37: TERM_OK
	program := []byte{
		OpJMP, 0, 37, 0, // 32..35
		OpNOP,   // 36
		OpTERMOK, // 37
	}
	require.NoError(t, p.Load(program))
	require.NoError(t, p.Run())

	require.Equal(t, byte(OpTERMOK), p.OPC())
	require.Equal(t, uint16(37), p.IPT())
}

func TestProcessorJMPNULTakenWhenZero(t *testing.T) {
	bus, p := newTestProcessor(t)

	// RAM address 200 holds 0 (the null value read with p1_mode pointer).
	_, err := bus.IO(SignalWrite, 200, uint64(0))
	require.NoError(t, err)

	// JMPNUL: mode(jmp)=0, mode(p1)=1(pointer), dest=40, p1=200
	program := []byte{
		OpJMPNUL, 0, 1, 40, 0, 200, 0, // 32..38
		OpNOP,    // 39, unreached (skipped by the taken jump)
		OpTERMOK, // 40
	}
	require.NoError(t, p.Load(program))
	require.NoError(t, p.Run())

	require.Equal(t, byte(OpTERMOK), p.OPC())
	require.Equal(t, uint16(40), p.IPT())
}

func TestProcessorJMPNULNotTakenWhenNonZero(t *testing.T) {
	bus, p := newTestProcessor(t)

	_, err := bus.IO(SignalWrite, 200, uint64(9))
	require.NoError(t, err)

	program := []byte{
		OpJMPNUL, 0, 1, 99, 0, 200, 0, // 32..38, never taken
		OpTERMOK, // 39, falls through here
	}
	require.NoError(t, p.Load(program))
	require.NoError(t, p.Run())

	require.Equal(t, byte(OpTERMOK), p.OPC())
}

func TestProcessorDivisionByZeroIsFatal(t *testing.T) {
	_, p := newTestProcessor(t)

	program := []byte{
		OpDIV, 0, 0, 0, 10, 0, 0, 0, 100, 0,
		OpTERMOK,
	}
	require.NoError(t, p.Load(program))
	err := p.Run()
	require.Error(t, err)
}

func TestProcessorUnknownOpcodeIsFatal(t *testing.T) {
	_, p := newTestProcessor(t)
	require.NoError(t, p.Load([]byte{200}))
	err := p.Run()
	require.Error(t, err)
}

func TestProcessorMoveClearsSource(t *testing.T) {
	bus, p := newTestProcessor(t)

	_, err := bus.IO(SignalWrite, 200, uint64(55))
	require.NoError(t, err)

	// MOVE: i_mode=0 (pointer), o_mode=0 (direct) p1=200(address), out=300
	program := []byte{
		OpMOVE, 0, 0, 200, 0, 0x2C, 0x01,
		OpTERMOK,
	}
	require.NoError(t, p.Load(program))
	require.NoError(t, p.Run())

	v, err := bus.IO(SignalReadInt, 300, uint64(2))
	require.NoError(t, err)
	require.Equal(t, uint64(55), v)

	cleared, err := bus.IO(SignalReadInt, 200, uint64(2))
	require.NoError(t, err)
	require.Equal(t, uint64(0), cleared)
}
