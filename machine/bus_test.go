package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeVRAM struct {
	writes map[uint64][]byte
}

func (f *fakeVRAM) WriteVRAM(offset uint64, data []byte) error {
	if f.writes == nil {
		f.writes = map[uint64][]byte{}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.writes[offset] = cp
	return nil
}

func TestBusWriteRAMOnly(t *testing.T) {
	bus, err := NewBus(nil, nil)
	require.NoError(t, err)

	_, err = bus.IO(SignalWrite, 40, uint64(7))
	require.NoError(t, err)

	v, err := bus.IO(SignalReadInt, 40, uint64(1))
	require.NoError(t, err)
	require.Equal(t, uint64(7), v)
}

func TestBusForwardsVRAMWrites(t *testing.T) {
	fv := &fakeVRAM{}
	bus, err := NewBus(fv, nil)
	require.NoError(t, err)

	_, err = bus.IO(SignalWrite, vramStart+5, uint64(0xAB))
	require.NoError(t, err)

	require.Equal(t, []byte{0xAB}, fv.writes[5])

	// The RAM mirror is updated too.
	v, err := bus.IO(SignalReadInt, vramStart+5, uint64(1))
	require.NoError(t, err)
	require.Equal(t, uint64(0xAB), v)
}

func TestBusUnmappedAddressIsFatal(t *testing.T) {
	bus, err := NewBus(nil, nil)
	require.NoError(t, err)

	_, err = bus.IO(SignalReadInt, TotalSize, uint64(1))
	require.Error(t, err)
}

func TestBusUnknownSignalIsFatal(t *testing.T) {
	bus, err := NewBus(nil, nil)
	require.NoError(t, err)

	_, err = bus.IO(Signal(99), 100, uint64(1))
	require.Error(t, err)
}
