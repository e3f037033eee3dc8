package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T) (*Bus, *Display) {
	t.Helper()
	display := NewDisplay()
	bus, err := NewBus(display, nil)
	require.NoError(t, err)
	display.Attach(bus)
	return bus, display
}

func TestDisplayGraphicsModeDecodesPalette(t *testing.T) {
	bus, display := newTestMachine(t)

	paletteAddr := uint64(vramStart + textBound)
	_, err := bus.IO(SignalWrite, paletteAddr, uint64(0xFF))
	require.NoError(t, err)

	require.NoError(t, display.Refresh())

	frame := display.Frame()
	require.Equal(t, byte(224), frame[0]) // R
	require.Equal(t, byte(224), frame[1]) // G
	require.Equal(t, byte(192), frame[2]) // B
}

func TestDisplayRefreshIsIdempotentWhenNotDirty(t *testing.T) {
	_, display := newTestMachine(t)

	require.NoError(t, display.Refresh())
	before := append([]byte(nil), display.Frame()...)

	require.NoError(t, display.Refresh())
	require.Equal(t, before, display.Frame())
}

func TestDisplayRejectsWriteBeyondVRAM(t *testing.T) {
	_, display := newTestMachine(t)
	err := display.WriteVRAM(vramSize, []byte{1})
	require.Error(t, err)
}

func TestDecodeColourExpandsToRGB(t *testing.T) {
	r, g, b := decodeColour(0xFF)
	require.Equal(t, byte(224), r)
	require.Equal(t, byte(224), g)
	require.Equal(t, byte(192), b)

	r, g, b = decodeColour(0x00)
	require.Equal(t, byte(0), r)
	require.Equal(t, byte(0), g)
	require.Equal(t, byte(0), b)
}

func TestRead3BitsStraddlesByteBoundary(t *testing.T) {
	// 0b10110100 0b11xxxxxx -> first three groups: 101, 101, 001...
	data := []byte{0b10110100, 0b11000000}
	require.Equal(t, byte(0b101), read3Bits(data, 0))
	require.Equal(t, byte(0b101), read3Bits(data, 3))
	require.Equal(t, byte(0b001), read3Bits(data, 6))
	require.Equal(t, byte(0b100), read3Bits(data, 9))
}
