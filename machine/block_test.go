package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockWriteReadRoundTrip(t *testing.T) {
	b, err := NewBlock(64, true)
	require.NoError(t, err)

	require.NoError(t, b.Write(20, uint64(0x1234)))
	got, err := b.Read(20, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0x34, 0x12}, got)
}

func TestBlockRejectsWriteBelowFloor(t *testing.T) {
	b, err := NewBlock(64, true)
	require.NoError(t, err)

	err = b.Write(10, uint64(1))
	require.Error(t, err)
	var f *Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, SubsystemMemory, f.Subsystem)
}

func TestBlockRejectsOutOfBoundsAccess(t *testing.T) {
	b, err := NewBlock(32, true)
	require.NoError(t, err)

	_, err = b.Read(30, 8)
	require.Error(t, err)

	err = b.Write(30, uint64(0x01020304))
	require.Error(t, err)
}

func TestBlockReadOnlyRejectsAllWrites(t *testing.T) {
	b, err := NewBlock(32, false)
	require.NoError(t, err)

	err = b.Write(20, uint64(1))
	require.Error(t, err)
}

func TestNewBlockRejectsUndersizedBlock(t *testing.T) {
	_, err := NewBlock(4, true)
	require.Error(t, err)
}

func TestMinimalLEUsesFewestBytes(t *testing.T) {
	require.Equal(t, []byte{0x00}, minimalLE(0))
	require.Equal(t, []byte{0xFF}, minimalLE(0xFF))
	require.Equal(t, []byte{0x00, 0x01}, minimalLE(0x100))
}
