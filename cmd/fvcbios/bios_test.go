//go:build headless

package main

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/calendis/fvc/machine"
	"github.com/stretchr/testify/require"
)

func newTestBios(t *testing.T) *bios {
	t.Helper()
	b, err := newBios(backendAuto)
	require.NoError(t, err)
	t.Cleanup(b.close)
	return b
}

func TestAssembleAndLoadRunsToCompletion(t *testing.T) {
	m, err := machine.New()
	require.NoError(t, err)

	err = assembleAndLoad(m, "10 ADD #2 #3 #100\n20 TERM_OK\n")
	require.NoError(t, err)
	require.NoError(t, m.Processor.Run())

	v, err := m.Bus.IO(machine.SignalReadInt, 100, uint64(2))
	require.NoError(t, err)
	require.Equal(t, uint64(5), v)
}

func TestBiosTestImgThenShowGVRAMSucceeds(t *testing.T) {
	b := newTestBios(t)
	sc := bufio.NewScanner(strings.NewReader(""))

	require.NoError(t, b.dispatch("testimg", sc))
	require.NoError(t, b.dispatch("showgvram", sc))
}

func TestBiosClearRAMZeroesWritableRAM(t *testing.T) {
	b := newTestBios(t)
	sc := bufio.NewScanner(strings.NewReader(""))

	require.NoError(t, b.dispatch("clearram", sc))
	v, err := b.m.Bus.IO(machine.SignalReadBytes, 16, uint64(16))
	require.NoError(t, err)
	require.Equal(t, make([]byte, 16), v)
}

func TestBiosUnknownCommandIsError(t *testing.T) {
	b := newTestBios(t)
	sc := bufio.NewScanner(strings.NewReader(""))
	err := b.dispatch("notacommand", sc)
	require.Error(t, err)
}

func TestBiosDumpImgWritesPNGFile(t *testing.T) {
	b := newTestBios(t)
	path := t.TempDir() + "/frame.png"

	require.NoError(t, b.cmdDumpImg(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestCmdLoadProgRejectsBadHeader(t *testing.T) {
	b := newTestBios(t)
	path := t.TempDir() + "/bad.bin"
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x00, 0x00, 0x00, 0x05}, 0o644))

	err := b.cmdLoadProg(path)
	require.Error(t, err)

	var fault *machine.Fault
	require.ErrorAs(t, err, &fault)
	require.Equal(t, machine.SubsystemLoader, fault.Subsystem)
}

func TestCmdLoadProgAcceptsValidHeader(t *testing.T) {
	b := newTestBios(t)
	path := t.TempDir() + "/good.bin"
	// "9I6" + version byte, then a single TERM_OK instruction.
	require.NoError(t, os.WriteFile(path, []byte{0x39, 0x49, 0x36, 0x01, 0x05}, 0o644))

	require.NoError(t, b.cmdLoadProg(path))
}

func TestLoadBootImageFileSetsOnlyNamedPixels(t *testing.T) {
	path := t.TempDir() + "/boot_img.txt"
	require.NoError(t, os.WriteFile(path, []byte("1\n3\n"), 0o644))

	packed, err := loadBootImageFile(path, 8)
	require.NoError(t, err)

	indices := make([]byte, 8)
	for i := range indices {
		if i == 1 || i == 3 {
			indices[i] = 1
		}
	}
	require.Equal(t, pack3Bits(indices), packed)
}

func TestLoadBootImageFileRejectsOutOfRangeIndex(t *testing.T) {
	path := t.TempDir() + "/boot_img.txt"
	require.NoError(t, os.WriteFile(path, []byte("99\n"), 0o644))

	_, err := loadBootImageFile(path, 8)
	require.Error(t, err)
}
