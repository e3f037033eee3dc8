// audio.go - memory-mapped sound controller stub

/*
The reference implementation's sound device is never implemented (snd =
None); bus.py still reserves and forwards writes to it. AudioSink keeps
that forwarding meaningful without inventing synthesis semantics the
specification doesn't define: a region of raw bytes a caller can read
back, plus an optional BeepFunc a host frontend can wire to an actual
audio backend (cmd/fvcbios wires github.com/ebitengine/oto/v3 here).
*/

package machine

const audioRegionSize = sndEnd - sndStart + 1

// AudioSink implements AudioWriter. It records the raw bytes written to
// the sound-controller region and, if BeepFunc is set, forwards them to
// a host-provided playback callback.
type AudioSink struct {
	data     [audioRegionSize]byte
	BeepFunc func(offset uint64, data []byte)
}

func NewAudioSink() *AudioSink {
	return &AudioSink{}
}

func (a *AudioSink) WriteAudio(offset uint64, data []byte) error {
	if offset >= audioRegionSize {
		return fault(SubsystemBus, "audio write out of range", offset)
	}
	end := offset + uint64(len(data))
	if end > audioRegionSize {
		end = audioRegionSize
		data = data[:end-offset]
	}
	copy(a.data[offset:end], data)
	if a.BeepFunc != nil {
		a.BeepFunc(offset, data)
	}
	return nil
}

// Read returns a copy of the raw audio-region bytes, used by BIOS debug
// commands.
func (a *AudioSink) Read(offset, size uint64) []byte {
	if offset >= audioRegionSize {
		return nil
	}
	end := offset + size
	if end > audioRegionSize {
		end = audioRegionSize
	}
	out := make([]byte, end-offset)
	copy(out, a.data[offset:end])
	return out
}
