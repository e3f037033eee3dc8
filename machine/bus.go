// bus.go - memory bus routing RAM, VRAM and the audio stub

/*
bus.go implements the single entry point through which the processor (and
everything else) reaches memory. It follows the same shape as the
teacher's memory_bus.go SystemBus: one backing byte store plus a small
set of address-range routes that additionally forward writes to
memory-mapped peripherals. Unlike the teacher's page-table MapIO, the
ranges here are fixed by the specification, so routing is a handful of
inclusive range checks rather than a general registration mechanism.
*/

package machine

const (
	ramStart  = 0
	ramEnd    = 33009
	vramStart = 1000
	vramEnd   = 33009
	sndStart  = 33010
	sndEnd    = 33143

	busMinAddr = 0
	busMaxAddr = 33144 // exclusive upper bound of the whole address space

	// TotalSize is the size of the Block a Bus is built over.
	TotalSize = busMaxAddr
)

// Signal selects the operation performed by Bus.IO, mirroring the
// reference implementation's io(signal, location, size_or_value).
type Signal int

const (
	SignalReadInt Signal = iota
	SignalWrite
	SignalReadBytes
)

// VRAMWriter receives a VRAM-relative offset and the bytes just written
// to it. Offsets start at 0 for bus address vramStart.
type VRAMWriter interface {
	WriteVRAM(offset uint64, data []byte) error
}

// AudioWriter receives a sound-controller-relative offset, matching
// VRAMWriter's shape. The reference implementation's sound device is a
// stub (snd = None); VRAMWriter/AudioWriter let tests and the BIOS
// wire whichever implementation they need, including none (a nil writer
// is skipped).
type AudioWriter interface {
	WriteAudio(offset uint64, data []byte) error
}

// Bus routes reads and writes between RAM and the memory-mapped
// peripherals that overlap it.
type Bus struct {
	mem     *Block
	display VRAMWriter
	audio   AudioWriter
}

// NewBus creates a bus over a freshly allocated RAM block sized to cover
// the whole address space (RAM, the VRAM overlap, and the audio stub).
func NewBus(display VRAMWriter, audio AudioWriter) (*Bus, error) {
	mem, err := NewBlock(TotalSize, true)
	if err != nil {
		return nil, err
	}
	return &Bus{mem: mem, display: display, audio: audio}, nil
}

// Mem exposes the backing block for callers that need raw access
// without routing.
func (b *Bus) Mem() *Block {
	return b.mem
}

func inRange(addr, lo, hi uint64) bool {
	return addr >= lo && addr <= hi
}

// IO is the bus's single entry point. The meaning of sizeOrValue depends
// on signal: a byte width for the two read signals, or an int/[]byte
// payload for SignalWrite.
func (b *Bus) IO(signal Signal, location uint64, sizeOrValue any) (any, error) {
	if location < busMinAddr || location >= busMaxAddr {
		return nil, fault(SubsystemBus, "unmapped address", location)
	}

	switch signal {
	case SignalReadInt:
		width, ok := sizeOrValue.(uint64)
		if !ok {
			return nil, fault(SubsystemBus, "improper data for read", sizeOrValue)
		}
		data, err := b.mem.Read(location, width)
		if err != nil {
			return nil, err
		}
		return leToUint64(data), nil

	case SignalReadBytes:
		width, ok := sizeOrValue.(uint64)
		if !ok {
			return nil, fault(SubsystemBus, "improper data for read", sizeOrValue)
		}
		return b.mem.Read(location, width)

	case SignalWrite:
		return nil, b.write(location, sizeOrValue)

	default:
		return nil, fault(SubsystemBus, "unknown signal", signal)
	}
}

func (b *Bus) write(location uint64, val any) error {
	bytes, err := toBytes(val)
	if err != nil {
		return err
	}

	switch {
	case inRange(location, vramStart, vramEnd):
		if b.display != nil {
			if err := b.display.WriteVRAM(location-vramStart, bytes); err != nil {
				return err
			}
		}
	case inRange(location, sndStart, sndEnd):
		if b.audio != nil {
			if err := b.audio.WriteAudio(location-sndStart, bytes); err != nil {
				return err
			}
		}
	case inRange(location, ramStart, ramEnd):
		// RAM-only write, no peripheral forwarding.
	default:
		return fault(SubsystemBus, "invalid mapping for address", location)
	}

	// Every write, regardless of routing, updates the RAM mirror.
	return b.mem.Write(location, bytes)
}

func leToUint64(data []byte) uint64 {
	var v uint64
	for i, b := range data {
		v |= uint64(b) << (8 * uint(i))
	}
	return v
}
