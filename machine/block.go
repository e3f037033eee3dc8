// block.go - memory block for the FVC core

/*
block.go implements the flat byte store that backs RAM. It mirrors the
Python reference's MemBlock layout: the first 16 bytes of the block are
reserved header fields (size, a writeable flag, and a write-floor), and
everything at or above the write-floor is both readable and writeable.
Addresses below the floor remain readable but reject writes.

This is the leaf of the dependency chain: Bus wraps a Block, Display
writes land here through Bus, and Processor only ever touches memory
through Bus. Block itself knows nothing about VRAM, the bus, or the
processor.
*/

package machine

import "encoding/binary"

const (
	blockSizeMin = 16
	blockSizeMax = 1 << 32

	headerSize        = 4 // bytes 0..3: block size, little-endian u32
	writeableOffset   = 4 // byte 4: writeable flag
	writeFloorOffset  = 5 // bytes 5..9: write floor
	writeFloorWidth   = 5
	defaultWriteFloor = 16
)

// Block is a contiguous byte array with a write-floor and an optional
// global read-only flag, matching components/memory.py in the reference
// implementation.
type Block struct {
	data []byte
}

// NewBlock allocates a block of the given size. Writing is permitted
// everywhere at or above the write-floor (set to defaultWriteFloor)
// unless writeable is false, in which case every write is rejected
// regardless of address.
func NewBlock(size uint64, writeable bool) (*Block, error) {
	if size < blockSizeMin {
		return nil, fault(SubsystemMemory, "memory block size too small, minimum is", blockSizeMin, size)
	}
	if size > blockSizeMax {
		return nil, fault(SubsystemMemory, "memory block size too large, maximum is", uint64(blockSizeMax), size)
	}

	b := &Block{data: make([]byte, size)}
	binary.LittleEndian.PutUint32(b.data[0:headerSize], uint32(size))
	if writeable {
		b.data[writeableOffset] = 1
	}
	b.setWriteFloor(defaultWriteFloor)
	return b, nil
}

func (b *Block) setWriteFloor(addr uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], addr)
	copy(b.data[writeFloorOffset:writeFloorOffset+writeFloorWidth], buf[:writeFloorWidth])
}

// Size returns the block's declared size (the value recorded in its header).
func (b *Block) Size() uint64 {
	return uint64(binary.LittleEndian.Uint32(b.data[0:headerSize]))
}

// ReadOnly reports whether the block rejects all writes regardless of address.
func (b *Block) ReadOnly() bool {
	return b.data[writeableOffset] == 0
}

// WriteFloor returns the lowest address that currently accepts writes.
func (b *Block) WriteFloor() uint64 {
	var buf [8]byte
	copy(buf[:writeFloorWidth], b.data[writeFloorOffset:writeFloorOffset+writeFloorWidth])
	return binary.LittleEndian.Uint64(buf[:])
}

// Read returns size bytes starting at addr. size must be at least 1.
func (b *Block) Read(addr uint64, size uint64) ([]byte, error) {
	if size == 0 {
		size = 1
	}
	if addr+size > b.Size() {
		return nil, fault(SubsystemMemory, "out-of-bounds read at address", addr)
	}
	out := make([]byte, size)
	copy(out, b.data[addr:addr+size])
	return out, nil
}

// Write stores val at addr. val may be a byte slice or an integer; integers
// are serialised little-endian using the minimum number of bytes required
// to represent the value, but never fewer than one.
func (b *Block) Write(addr uint64, val any) error {
	bytes, err := toBytes(val)
	if err != nil {
		return err
	}
	size := uint64(len(bytes))

	if b.ReadOnly() {
		return fault(SubsystemMemory, "memory is in read-only mode")
	}
	if addr+size > b.Size() {
		return fault(SubsystemMemory, "out-of-bounds write at address", addr)
	}
	if addr < b.WriteFloor() {
		return fault(SubsystemMemory, "write to read-only address", addr)
	}

	copy(b.data[addr:addr+size], bytes)
	return nil
}

// toBytes converts an int/uint value to its minimal little-endian byte
// representation (at least one byte), or passes a []byte straight through.
func toBytes(val any) ([]byte, error) {
	switch v := val.(type) {
	case []byte:
		if len(v) == 0 {
			return nil, fault(SubsystemMemory, "write requires at least one byte")
		}
		return v, nil
	case uint64:
		return minimalLE(v), nil
	case uint32:
		return minimalLE(uint64(v)), nil
	case uint16:
		return minimalLE(uint64(v)), nil
	case uint8:
		return []byte{v}, nil
	case int:
		if v < 0 {
			return nil, fault(SubsystemMemory, "negative write value", v)
		}
		return minimalLE(uint64(v)), nil
	default:
		return nil, fault(SubsystemMemory, "unsupported write value type", v)
	}
}

// minimalLE encodes v little-endian in the fewest bytes that represent it,
// at least one.
func minimalLE(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	n := 8
	for n > 1 && buf[n-1] == 0 {
		n--
	}
	return buf[:n]
}
