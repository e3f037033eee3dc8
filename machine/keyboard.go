// keyboard.go - keyboard MMIO shim

/*
keyboard.go models the two reserved RAM bytes described in
components/keyboard.py: a character-code byte and a modifier-flags
bitfield. It has no bus routing of its own (those addresses are
plain RAM, below the VRAM window) - a host frontend calls PostKey to
inject a keypress, which writes both bytes through the bus exactly as
the original pygame loop's parse_keys does.
*/

package machine

const (
	KeyCharAddr     = 23
	KeyModifierAddr = 24
)

// Modifier bit positions within the byte at KeyModifierAddr.
const (
	ModShift = 1 << 0
	ModCaps  = 1 << 1
	ModCtrl  = 1 << 2
	ModAlt   = 1 << 3
	ModMeta  = 1 << 4
	ModDelta = 1 << 5
	_        = 1 << 6
	ModBackspace = 1 << 7
)

// Keyboard posts keystrokes into RAM through a bus, converting ASCII to
// the FVC text encoding the way the original input driver does.
type Keyboard struct {
	bus *Bus
}

func NewKeyboard(bus *Bus) *Keyboard {
	return &Keyboard{bus: bus}
}

// PostKey writes the FVC-encoded key byte and the modifier bitfield. An
// ASCII ordinal with no FVC mapping is silently dropped, matching the
// original driver's "unsupported input" behaviour.
func (k *Keyboard) PostKey(ascii byte, modifiers byte) error {
	code, ok := asciiToText[ascii]
	if !ok {
		return nil
	}
	if _, err := k.bus.IO(SignalWrite, KeyCharAddr, uint64(code)); err != nil {
		return err
	}
	_, err := k.bus.IO(SignalWrite, KeyModifierAddr, uint64(modifiers))
	return err
}
