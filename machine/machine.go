// machine.go - top-level wiring for the FVC core

/*
machine.go resolves the Display<->Bus construction cycle documented in
display.go and assembles the core components (Bus, Display,
Processor, Keyboard, AudioSink) behind a single Machine value, mirroring the
teacher's main.go construction sequence (NewSystemBus, then peripherals,
then MapIO wiring) collapsed into one constructor since this module's
address ranges are fixed rather than registered at runtime.
*/

package machine

// Machine bundles the wired-together core components. cmd/fvcbios and
// its tests use this instead of repeating the
// Display/Bus/Attach construction sequence.
type Machine struct {
	Bus       *Bus
	Display   *Display
	Processor *Processor
	Keyboard  *Keyboard
	Audio     *AudioSink
}

// New constructs a fully wired machine: a Display and AudioSink are
// created first, then a Bus routes to both, then the Display is handed
// the bus it needs for font/cursor reads, and finally a Processor and
// Keyboard are attached to the same bus.
func New() (*Machine, error) {
	display := NewDisplay()
	audio := NewAudioSink()

	bus, err := NewBus(display, audio)
	if err != nil {
		return nil, err
	}
	display.Attach(bus)

	return &Machine{
		Bus:       bus,
		Display:   display,
		Processor: NewProcessor(bus),
		Keyboard:  NewKeyboard(bus),
		Audio:     audio,
	}, nil
}
