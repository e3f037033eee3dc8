// audio.go - audio playback hook for the memory-mapped sound region

/*
AudioBackend turns writes into machine.AudioSink (the 134-byte MMIO
sound stub from §3 of the data model) into an audible beep. Non-goals
exclude real sound synthesis, so every backend here only ever plays a
short fixed-frequency tone per write, matching the teacher's SoundChip
hook shape without reimplementing its synthesiser.
*/

package main

type AudioBackend interface {
	Beep(offset uint64, data []byte)
	Close() error
}
