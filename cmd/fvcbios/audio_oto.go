//go:build !headless

// audio_oto.go - oto-backed beep player

/*
Grounded on the teacher's audio_backend_oto.go: an oto.Context plus a
single long-lived oto.Player reading from an io.Reader. The teacher's
reader pulls samples from a software synthesiser's ring buffer; this
one generates a short fixed-frequency square wave on every Beep call
and otherwise emits silence, since the specification's audio region is
a stub with no synthesis parameters of its own.
*/

package main

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate  = 44100
	toneHz      = 440
	toneSeconds = 0.08
)

type otoAudio struct {
	ctx    *oto.Context
	player *oto.Player

	mu          sync.Mutex
	samplesLeft int
	phase       float64
}

func newAudioBackend() (AudioBackend, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	a := &otoAudio{ctx: ctx}
	a.player = ctx.NewPlayer(a)
	a.player.Play()
	return a, nil
}

// Read implements io.Reader for the oto player: float32LE samples, a
// square wave while samplesLeft > 0, silence otherwise.
func (a *otoAudio) Read(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(p) / 4
	for i := 0; i < n; i++ {
		var v float32
		if a.samplesLeft > 0 {
			if a.phase < 0.5 {
				v = 0.2
			} else {
				v = -0.2
			}
			a.phase += toneHz / float64(sampleRate)
			if a.phase >= 1 {
				a.phase -= 1
			}
			a.samplesLeft--
		}
		putFloat32LE(p[i*4:i*4+4], v)
	}
	return n * 4, nil
}

func putFloat32LE(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

// Beep schedules a fixed-length tone; offset/data identify which
// sound-controller byte triggered it but do not otherwise shape it,
// since the MMIO stub carries no frequency/duration fields.
func (a *otoAudio) Beep(offset uint64, data []byte) {
	a.mu.Lock()
	a.samplesLeft = int(toneSeconds * sampleRate)
	a.mu.Unlock()
}

func (a *otoAudio) Close() error {
	a.player.Close()
	return nil
}
