// display.go - indexed-colour/text display

/*
display.go implements the VRAM-mapped display described in
components/display.py: writes land here through the bus at a
VRAM-relative offset, are classified into the colour, text, palette or
mode region, and an explicit Refresh renders the current state into an
RGBA framebuffer. Dirty-region bookkeeping (grounded on the teacher's
video_chip.go) lets two consecutive refreshes with no intervening write
be cheap and byte-identical, matching the round-trip property tests
rely on.
*/

package machine

const (
	screenWidth  = 320
	screenHeight = 200

	colourBound  = 24000 // VRAM-relative: [0, colourBound) is the colour framebuffer
	textBound    = 32000 // [colourBound, textBound) is the text buffer
	paletteBound = 32008 // [textBound, paletteBound) is the palette
	modeBound    = 32009 // [paletteBound, modeBound) is the mode byte
	vramSize     = 32010 // one past the reserved byte at modeBound

	lineRegisterAddr = 22 // RAM address holding the text cursor's line

	fontTableOffset = 16 + 500 // reserved bytes (16) + font offset (500)

	textCharsPerLine   = screenWidth / 8
	textCharsPerColumn = screenHeight / 8

	ModeGraphics = 0
	ModeText     = 1
)

// Display holds the VRAM-backed registers (colour/text/palette/mode) and
// renders them into an RGBA framebuffer on Refresh.
type Display struct {
	vram  []byte // colour + text + palette + mode, VRAM-relative
	bus   *Bus   // used to read the font table and the line register
	frame []byte // RGBA framebuffer, screenWidth*screenHeight*4

	dirty bool
}

// NewDisplay creates a display with a blank framebuffer. bus is used to
// read the font table (an absolute RAM region) and the persisted cursor
// line register; it is wired after both Bus and Display exist.
func NewDisplay() *Display {
	return &Display{
		vram:  make([]byte, vramSize),
		frame: make([]byte, screenWidth*screenHeight*4),
		dirty: true,
	}
}

// Attach wires the bus the display reads auxiliary state (font, cursor)
// through. Calling it more than once replaces the wiring.
func (d *Display) Attach(bus *Bus) {
	d.bus = bus
}

// WriteVRAM implements VRAMWriter. offset is relative to the VRAM base
// (bus address 1000).
func (d *Display) WriteVRAM(offset uint64, data []byte) error {
	if offset >= vramSize {
		return fault(SubsystemDisplay, "negative write location", offset)
	}
	end := offset + uint64(len(data))
	if end > vramSize {
		end = vramSize
		data = data[:end-offset]
	}
	copy(d.vram[offset:end], data)
	d.dirty = true
	return nil
}

func (d *Display) mode() byte {
	return d.vram[paletteBound]
}

func (d *Display) palette() []byte {
	return d.vram[textBound:paletteBound]
}

// decodeColour expands an RRRGGGBB palette byte to 24-bit RGB.
func decodeColour(c byte) (r, g, b byte) {
	r = (c >> 5) & 0x07
	g = (c >> 2) & 0x07
	b = c & 0x03
	return r * 32, g * 32, b * 64
}

func (d *Display) setPixel(x, y int, r, g, b byte) {
	if x < 0 || x >= screenWidth || y < 0 || y >= screenHeight {
		return
	}
	i := (y*screenWidth + x) * 4
	d.frame[i+0] = r
	d.frame[i+1] = g
	d.frame[i+2] = b
	d.frame[i+3] = 0xff
}

// Refresh renders the current VRAM contents into the RGBA framebuffer.
// It is a no-op when nothing has changed since the previous call, so
// that two consecutive refreshes with no intervening write are
// idempotent.
func (d *Display) Refresh() error {
	if !d.dirty {
		return nil
	}

	switch d.mode() {
	case ModeGraphics:
		d.renderGraphics()
	case ModeText:
		if err := d.renderText(); err != nil {
			return err
		}
	default:
		return fault(SubsystemDisplay, "unknown display mode", d.mode())
	}

	d.dirty = false
	return nil
}

// Frame returns the current RGBA framebuffer. The returned slice is
// owned by the Display and must not be retained past the next Refresh.
func (d *Display) Frame() []byte {
	return d.frame
}

// read3Bits extracts the 3-bit index starting at the given bit offset
// from a big-endian bitstream formed by concatenating data's bytes MSB
// first, matching components/display.py's bitstring construction (index
// groups may straddle a byte boundary).
func read3Bits(data []byte, bitPos int) byte {
	var v byte
	for i := 0; i < 3; i++ {
		byteIdx := (bitPos + i) / 8
		bitIdx := 7 - (bitPos+i)%8
		var bit byte
		if byteIdx < len(data) {
			bit = (data[byteIdx] >> uint(bitIdx)) & 0x01
		}
		v = (v << 1) | bit
	}
	return v
}

func (d *Display) renderGraphics() {
	colour := d.vram[:colourBound]
	pal := d.palette()

	x, y, bitPos := 0, 0, 0
	for i := 0; i < screenWidth*screenHeight; i++ {
		idx := read3Bits(colour, bitPos)
		bitPos += 3

		r, g, b := decodeColour(pal[idx])
		d.setPixel(x, y, r, g, b)

		if x >= screenWidth-1 {
			x = 0
			y++
		} else {
			x++
		}
	}
}

func (d *Display) renderText() error {
	if d.bus == nil {
		return fault(SubsystemDisplay, "display has no bus attached")
	}

	rawHeader, err := d.bus.IO(SignalReadBytes, fontTableOffset, uint64(4))
	if err != nil {
		return err
	}
	header := rawHeader.([]byte)
	n := int(header[3])
	raw, err := d.bus.IO(SignalReadBytes, fontTableOffset, uint64(4+9*n))
	if err != nil {
		return err
	}
	fm, err := parseFont(raw.([]byte))
	if err != nil {
		return err
	}

	pal := d.palette()
	text := d.vram[colourBound:textBound]

	line, err := d.readLine()
	if err != nil {
		return err
	}
	col := 0

	for _, c := range text {
		switch c {
		case textNull:
			continue
		case textNewline:
			line++
			if err := d.writeLine(line); err != nil {
				return err
			}
			continue
		case textHome:
			line = 0
			if err := d.writeLine(line); err != nil {
				return err
			}
			continue
		}

		g := fm.lookup(c)
		for gy := 0; gy < 8; gy++ {
			row := g[gy]
			for gx := 0; gx < 8; gx++ {
				bit := (row >> uint(7-gx)) & 0x01
				r, gg, b := decodeColour(pal[bit])
				d.setPixel(col*8+gx, line*8+gy, r, gg, b)
			}
		}

		col++
		if col >= textCharsPerLine {
			line++
			if err := d.writeLine(line); err != nil {
				return err
			}
			col = 0
		}
		if line >= textCharsPerColumn {
			line = 0
			if err := d.writeLine(line); err != nil {
				return err
			}
		}
	}

	return nil
}

func (d *Display) readLine() (int, error) {
	v, err := d.bus.IO(SignalReadInt, lineRegisterAddr, uint64(1))
	if err != nil {
		return 0, err
	}
	return int(v.(uint64)), nil
}

func (d *Display) writeLine(line int) error {
	_, err := d.bus.IO(SignalWrite, lineRegisterAddr, uint64(line))
	return err
}
