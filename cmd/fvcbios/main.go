// main.go - BIOS read-eval loop for the FVC virtual computer

/*
This is the "external collaborator" the specification calls
non-normative: a REPL over the wired-together machine.Machine, built
the way the teacher's main.go builds its own BIOS - construct the
core, wire peripherals, then hand control to an interactive loop - but
collapsed to this module's fixed address map and its one-window,
one-sound-stub peripheral set instead of the teacher's MapIO
registration dance. Flag parsing (-palette/-bootimage/-font/-headless/
-backend) is grounded on bassosimone-risc32/cmd/vm/main.go's
flag.String/flag.Bool usage.
*/

package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/calendis/fvc/asm"
	"github.com/calendis/fvc/machine"
)

func main() {
	palettePath := flag.String("palette", "", "default palette file (8 binary-string lines)")
	bootImagePath := flag.String("bootimage", "", "boot image file (one pixel index per line)")
	fontPath := flag.String("font", "", "font table file")
	headless := flag.Bool("headless", false, "run without opening a window")
	backendName := flag.String("backend", backendAuto, "render backend: auto or vulkan")
	flag.Parse()

	b, err := newBios(*backendName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fvcbios: %v\n", err)
		os.Exit(1)
	}
	b.headless = *headless
	defer b.close()

	if *palettePath != "" {
		if err := b.cmdLoadPaletteFile(*palettePath); err != nil {
			fmt.Fprintf(os.Stderr, "fvcbios: %v\n", err)
			os.Exit(1)
		}
	}
	if *bootImagePath != "" {
		if err := b.cmdLoadBootImageFile(*bootImagePath); err != nil {
			fmt.Fprintf(os.Stderr, "fvcbios: %v\n", err)
			os.Exit(1)
		}
	}
	if *fontPath != "" {
		if err := b.cmdLoadFontFile(*fontPath); err != nil {
			fmt.Fprintf(os.Stderr, "fvcbios: %v\n", err)
			os.Exit(1)
		}
	}

	if !*headless {
		if err := b.backend.Start("FVC", 320, 200); err != nil {
			fmt.Fprintf(os.Stderr, "fvcbios: %v\n", err)
			os.Exit(1)
		}
		b.backend.SetKeyHandler(func(ascii, mods byte) {
			_ = b.m.Keyboard.PostKey(ascii, mods)
		})
	}

	b.repl()
}

type bios struct {
	m        *machine.Machine
	backend  RenderBackend
	audio    AudioBackend
	headless bool
}

func newBios(backendName string) (*bios, error) {
	m, err := machine.New()
	if err != nil {
		return nil, err
	}
	backend, err := newRenderBackend(backendName)
	if err != nil {
		return nil, err
	}
	audio, err := newAudioBackend()
	if err != nil {
		return nil, err
	}
	m.Audio.BeepFunc = audio.Beep

	return &bios{m: m, backend: backend, audio: audio}, nil
}

func (b *bios) close() {
	_ = b.backend.Close()
	_ = b.audio.Close()
}

func (b *bios) repl() {
	sc := bufio.NewScanner(os.Stdin)
	fmt.Println("fvcbios ready. Type a command, or 'quit' to exit.")
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		cmd := strings.TrimSpace(sc.Text())
		if cmd == "" {
			continue
		}
		if cmd == "quit" {
			return
		}
		if err := b.dispatch(cmd, sc); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// dispatch runs one BIOS command. It is also the entry point `script`
// replays non-interactively.
func (b *bios) dispatch(cmd string, sc *bufio.Scanner) error {
	switch cmd {
	case "randimg":
		return b.cmdRandImg()
	case "randpal":
		return b.cmdRandPal()
	case "testimg":
		return b.cmdTestImg()
	case "loadprog":
		fmt.Print("path: ")
		sc.Scan()
		return b.cmdLoadProg(strings.TrimSpace(sc.Text()))
	case "showgvram":
		return b.cmdShowGVRAM()
	case "showtvram":
		return b.cmdShowTVRAM()
	case "showram":
		return b.cmdShowRAM()
	case "showins":
		return b.cmdShowIns()
	case "showpal":
		return b.cmdShowPal()
	case "textmode":
		return b.setMode(machine.ModeText)
	case "graphicsmode":
		return b.setMode(machine.ModeGraphics)
	case "loadfont":
		fmt.Print("path: ")
		sc.Scan()
		return b.cmdLoadFontFile(strings.TrimSpace(sc.Text()))
	case "clearram":
		return b.cmdClearRAM()
	case "dumpimg":
		fmt.Print("output path: ")
		sc.Scan()
		return b.cmdDumpImg(strings.TrimSpace(sc.Text()))
	case "script":
		fmt.Print("script path: ")
		sc.Scan()
		path := strings.TrimSpace(sc.Text())
		return runScript(path, func(c string) error { return b.dispatch(c, sc) })
	case "play":
		return b.cmdPlay()
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (b *bios) setMode(mode byte) error {
	_, err := b.m.Bus.IO(machine.SignalWrite, 1000+32008, uint64(mode))
	if err != nil {
		return err
	}
	return b.refresh()
}

func (b *bios) refresh() error {
	if err := b.m.Display.Refresh(); err != nil {
		return err
	}
	return b.backend.UpdateFrame(b.m.Display.Frame())
}

func (b *bios) cmdRandImg() error {
	buf := make([]byte, 24000)
	rand.Read(buf)
	if _, err := b.m.Bus.IO(machine.SignalWrite, 1000, buf); err != nil {
		return err
	}
	return b.refresh()
}

func (b *bios) cmdRandPal() error {
	pal := make([]byte, 8)
	rand.Read(pal)
	if _, err := b.m.Bus.IO(machine.SignalWrite, 1000+32000, pal); err != nil {
		return err
	}
	return b.refresh()
}

func (b *bios) cmdTestImg() error {
	indices := make([]byte, 320*200)
	for i := range indices {
		indices[i] = byte(i % 8)
	}
	packed := pack3Bits(indices)
	if _, err := b.m.Bus.IO(machine.SignalWrite, 1000, packed); err != nil {
		return err
	}
	return b.refresh()
}

// binaryMagic is the "9I6" header every assembled binary starts with,
// followed by a one-byte assembler version.
var binaryMagic = [3]byte{0x39, 0x49, 0x36}

func (b *bios) cmdLoadProg(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("loadprog: truncated binary")
	}
	header := data[:4]
	if header[0] != binaryMagic[0] || header[1] != binaryMagic[1] || header[2] != binaryMagic[2] {
		return &machine.Fault{Subsystem: machine.SubsystemLoader, Message: "bad header", Args: []any{header[0], header[1], header[2], header[3]}}
	}
	if err := b.m.Processor.Load(data[4:]); err != nil {
		return err
	}
	if err := b.m.Processor.Run(); err != nil {
		return err
	}
	return b.refresh()
}

func (b *bios) cmdShowGVRAM() error {
	v, err := b.m.Bus.IO(machine.SignalReadBytes, 1000, uint64(24000))
	if err != nil {
		return err
	}
	fmt.Printf("% x\n", v)
	return nil
}

func (b *bios) cmdShowTVRAM() error {
	v, err := b.m.Bus.IO(machine.SignalReadBytes, 1000+24000, uint64(8000))
	if err != nil {
		return err
	}
	fmt.Printf("% x\n", v)
	return nil
}

func (b *bios) cmdShowRAM() error {
	v, err := b.m.Bus.IO(machine.SignalReadBytes, 0, uint64(256))
	if err != nil {
		return err
	}
	fmt.Printf("% x\n", v)
	return nil
}

func (b *bios) cmdShowIns() error {
	fmt.Printf("IPT=%d OPC=%d\n", b.m.Processor.IPT(), b.m.Processor.OPC())
	return nil
}

func (b *bios) cmdShowPal() error {
	v, err := b.m.Bus.IO(machine.SignalReadBytes, 1000+32000, uint64(8))
	if err != nil {
		return err
	}
	fmt.Printf("% x\n", v)
	return nil
}

func (b *bios) cmdClearRAM() error {
	zeros := make([]byte, 33144-16)
	_, err := b.m.Bus.IO(machine.SignalWrite, 16, zeros)
	if err != nil {
		return err
	}
	return b.refresh()
}

func (b *bios) cmdDumpImg(path string) error {
	if err := b.m.Display.Refresh(); err != nil {
		return err
	}
	return dumpFrame(b.m.Display.Frame(), 320, 200, path)
}

func (b *bios) cmdLoadPaletteFile(path string) error {
	pal, err := loadPaletteFile(path)
	if err != nil {
		return err
	}
	_, err = b.m.Bus.IO(machine.SignalWrite, 1000+32000, pal)
	return err
}

func (b *bios) cmdLoadBootImageFile(path string) error {
	packed, err := loadBootImageFile(path, 320*200)
	if err != nil {
		return err
	}
	_, err = b.m.Bus.IO(machine.SignalWrite, 1000, packed)
	return err
}

func (b *bios) cmdLoadFontFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loadfont: %w", err)
	}
	_, err = b.m.Bus.IO(machine.SignalWrite, 16+500, data)
	return err
}

// cmdPlay runs the currently loaded program to completion while
// forwarding raw terminal keystrokes into the keyboard MMIO shim. Only
// meaningful in -headless mode; the windowed backend already captures
// keys itself via SetKeyHandler.
func (b *bios) cmdPlay() error {
	if !b.headless {
		fmt.Println("play: the window already captures keys; use it directly")
		return nil
	}

	term := NewTerminalInput()
	done := make(chan struct{})
	var closeOnce sync.Once

	if err := term.Start(func(c byte) {
		if c == 0x04 { // Ctrl-D
			closeOnce.Do(func() { close(done) })
			return
		}
		_ = b.m.Keyboard.PostKey(c, 0)
	}); err != nil {
		return err
	}
	defer term.Stop()

	runErr := make(chan error, 1)
	go func() { runErr <- b.m.Processor.Run() }()

	select {
	case err := <-runErr:
		return err
	case <-done:
		return nil
	}
}

// assembleAndLoad is used by tests exercising the full assembler ->
// loader -> run pipeline without going through the REPL.
func assembleAndLoad(m *machine.Machine, source string) error {
	a, err := asm.New(source)
	if err != nil {
		return err
	}
	bin, err := a.Assemble()
	if err != nil {
		return err
	}
	return m.Processor.Load(bin[4:])
}
