//go:build !headless

// backend_ebiten.go - windowed RenderBackend using ebiten

/*
Grounded on the teacher's video_backend_ebiten.go: an ebiten.Game whose
Draw blits a pre-sized RGBA image every tick, plus clipboard-paste and
special-key forwarding lifted from the same file's handleKeyboardInput/
handleClipboardPaste. Trimmed to this machine's needs: one fixed
320x200 indexed-colour display (already expanded to RGBA by
machine.Display), no palette/texture/sprite capability negotiation.
*/

package main

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

// newVulkanBackend is set by backend_vulkan.go when built with the
// `vulkan` tag; nil otherwise, in which case -backend=vulkan falls back
// to the ebiten backend with a warning.
var newVulkanBackend func() (RenderBackend, error)

func newRenderBackend(name string) (RenderBackend, error) {
	if name == backendVulkan {
		if newVulkanBackend != nil {
			return newVulkanBackend()
		}
		fmt.Println("fvcbios: built without the vulkan tag, falling back to the ebiten backend")
	}
	return &ebitenBackend{
		width:  320,
		height: 200,
	}, nil
}

type ebitenBackend struct {
	window     *ebiten.Image
	width      int
	height     int
	frame      []byte
	mu         sync.RWMutex
	keyHandler func(byte, byte)

	clipboardOnce sync.Once
	clipboardOK   bool
}

func (e *ebitenBackend) Start(title string, width, height int) error {
	e.width, e.height = width, height
	e.frame = make([]byte, width*height*4)
	ebiten.SetWindowSize(width*2, height*2)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	go func() {
		if err := ebiten.RunGame(e); err != nil {
			fmt.Printf("fvcbios: ebiten exited: %v\n", err)
		}
	}()
	return nil
}

func (e *ebitenBackend) UpdateFrame(rgba []byte) error {
	e.mu.Lock()
	copy(e.frame, rgba)
	e.mu.Unlock()
	return nil
}

func (e *ebitenBackend) SetKeyHandler(fn func(byte, byte)) {
	e.mu.Lock()
	e.keyHandler = fn
	e.mu.Unlock()
}

func (e *ebitenBackend) Close() error { return nil }

func (e *ebitenBackend) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	e.mu.RLock()
	handler := e.keyHandler
	e.mu.RUnlock()
	if handler == nil {
		return nil
	}

	shift := byte(0)
	if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		shift = 1
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		e.pasteClipboard(handler)
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0 && r <= 0xFF {
			handler(byte(r), shift)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		handler('\n', shift)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		handler(0x08, shift)
	}
	return nil
}

func (e *ebitenBackend) pasteClipboard(handler func(byte, byte)) {
	e.clipboardOnce.Do(func() {
		e.clipboardOK = clipboard.Init() == nil
	})
	if !e.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	for _, b := range data {
		handler(b, 0)
	}
}

func (e *ebitenBackend) Draw(screen *ebiten.Image) {
	if e.window == nil {
		e.window = ebiten.NewImage(e.width, e.height)
	}
	e.mu.RLock()
	e.window.WritePixels(e.frame)
	e.mu.RUnlock()
	screen.DrawImage(e.window, nil)
}

func (e *ebitenBackend) Layout(_, _ int) (int, int) {
	return e.width, e.height
}
