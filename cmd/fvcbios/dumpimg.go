// dumpimg.go - PNG export of the current framebuffer (BIOS `dumpimg` command)

/*
Supplements spec.md's BIOS command list (not in the original
computer_interface.py set) for offline inspection of a rendered frame.
Wires golang.org/x/image/draw to upscale the native 320x200 framebuffer
2x with nearest-neighbor sampling before stdlib image/png encodes it -
the teacher's go.mod carries golang.org/x/image for exactly this kind
of pixel-format work, even though none of its own source files import
it directly (it is a transitive dependency of ebiten's image pipeline);
here it gets a direct, concrete use.
*/

package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

const dumpimgScale = 2

func dumpFrame(rgba []byte, width, height int, path string) error {
	src := &image.RGBA{
		Pix:    rgba,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	dst := image.NewRGBA(image.Rect(0, 0, width*dumpimgScale, height*dumpimgScale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dumpimg: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("dumpimg: %w", err)
	}
	return nil
}
