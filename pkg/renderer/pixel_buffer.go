package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// PixelBuffer holds 8-bit RGB triples in row-major order, row 0 at the top
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer creates a black width x height buffer
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// NewPixelBufferFromChannels converts a flat buffer of channel values, three per
// pixel in pixel-major order, into a PixelBuffer. Values above 255 saturate.
func NewPixelBufferFromChannels(width, height int, channels []uint32) (*PixelBuffer, error) {
	if len(channels) != width*height*3 {
		return nil, fmt.Errorf("channel buffer has %d values, want %d for %dx%d", len(channels), width*height*3, width, height)
	}
	pb := NewPixelBuffer(width, height)
	for i, c := range channels {
		pb.Pix[i] = uint8(min(c, 255))
	}
	return pb, nil
}

// At returns the RGB triple at column x, row y
func (pb *PixelBuffer) At(x, y int) [3]uint8 {
	i := (y*pb.Width + x) * 3
	return [3]uint8{pb.Pix[i], pb.Pix[i+1], pb.Pix[i+2]}
}

// Set stores the RGB triple at column x, row y
func (pb *PixelBuffer) Set(x, y int, rgb [3]uint8) {
	i := (y*pb.Width + x) * 3
	copy(pb.Pix[i:i+3], rgb[:])
}

// ToRGBA converts the buffer to an opaque image
func (pb *PixelBuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pb.Width, pb.Height))
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			rgb := pb.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255})
		}
	}
	return img
}

// WritePNG encodes the buffer as PNG
func (pb *PixelBuffer) WritePNG(w io.Writer) error {
	if err := png.Encode(w, pb.ToRGBA()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePPM writes the buffer as a plain-text P3 image: a header with the
// format tag, dimensions and max channel value, then one "r g b" line per pixel
func (pb *PixelBuffer) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n255\n", pb.Width, pb.Height)
	for i := 0; i < len(pb.Pix); i += 3 {
		fmt.Fprintf(bw, "%d %d %d\n", pb.Pix[i], pb.Pix[i+1], pb.Pix[i+2])
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ppm: %w", err)
	}
	return nil
}
