package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "github.com/gen2brain/heic"
	"golang.org/x/image/draw"
)

// Codec turns image files into grayscale buffers and buffers back into files.
type Codec interface {
	Decode(path string) (*PixelBuffer, error)
	Encode(buf *PixelBuffer, path string) error
}

// DecodeError reports an input that could not be read as a supported image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a buffer that could not be written to its destination.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

var errEmptyImage = errors.New("image has zero width or height")

// imageCodec is the Codec backed by the image package decoders registered
// above (PNG, JPEG, HEIC). Output is always PNG.
type imageCodec struct{}

// NewCodec returns the default Codec.
func NewCodec() Codec {
	return imageCodec{}
}

// Decode reads path and reduces it to 8-bit grayscale at native resolution.
// Transparency is dropped rather than composited, so fully transparent
// pixels keep the luminance of their color channels.
func (imageCodec) Decode(path string) (*PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if img == nil {
		return nil, &DecodeError{Path: path, Err: errEmptyImage}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Path: path, Err: errEmptyImage}
	}
	return toGray(img), nil
}

// Encode writes buf as a grayscale PNG, replacing anything already at path.
func (imageCodec) Encode(buf *PixelBuffer, path string) error {
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return &EncodeError{Path: path, Err: errEmptyImage}
	}
	if len(buf.Pix) != buf.Width*buf.Height {
		return &EncodeError{Path: path, Err: fmt.Errorf("buffer has %d samples, want %d", len(buf.Pix), buf.Width*buf.Height)}
	}

	gray := &image.Gray{
		Pix:    buf.Pix,
		Stride: buf.Width,
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}

	f, err := os.Create(path)
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	if err := png.Encode(f, gray); err != nil {
		f.Close()
		return &EncodeError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

// toGray copies img into a tightly packed grayscale buffer.
func toGray(img image.Image) *PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := &PixelBuffer{Width: w, Height: h, Pix: make([]byte, w*h)}

	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			copy(buf.Pix[y*w:(y+1)*w], row)
		}
		return buf
	}

	if isOpaque(img) {
		dst := &image.Gray{Pix: buf.Pix, Stride: w, Rect: image.Rect(0, 0, w, h)}
		draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
		return buf
	}

	// Non-opaque sources: un-premultiply and ignore alpha.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			buf.Pix[y*w+x] = luma(c.R, c.G, c.B)
		}
	}
	return buf
}

func isOpaque(img image.Image) bool {
	o, ok := img.(interface{ Opaque() bool })
	return ok && o.Opaque()
}

// luma uses the same weights as color.GrayModel.
func luma(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}
