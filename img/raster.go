// Package img converts raster images to and from flat 8-bit channel buffers.
package img

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	MimePNG  = "image/png"
	MimeBMP  = "image/bmp"
	MimeTIFF = "image/tiff"
)

// DefaultMaxPixels bounds width*height when no other limit is given.
const DefaultMaxPixels = 1 << 25

var (
	ErrUnsupported = errors.New("unsupported image format")
	ErrTooLarge    = errors.New("image dimensions exceed pixel limit")
)

var decoders = map[string]func(io.Reader) (image.Image, error){
	MimePNG:  png.Decode,
	MimeBMP:  bmp.Decode,
	MimeTIFF: tiff.Decode,
}

var configDecoders = map[string]func(io.Reader) (image.Config, error){
	MimePNG:  png.DecodeConfig,
	MimeBMP:  bmp.DecodeConfig,
	MimeTIFF: tiff.DecodeConfig,
}

// Raster is a decoded image laid out row-major with Channels bytes per pixel.
// Channels is 1 (gray), 3 (RGB) or 4 (non-premultiplied RGBA).
type Raster struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

// Decode decodes data with the decoder registered for mimetype, limited to
// DefaultMaxPixels.
func Decode(data []byte, mimetype string) (*Raster, error) {
	return DecodeLimit(data, mimetype, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel limit. The header is checked
// before any pixel buffer is allocated. maxPixels <= 0 means DefaultMaxPixels.
func DecodeLimit(data []byte, mimetype string, maxPixels int) (*Raster, error) {
	decode, ok := decoders[mimetype]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mimetype)
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, err := configDecoders[mimetype](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s header: %w", mimetype, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("failed to decode %s: empty image", mimetype)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d, limit %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	m, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", mimetype, err)
	}

	b := m.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("failed to decode %s: empty image", mimetype)
	}

	return FromImage(m), nil
}

// FromImage copies m into a Raster, choosing the narrowest channel layout that
// preserves its content.
func FromImage(m image.Image) *Raster {
	b := m.Bounds()
	r := &Raster{Width: b.Dx(), Height: b.Dy()}

	switch src := m.(type) {
	case *image.Gray:
		r.Channels = 1
		r.Pix = copyRows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), r.Width, r.Height, 1)
		return r
	case *image.Gray16:
		r.Channels = 1
		r.Pix = convert(m, 1)
		return r
	case *image.NRGBA:
		if !src.Opaque() {
			r.Channels = 4
			r.Pix = copyRows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), r.Width, r.Height, 4)
			return r
		}
	}

	if isOpaque(m) {
		r.Channels = 3
		if src, ok := m.(*image.RGBA); ok {
			r.Pix = dropAlpha(src)
		} else {
			r.Pix = convert(m, 3)
		}
		return r
	}

	r.Channels = 4
	r.Pix = convert(m, 4)
	return r
}

func isOpaque(m image.Image) bool {
	if o, ok := m.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

func copyRows(pix []byte, stride, start, width, height, channels int) []byte {
	rowBytes := width * channels
	out := make([]byte, rowBytes*height)
	for y := range height {
		i := start + y*stride
		copy(out[y*rowBytes:(y+1)*rowBytes], pix[i:i+rowBytes])
	}
	return out
}

func dropAlpha(src *image.RGBA) []byte {
	b := src.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := src.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			out = append(out, src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			i += 4
		}
	}
	return out
}

func convert(m image.Image, channels int) []byte {
	b := m.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if channels == 1 {
				out = append(out, color.GrayModel.Convert(m.At(x, y)).(color.Gray).Y)
				continue
			}
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			out = append(out, c.R, c.G, c.B)
			if channels == 4 {
				out = append(out, c.A)
			}
		}
	}
	return out
}

// Image wraps the raster in the image type matching its channel count.
func (r *Raster) Image() image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)

	switch r.Channels {
	case 1:
		return &image.Gray{Pix: r.Pix, Stride: r.Width, Rect: rect}
	case 3:
		m := image.NewRGBA(rect)
		for i, j := 0, 0; i+2 < len(r.Pix); i, j = i+3, j+4 {
			m.Pix[j] = r.Pix[i]
			m.Pix[j+1] = r.Pix[i+1]
			m.Pix[j+2] = r.Pix[i+2]
			m.Pix[j+3] = 0xff
		}
		return m
	default:
		return &image.NRGBA{Pix: r.Pix, Stride: r.Width * 4, Rect: rect}
	}
}

// EncodePNG encodes the raster losslessly.
func (r *Raster) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
