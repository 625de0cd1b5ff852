package img

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func encodePNG(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, m))
	return buf.Bytes()
}

func gradientNRGBA(w, h int, alpha uint8) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			m.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 20), B: uint8(x + y), A: alpha})
		}
	}
	return m
}

func TestDecodeChannelLayouts(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i * 40)
	}

	cases := []struct {
		name     string
		img      image.Image
		channels int
	}{
		{"gray", gray, 1},
		{"opaque", gradientNRGBA(4, 3, 0xff), 3},
		{"translucent", gradientNRGBA(4, 3, 0x80), 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Decode(encodePNG(t, tc.img), MimePNG)
			require.NoError(t, err)

			b := tc.img.Bounds()
			assert.Equal(t, tc.channels, r.Channels)
			assert.Equal(t, b.Dx(), r.Width)
			assert.Equal(t, b.Dy(), r.Height)
			assert.Len(t, r.Pix, b.Dx()*b.Dy()*tc.channels)
		})
	}
}

func TestEncodePNGPreservesBytes(t *testing.T) {
	for _, alpha := range []uint8{0xff, 0x40} {
		r, err := Decode(encodePNG(t, gradientNRGBA(5, 4, alpha)), MimePNG)
		require.NoError(t, err)

		for i := range r.Pix {
			r.Pix[i] ^= byte(i & 1)
		}
		if r.Channels == 4 {
			for i := 3; i < len(r.Pix); i += 4 {
				r.Pix[i] = alpha
			}
		}

		encoded, err := r.EncodePNG()
		require.NoError(t, err)

		reloaded, err := Decode(encoded, MimePNG)
		require.NoError(t, err)
		assert.Equal(t, r.Channels, reloaded.Channels)
		assert.Equal(t, r.Pix, reloaded.Pix)
	}
}

func TestDecodeBMPAndTIFF(t *testing.T) {
	src := gradientNRGBA(6, 2, 0xff)

	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, src))
	r, err := Decode(bmpBuf.Bytes(), MimeBMP)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Channels)
	assert.Equal(t, []byte{0, 0, 0, 10, 0, 1}, r.Pix[:6])

	var tiffBuf bytes.Buffer
	require.NoError(t, tiff.Encode(&tiffBuf, src, nil))
	r, err = Decode(tiffBuf.Bytes(), MimeTIFF)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Width)
	assert.Equal(t, 2, r.Height)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("not an image"), "image/gif")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Decode([]byte("not an image"), MimePNG)
	assert.Error(t, err)
}

// pngHeaderOnly builds a PNG whose IHDR declares w x h RGBA pixels followed
// by an empty IDAT.
func pngHeaderOnly(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(typ string, data []byte) {
		binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6
	chunk("IHDR", ihdr)
	chunk("IDAT", nil)
	chunk("IEND", nil)
	return buf.Bytes()
}

// bmpHeaderOnly builds a 24-bit BMP header declaring w x h with no pixel data.
func bmpHeaderOnly(w, h int32) []byte {
	b := make([]byte, 54)
	copy(b, "BM")
	binary.LittleEndian.PutUint32(b[2:], 54)
	binary.LittleEndian.PutUint32(b[10:], 54)
	binary.LittleEndian.PutUint32(b[14:], 40)
	binary.LittleEndian.PutUint32(b[18:], uint32(w))
	binary.LittleEndian.PutUint32(b[22:], uint32(h))
	binary.LittleEndian.PutUint16(b[26:], 1)
	binary.LittleEndian.PutUint16(b[28:], 24)
	return b
}

func TestDecodeRejectsHugeDimensions(t *testing.T) {
	cases := map[string]struct {
		data     []byte
		mimetype string
	}{
		"png": {pngHeaderOnly(60000, 60000), MimePNG},
		"bmp": {bmpHeaderOnly(60000, 60000), MimeBMP},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(tc.data, tc.mimetype)
			assert.ErrorIs(t, err, ErrTooLarge)
		})
	}
}

func TestDecodeLimit(t *testing.T) {
	data := encodePNG(t, gradientNRGBA(5, 4, 0xff))

	_, err := DecodeLimit(data, MimePNG, 19)
	assert.ErrorIs(t, err, ErrTooLarge)

	r, err := DecodeLimit(data, MimePNG, 20)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Width)

	r, err = DecodeLimit(data, MimePNG, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Height)
}

func TestFromImageSubImage(t *testing.T) {
	full := gradientNRGBA(8, 8, 0x80)
	sub := full.SubImage(image.Rect(2, 3, 5, 6))

	r := FromImage(sub)
	require.Equal(t, 4, r.Channels)
	assert.Equal(t, 3, r.Width)
	assert.Equal(t, []byte{20, 60, 5, 0x80}, r.Pix[:4])
}
