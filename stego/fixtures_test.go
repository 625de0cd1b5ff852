package stego

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"lsb-steganography/audio"
)

// opaqueImage is an RGB carrier with w*h*3 eligible bytes.
func opaqueImage(w, h int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			m.SetRGBA(x, y, color.RGBA{R: uint8(x*31 + y), G: uint8(y*17 + 3), B: uint8(x ^ y), A: 0xff})
		}
	}
	return m
}

// translucentImage is an RGBA carrier whose alpha bytes are all distinct from
// the colour bytes.
func translucentImage(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			m.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 9), G: uint8(y * 5), B: uint8(x + y), A: uint8(0x80 + x + y)})
		}
	}
	return m
}

func pngBytes(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, m))
	return buf.Bytes()
}

func bmpBytes(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, m))
	return buf.Bytes()
}

func tiffBytes(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, m, nil))
	return buf.Bytes()
}

// wavBytes builds a mono 16-bit WAV with pcmLen bytes of sample data.
func wavBytes(t *testing.T, pcmLen int) []byte {
	t.Helper()
	pcm := make([]byte, pcmLen)
	for i := range pcm {
		pcm[i] = byte(i*13 + 7)
	}
	data, err := audio.NewWAVCodec().Encode(pcm, &audio.WAVInfo{Channels: 1, SampleRate: 8000, BitDepth: 16})
	require.NoError(t, err)
	return data
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// oversizedPNG is a valid PNG header declaring w x h RGBA pixels with no
// image data behind it.
func oversizedPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	writeChunk := func(typ string, data []byte) {
		binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6
	writeChunk("IHDR", ihdr)
	writeChunk("IDAT", nil)
	writeChunk("IEND", nil)
	return buf.Bytes()
}
