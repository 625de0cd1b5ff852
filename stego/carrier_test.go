package stego

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lsb-steganography/img"
)

func TestImageCarrierOffsets(t *testing.T) {
	cases := []struct {
		channels int
		capacity int
		first    []int
	}{
		{1, 16, []int{0, 1, 2, 3, 4}},
		{3, 48, []int{0, 1, 2, 3, 4}},
		{4, 48, []int{0, 1, 2, 4, 5, 6, 8}},
	}

	for _, tc := range cases {
		raster := &img.Raster{Pix: make([]byte, 16*tc.channels), Width: 4, Height: 4, Channels: tc.channels}
		carrier, err := NewImageCarrier(raster)
		require.NoError(t, err)

		offsets := slices.Collect(carrier.Offsets())
		assert.Len(t, offsets, tc.capacity)
		assert.Equal(t, tc.capacity, carrier.Capacity())
		assert.Equal(t, tc.first, offsets[:len(tc.first)])
		assert.True(t, slices.IsSorted(offsets))

		if tc.channels == 4 {
			for _, off := range offsets {
				assert.NotZero(t, (off+1)%4)
			}
		}
	}
}

func TestNewImageCarrierRejectsBadRaster(t *testing.T) {
	_, err := NewImageCarrier(&img.Raster{Pix: make([]byte, 10), Width: 2, Height: 2, Channels: 3})
	assert.True(t, IsKind(err, KindUnsupportedFormat))

	_, err = NewImageCarrier(&img.Raster{Pix: make([]byte, 8), Width: 2, Height: 2, Channels: 2})
	assert.True(t, IsKind(err, KindUnsupportedFormat))
}

func TestWriteReadBits(t *testing.T) {
	raster := &img.Raster{Pix: make([]byte, 32), Width: 4, Height: 2, Channels: 4}
	for i := range raster.Pix {
		raster.Pix[i] = 0xaa
	}
	carrier, err := NewImageCarrier(raster)
	require.NoError(t, err)

	bits := []byte{1, 0, 1, 1, 0}
	written, err := WriteBits(carrier, bits)
	require.NoError(t, err)
	assert.Equal(t, len(bits), written)

	read := ReadBits(carrier)
	require.Len(t, read, carrier.Capacity())
	assert.Equal(t, bits, read[:len(bits)])

	// offsets 0,1,2,4,5 changed low bit only; alpha at 3 untouched
	assert.Equal(t, []byte{0xab, 0xaa, 0xab, 0xaa, 0xab, 0xaa}, raster.Pix[:6])

	_, err = WriteBits(carrier, make([]byte, carrier.Capacity()+1))
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindInsufficientCapacity, se.Kind)
	assert.Equal(t, StageEmbedding, se.Stage)
}

func TestLoadImageCarrierFormats(t *testing.T) {
	src := opaqueImage(6, 5)

	cases := map[string][]byte{
		MimePNG:  pngBytes(t, src),
		MimeBMP:  bmpBytes(t, src),
		MimeTIFF: tiffBytes(t, src),
	}

	for mt, data := range cases {
		t.Run(mt, func(t *testing.T) {
			carrier, err := LoadCarrier(data, mt)
			require.NoError(t, err)

			ic, ok := carrier.(*ImageCarrier)
			require.True(t, ok)
			assert.Equal(t, 6, ic.Width())
			assert.Equal(t, 5, ic.Height())
			assert.Equal(t, 3, ic.Channels())
			assert.Equal(t, 90, carrier.Capacity())
			assert.Equal(t, MimePNG, carrier.OutputMimetype())
		})
	}
}

func TestLoadImageCarrierRejectsMismatchedSignature(t *testing.T) {
	data := bmpBytes(t, opaqueImage(4, 4))

	_, err := LoadCarrier(data, MimePNG)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnsupportedFormat))

	_, err = LoadCarrier([]byte{0x89, 0x50, 0x4E, 0x47, 0, 0, 0}, MimePNG)
	assert.True(t, IsKind(err, KindUnsupportedFormat))

	_, err = LoadCarrier(data, "image/gif")
	assert.True(t, IsKind(err, KindUnsupportedFormat))
}

func TestImageCarrierSerializeReloads(t *testing.T) {
	carrier, err := LoadImageCarrier(pngBytes(t, translucentImage(5, 3)), MimePNG)
	require.NoError(t, err)
	require.Equal(t, 4, carrier.Channels())

	_, err = WriteBits(carrier, ones(carrier.Capacity()))
	require.NoError(t, err)

	out, err := carrier.Serialize()
	require.NoError(t, err)

	reloaded, err := LoadImageCarrier(out, MimePNG)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Channels())
	assert.Equal(t, carrier.Stream(), reloaded.Stream())
}

func TestAudioCarrier(t *testing.T) {
	data := wavBytes(t, 192)

	carrier, err := LoadCarrier(data, "audio/x-wav")
	require.NoError(t, err)
	ac, ok := carrier.(*AudioCarrier)
	require.True(t, ok)

	assert.Equal(t, 96, carrier.Capacity())
	offsets := slices.Collect(carrier.Offsets())
	require.Len(t, offsets, 96)
	for i, off := range offsets {
		assert.Equal(t, 2*i, off)
	}

	assert.Equal(t, 1, ac.Info().Channels)
	assert.Equal(t, 8000, ac.Info().SampleRate)
	assert.Equal(t, 16, ac.Info().BitDepth)

	original := slices.Clone(carrier.Stream())
	_, err = WriteBits(carrier, ones(96))
	require.NoError(t, err)
	for i := 1; i < len(original); i += 2 {
		assert.Equal(t, original[i], carrier.Stream()[i])
	}

	out, err := carrier.Serialize()
	require.NoError(t, err)
	assert.Len(t, out, 44+192)

	reloaded, err := LoadAudioCarrier(out, MimeWAV)
	require.NoError(t, err)
	assert.Equal(t, carrier.Stream(), reloaded.Stream())
}

func TestAudioCarrierOddLength(t *testing.T) {
	carrier, err := LoadAudioCarrier(wavBytes(t, 7), MimeWAV)
	require.NoError(t, err)
	assert.Equal(t, 4, carrier.Capacity())
	assert.Len(t, slices.Collect(carrier.Offsets()), 4)
}

func TestLoadAudioCarrierRejectsInvalid(t *testing.T) {
	valid := wavBytes(t, 16)

	notWave := slices.Clone(valid)
	copy(notWave[8:], "AVI ")

	cases := map[string][]byte{
		"not riff":  pngBytes(t, opaqueImage(2, 2)),
		"not wave":  notWave,
		"no data":   valid[:36],
		"too short": valid[:10],
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCarrier(data, MimeWAV)
			assert.True(t, IsKind(err, KindUnsupportedFormat))
		})
	}

	_, err := LoadCarrier(valid, "audio/mpeg")
	assert.True(t, IsKind(err, KindUnsupportedFormat))
}

func TestCarrierMetadata(t *testing.T) {
	carrier, err := LoadCarrier(wavBytes(t, 16000), MimeWAV)
	require.NoError(t, err)

	meta := carrier.Metadata()
	assert.Equal(t, "audio", meta.Kind)
	assert.Equal(t, 8000, meta.CapacityBits)
	assert.Equal(t, 1000, meta.CapacityBytes)
	assert.InDelta(t, 1.0, meta.Duration, 1e-9)

	carrier, err = LoadCarrier(pngBytes(t, translucentImage(4, 2)), MimePNG)
	require.NoError(t, err)
	meta = carrier.Metadata()
	assert.Equal(t, "image", meta.Kind)
	assert.Equal(t, 4, meta.Channels)
	assert.Equal(t, 24, meta.CapacityBits)
}
