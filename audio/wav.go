// Package audio handles the RIFF/WAVE container around PCM sample data
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

const (
	RIFFHeaderBytes  = 12
	ChunkHeaderBytes = 8
	CanonicalHeader  = 44
	PCMFormatTag     = 1
	fmtChunkBytes    = 16
)

var (
	ErrNotRIFF      = errors.New("invalid WAV file: missing RIFF header")
	ErrNotWAVE      = errors.New("invalid WAV file: not WAVE format")
	ErrMissingFmt   = errors.New("invalid WAV file: missing fmt chunk")
	ErrMissingData  = errors.New("invalid WAV file: missing data chunk")
	ErrInvalidFmt   = errors.New("invalid WAV file: unreadable fmt chunk")
	ErrHeaderLength = errors.New("invalid WAV file: too short")
)

// WAVInfo describes the format of a WAV file and where its PCM bytes live.
type WAVInfo struct {
	Format     *audio.Format
	Channels   int
	SampleRate int
	BitDepth   int
	DataOffset int
	DataSize   int
}

type WAVCodec struct{}

func NewWAVCodec() *WAVCodec {
	return &WAVCodec{}
}

// Decode validates the RIFF/WAVE markers, locates the fmt and data chunks and
// returns the format together with the PCM byte range of wavData.
func (wc *WAVCodec) Decode(wavData []byte) (*WAVInfo, []byte, error) {
	if len(wavData) < RIFFHeaderBytes {
		return nil, nil, ErrHeaderLength
	}
	if !bytes.Equal(wavData[0:4], riff.RiffID[:]) {
		return nil, nil, ErrNotRIFF
	}
	if !bytes.Equal(wavData[8:12], riff.WavFormatID[:]) {
		return nil, nil, ErrNotWAVE
	}

	fmtFound := false
	dataOffset, dataSize := -1, 0

	offset := RIFFHeaderBytes
	for offset+ChunkHeaderBytes <= len(wavData) {
		chunkID := wavData[offset : offset+4]
		chunkSize := int(binary.LittleEndian.Uint32(wavData[offset+4 : offset+8]))

		switch {
		case bytes.Equal(chunkID, riff.FmtID[:]):
			fmtFound = true
		case bytes.Equal(chunkID, riff.DataFormatID[:]):
			dataOffset = offset + ChunkHeaderBytes
			dataSize = chunkSize
		}

		if fmtFound && dataOffset >= 0 {
			break
		}

		next := offset + ChunkHeaderBytes + chunkSize + chunkSize%2
		if next <= offset {
			break
		}
		offset = next
	}

	if !fmtFound {
		return nil, nil, ErrMissingFmt
	}
	if dataOffset < 0 {
		return nil, nil, ErrMissingData
	}
	if dataOffset+dataSize > len(wavData) || dataSize < 0 {
		dataSize = len(wavData) - dataOffset
	}

	info, err := wc.readFormat(wavData)
	if err != nil {
		return nil, nil, err
	}
	info.DataOffset = dataOffset
	info.DataSize = dataSize

	return info, wavData[dataOffset : dataOffset+dataSize], nil
}

func (wc *WAVCodec) readFormat(wavData []byte) (*WAVInfo, error) {
	decoder := wav.NewDecoder(bytes.NewReader(wavData))
	decoder.ReadInfo()

	if decoder.NumChans == 0 || decoder.SampleRate == 0 || decoder.BitDepth == 0 {
		return nil, ErrInvalidFmt
	}

	return &WAVInfo{
		Format:     decoder.Format(),
		Channels:   int(decoder.NumChans),
		SampleRate: int(decoder.SampleRate),
		BitDepth:   int(decoder.BitDepth),
	}, nil
}

// Encode writes a canonical 44-byte PCM header for info followed by pcmData.
func (wc *WAVCodec) Encode(pcmData []byte, info *WAVInfo) ([]byte, error) {
	if info == nil || info.Channels <= 0 || info.SampleRate <= 0 || info.BitDepth <= 0 {
		return nil, fmt.Errorf("cannot encode WAV without format information")
	}

	blockAlign := info.Channels * info.BitDepth / 8
	byteRate := info.SampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, CanonicalHeader+len(pcmData)))
	buf.Write(riff.RiffID[:])
	binary.Write(buf, binary.LittleEndian, uint32(CanonicalHeader-8+len(pcmData)))
	buf.Write(riff.WavFormatID[:])

	buf.Write(riff.FmtID[:])
	binary.Write(buf, binary.LittleEndian, uint32(fmtChunkBytes))
	binary.Write(buf, binary.LittleEndian, uint16(PCMFormatTag))
	binary.Write(buf, binary.LittleEndian, uint16(info.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(info.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(info.BitDepth))

	buf.Write(riff.DataFormatID[:])
	binary.Write(buf, binary.LittleEndian, uint32(len(pcmData)))
	buf.Write(pcmData)

	return buf.Bytes(), nil
}

// PCM16ToBuffer converts little-endian 16-bit PCM into an audio.IntBuffer.
// A trailing odd byte is ignored.
func PCM16ToBuffer(pcmData []byte, format *audio.Format) *audio.IntBuffer {
	sampleCount := len(pcmData) / 2
	samples := make([]int, sampleCount)

	for i := range sampleCount {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcmData[i*2:])))
	}

	return &audio.IntBuffer{
		Format:         format,
		Data:           samples,
		SourceBitDepth: 16,
	}
}
