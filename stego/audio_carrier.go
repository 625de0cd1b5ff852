package stego

import (
	"iter"

	"lsb-steganography/audio"
	"lsb-steganography/models"
)

// AudioCarrier hides bits in the low byte of each little-endian 16-bit PCM
// sample, i.e. the even offsets of the data chunk.
type AudioCarrier struct {
	info *audio.WAVInfo
	pcm  []byte
}

// LoadAudioCarrier parses a RIFF/WAVE file and copies its PCM data range.
func LoadAudioCarrier(data []byte, mimetype string) (*AudioCarrier, error) {
	mt := NormalizeMimetype(mimetype)
	if mt != MimeWAV {
		return nil, unsupportedFormat(StageLoading, nil, "unsupported audio type %q", mimetype)
	}

	info, pcm, err := audio.NewWAVCodec().Decode(data)
	if err != nil {
		return nil, unsupportedFormat(StageLoading, err, "failed to load audio")
	}

	return &AudioCarrier{info: info, pcm: append([]byte(nil), pcm...)}, nil
}

func (ac *AudioCarrier) Stream() []byte {
	return ac.pcm
}

func (ac *AudioCarrier) Offsets() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < len(ac.pcm); i += 2 {
			if !yield(i) {
				return
			}
		}
	}
}

func (ac *AudioCarrier) Capacity() int {
	return (len(ac.pcm) + 1) / 2
}

// Serialize rebuilds the file with a canonical 44-byte header. Chunks other
// than fmt and data are not carried over.
func (ac *AudioCarrier) Serialize() ([]byte, error) {
	return audio.NewWAVCodec().Encode(ac.pcm, ac.info)
}

func (ac *AudioCarrier) OutputMimetype() string {
	return MimeWAV
}

// Info returns the format recorded at load time.
func (ac *AudioCarrier) Info() *audio.WAVInfo {
	return ac.info
}

func (ac *AudioCarrier) Metadata() models.CarrierMetadata {
	capacity := ac.Capacity()
	meta := models.CarrierMetadata{
		Kind:          "audio",
		Mimetype:      MimeWAV,
		Channels:      ac.info.Channels,
		SampleRate:    ac.info.SampleRate,
		BitDepth:      ac.info.BitDepth,
		TotalBytes:    len(ac.pcm),
		CapacityBits:  capacity,
		CapacityBytes: capacity / 8,
	}

	bytesPerSecond := ac.info.SampleRate * ac.info.Channels * ac.info.BitDepth / 8
	if bytesPerSecond > 0 {
		meta.Duration = float64(len(ac.pcm)) / float64(bytesPerSecond)
	}
	return meta
}
