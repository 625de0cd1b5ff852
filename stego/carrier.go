package stego

import (
	"iter"
	"strings"

	"lsb-steganography/models"
)

// Carrier is a loaded cover file whose byte stream can hold one payload bit
// per eligible offset.
type Carrier interface {
	// Stream is the mutable byte stream owned by the carrier.
	Stream() []byte
	// Offsets yields the eligible stream offsets in ascending order.
	Offsets() iter.Seq[int]
	// Capacity is the number of offsets Offsets yields.
	Capacity() int
	// Serialize re-encodes the stream into a complete file.
	Serialize() ([]byte, error)
	OutputMimetype() string
	Metadata() models.CarrierMetadata
}

// LoadCarrier loads data as the carrier variant for mimetype.
func LoadCarrier(data []byte, mimetype string) (Carrier, error) {
	return loadCarrier(data, mimetype, 0)
}

func loadCarrier(data []byte, mimetype string, maxPixels int) (Carrier, error) {
	mt := NormalizeMimetype(mimetype)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return loadImageCarrier(data, mt, maxPixels)
	case strings.HasPrefix(mt, "audio/"):
		return LoadAudioCarrier(data, mt)
	}
	return nil, unsupportedFormat(StageLoading, nil, "unsupported file type %q", mimetype)
}

// WriteBits sets the low bit of each eligible byte to the next bit, in offset
// order, and returns the number of bits written.
func WriteBits(c Carrier, bits []byte) (int, error) {
	if !CheckCapacity(c, len(bits)) {
		return 0, insufficientCapacity(StageEmbedding, (len(bits)+7)/8, c.Capacity()/8)
	}

	stream := c.Stream()
	written := 0
	for offset := range c.Offsets() {
		if written == len(bits) {
			break
		}
		stream[offset] = stream[offset]&^1 | bits[written]&1
		written++
	}
	return written, nil
}

// ReadBits returns the low bit of every eligible byte. The result is always
// Capacity bits long.
func ReadBits(c Carrier) []byte {
	stream := c.Stream()
	bits := make([]byte, 0, c.Capacity())
	for offset := range c.Offsets() {
		bits = append(bits, stream[offset]&1)
	}
	return bits
}
