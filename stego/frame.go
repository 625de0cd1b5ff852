package stego

import (
	"encoding/binary"
	"errors"
)

// LengthPrefixBits is the width of the big-endian payload bit count that
// precedes every hidden payload.
const LengthPrefixBits = 32

var (
	errShortHeader   = errors.New("fewer bits than the length prefix")
	errZeroLength    = errors.New("length prefix is zero")
	errLengthOverrun = errors.New("length prefix exceeds available bits")
)

// TextToBits expands every byte of text into 8 bits, most significant first.
func TextToBits(text string) []byte {
	return bytesToBits([]byte(text))
}

// BitsToText packs bits into bytes and returns them as a string. A trailing
// group of fewer than 8 bits is dropped.
func BitsToText(bits []byte) string {
	return string(bitsToBytes(bits))
}

// maxPayloadBits is the largest payload the length prefix can describe.
const maxPayloadBits = 1<<LengthPrefixBits - 1

// checkFrameLength fails when a payload of n bits cannot be framed.
func checkFrameLength(n uint64) error {
	if n > maxPayloadBits {
		return payloadTooLong(n)
	}
	return nil
}

// Frame prepends the payload length, counted in bits, as 32 big-endian bits.
func Frame(payload []byte) []byte {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	framed := make([]byte, 0, LengthPrefixBits+len(payload))
	framed = append(framed, bytesToBits(header[:])...)
	return append(framed, payload...)
}

// Unframe reads the length prefix and returns the payload bits it announces.
func Unframe(bits []byte) (int, []byte, error) {
	if len(bits) < LengthPrefixBits {
		return 0, nil, corruptedData(StageExtracting, errShortHeader)
	}

	length := binary.BigEndian.Uint32(bitsToBytes(bits[:LengthPrefixBits]))
	if length == 0 {
		return 0, nil, corruptedData(StageExtracting, errZeroLength)
	}
	if uint64(length) > uint64(len(bits)-LengthPrefixBits) {
		return 0, nil, corruptedData(StageExtracting, errLengthOverrun)
	}

	n := int(length)
	return n, bits[LengthPrefixBits : LengthPrefixBits+n], nil
}

func bytesToBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

func bitsToBytes(bits []byte) []byte {
	out := make([]byte, 0, len(bits)/8)
	for i := 0; i+8 <= len(bits); i += 8 {
		var b byte
		for j := range 8 {
			b = (b << 1) | (bits[i+j] & 1)
		}
		out = append(out, b)
	}
	return out
}
