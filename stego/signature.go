package stego

import (
	"bytes"
	"mime"
	"slices"
	"strings"
)

const (
	MimePNG  = "image/png"
	MimeBMP  = "image/bmp"
	MimeTIFF = "image/tiff"
	MimeWAV  = "audio/wav"
)

type signature struct {
	mimetype string
	offset   int
	magic    []byte
}

var signatures = []signature{
	{MimePNG, 0, []byte{0x89, 0x50, 0x4E, 0x47}},
	{MimeBMP, 0, []byte{0x42, 0x4D}},
	{MimeTIFF, 0, []byte{0x49, 0x49, 0x2A, 0x00}},
	{MimeWAV, 0, []byte{0x52, 0x49, 0x46, 0x46}},
}

var mimeAliases = map[string]string{
	"image/x-png":    MimePNG,
	"image/x-ms-bmp": MimeBMP,
	"image/x-bmp":    MimeBMP,
	"image/tif":      MimeTIFF,
	"image/x-tiff":   MimeTIFF,
	"audio/x-wav":    MimeWAV,
	"audio/wave":     MimeWAV,
	"audio/vnd.wave": MimeWAV,
}

// SupportedMimetypes lists the carrier types accepted for embed and extract.
func SupportedMimetypes() []string {
	return []string{MimePNG, MimeBMP, MimeTIFF, MimeWAV}
}

// IsSupported reports whether mimetype, after normalisation, is a carrier type.
func IsSupported(mimetype string) bool {
	return slices.Contains(SupportedMimetypes(), NormalizeMimetype(mimetype))
}

// NormalizeMimetype lowercases mimetype, drops parameters and folds known
// aliases onto their canonical names.
func NormalizeMimetype(mimetype string) string {
	mt := strings.ToLower(strings.TrimSpace(mimetype))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if canonical, ok := mimeAliases[mt]; ok {
		return canonical
	}
	return mt
}

// DetectFormat returns the mimetype whose magic bytes prefix data, or "".
func DetectFormat(data []byte) string {
	for _, sig := range signatures {
		end := sig.offset + len(sig.magic)
		if len(data) >= end && bytes.Equal(data[sig.offset:end], sig.magic) {
			return sig.mimetype
		}
	}
	return ""
}

// MatchesSignature reports whether data carries the magic bytes of mimetype.
func MatchesSignature(data []byte, mimetype string) bool {
	return DetectFormat(data) == NormalizeMimetype(mimetype)
}
