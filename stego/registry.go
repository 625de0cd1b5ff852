package stego

import (
	"fmt"
	"slices"
	"strings"

	"lsb-steganography/models"
)

const (
	AlgorithmLSB      = "lsb"
	AlgorithmLSBAudio = "lsb-audio"
)

// Algorithms describes every embedding algorithm the codec implements.
func Algorithms() []models.AlgorithmInfo {
	return []models.AlgorithmInfo{
		{
			Name:             AlgorithmLSB,
			Description:      "Least significant bit of every colour channel byte, alpha excluded",
			SupportedFormats: []string{MimePNG, MimeBMP, MimeTIFF},
			Capacity:         "high",
			Security:         "medium",
		},
		{
			Name:             AlgorithmLSBAudio,
			Description:      "Least significant bit of the low byte of every 16-bit PCM sample",
			SupportedFormats: []string{MimeWAV},
			Capacity:         "high",
			Security:         "medium",
		},
	}
}

// AlgorithmsFor filters Algorithms by supported format. An empty format
// returns all of them.
func AlgorithmsFor(format string) []models.AlgorithmInfo {
	all := Algorithms()
	if format == "" {
		return all
	}

	mt := NormalizeMimetype(format)
	var matched []models.AlgorithmInfo
	for _, a := range all {
		if slices.Contains(a.SupportedFormats, mt) {
			matched = append(matched, a)
		}
	}
	return matched
}

// AlgorithmForMimetype selects the algorithm by mimetype family.
func AlgorithmForMimetype(mimetype string) (string, error) {
	mt := NormalizeMimetype(mimetype)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return AlgorithmLSB, nil
	case strings.HasPrefix(mt, "audio/"):
		return AlgorithmLSBAudio, nil
	}
	return "", unsupportedFormat(StageValidating, nil, "no algorithm for file type %q", mimetype)
}

// Recommend picks an algorithm for a carrier type and explains the choice.
func Recommend(mimetype string, messageLength int) (*models.Recommendation, error) {
	if !IsSupported(mimetype) {
		return nil, unsupportedFormat(StageValidating, nil, "unsupported file type %q", mimetype)
	}

	name, err := AlgorithmForMimetype(mimetype)
	if err != nil {
		return nil, err
	}

	carrier := "pixel"
	if name == AlgorithmLSBAudio {
		carrier = "sample"
	}
	return &models.Recommendation{
		Algorithm: name,
		Reason: fmt.Sprintf("%s embeds one bit per %s byte; a %d byte message needs %d bits including the length prefix",
			name, carrier, messageLength, RequiredBits(messageLength)),
	}, nil
}
