// Package quality measures how much embedding disturbed a carrier
package quality

import (
	"math"

	"github.com/go-audio/audio"

	wavfile "lsb-steganography/audio"
)

const (
	maxByteValue   = 255.0
	maxSampleValue = 1.0
)

// BytePSNR compares two byte streams using an 8-bit peak.
func BytePSNR(original, stego []byte) float64 {
	if len(original) != len(stego) || len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	return psnr(mse, maxByteValue)
}

// SamplePSNR compares two PCM streams sample by sample. 16-bit PCM is decoded
// and normalised to [-1, 1); other depths fall back to BytePSNR.
func SamplePSNR(original, stego []byte, format *audio.Format, bitDepth int) float64 {
	if bitDepth != 16 {
		return BytePSNR(original, stego)
	}

	if format == nil {
		format = &audio.Format{}
	}
	a := normalize(wavfile.PCM16ToBuffer(original, format))
	b := normalize(wavfile.PCM16ToBuffer(stego, format))
	return FloatPSNR(a, b)
}

// FloatPSNR calculates PSNR for normalised float samples
func FloatPSNR(original, stego []float64) float64 {
	if len(original) != len(stego) || len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := original[i] - stego[i]
		mse += diff * diff
	}
	mse /= float64(len(original))

	return psnr(mse, maxSampleValue)
}

func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}

func psnr(mse, peak float64) float64 {
	// identical signals
	if mse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(peak/math.Sqrt(mse))
}

// normalize scales samples by 2^(bitDepth-1).
func normalize(buf *audio.IntBuffer) []float64 {
	scaled := buf.AsFloat32Buffer()
	out := make([]float64, len(scaled.Data))
	for i, v := range scaled.Data {
		out[i] = float64(v)
	}
	return out
}
