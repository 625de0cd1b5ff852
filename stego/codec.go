// Package stego hides text in the least significant bits of image pixels and
// WAV samples.
package stego

import (
	"bytes"
	"os"

	"lsb-steganography/crypto"
	"lsb-steganography/models"
	"lsb-steganography/quality"
)

// Codec runs embed and extract pipelines. It holds no mutable state and may be
// shared between goroutines.
type Codec struct {
	config models.StegoConfig
}

// EmbedResult is the serialized stego file and what was written into it.
type EmbedResult struct {
	Data         []byte
	Mimetype     string
	Algorithm    string
	BitsEmbedded int
	Capacity     int
	PSNR         float64
}

// CapacityReport answers whether a message of a given length fits a carrier.
type CapacityReport struct {
	CanFit          bool
	CapacityBits    int
	CapacityBytes   int
	RequestedLength int
	EstimatedLength int
	RequiredBits    int
	Algorithm       string
}

func NewCodec(config *models.StegoConfig) *Codec {
	c := &Codec{}
	if config != nil {
		c.config = *config
	}
	return c
}

type source func() ([]byte, error)

func fromFile(path string) source {
	return func() ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, unsupportedFormat(StageLoading, err, "failed to read carrier file")
		}
		return data, nil
	}
}

func fromBytes(data []byte) source {
	return func() ([]byte, error) { return data, nil }
}

// Embed hides message in the carrier file at path.
func (c *Codec) Embed(path, message, mimetype string) (*EmbedResult, error) {
	return c.embed(fromFile(path), message, mimetype)
}

// EmbedBytes hides message in an in-memory carrier file.
func (c *Codec) EmbedBytes(data []byte, message, mimetype string) (*EmbedResult, error) {
	return c.embed(fromBytes(data), message, mimetype)
}

func (c *Codec) embed(load source, message, mimetype string) (*EmbedResult, error) {
	mt, algorithm, err := validateMimetype(mimetype)
	if err != nil {
		return nil, err
	}
	if message == "" {
		return nil, invalidInput("message cannot be empty")
	}

	payload := message
	if c.config.HasPassphrase() {
		cipher := crypto.NewPassphraseCipher(c.config.Passphrase, c.config.LegacySalt)
		if payload, err = cipher.Encrypt(message); err != nil {
			return nil, internalError(StageEncrypting, err, "failed to encrypt message")
		}
	}

	payloadBits := TextToBits(payload)
	if err := checkFrameLength(uint64(len(payloadBits))); err != nil {
		return nil, err
	}
	framed := Frame(payloadBits)

	data, err := load()
	if err != nil {
		return nil, err
	}
	carrier, err := c.loadCarrier(data, mt)
	if err != nil {
		return nil, err
	}

	if err := EnsureCapacity(carrier, len(framed)); err != nil {
		return nil, err
	}

	original := bytes.Clone(carrier.Stream())
	written, err := WriteBits(carrier, framed)
	if err != nil {
		return nil, err
	}

	out, err := carrier.Serialize()
	if err != nil {
		return nil, internalError(StageSerializing, err, "failed to serialize carrier")
	}

	return &EmbedResult{
		Data:         out,
		Mimetype:     carrier.OutputMimetype(),
		Algorithm:    algorithm,
		BitsEmbedded: written,
		Capacity:     carrier.Capacity(),
		PSNR:         carrierPSNR(carrier, original),
	}, nil
}

// Extract recovers the message hidden in the carrier file at path.
func (c *Codec) Extract(path, mimetype string) (string, error) {
	return c.extract(fromFile(path), mimetype)
}

// ExtractBytes recovers the message hidden in an in-memory carrier file.
func (c *Codec) ExtractBytes(data []byte, mimetype string) (string, error) {
	return c.extract(fromBytes(data), mimetype)
}

func (c *Codec) extract(load source, mimetype string) (string, error) {
	mt, _, err := validateMimetype(mimetype)
	if err != nil {
		return "", err
	}

	data, err := load()
	if err != nil {
		return "", err
	}
	carrier, err := c.loadCarrier(data, mt)
	if err != nil {
		return "", err
	}

	_, payload, err := Unframe(ReadBits(carrier))
	if err != nil {
		return "", err
	}
	text := BitsToText(payload)

	if !c.config.HasPassphrase() {
		return text, nil
	}

	cipher := crypto.NewPassphraseCipher(c.config.Passphrase, c.config.LegacySalt)
	message, err := cipher.Decrypt(text)
	if err != nil {
		return "", corruptedData(StageDecrypting, err)
	}
	return message, nil
}

// CheckCapacity reports whether a message of messageLength bytes fits the
// carrier file at path. With a passphrase the length is scaled by
// EncryptionOverhead.
func (c *Codec) CheckCapacity(path string, messageLength int, mimetype string) (*CapacityReport, error) {
	return c.checkCapacity(fromFile(path), messageLength, mimetype)
}

func (c *Codec) CheckCapacityBytes(data []byte, messageLength int, mimetype string) (*CapacityReport, error) {
	return c.checkCapacity(fromBytes(data), messageLength, mimetype)
}

func (c *Codec) checkCapacity(load source, messageLength int, mimetype string) (*CapacityReport, error) {
	mt, algorithm, err := validateMimetype(mimetype)
	if err != nil {
		return nil, err
	}
	if messageLength < 0 {
		return nil, invalidInput("message length cannot be negative")
	}

	data, err := load()
	if err != nil {
		return nil, err
	}
	carrier, err := c.loadCarrier(data, mt)
	if err != nil {
		return nil, err
	}

	estimated := EstimateForEncryption(messageLength, c.config.HasPassphrase())
	required := RequiredBits(estimated)

	return &CapacityReport{
		CanFit:          CheckCapacity(carrier, required),
		CapacityBits:    carrier.Capacity(),
		CapacityBytes:   carrier.Capacity() / 8,
		RequestedLength: messageLength,
		EstimatedLength: estimated,
		RequiredBits:    required,
		Algorithm:       algorithm,
	}, nil
}

// Inspect loads a carrier and describes it without modifying anything.
func (c *Codec) Inspect(data []byte, mimetype string) (*models.CarrierMetadata, error) {
	mt, _, err := validateMimetype(mimetype)
	if err != nil {
		return nil, err
	}
	carrier, err := c.loadCarrier(data, mt)
	if err != nil {
		return nil, err
	}
	meta := carrier.Metadata()
	return &meta, nil
}

func (c *Codec) loadCarrier(data []byte, mt string) (Carrier, error) {
	return loadCarrier(data, mt, c.config.MaxPixels)
}

func validateMimetype(mimetype string) (string, string, error) {
	mt := NormalizeMimetype(mimetype)
	if !IsSupported(mt) {
		return "", "", unsupportedFormat(StageValidating, nil, "unsupported file type %q", mimetype)
	}
	algorithm, err := AlgorithmForMimetype(mt)
	if err != nil {
		return "", "", err
	}
	return mt, algorithm, nil
}

func carrierPSNR(carrier Carrier, original []byte) float64 {
	if ac, ok := carrier.(*AudioCarrier); ok {
		return quality.SamplePSNR(original, ac.Stream(), ac.Info().Format, ac.Info().BitDepth)
	}
	return quality.BytePSNR(original, carrier.Stream())
}
