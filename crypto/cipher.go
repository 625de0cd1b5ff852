// Package crypto contains the passphrase cipher applied to payloads before framing
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/scrypt"
)

const (
	KeySize  = 32
	IVSize   = aes.BlockSize
	SaltSize = 16

	// LegacySalt is the fixed salt of the two-field "iv:ciphertext" encoding.
	LegacySalt = "salt"

	scryptN = 16384
	scryptR = 8
	scryptP = 1

	delimiter = ":"
)

var (
	ErrEmptyPassphrase     = errors.New("passphrase cannot be empty")
	ErrMalformedCipherText = errors.New("malformed cipher text")
	ErrDecryptionFailed    = errors.New("decryption failed")
)

// PassphraseCipher encrypts text with AES-256-CBC under a scrypt-derived key.
//
// Output is hex(salt):hex(iv):hex(ciphertext) with a fresh salt per call. With
// legacySalt set it is hex(iv):hex(ciphertext) and the key is derived from the
// fixed LegacySalt. Decrypt accepts both encodings.
type PassphraseCipher struct {
	passphrase []byte
	legacySalt bool
}

func NewPassphraseCipher(passphrase string, legacySalt bool) *PassphraseCipher {
	return &PassphraseCipher{
		passphrase: []byte(passphrase),
		legacySalt: legacySalt,
	}
}

func (pc *PassphraseCipher) Encrypt(plaintext string) (string, error) {
	if len(pc.passphrase) == 0 {
		return "", ErrEmptyPassphrase
	}

	salt := []byte(LegacySalt)
	if !pc.legacySalt {
		salt = make([]byte, SaltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return "", fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	key, err := pc.deriveKey(salt)
	if err != nil {
		return "", err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	fields := []string{hex.EncodeToString(iv), hex.EncodeToString(ciphertext)}
	if !pc.legacySalt {
		fields = append([]string{hex.EncodeToString(salt)}, fields...)
	}
	return strings.Join(fields, delimiter), nil
}

func (pc *PassphraseCipher) Decrypt(encoded string) (string, error) {
	if len(pc.passphrase) == 0 {
		return "", ErrEmptyPassphrase
	}

	salt, iv, ciphertext, err := parseCipherText(encoded)
	if err != nil {
		return "", err
	}

	key, err := pc.deriveKey(salt)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: plaintext is not valid text", ErrDecryptionFailed)
	}

	return string(plaintext), nil
}

func (pc *PassphraseCipher) deriveKey(salt []byte) ([]byte, error) {
	key, err := scrypt.Key(pc.passphrase, salt, scryptN, scryptR, scryptP, KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func parseCipherText(encoded string) (salt, iv, ciphertext []byte, err error) {
	fields := strings.Split(encoded, delimiter)

	var saltHex, ivHex, ctHex string
	switch len(fields) {
	case 2:
		salt = []byte(LegacySalt)
		ivHex, ctHex = fields[0], fields[1]
	case 3:
		saltHex, ivHex, ctHex = fields[0], fields[1], fields[2]
		if salt, err = hex.DecodeString(saltHex); err != nil || len(salt) != SaltSize {
			return nil, nil, nil, fmt.Errorf("%w: invalid salt", ErrMalformedCipherText)
		}
	default:
		return nil, nil, nil, fmt.Errorf("%w: expected 2 or 3 fields, got %d", ErrMalformedCipherText, len(fields))
	}

	if iv, err = hex.DecodeString(ivHex); err != nil || len(iv) != IVSize {
		return nil, nil, nil, fmt.Errorf("%w: invalid iv", ErrMalformedCipherText)
	}
	ciphertext, err = hex.DecodeString(ctHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, nil, nil, fmt.Errorf("%w: invalid ciphertext", ErrMalformedCipherText)
	}

	return salt, iv, ciphertext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad block length", ErrDecryptionFailed)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryptionFailed)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrDecryptionFailed)
		}
	}
	return data[:len(data)-n], nil
}

// ValidatePassphrase validates if the passphrase is suitable for key derivation
func ValidatePassphrase(passphrase string) error {
	if len(passphrase) == 0 {
		return ErrEmptyPassphrase
	}
	if len(passphrase) > 256 {
		return fmt.Errorf("passphrase length cannot exceed 256 characters")
	}
	return nil
}
