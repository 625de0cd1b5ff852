package stego

import "math"

// EncryptionOverhead is the advisory growth factor applied to message lengths
// when a passphrase is set. The embed path always checks the real cipher text.
const EncryptionOverhead = 1.5

// RequiredBits is the framed size of an n-byte payload.
func RequiredBits(n int) int {
	return LengthPrefixBits + 8*n
}

// CheckCapacity reports whether bits fit in the carrier.
func CheckCapacity(c Carrier, bits int) bool {
	return bits <= c.Capacity()
}

// EnsureCapacity fails with KindInsufficientCapacity when bits do not fit.
// Required is rounded up and available rounded down to whole bytes.
func EnsureCapacity(c Carrier, bits int) error {
	if CheckCapacity(c, bits) {
		return nil
	}
	return insufficientCapacity(StageCapacityChecking, (bits+7)/8, c.Capacity()/8)
}

// EstimateForEncryption approximates the cipher text length of an n-byte
// message.
func EstimateForEncryption(n int, hasPassphrase bool) int {
	if !hasPassphrase {
		return n
	}
	return int(math.Ceil(float64(n) * EncryptionOverhead))
}
