package handlers

import (
	"fmt"
	"unicode"
)

const (
	minPasswordLength   = 6
	capacityWarnPercent = 80
)

// passwordWarnings returns non-fatal advice about a passphrase.
func passwordWarnings(password string) []string {
	if password == "" {
		return nil
	}

	var warnings []string
	if len(password) < minPasswordLength {
		warnings = append(warnings, fmt.Sprintf("password is shorter than %d characters", minPasswordLength))
	}

	var upper, digit bool
	for _, r := range password {
		upper = upper || unicode.IsUpper(r)
		digit = digit || unicode.IsDigit(r)
	}
	if !upper || !digit {
		warnings = append(warnings, "password should contain an uppercase letter and a digit")
	}
	return warnings
}

// usageWarning flags payloads filling most of the carrier.
func usageWarning(bitsUsed, capacity int) string {
	if capacity <= 0 {
		return ""
	}
	percent := bitsUsed * 100 / capacity
	if percent > capacityWarnPercent {
		return fmt.Sprintf("payload uses %d%% of carrier capacity", percent)
	}
	return ""
}
