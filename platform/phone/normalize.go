// Package phone provides phone number normalization utilities.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BD"

// Normalize reduces a raw Bangladeshi phone number to its 11-digit national
// form ("01XXXXXXXXX"), which is the join key between leads and orders.
// Numbers that cannot be reduced but still have at least 10 digits are
// returned as bare digits. Anything shorter yields "".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "880"):
		digits = digits[3:]
	case strings.HasPrefix(digits, "88"):
		digits = digits[2:]
	}

	if len(digits) == 10 {
		digits = "0" + digits
	}

	if len(digits) == 11 && digits[0] == '0' {
		return digits
	}
	if len(digits) >= 10 {
		return digits
	}
	return ""
}

// IsValidMobile reports whether the number is a dialable Bangladeshi mobile
// number. The numbering plan check runs on the normalized form.
func IsValidMobile(raw string) bool {
	normalized := Normalize(raw)
	if len(normalized) != 11 {
		return false
	}

	parsed, err := phonenumbers.Parse(normalized, defaultRegion)
	if err != nil {
		return false
	}
	if !phonenumbers.IsValidNumberForRegion(parsed, defaultRegion) {
		return false
	}
	return phonenumbers.GetNumberType(parsed) == phonenumbers.MOBILE
}
