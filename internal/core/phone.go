package core

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// DefaultPhoneRegion is the region phone numbers are interpreted in when no
// country prefix is given.
const DefaultPhoneRegion = "PK"

// NormalizePhone validates an optional phone number and normalizes it to the
// national format with a dash after the prefix (e.g. "0300-1234567").
// Empty input is allowed and returned as-is.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	num, err := libphonenumber.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return "", Invalid("phone", "not a recognizable phone number")
	}
	if !libphonenumber.IsPossibleNumber(num) {
		return "", Invalid("phone", "wrong number of digits")
	}

	national := libphonenumber.Format(num, libphonenumber.NATIONAL)
	return strings.Replace(national, " ", "-", 1), nil
}
