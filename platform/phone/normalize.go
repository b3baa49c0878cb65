// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured. Lead sheets are imported
// without a country prefix, so the region decides how local numbers parse.
const DefaultRegion = "IN"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	number, ok := parse(input, region)
	if !ok {
		return strings.TrimSpace(input)
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// Display formats a phone number for humans in international notation.
// Unparseable input is returned trimmed.
func Display(input, region string) string {
	number, ok := parse(input, region)
	if !ok {
		return strings.TrimSpace(input)
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

// DialURI returns a tel: URI for the number. Invalid numbers keep their
// digits and a leading plus so the dialer can still try them.
func DialURI(input, region string) string {
	if number, ok := parse(input, region); ok {
		return "tel:" + phonenumbers.Format(number, phonenumbers.E164)
	}
	var b strings.Builder
	for i, r := range strings.TrimSpace(input) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return "tel:" + b.String()
}

func parse(input, region string) (*phonenumbers.PhoneNumber, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, false
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return nil, false
	}
	if !phonenumbers.IsValidNumber(number) {
		return nil, false
	}
	return number, true
}
