package address

import (
	"strings"
	"unicode"
)

var dialCodes = map[string]string{
	"US": "+1",
	"CA": "+1",
	"GB": "+44",
	"SE": "+46",
	"FI": "+358",
	"DE": "+49",
	"FR": "+33",
	"ES": "+34",
	"IT": "+39",
	"NL": "+31",
	"PL": "+48",
	"HK": "+852",
	"AT": "+43",
	"BE": "+32",
	"DK": "+45",
	"NO": "+47",
	"IE": "+353",
	"PT": "+351",
	"CH": "+41",
	"EE": "+372",
	"LV": "+371",
	"LT": "+370",
	"AU": "+61",
	"BR": "+55",
	"MX": "+52",
	"KR": "+82",
	"CN": "+86",
	"JP": "+81",
	"IN": "+91",
	"TR": "+90",
	"AE": "+971",
}

// DialCodeFor returns the international dial code for a country, e.g. "+358",
// or "" when unknown.
func DialCodeFor(code string) string {
	return dialCodes[code]
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// NormalizePhone turns user input into "+<digits>" form. A leading "00" is
// treated as "+". Local numbers get the country's dial code prepended when
// one is known. Normalizing an already normalized number is a no-op.
func NormalizePhone(raw, code string) string {
	c := compact(raw)
	if c == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(c, "00"):
		return "+" + digitsOnly(c[2:])
	case strings.HasPrefix(c, "+"):
		return "+" + digitsOnly(c[1:])
	}

	// Punctuation can hide a "00" prefix, e.g. "(00)44...".
	local := digitsOnly(c)
	if rest, ok := strings.CutPrefix(local, "00"); ok {
		return "+" + rest
	}
	if local == "" {
		return ""
	}
	dial := DialCodeFor(code)
	if dial == "" {
		return local
	}
	return dial + local
}

// LocalPartOf strips the country's dial code, or failing that a leading "+",
// so only the subscriber number is left for editing.
func LocalPartOf(phone, code string) string {
	c := compact(phone)
	dial := DialCodeFor(code)
	if c == "" || dial == "" {
		return c
	}
	if rest, ok := strings.CutPrefix(c, dial); ok {
		return rest
	}
	return strings.TrimPrefix(c, "+")
}
