package address

import (
	"strings"

	"github.com/dukerupert/shippor/internal/domain"
)

// FilterByWordMatch keeps addresses whose name, city, country, postal code,
// organization or email contains query, ignoring case.
func FilterByWordMatch(addrs []domain.Address, query string) []domain.Address {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Address, 0, len(addrs))
	for _, a := range addrs {
		for _, v := range []string{a.Name, a.City, a.Country, a.PostalCode, a.Organization, a.Email} {
			if v != "" && strings.Contains(strings.ToLower(v), q) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// FilterByPostalCode matches postal codes with all whitespace removed.
func FilterByPostalCode(addrs []domain.Address, query string) []domain.Address {
	q := compact(query)
	out := make([]domain.Address, 0, len(addrs))
	for _, a := range addrs {
		if strings.Contains(compact(a.PostalCode), q) {
			out = append(out, a)
		}
	}
	return out
}

// FormatForInput is the text shown in a search box for a chosen address.
func FormatForInput(a domain.Address) string {
	if a.Organization != "" {
		return a.Organization
	}
	return a.Name
}

func normalizeLine(s string) string {
	return strings.ToLower(compact(s))
}

// IsSafeToChange reports whether swapping existing for next leaves every
// locked field unchanged, comparing case and whitespace insensitively.
// A nil next or an empty field list is always safe. Unknown field names
// compare as empty.
func IsSafeToChange(existing domain.Address, next *domain.Address, locked []string) bool {
	if len(locked) == 0 || next == nil {
		return true
	}
	for _, f := range locked {
		a, _ := existing.Field(f)
		b, _ := next.Field(f)
		if normalizeLine(a) != normalizeLine(b) {
			return false
		}
	}
	return true
}
