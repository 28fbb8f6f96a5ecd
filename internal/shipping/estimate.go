package shipping

import (
	"strconv"
	"strings"
)

// UnknownEstimate is the day count used for unparsable estimates so those
// methods sort last.
const UnknownEstimate = 9999

// SameDayMarker identifies same-day couriers by service id.
const SameDayMarker = "wolt"

// Estimate is a delivery window in days.
type Estimate struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

var unknown = Estimate{Min: UnknownEstimate, Max: UnknownEstimate}

// leadingInt parses an optional sign followed by digits at the start of s,
// ignoring anything after them. Values wider than ten digits are rejected.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start || end-start > 10 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDeliveryEstimate reads a free-text window such as "2-4" or "0".
// A single number is both ends. Anything unreadable yields 9999/9999,
// including a bound wider than ten digits, so such a window sorts as
// unknown rather than as a huge day count.
func ParseDeliveryEstimate(text string) (est Estimate) {
	defer func() {
		if recover() != nil {
			est = unknown
		}
	}()

	parts := strings.Split(text, "-")
	lo, ok := leadingInt(parts[0])
	if !ok {
		return unknown
	}
	hi := lo
	if len(parts) > 1 {
		if hi, ok = leadingInt(parts[1]); !ok {
			return unknown
		}
	}
	return Estimate{Min: lo, Max: hi}
}

// SupportsSameDay reports whether a service can deliver on the booking day.
func SupportsSameDay(serviceID string) bool {
	return strings.Contains(serviceID, SameDayMarker)
}
