package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		country string
		want    string
	}{
		{"empty", "", "FI", ""},
		{"whitespace only", "   ", "FI", ""},
		{"local number gets dial code", "040 123 4567", "FI", "+3580401234567"},
		{"double zero prefix", "00 46 70 123 45 67", "SE", "+46701234567"},
		{"plus prefix keeps digits", "+1 (555) 010-9999", "US", "+15550109999"},
		{"unknown country keeps local digits", "12-34-56", "ZZ", "123456"},
		{"hong kong", "9123 4567", "HK", "+85291234567"},
		{"extended table", "0612345678", "NO", "+470612345678"},
		{"punctuated double zero", "(00)123456", "ZZ", "+123456"},
		{"dashed double zero", "0-0-44-123456", "ZZ", "+44123456"},
		{"punctuated double zero with dial code", "(00)46 70 123", "SE", "+4670123"},
		{"no digits", "()", "FI", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.raw, tt.country)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizePhone(got, tt.country), "normalizing twice must not change the result")
		})
	}
}

func TestLocalPartOf(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		country string
		want    string
	}{
		{"strips dial code", "+358401234567", "FI", "401234567"},
		{"strips plus for other dial code", "+46701234567", "FI", "46701234567"},
		{"no dial code known", "+123 456", "ZZ", "+123456"},
		{"empty", "", "FI", ""},
		{"local without prefix", "0401234567", "FI", "0401234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalPartOf(tt.phone, tt.country))
		})
	}
}

func TestDialCodeFor(t *testing.T) {
	assert.Equal(t, "+1", DialCodeFor("US"))
	assert.Equal(t, "+1", DialCodeFor("CA"))
	assert.Equal(t, "+852", DialCodeFor("HK"))
	assert.Equal(t, "", DialCodeFor("ZZ"))
}
