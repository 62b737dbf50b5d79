package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "Already normalized",
			raw:      "PBL666",
			expected: "PBL666",
		},
		{
			name:     "Lowercase",
			raw:      "pbl666",
			expected: "PBL666",
		},
		{
			name:     "Spaces and dashes",
			raw:      " pbl-666 ",
			expected: "PBL666",
		},
		{
			name:     "Punctuation only",
			raw:      "--- ",
			expected: "",
		},
		{
			name:     "Empty",
			raw:      "",
			expected: "",
		},
		{
			name:     "Mixed unicode dropped",
			raw:      "B·1234·CD",
			expected: "B1234CD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeKey(tt.raw))
		})
	}
}

func TestSpacedVariants(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected []string
	}{
		{
			name:     "Letter to digit boundary",
			key:      "PBL666",
			expected: []string{"PBL 666"},
		},
		{
			name:     "Digit to letter boundary",
			key:      "1234CD",
			expected: []string{"1234 CD"},
		},
		{
			name:     "First boundary only",
			key:      "B1234CD",
			expected: []string{"B 1234CD"},
		},
		{
			name:     "No boundary",
			key:      "ABCDEF",
			expected: nil,
		},
		{
			name:     "Too short",
			key:      "A1",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SpacedVariants(tt.key))
		})
	}
}
