package utils

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple name", input: "My Product", expected: "my-product"},
		{name: "punctuation collapses", input: "Acme: The App!", expected: "acme-the-app"},
		{name: "leading and trailing junk trimmed", input: "  --Waitlist-- ", expected: "waitlist"},
		{name: "already a slug", input: "launch-2026", expected: "launch-2026"},
		{name: "consecutive separators", input: "a  &  b", expected: "a-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestUniqueSlugSuffix(t *testing.T) {
	suffixed := UniqueSlugSuffix("my-product")

	assert.True(t, strings.HasPrefix(suffixed, "my-product-"))
	assert.Greater(t, len(suffixed), len("my-product-"))
}

func TestGenerateVerifyToken(t *testing.T) {
	token, err := GenerateVerifyToken()

	require.NoError(t, err)
	assert.Len(t, token, 64)
	_, err = hex.DecodeString(token)
	assert.NoError(t, err)

	other, err := GenerateVerifyToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
