package oinoid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundtrip(t *testing.T) {
	token := Print([]string{"acme", "42"}, '_')
	assert.Equal(t, "acme_42", token)

	segments, err := Parse(token, '_')
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "42"}, segments)
}

func TestEscapesLiteralSeparator(t *testing.T) {
	token := Print([]string{"a_b", "c"}, '_')
	assert.Equal(t, "a%5fb_c", token)

	segments, err := Parse(token, '_')
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b", "c"}, segments)
}
