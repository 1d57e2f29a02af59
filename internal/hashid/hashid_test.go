package hashid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "00112233445566778899aabbccddeeff"[:32]

func TestStaticRoundtrip(t *testing.T) {
	h, err := New(testKey, "employees", 16, true)
	require.NoError(t, err)

	token, err := h.Encode(4711, "id 4711")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(token), 16)

	id, err := h.Decode(token, "id 4711")
	require.NoError(t, err)
	assert.Equal(t, int64(4711), id)
}

func TestStaticDeterministic(t *testing.T) {
	h, err := New(testKey, "employees", 16, true)
	require.NoError(t, err)

	a, err := h.Encode(99, "id 99")
	require.NoError(t, err)
	b, err := h.Encode(99, "id 99")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRandomModeVariesButDecodes(t *testing.T) {
	h, err := New(testKey, "employees", 16, false)
	require.NoError(t, err)

	a, err := h.Encode(7, "")
	require.NoError(t, err)
	b, err := h.Encode(7, "")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	id, err := h.Decode(a, "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestInvalidMinLength(t *testing.T) {
	_, err := New(testKey, "employees", 5, true)
	assert.Error(t, err)

	_, err = New(testKey, "employees", 50, true)
	assert.Error(t, err)
}

func TestDecodeTamperedTokenFails(t *testing.T) {
	h, err := New(testKey, "employees", 16, true)
	require.NoError(t, err)

	token, err := h.Encode(123, "id 123")
	require.NoError(t, err)

	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == '0' {
		tampered[last] = '1'
	} else {
		tampered[last] = '0'
	}

	_, err = h.Decode(string(tampered), "id 123")
	assert.Error(t, err)
}
