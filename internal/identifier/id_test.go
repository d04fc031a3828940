package identifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := New()

		encoded := id.String()
		assert.Len(t, encoded, EncodedLen)

		decoded, err := Parse(encoded)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestStringAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	for i := 0; i < 100; i++ {
		encoded := New().String()
		for _, c := range encoded {
			assert.Contains(t, alphabet, string(c))
		}
		assert.NotContains(t, encoded, "=")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "not base64",
			input: "not-base64!!",
			want:  ErrMalformed,
		},
		{
			name:  "standard alphabet characters",
			input: strings.Repeat("+", EncodedLen),
			want:  ErrMalformed,
		},
		{
			name:  "too long",
			input: New().String() + "A",
			want:  ErrInvalidLength,
		},
		{
			name:  "too short",
			input: "AAAA",
			want:  ErrInvalidLength,
		},
		{
			name:  "empty",
			input: "",
			want:  ErrInvalidLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUniqueness(t *testing.T) {
	const n = 10000

	seen := make(map[ID]struct{}, n)
	for i := 0; i < n; i++ {
		seen[New()] = struct{}{}
	}

	assert.Len(t, seen, n)
}

func TestFromBytes(t *testing.T) {
	id := New()

	got, err := FromBytes(id.Bytes())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = FromBytes(id.Bytes()[:10])
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestMarshalText(t *testing.T) {
	id := New()

	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, id.String(), string(text))

	var decoded ID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, id, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("###")))
}
