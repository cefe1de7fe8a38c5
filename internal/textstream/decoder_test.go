package textstream_test

import (
	"strings"
	"testing"

	"github.com/fostercare-aficionado/chat/internal/textstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, d *textstream.Decoder, chunks ...[]byte) string {
	t.Helper()

	var sb strings.Builder
	for _, c := range chunks {
		s, err := d.Decode(c)
		require.NoError(t, err)
		sb.WriteString(s)
	}
	s, err := d.Flush()
	require.NoError(t, err)
	sb.WriteString(s)
	return sb.String()
}

func TestDecoder(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
		want   string
	}{
		{
			name:   "ascii chunks",
			chunks: [][]byte{[]byte("Reun"), []byte("ification is...")},
			want:   "Reunification is...",
		},
		{
			name:   "two byte character split",
			chunks: [][]byte{{'c', 'a', 'f', 0xC3}, {0xA9, '!'}},
			want:   "café!",
		},
		{
			name:   "four byte character split three ways",
			chunks: [][]byte{{'a', 0xF0}, {0x9F, 0x98}, {0x80, 'b'}},
			want:   "a😀b",
		},
		{
			name:   "one byte at a time",
			chunks: splitBytes("Kinship placement — état"),
			want:   "Kinship placement — état",
		},
		{
			name:   "empty chunks",
			chunks: [][]byte{{}, []byte("ok"), {}},
			want:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := textstream.NewDecoder()
			assert.Equal(t, tt.want, decodeAll(t, d, tt.chunks...))
			assert.Zero(t, d.Pending())
		})
	}
}

func TestDecoderCarriesIncompleteCharacter(t *testing.T) {
	d := textstream.NewDecoder()

	s, err := d.Decode([]byte{'x', 0xE2, 0x82})
	require.NoError(t, err)
	assert.Equal(t, "x", s)
	assert.Equal(t, 2, d.Pending())

	s, err = d.Decode([]byte{0xAC})
	require.NoError(t, err)
	assert.Equal(t, "€", s)
	assert.Zero(t, d.Pending())
}

func TestDecoderInvalidBytes(t *testing.T) {
	d := textstream.NewDecoder()

	got := decodeAll(t, d, []byte{'a', 0xFF, 'b'})
	assert.Equal(t, "a�b", got)
}

func TestDecoderFlushTruncatedCharacter(t *testing.T) {
	d := textstream.NewDecoder()

	got := decodeAll(t, d, []byte{'a', 0xE2, 0x82})
	assert.True(t, strings.HasPrefix(got, "a"))
	assert.Contains(t, got, "�")
	assert.Zero(t, d.Pending())
}

func TestDecoderReset(t *testing.T) {
	d := textstream.NewDecoder()

	_, err := d.Decode([]byte{0xC3})
	require.NoError(t, err)
	require.Equal(t, 1, d.Pending())

	d.Reset()
	assert.Zero(t, d.Pending())
	assert.Equal(t, "new", decodeAll(t, d, []byte("new")))
}

func TestDecoderLargeChunk(t *testing.T) {
	d := textstream.NewDecoder()
	in := strings.Repeat("ü", 10000)

	assert.Equal(t, in, decodeAll(t, d, []byte(in)))
}

func splitBytes(s string) [][]byte {
	b := []byte(s)
	out := make([][]byte, len(b))
	for i := range b {
		out[i] = b[i : i+1]
	}
	return out
}
