package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/encoding"
)

func decode(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "ID;Title;Author\nBK-1;Café littéraire;Müller\n"
	assert.Equal(t, input, decode(t, []byte(input)))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Título" with Windows-1252 í (0xED) and "Garcia Márquez" with á (0xE1).
	input := []byte{
		'T', 0xED, 't', 'u', 'l', 'o', ';',
		'M', 0xE1, 'r', 'q', 'u', 'e', 'z', '\n',
	}

	assert.Equal(t, "Título;Márquez\n", decode(t, input))
}

func TestNewUTF8Reader_UTF8BOMStripped(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("ID;Name\nMEM-1;Aurélie\n")

	assert.Equal(t, string(content), decode(t, append(bom, content...)))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// "BK-1\n" as UTF-16 little-endian with BOM.
	input := []byte{0xFF, 0xFE, 'B', 0, 'K', 0, '-', 0, '1', 0, '\n', 0}

	assert.Equal(t, "BK-1\n", decode(t, input))
}
