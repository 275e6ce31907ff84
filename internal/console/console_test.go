package console_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrobas/rbasic/internal/console"
)

func TestWriteAndReadLine(t *testing.T) {
	var out strings.Builder
	h := console.New(&out, strings.NewReader("HELLO\nWORLD\r\n"))

	h.Write("PROMPT? ")
	assert.Equal(t, "PROMPT? ", out.String())

	line, err := h.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "HELLO", line)

	line, err = h.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "WORLD", line)
}

func TestLocateEmitsCursorEscape(t *testing.T) {
	var out strings.Builder
	h := console.New(&out, strings.NewReader(""))
	h.Locate(5, 2)
	assert.Equal(t, "\033[2;5H", out.String())
}

func TestReadLineEOFWithNoData(t *testing.T) {
	h := console.New(&strings.Builder{}, strings.NewReader(""))
	_, err := h.ReadLine()
	require.Error(t, err)
}
