package io

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectLines(t *testing.T) {
	t.Run("preserves terminated lines", func(t *testing.T) {
		out, err := CollectLines(strings.NewReader("one\ntwo\n"))

		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\n", out)
	})

	t.Run("terminates a final unterminated line", func(t *testing.T) {
		out, err := CollectLines(strings.NewReader("one\ntwo"))

		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\n", out)
	})

	t.Run("normalizes CRLF", func(t *testing.T) {
		out, err := CollectLines(strings.NewReader("AT+CPIN?\r\nOK\r\n"))

		require.NoError(t, err)
		assert.Equal(t, "AT+CPIN?\nOK\n", out)
	})

	t.Run("treats a lone CR as a line end", func(t *testing.T) {
		out, err := CollectLines(strings.NewReader("a\rb\n"))

		require.NoError(t, err)
		assert.Equal(t, "a\nb\n", out)
	})

	t.Run("mixes CR, LF and CRLF endings", func(t *testing.T) {
		out, err := CollectLines(strings.NewReader("one\r\rtwo\r\nthree\r"))

		require.NoError(t, err)
		assert.Equal(t, "one\n\ntwo\nthree\n", out)
	})

	t.Run("splits CR across one-byte reads", func(t *testing.T) {
		out, err := CollectLines(iotest.OneByteReader(strings.NewReader("10%\r50%\r100%\n")))

		require.NoError(t, err)
		assert.Equal(t, "10%\n50%\n100%\n", out)
	})

	t.Run("keeps blank lines", func(t *testing.T) {
		out, err := CollectLines(strings.NewReader("a\n\nb\n"))

		require.NoError(t, err)
		assert.Equal(t, "a\n\nb\n", out)
	})

	t.Run("empty stream yields empty string", func(t *testing.T) {
		out, err := CollectLines(strings.NewReader(""))

		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("handles lines longer than the reader buffer", func(t *testing.T) {
		long := strings.Repeat("x", 256*1024)

		out, err := CollectLines(strings.NewReader(long + "\n"))

		require.NoError(t, err)
		assert.Equal(t, long+"\n", out)
	})

	t.Run("returns read errors with partial output", func(t *testing.T) {
		boom := errors.New("pipe closed")
		r := iotest.ErrReader(boom)

		out, err := CollectLines(r)

		require.ErrorIs(t, err, boom)
		assert.Empty(t, out)
	})

	t.Run("works with one-byte reads", func(t *testing.T) {
		out, err := CollectLines(iotest.OneByteReader(strings.NewReader("hello\nworld")))

		require.NoError(t, err)
		assert.Equal(t, "hello\nworld\n", out)
	})
}
