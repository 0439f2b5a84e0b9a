package iterm2

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageEscapeSequence(t *testing.T) {
	var buf bytes.Buffer
	m := image.NewRGBA(image.Rect(0, 0, 3, 2))
	require.NoError(t, Image(&buf, m, Options{Width: "10", Name: "x.png"}))

	s := buf.String()
	require.True(t, strings.HasPrefix(s, "\x1b]1337;File=inline=1;"))
	assert.Contains(t, s, ";width=10")
	require.True(t, strings.HasSuffix(s, "\x07\n"))

	payload := s[strings.Index(s, ":")+1 : len(s)-2]
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, m.Bounds(), decoded.Bounds())
}

func TestNotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	t.Setenv("TERM_PROGRAM", "iTerm.app")
	assert.False(t, IsCompatible(f))
	assert.Zero(t, Columns(f))
}
