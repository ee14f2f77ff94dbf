package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"collabCanvas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardURL(t *testing.T) {
	u, err := boardURL("http://relay.local:8000", 4)
	require.NoError(t, err)
	assert.Equal(t, "ws://relay.local:8000/ws/boards/4", u)

	u, err = boardURL("wss://relay.example", 9)
	require.NoError(t, err)
	assert.Equal(t, "wss://relay.example/ws/boards/9", u)

	_, err = boardURL("ftp://relay", 1)
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "snap.json")
	out := filepath.Join(dir, "snap.png")
	snap := models.NewSessionSnapshot()
	snap.CanvasWidth, snap.CanvasHeight = 30, 20
	data, err := snap.Value()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(in, data.([]byte), 0o644))

	rootCmd.SetArgs([]string{"render", "--in", in, "--out", out})
	require.NoError(t, rootCmd.Execute())

	rendered, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(rendered, []byte("\x89PNG")))

	rootCmd.SetArgs([]string{"render", "--in", in, "--out", filepath.Join(dir, "snap.gif")})
	assert.Error(t, rootCmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "collabcanvas version "+Version+"\n", buf.String())
}
