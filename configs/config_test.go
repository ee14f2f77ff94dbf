package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadsFileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("canvas:\n  width: 640\nrelay:\n  autosave_interval: 5s\n"), 0o600))

	v := New(path)
	assert.Equal(t, 640, v.GetInt("canvas.width"))
	assert.Equal(t, 800, v.GetInt("canvas.height"))
	assert.Equal(t, 5*time.Second, v.GetDuration("relay.autosave_interval"))
	assert.Equal(t, 24*time.Hour, v.GetDuration("autosave.freshness"))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("COLLABCANVAS_SERVER_ADDR", ":9999")
	v := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ":9999", v.GetString("server.addr"))
}
