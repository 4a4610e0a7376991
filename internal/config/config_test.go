package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zereker/duckclient"
)

var keys = []string{"DUCK_HOST", "DUCK_PORT", "DUCK_TRANSPORT", "DUCK_WS_PATH", "DUCK_FRAMING", "LOG_LEVEL", "LOG_FORMAT"}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 4242, cfg.Port)
	assert.Equal(t, "tcp", cfg.Transport)
	assert.Equal(t, duckclient.RawFraming, cfg.Framing)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:4242", cfg.Addr())
	assert.Equal(t, "ws://127.0.0.1:4242/ws", cfg.WebSocketURL())
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	content := "DUCK_HOST=game.local\nDUCK_PORT=9000\nDUCK_FRAMING=length\nDUCK_TRANSPORT=WS\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "game.local", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, duckclient.LengthPrefixedFraming, cfg.Framing)
	assert.Equal(t, "ws", cfg.Transport)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DUCK_PORT=9000\n"), 0o600))
	t.Setenv("DUCK_PORT", "7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"DUCK_PORT":      "not-a-port",
		"DUCK_FRAMING":   "varint",
		"DUCK_TRANSPORT": "udp",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
