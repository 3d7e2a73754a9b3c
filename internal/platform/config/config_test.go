package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, flags ...Flags) *cobra.Command {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	for _, f := range flags {
		require.NoError(t, f.Init(cmd))
	}
	return cmd
}

func TestPanel_defaults(t *testing.T) {
	var p Panel
	newTestCommand(t, &p)
	require.NoError(t, Init(""))
	p.Set()

	assert.Equal(t, "/var/www/hls/streams.json", p.StorePath)
	assert.Equal(t, "/var/www/streamdata/master.m3u", p.PlaylistPath)
	assert.Equal(t, "/var/www/hls/pids", p.PIDDir)
	assert.Equal(t, "/var/www/hls", p.HLSRoot)
	assert.False(t, p.PlaylistDeriveLogoExt, "derive-logo-ext should default to false")
}

func TestPanel_env_overrides_default(t *testing.T) {
	var p Panel
	newTestCommand(t, &p)
	t.Setenv("PANEL_STORE_PATH", "/tmp/streams.json")
	t.Setenv("PANEL_PLAYLIST_DERIVE_LOGO_EXT", "true")
	require.NoError(t, Init(""))
	p.Set()

	assert.Equal(t, "/tmp/streams.json", p.StorePath)
	assert.True(t, p.PlaylistDeriveLogoExt, "expected derive-logo-ext from env")
}

func TestServer_flag_overrides_env(t *testing.T) {
	var s Server
	cmd := newTestCommand(t, &s)
	t.Setenv("PANEL_BIND", "127.0.0.1:1111")
	require.NoError(t, cmd.PersistentFlags().Set("bind", "127.0.0.1:2222"))
	require.NoError(t, Init(""))
	s.Set()

	assert.Equal(t, "127.0.0.1:2222", s.Bind)
}

func TestInit_config_file(t *testing.T) {
	var l Log
	newTestCommand(t, &l)
	path := filepath.Join(t.TempDir(), "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n  format: text\n"), 0o644))

	require.NoError(t, Init(path))
	l.Set()

	assert.Equal(t, "debug", l.Level)
	assert.Equal(t, "text", l.Format)
	assert.True(t, l.Console, "console should keep its default")
}

func TestInit_missing_config_file(t *testing.T) {
	newTestCommand(t)
	assert.Error(t, Init(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing_file_ignored", func(t *testing.T) {
		assert.NoError(t, Load(filepath.Join(dir, "absent.env")))
	})

	t.Run("sets_environment", func(t *testing.T) {
		path := filepath.Join(dir, "test.env")
		require.NoError(t, os.WriteFile(path, []byte("PANEL_TEST_LOAD=from-dotenv\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("PANEL_TEST_LOAD") })

		require.NoError(t, Load(path))
		assert.Equal(t, "from-dotenv", os.Getenv("PANEL_TEST_LOAD"))
	})
}
