package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Self.Address)
	assert.Equal(t, 8000, cfg.Self.Port)
	assert.Equal(t, "192.168.0.130", cfg.Manager.Address)
	assert.Equal(t, 9000, cfg.Manager.Port)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("self:\n  address: 0.0.0.0\n  port: 9001\nstore: /tmp/accounts.db\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Self.Address)
	assert.Equal(t, 9001, cfg.Self.Port)
	assert.Equal(t, "/tmp/accounts.db", cfg.Store)
	// Untouched by the overlay, defaults remain.
	assert.Equal(t, "192.168.0.130", cfg.Manager.Address)
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f, err := Parse(fs, []string{"-address", "10.0.0.5", "-P", "9100"})
	require.NoError(t, err)

	f.Apply(cfg)
	assert.Equal(t, "10.0.0.5", cfg.Self.Address)
	assert.Equal(t, 9100, cfg.Manager.Port)
	assert.Equal(t, 8000, cfg.Self.Port, "unset flags must not clobber config values")
}

func TestLongManagerFlagsAndChildFlag(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f, err := Parse(fs, []string{"-manager-address", "10.0.0.9", "-manager-port", "9200", "-child", "/opt/bin/chatd"})
	require.NoError(t, err)

	f.Apply(cfg)
	assert.Equal(t, "10.0.0.9", cfg.Manager.Address)
	assert.Equal(t, 9200, cfg.Manager.Port)
	assert.Equal(t, "/opt/bin/chatd", f.ChildPath)
}
