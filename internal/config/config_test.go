package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8090", cfg.Addr)
	assert.Equal(t, "orphan", cfg.Tasks.DeletePolicy)
	assert.Equal(t, 5, cfg.Columns.Max)
	assert.Equal(t, 32, cfg.Printer.Width)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowprint.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
tasks:
  delete_policy: cascade
printer:
  width: 48
  device_path: /dev/usb/lp0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "cascade", cfg.Tasks.DeletePolicy)
	assert.Equal(t, 48, cfg.Printer.Width)
	assert.Equal(t, "/dev/usb/lp0", cfg.Printer.DevicePath)
	// untouched keys keep their defaults
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5, cfg.Columns.Max)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowprint.yml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("FLOWPRINT_ADDR", ":7777")
	t.Setenv("FLOWPRINT_DELETE_POLICY", "reparent")
	t.Setenv("FLOWPRINT_MAX_COLUMNS", "3")
	t.Setenv("FLOWPRINT_PRINTER_WIDTH", "not-a-number")
	t.Setenv("FLOWPRINT_PRINTER_DEVICE", "/dev/usb/lp1")

	cfg := FromEnv(Default())
	assert.Equal(t, ":7777", cfg.Addr)
	assert.Equal(t, "reparent", cfg.Tasks.DeletePolicy)
	assert.Equal(t, 3, cfg.Columns.Max)
	assert.Equal(t, 32, cfg.Printer.Width)
	assert.Equal(t, "/dev/usb/lp1", cfg.Printer.DevicePath)
}
