package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wiredump.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "-", cfg.Input)
	assert.Equal(t, FramingU16, cfg.Framing)
	assert.Equal(t, 65535, cfg.MaxFrame)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
input = "capture.hex"
format = "HEX"
framing = "none"
skip_unknown = true
log_level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Input:       "capture.hex",
		Format:      FormatHex,
		Framing:     FramingNone,
		SkipUnknown: true,
		MaxFrame:    65535,
		LogLevel:    "debug",
	}, cfg)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "max_frame = 1024\n"))
	require.NoError(t, err)
	want := Default()
	want.MaxFrame = 1024
	assert.Equal(t, want, cfg)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"UnknownKey":  "inptu = \"x\"\n",
		"BadFormat":   "format = \"base64\"\n",
		"BadFraming":  "framing = \"u32\"\n",
		"FrameTooBig": "max_frame = 70000\n",
		"EmptyInput":  "input = \"  \"\n",
		"Syntax":      "input = \n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
