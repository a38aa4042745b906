package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestValidateConfigValid(t *testing.T) {
	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()

	cfgFile = writeConfigFile(t, `
server:
  host: "127.0.0.1"
  port: 9090
`)
	validateFlags.env = false

	if err := validateConfig(nil, nil); err != nil {
		t.Errorf("validateConfig() with valid file returned error: %v", err)
	}
}

func TestValidateConfigInvalidPort(t *testing.T) {
	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()

	cfgFile = writeConfigFile(t, `
server:
  port: 99999
`)
	validateFlags.env = false

	if err := validateConfig(nil, nil); err == nil {
		t.Error("validateConfig() with out-of-range port should return error")
	}
}

func TestValidateConfigNonexistentFile(t *testing.T) {
	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()

	cfgFile = filepath.Join(t.TempDir(), "nope.yaml")
	validateFlags.env = false

	if err := validateConfig(nil, nil); err == nil {
		t.Error("validateConfig() with nonexistent file should return error")
	}
}

func TestValidateConfigBadUpstream(t *testing.T) {
	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()

	cfgFile = writeConfigFile(t, `
upstreams:
  - name: "acme"
    endpoint: "not a url"
`)
	validateFlags.env = false

	if err := validateConfig(nil, nil); err == nil {
		t.Error("validateConfig() with malformed upstream endpoint should return error")
	}
}
