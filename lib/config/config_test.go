// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signet.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
key_directory: /srv/auth/keys
env_file: /srv/auth/.env
modulus_bits: 4096
file_mode: "0640"
escrow_keys:
  - age1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq
`)

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if file.KeyDirectory != "/srv/auth/keys" {
		t.Errorf("KeyDirectory = %q", file.KeyDirectory)
	}
	if file.EnvFile != "/srv/auth/.env" {
		t.Errorf("EnvFile = %q", file.EnvFile)
	}
	if file.ModulusBits != 4096 {
		t.Errorf("ModulusBits = %d", file.ModulusBits)
	}
	if file.FileMode != "0640" {
		t.Errorf("FileMode = %q", file.FileMode)
	}
	if len(file.EscrowKeys) != 1 {
		t.Errorf("EscrowKeys = %v", file.EscrowKeys)
	}
}

func TestLoad_Empty(t *testing.T) {
	file, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if file.KeyDirectory != "" || file.ModulusBits != 0 {
		t.Errorf("empty config produced non-zero values: %+v", file)
	}
}

func TestLoad_BadModulusBits(t *testing.T) {
	if _, err := Load(writeConfig(t, "modulus_bits: 1024\n")); err == nil {
		t.Error("Load accepted modulus_bits 1024")
	}
}

func TestLoad_BadFileMode(t *testing.T) {
	if _, err := Load(writeConfig(t, "file_mode: \"rw-r--r--\"\n")); err == nil {
		t.Error("Load accepted a symbolic file mode")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("0600")
	if err != nil {
		t.Fatalf("ParseMode: %v", err)
	}
	if mode != 0600 {
		t.Errorf("ParseMode(0600) = %04o", mode)
	}

	for _, bad := range []string{"", "0", "999", "01000", "rw"} {
		if _, err := ParseMode(bad); err == nil {
			t.Errorf("ParseMode(%q) succeeded", bad)
		}
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvVar, "/etc/signet.yaml")
	if got := Path(""); got != "/etc/signet.yaml" {
		t.Errorf("Path falls back to %s: got %q", EnvVar, got)
	}
	if got := Path("/tmp/override.yaml"); got != "/tmp/override.yaml" {
		t.Errorf("flag value should win: got %q", got)
	}
}
