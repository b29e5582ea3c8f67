// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional CLI configuration file.
//
// The file is YAML and its path comes from exactly one of:
//   - the SIGNET_CONFIG environment variable, or
//   - the --config flag passed to the command.
//
// There is no discovery and no fallback search path: configuration is
// deterministic and auditable. Flag values override file values; the file
// overrides the built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvVar is the environment variable consulted when no --config flag is
// given.
const EnvVar = "SIGNET_CONFIG"

// File is the on-disk configuration. Every field is optional; zero
// values mean "use the default".
type File struct {
	// KeyDirectory is where the PEM files are written.
	KeyDirectory string `yaml:"key_directory"`

	// EnvFile is the environment-configuration file to merge into.
	EnvFile string `yaml:"env_file"`

	// ModulusBits is the RSA modulus length (2048 or 4096).
	ModulusBits int `yaml:"modulus_bits"`

	// FileMode is the permission mode for written files, as an octal
	// string (e.g. "0600").
	FileMode string `yaml:"file_mode"`

	// EscrowKeys are age recipients for the passphrase escrow bundle.
	EscrowKeys []string `yaml:"escrow_keys"`
}

// Path resolves the config file path from the flag value or the
// environment. Returns "" when neither is set (no config file in play).
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvVar)
}

// Load reads and parses the config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if file.ModulusBits != 0 && file.ModulusBits != 2048 && file.ModulusBits != 4096 {
		return nil, fmt.Errorf("config file %s: modulus_bits is %d, want 2048 or 4096", path, file.ModulusBits)
	}
	if file.FileMode != "" {
		if _, err := ParseMode(file.FileMode); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	return &file, nil
}

// ParseMode parses an octal permission string like "0600" into a file
// mode.
func ParseMode(value string) (os.FileMode, error) {
	parsed, err := strconv.ParseUint(value, 8, 32)
	if err != nil || parsed == 0 || parsed > 0777 {
		return 0, fmt.Errorf("file_mode %q is not a valid octal permission mode", value)
	}
	return os.FileMode(parsed), nil
}
