// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/signet-auth/signet/lib/config"
	"github.com/signet-auth/signet/lib/keypair"
	"github.com/signet-auth/signet/lib/provision"
)

// Built-in defaults, overridable by the config file, overridable by
// flags. The core takes whatever the CLI hands it; all defaulting lives
// here.
const (
	defaultKeyDirectory = "keys"
	defaultEnvFile      = ".env"
	defaultModulusBits  = 2048
	defaultFileMode     = "0600"
)

func runProvision(args []string) error {
	flags := pflag.NewFlagSet("provision", pflag.ContinueOnError)
	keyDirectory := flags.String("key-dir", defaultKeyDirectory, "directory for the generated PEM files")
	envFile := flags.String("env-file", defaultEnvFile, "environment file to merge the key material into")
	modulusBits := flags.Int("bits", defaultModulusBits, "RSA modulus length (2048 or 4096)")
	fileMode := flags.String("mode", defaultFileMode, "octal permission mode for written files")
	escrowKeys := flags.StringArray("escrow-key", nil, "age recipient for the passphrase escrow bundle (repeatable)")
	configFlag := flags.String("config", "", "YAML config file (or set "+config.EnvVar+")")
	force := flags.Bool("force", false, "overwrite existing key files")
	verbose := flags.Bool("verbose", false, "enable debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	provisionConfig := provision.Config{
		KeyDirectory: *keyDirectory,
		EnvFile:      *envFile,
		ModulusBits:  *modulusBits,
		EscrowKeys:   *escrowKeys,
	}
	mode, err := config.ParseMode(*fileMode)
	if err != nil {
		return err
	}
	provisionConfig.FileMode = mode

	if err := applyConfigFile(flags, *configFlag, &provisionConfig); err != nil {
		return err
	}
	if err := validateBits(provisionConfig.ModulusBits); err != nil {
		return err
	}

	if !*force {
		if existing := existingKeyFiles(provisionConfig.KeyDirectory); len(existing) > 0 {
			return fmt.Errorf("key files already exist in %s (%v); pass --force to overwrite and invalidate existing tokens", provisionConfig.KeyDirectory, existing)
		}
	}

	provisioner := &provision.Provisioner{Observer: provision.NewLogObserver(logger)}
	if err := provisioner.Provision(provisionConfig); err != nil {
		return err
	}

	logger.Info("provisioning complete",
		"key_dir", provisionConfig.KeyDirectory,
		"env_file", provisionConfig.EnvFile,
		"bits", provisionConfig.ModulusBits,
	)
	return nil
}

// applyConfigFile overlays values from the config file (if any) onto
// settings not explicitly set by flags. Flags win over the file; the
// file wins over the built-in defaults.
func applyConfigFile(flags *pflag.FlagSet, configFlag string, provisionConfig *provision.Config) error {
	path := config.Path(configFlag)
	if path == "" {
		return nil
	}

	file, err := config.Load(path)
	if err != nil {
		return err
	}

	if !flags.Changed("key-dir") && file.KeyDirectory != "" {
		provisionConfig.KeyDirectory = file.KeyDirectory
	}
	if !flags.Changed("env-file") && file.EnvFile != "" {
		provisionConfig.EnvFile = file.EnvFile
	}
	if !flags.Changed("bits") && file.ModulusBits != 0 {
		provisionConfig.ModulusBits = file.ModulusBits
	}
	if !flags.Changed("mode") && file.FileMode != "" {
		mode, err := config.ParseMode(file.FileMode)
		if err != nil {
			return err
		}
		provisionConfig.FileMode = mode
	}
	if !flags.Changed("escrow-key") && len(file.EscrowKeys) > 0 {
		provisionConfig.EscrowKeys = file.EscrowKeys
	}
	return nil
}

// existingKeyFiles reports which of the four key files are already
// present in the key directory. Refusing to overwrite without --force
// prevents accidental invalidation of live tokens.
func existingKeyFiles(keyDirectory string) []string {
	var existing []string
	for _, name := range []string{
		provision.AccessPublicFile,
		provision.AccessPrivateFile,
		provision.RefreshPublicFile,
		provision.RefreshPrivateFile,
	} {
		if _, err := os.Stat(filepath.Join(keyDirectory, name)); err == nil {
			existing = append(existing, name)
		}
	}
	return existing
}

// validateBits is kept close to the flag definition so the CLI rejects a
// bad value before the run starts, with a flag-shaped message rather than
// a stage error.
func validateBits(bits int) error {
	if bits != keypair.ModulusBits2048 && bits != keypair.ModulusBits4096 {
		return fmt.Errorf("--bits must be %d or %d, got %d", keypair.ModulusBits2048, keypair.ModulusBits4096, bits)
	}
	return nil
}
