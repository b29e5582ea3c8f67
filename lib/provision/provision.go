// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/signet-auth/signet/lib/envfile"
	"github.com/signet-auth/signet/lib/keypair"
	"github.com/signet-auth/signet/lib/keystore"
	"github.com/signet-auth/signet/lib/sealed"
)

// Key file names written under Config.KeyDirectory.
const (
	AccessPublicFile   = "access-public.pem"
	AccessPrivateFile  = "access-private.pem"
	RefreshPublicFile  = "refresh-public.pem"
	RefreshPrivateFile = "refresh-private.pem"

	// EscrowFile holds the armored passphrase escrow bundle, written
	// only when Config.EscrowKeys is non-empty.
	EscrowFile = "passphrase-escrow.age"
)

// Config is the immutable input of one provisioning run. Defaulting is
// the CLI layer's concern; the orchestrator takes the values as given.
type Config struct {
	// KeyDirectory is where the PEM files (and escrow bundle) go.
	KeyDirectory string

	// EnvFile is the environment-configuration file to merge into.
	EnvFile string

	// FileMode is the permission mode for every file written. When a
	// write with this mode fails, keystore falls back to its default
	// mode once.
	FileMode os.FileMode

	// ModulusBits is the RSA modulus length for both pairs.
	ModulusBits int

	// EscrowKeys are optional age recipients. When non-empty, the two
	// private-key passphrases are encrypted to them and written next to
	// the key files.
	EscrowKeys []string
}

// Validate checks the config before any work starts. Escrow keys are
// validated here so a typo in a recipient aborts the run before anything
// touches the disk.
func (c Config) Validate() error {
	if c.KeyDirectory == "" {
		return fmt.Errorf("key directory is required")
	}
	if c.EnvFile == "" {
		return fmt.Errorf("environment file path is required")
	}
	if c.FileMode == 0 {
		return fmt.Errorf("file permission mode is required")
	}
	for _, key := range c.EscrowKeys {
		if err := sealed.ParseRecipient(key); err != nil {
			return err
		}
	}
	return nil
}

// TokenKeyPairs holds the two independently generated pairs of one run.
// The pairs share no state: compromise of the access key says nothing
// about the refresh key.
type TokenKeyPairs struct {
	Access  *keypair.KeyPair
	Refresh *keypair.KeyPair
}

// hardenDirectory is a test seam for simulating filesystems that reject
// the owner-only restriction.
var hardenDirectory = keystore.Harden

// Provisioner drives provisioning runs. The zero value works and reports
// to a NopObserver; set Observer to receive stage events.
type Provisioner struct {
	Observer Observer
}

func (p *Provisioner) observer() Observer {
	if p.Observer != nil {
		return p.Observer
	}
	return NopObserver{}
}

// runStage emits the lifecycle events around fn and wraps a failure in a
// *StageError. This keeps every abort point in Provision auditable.
func (p *Provisioner) runStage(stage Stage, fn func() error) error {
	observer := p.observer()
	observer.StageStarted(stage)
	if err := fn(); err != nil {
		observer.StageFailed(stage, err)
		return &StageError{Stage: stage, Err: err}
	}
	observer.StageSucceeded(stage)
	return nil
}

// Generate produces the access and refresh pairs without touching the
// filesystem. Library callers use this to inspect pairs before deciding
// to persist them.
func (p *Provisioner) Generate(modulusBits int) (*TokenKeyPairs, error) {
	pairs := &TokenKeyPairs{}

	err := p.runStage(StageGenerateAccess, func() error {
		pair, err := keypair.Generate(keypair.Access, modulusBits)
		if err != nil {
			return err
		}
		pairs.Access = pair
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.runStage(StageGenerateRefresh, func() error {
		pair, err := keypair.Generate(keypair.Refresh, modulusBits)
		if err != nil {
			return err
		}
		pairs.Refresh = pair
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pairs, nil
}

// Persist writes the pairs to disk and merges the derived entries into
// the environment file. Stage order matters: the environment file is
// written last, so a failure in any earlier stage leaves it untouched.
// Already-written key files are not rolled back on failure.
func (p *Provisioner) Persist(pairs *TokenKeyPairs, config Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid provisioning config: %w", err)
	}
	if pairs == nil || pairs.Access == nil || pairs.Refresh == nil {
		return fmt.Errorf("both key pairs are required")
	}

	observer := p.observer()

	err := p.runStage(StageEnsureDirectory, func() error {
		if err := keystore.EnsureDirectory(config.KeyDirectory); err != nil {
			return err
		}
		// Hardening is advisory: on filesystems without a POSIX
		// permission model the default permissions stand.
		if err := hardenDirectory(config.KeyDirectory); err != nil {
			observer.Degraded(StageEnsureDirectory, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	files := []struct {
		name    string
		content string
	}{
		{AccessPublicFile, pairs.Access.PublicKey},
		{AccessPrivateFile, pairs.Access.PrivateKey},
		{RefreshPublicFile, pairs.Refresh.PublicKey},
		{RefreshPrivateFile, pairs.Refresh.PrivateKey},
	}
	err = p.runStage(StageWriteKeys, func() error {
		for _, file := range files {
			path := filepath.Join(config.KeyDirectory, file.name)
			fellBack, err := keystore.WriteProtected(path, []byte(file.content), config.FileMode)
			if err != nil {
				return err
			}
			if fellBack {
				observer.Degraded(StageWriteKeys, fmt.Errorf("wrote %s with default permissions (mode %04o rejected)", path, config.FileMode))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(config.EscrowKeys) > 0 {
		err = p.runStage(StageWriteEscrow, func() error {
			return writeEscrowBundle(pairs, config, observer)
		})
		if err != nil {
			return err
		}
	}

	var existing *envfile.Record
	err = p.runStage(StageLoadEnvironment, func() error {
		record, warn := envfile.Load(config.EnvFile)
		if warn != nil {
			// Absent or unreadable file: start from an empty record.
			observer.Degraded(StageLoadEnvironment, warn)
		}
		existing = record
		return nil
	})
	if err != nil {
		return err
	}

	return p.runStage(StageWriteEnvironment, func() error {
		merged := envfile.Merge(existing, derivedEntries(pairs, config))
		fellBack, err := keystore.WriteProtected(config.EnvFile, envfile.Serialize(merged), config.FileMode)
		if err != nil {
			return err
		}
		if fellBack {
			observer.Degraded(StageWriteEnvironment, fmt.Errorf("wrote %s with default permissions (mode %04o rejected)", config.EnvFile, config.FileMode))
		}
		return nil
	})
}

// Provision is the composed entry point: generate both pairs, then
// persist them. Any stage failure aborts the rest of the run.
func (p *Provisioner) Provision(config Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid provisioning config: %w", err)
	}

	pairs, err := p.Generate(config.ModulusBits)
	if err != nil {
		return err
	}
	return p.Persist(pairs, config)
}

// writeEscrowBundle encrypts the two passphrases to the escrow recipients
// and writes the armored bundle next to the key files. The bundle uses
// the same KEY="value" format as the environment file so recovery tooling
// can reuse the envfile parser.
func writeEscrowBundle(pairs *TokenKeyPairs, config Config, observer Observer) error {
	bundle := envfile.NewRecord()
	bundle.Set(envKey(keypair.Access, "PRIVATE_KEY_PASSPHRASE"), pairs.Access.Passphrase)
	bundle.Set(envKey(keypair.Refresh, "PRIVATE_KEY_PASSPHRASE"), pairs.Refresh.Passphrase)

	ciphertext, err := sealed.Encrypt(envfile.Serialize(bundle), config.EscrowKeys)
	if err != nil {
		return err
	}

	path := filepath.Join(config.KeyDirectory, EscrowFile)
	fellBack, err := keystore.WriteProtected(path, ciphertext, config.FileMode)
	if err != nil {
		return err
	}
	if fellBack {
		observer.Degraded(StageWriteEscrow, fmt.Errorf("wrote %s with default permissions (mode %04o rejected)", path, config.FileMode))
	}
	return nil
}

// derivedEntries builds the ten environment entries this run owns: path,
// passphrase, and content for each half of each pair.
func derivedEntries(pairs *TokenKeyPairs, config Config) *envfile.Record {
	updates := envfile.NewRecord()
	add := func(keyType keypair.KeyType, pair *keypair.KeyPair, publicFile, privateFile string) {
		updates.Set(envKey(keyType, "PUBLIC_KEY_PATH"), filepath.Join(config.KeyDirectory, publicFile))
		updates.Set(envKey(keyType, "PRIVATE_KEY_PATH"), filepath.Join(config.KeyDirectory, privateFile))
		updates.Set(envKey(keyType, "PRIVATE_KEY_PASSPHRASE"), pair.Passphrase)
		updates.Set(envKey(keyType, "PUBLIC_KEY"), pair.PublicKey)
		updates.Set(envKey(keyType, "PRIVATE_KEY"), pair.PrivateKey)
	}
	add(keypair.Access, pairs.Access, AccessPublicFile, AccessPrivateFile)
	add(keypair.Refresh, pairs.Refresh, RefreshPublicFile, RefreshPrivateFile)
	return updates
}

// envKey builds a derived variable name: ACCESS_TOKEN_<suffix> or
// REFRESH_TOKEN_<suffix>.
func envKey(keyType keypair.KeyType, suffix string) string {
	return strings.ToUpper(string(keyType)) + "_TOKEN_" + suffix
}
