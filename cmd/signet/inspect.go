// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/signet-auth/signet/lib/keypair"
	"github.com/signet-auth/signet/lib/provision"
)

func runInspect(args []string) error {
	flags := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	keyDirectory := flags.String("key-dir", defaultKeyDirectory, "directory containing the key files")
	if err := flags.Parse(args); err != nil {
		return err
	}

	pairs := []struct {
		keyType     keypair.KeyType
		publicFile  string
		privateFile string
	}{
		{keypair.Access, provision.AccessPublicFile, provision.AccessPrivateFile},
		{keypair.Refresh, provision.RefreshPublicFile, provision.RefreshPrivateFile},
	}

	for _, pair := range pairs {
		if err := inspectPublicKey(*keyDirectory, pair.keyType, pair.publicFile); err != nil {
			return err
		}
		if err := inspectPrivateKey(*keyDirectory, pair.keyType, pair.privateFile); err != nil {
			return err
		}
	}
	return nil
}

// inspectPublicKey parses a public key file and prints its modulus
// length and fingerprint.
func inspectPublicKey(keyDirectory string, keyType keypair.KeyType, name string) error {
	path := filepath.Join(keyDirectory, name)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	publicKey, err := keypair.ParsePublicKey(string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fingerprint, err := keypair.Fingerprint(string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("%s public key: RSA-%d, fingerprint %s\n", keyType, publicKey.N.BitLen(), fingerprint)
	return nil
}

// inspectPrivateKey confirms a private key file is a well-formed
// encrypted PKCS#8 block. The passphrase is not available here, so the
// key is not decrypted. This checks the container, not the contents.
func inspectPrivateKey(keyDirectory string, keyType keypair.KeyType, name string) error {
	path := filepath.Join(keyDirectory, name)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	block, _ := pem.Decode(content)
	if block == nil {
		return fmt.Errorf("%s is not a PEM block", path)
	}
	if block.Type != "ENCRYPTED PRIVATE KEY" {
		return fmt.Errorf("%s has PEM type %q, want ENCRYPTED PRIVATE KEY", path, block.Type)
	}

	fmt.Printf("%s private key: encrypted PKCS#8, %d bytes\n", keyType, len(block.Bytes))
	return nil
}
