// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed wraps filippo.io/age for Signet's passphrase escrow. When
// an operator supplies escrow recipients, the provisioning run writes an
// armored age file containing the generated private-key passphrases, so
// the keys can be recovered if the environment file is ever lost.
//
// Only the operations Signet needs are exposed: validate a recipient key,
// encrypt to one or more recipients, and decrypt with an identity (used by
// recovery tooling and tests).
package sealed

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// ParseRecipient validates an age X25519 public key in age1... format.
func ParseRecipient(key string) error {
	if _, err := age.ParseX25519Recipient(key); err != nil {
		return fmt.Errorf("parsing escrow recipient %q: %w", key, err)
	}
	return nil
}

// Encrypt encrypts plaintext to the given age recipients and returns the
// armored ciphertext, ready to be written to disk as a text file. At
// least one recipient is required.
func Encrypt(plaintext []byte, recipientKeys []string) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("at least one escrow recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing escrow recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var buffer bytes.Buffer
	armorWriter := armor.NewWriter(&buffer)
	encryptWriter, err := age.Encrypt(armorWriter, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := encryptWriter.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := encryptWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor encoding: %w", err)
	}

	return buffer.Bytes(), nil
}

// Decrypt decrypts armored ciphertext with the given identity.
func Decrypt(ciphertext []byte, identity *age.X25519Identity) ([]byte, error) {
	reader, err := age.Decrypt(armor.NewReader(bytes.NewReader(ciphertext)), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting escrow bundle: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted escrow bundle: %w", err)
	}
	return plaintext, nil
}
