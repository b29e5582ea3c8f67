// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"strings"
	"testing"

	"filippo.io/age"
)

func TestEncryptDecrypt(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}

	plaintext := []byte("ACCESS_TOKEN_PRIVATE_KEY_PASSPHRASE=\"abc\"\n")
	ciphertext, err := Encrypt(plaintext, []string{identity.Recipient().String()})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if !strings.HasPrefix(string(ciphertext), "-----BEGIN AGE ENCRYPTED FILE-----") {
		t.Errorf("ciphertext is not armored:\n%s", ciphertext[:40])
	}

	decrypted, err := Decrypt(ciphertext, identity)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("Decrypt = %q, want %q", decrypted, plaintext)
	}
}

func TestEncrypt_MultipleRecipients(t *testing.T) {
	first, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}
	second, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}

	ciphertext, err := Encrypt([]byte("shared"), []string{
		first.Recipient().String(),
		second.Recipient().String(),
	})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	for _, identity := range []*age.X25519Identity{first, second} {
		decrypted, err := Decrypt(ciphertext, identity)
		if err != nil {
			t.Errorf("Decrypt with recipient %s: %v", identity.Recipient(), err)
			continue
		}
		if string(decrypted) != "shared" {
			t.Errorf("Decrypt = %q, want %q", decrypted, "shared")
		}
	}
}

func TestEncrypt_NoRecipients(t *testing.T) {
	if _, err := Encrypt([]byte("data"), nil); err == nil {
		t.Error("Encrypt with no recipients succeeded")
	}
}

func TestParseRecipient(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}

	if err := ParseRecipient(identity.Recipient().String()); err != nil {
		t.Errorf("ParseRecipient on a valid key: %v", err)
	}
	if err := ParseRecipient("age1notakey"); err == nil {
		t.Error("ParseRecipient on garbage succeeded")
	}
}
