// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package keypair

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"github.com/youmark/pkcs8"
)

// KeyType distinguishes the two pairs Signet provisions. It appears in
// error messages, event payloads, and the derived environment variable
// names.
type KeyType string

const (
	// Access is the key pair for short-lived access tokens.
	Access KeyType = "access"
	// Refresh is the key pair for longer-lived refresh tokens.
	Refresh KeyType = "refresh"
)

// Supported modulus lengths. Anything else is rejected before key
// generation starts.
const (
	ModulusBits2048 = 2048
	ModulusBits4096 = 4096
)

// passphraseBytes is the raw entropy of a generated passphrase. 32 bytes
// gives 256 bits; the base64 encoding keeps it printable for the
// environment file.
const passphraseBytes = 32

// KeyPair is one validated RSA key pair. All three fields are set on every
// pair returned by Generate; the struct is immutable after creation.
type KeyPair struct {
	// PublicKey is the PKIX-encoded public key ("PUBLIC KEY" PEM block).
	// Safe to publish.
	PublicKey string

	// PrivateKey is the PKCS#8 EncryptedPrivateKeyInfo PEM block
	// ("ENCRYPTED PRIVATE KEY"), encrypted with scrypt + AES-256-GCM
	// under Passphrase. Useless without Passphrase; the two must be
	// stored together.
	PrivateKey string

	// Passphrase decrypts PrivateKey. 256 bits of entropy, base64
	// URL-safe encoded. Never reused across pairs.
	Passphrase string
}

// GenerationError reports that the key primitive itself failed: bad
// modulus length, entropy exhaustion, or a marshalling failure.
type GenerationError struct {
	KeyType KeyType
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s key pair: %v", e.KeyType, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError reports that a freshly generated pair failed its
// sign/verify round-trip. Always fatal and never retried: a pair that
// cannot prove itself usable must not be trusted.
type ValidationError struct {
	KeyType KeyType
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validating %s key pair: %v", e.KeyType, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Generate produces one validated key pair for the given key type.
// modulusBits must be 2048 or 4096.
//
// Each call draws a fresh passphrase and fresh key material; two calls
// never share state, so compromise of one pair says nothing about
// another.
func Generate(keyType KeyType, modulusBits int) (*KeyPair, error) {
	if modulusBits != ModulusBits2048 && modulusBits != ModulusBits4096 {
		return nil, &GenerationError{KeyType: keyType, Err: fmt.Errorf("unsupported modulus length %d (want %d or %d)", modulusBits, ModulusBits2048, ModulusBits4096)}
	}

	passphrase, err := generatePassphrase()
	if err != nil {
		return nil, &GenerationError{KeyType: keyType, Err: err}
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, modulusBits)
	if err != nil {
		return nil, &GenerationError{KeyType: keyType, Err: fmt.Errorf("generating RSA key: %w", err)}
	}

	publicPEM, err := encodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, &GenerationError{KeyType: keyType, Err: err}
	}

	privatePEM, err := encodePrivateKey(privateKey, passphrase)
	if err != nil {
		return nil, &GenerationError{KeyType: keyType, Err: err}
	}

	pair := &KeyPair{
		PublicKey:  publicPEM,
		PrivateKey: privatePEM,
		Passphrase: passphrase,
	}

	// Validate the encoded artifacts, not the in-memory key: this proves
	// that what the caller will persist actually decrypts, signs, and
	// verifies.
	if err := validatePair(pair); err != nil {
		return nil, &ValidationError{KeyType: keyType, Err: err}
	}

	return pair, nil
}

// Fingerprint returns the hex-encoded SHA256 digest of the DER form of a
// PKIX public key PEM. This is the identifier used in event payloads and
// CLI output; it is safe to log.
func Fingerprint(publicKeyPEM string) (string, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil || block.Type != "PUBLIC KEY" {
		return "", fmt.Errorf("input is not a PUBLIC KEY PEM block")
	}
	digest := sha256.Sum256(block.Bytes)
	return hex.EncodeToString(digest[:]), nil
}

// generatePassphrase draws 32 bytes from crypto/rand and encodes them
// URL-safe base64 (43 printable characters, no padding).
func generatePassphrase() (string, error) {
	raw := make([]byte, passphraseBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("reading passphrase entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// encodePublicKey marshals the public key as a PKIX "PUBLIC KEY" PEM
// block.
func encodePublicKey(key *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("marshalling public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// encodePrivateKey marshals the private key as PKCS#8
// EncryptedPrivateKeyInfo, encrypted with scrypt + AES-256-GCM under the
// passphrase. GCM authenticates the ciphertext, so tampering with the
// stored key is detected at decryption time rather than producing garbage
// key material.
func encodePrivateKey(key *rsa.PrivateKey, passphrase string) (string, error) {
	der, err := pkcs8.MarshalPrivateKey(key, []byte(passphrase), &pkcs8.Opts{
		Cipher: pkcs8.AES256GCM,
		KDFOpts: pkcs8.ScryptOpts{
			CostParameter:            1 << 14,
			BlockSize:                8,
			ParallelizationParameter: 1,
			SaltSize:                 16,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encrypting private key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: der})), nil
}

// validatePair is a test seam for forcing a validation failure inside
// Generate.
var validatePair = validate

// validate proves the pair usable: decrypt the private PEM with the
// passphrase, sign a fresh random message, verify against the public PEM.
func validate(pair *KeyPair) error {
	privateKey, err := DecryptPrivateKey(pair.PrivateKey, pair.Passphrase)
	if err != nil {
		return err
	}

	publicKey, err := ParsePublicKey(pair.PublicKey)
	if err != nil {
		return err
	}

	message := make([]byte, 32)
	if _, err := rand.Read(message); err != nil {
		return fmt.Errorf("reading validation message entropy: %w", err)
	}

	digest := sha256.Sum256(message)
	signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, digest[:])
	if err != nil {
		return fmt.Errorf("signing validation message: %w", err)
	}

	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest[:], signature); err != nil {
		return fmt.Errorf("verifying validation signature: %w", err)
	}

	return nil
}

// DecryptPrivateKey decodes an "ENCRYPTED PRIVATE KEY" PEM block and
// decrypts it with the passphrase. A wrong passphrase or tampered
// ciphertext fails here (GCM authentication).
func DecryptPrivateKey(privateKeyPEM, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil || block.Type != "ENCRYPTED PRIVATE KEY" {
		return nil, fmt.Errorf("input is not an ENCRYPTED PRIVATE KEY PEM block")
	}
	key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("decrypting private key: %w", err)
	}
	return key, nil
}

// ParsePublicKey decodes a "PUBLIC KEY" PEM block into an RSA public key.
func ParsePublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("input is not a PUBLIC KEY PEM block")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	publicKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is %T, want *rsa.PublicKey", parsed)
	}
	return publicKey, nil
}
