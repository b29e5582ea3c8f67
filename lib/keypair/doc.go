// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

// Package keypair generates the RSA key pairs that back Signet's access and
// refresh tokens.
//
// Each call to Generate produces a fresh pair: the public key as PKIX PEM,
// the private key as PKCS#8 EncryptedPrivateKeyInfo PEM encrypted with
// AES-256-GCM under a newly generated 256-bit passphrase. Before a pair is
// returned it is validated end to end: the encoded private key is decrypted
// with the passphrase, used to sign a random message, and the signature is
// verified against the encoded public key. A pair that fails this round-trip
// is never returned to the caller.
//
// The private key PEM and its passphrase are a unit: one is useless without
// the other, and callers must persist them together.
package keypair
