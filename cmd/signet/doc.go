// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

// Signet provisions RSA key material for token-based authentication. It
// generates independent access and refresh key pairs with encrypted
// private keys, writes them as PEM files under a hardened key directory,
// and merges the derived paths, key contents, and passphrases into an
// environment-configuration file.
// Subcommands: provision, inspect, version.
package main
