// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

// Package provision orchestrates a Signet provisioning run: generate the
// access and refresh key pairs, persist them to the key directory, and
// merge the derived values into the environment-configuration file.
//
// The stages run strictly in sequence, each gated on the previous one.
// The environment file is written last, so any earlier failure leaves it
// untouched. Key files already written when a later stage fails are left
// in place; there is no rollback, and rerunning the tool overwrites them.
//
// A run is not safe against a second concurrent run targeting the same
// directory or environment file: the read-merge-write of the environment
// file is not transactional. That exclusivity is the caller's obligation.
//
// Progress is reported through an injected Observer; the package never
// constructs its own logger.
package provision
