// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"fmt"
	"log/slog"
)

// Stage identifies one step of a provisioning run. Stage names appear in
// events and wrapped errors.
type Stage string

const (
	// StageGenerateAccess generates the access-token key pair.
	StageGenerateAccess Stage = "generate-access-keypair"
	// StageGenerateRefresh generates the refresh-token key pair.
	StageGenerateRefresh Stage = "generate-refresh-keypair"
	// StageEnsureDirectory creates and hardens the key directory.
	StageEnsureDirectory Stage = "ensure-key-directory"
	// StageWriteKeys writes the four PEM files.
	StageWriteKeys Stage = "write-key-files"
	// StageWriteEscrow writes the optional passphrase escrow bundle.
	StageWriteEscrow Stage = "write-escrow-bundle"
	// StageLoadEnvironment reads the existing environment file.
	StageLoadEnvironment Stage = "load-environment-file"
	// StageWriteEnvironment merges and writes the environment file.
	// Always the final stage.
	StageWriteEnvironment Stage = "write-environment-file"
)

// Observer receives stage lifecycle events from a provisioning run. The
// orchestrator emits events and carries on; it makes no assumption about
// how or whether they are recorded.
//
// Degraded reports conditions that do not abort the run: a failed
// directory hardening, an unreadable pre-existing environment file, or a
// key file written with default instead of restricted permissions.
type Observer interface {
	StageStarted(stage Stage)
	StageSucceeded(stage Stage)
	StageFailed(stage Stage, err error)
	Degraded(stage Stage, err error)
}

// NopObserver discards all events. It is the default when a Provisioner
// has no observer configured.
type NopObserver struct{}

func (NopObserver) StageStarted(Stage)       {}
func (NopObserver) StageSucceeded(Stage)     {}
func (NopObserver) StageFailed(Stage, error) {}
func (NopObserver) Degraded(Stage, error)    {}

// LogObserver forwards stage events to a slog logger. Stage starts log
// at debug, successes at info, degradations at warn, failures at error.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns an observer that logs to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) StageStarted(stage Stage) {
	o.logger.Debug("stage started", "stage", string(stage))
}

func (o *LogObserver) StageSucceeded(stage Stage) {
	o.logger.Info("stage succeeded", "stage", string(stage))
}

func (o *LogObserver) StageFailed(stage Stage, err error) {
	o.logger.Error("stage failed", "stage", string(stage), "error", err)
}

func (o *LogObserver) Degraded(stage Stage, err error) {
	o.logger.Warn("continuing degraded", "stage", string(stage), "cause", err)
}

// StageError wraps a stage failure so callers can tell which step of the
// run aborted it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
