// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

// Package envfile reads, merges, and writes line-oriented KEY="value"
// environment-configuration files. Signet merges its derived entries into
// whatever file the operator already has; nothing that was there before
// is dropped unless one of Signet's own keys overwrites it.
//
// Comments and blank lines are skipped on read and not written back.
// Values are written double-quoted with literal newlines escaped as the
// two-character sequence \n, so the file stays line-oriented; Load undoes
// that escape for quoted values. No other escaping is performed.
package envfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Record is an ordered mapping from variable name to value. Insertion
// order is preserved so rewrites are stable and diffs stay readable.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set stores value under key, appending the key to the order on first
// insertion. Setting an existing key overwrites in place.
func (r *Record) Set(key, value string) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether it is present.
func (r *Record) Get(key string) (string, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Keys returns the variable names in insertion order. The returned slice
// is a copy.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of entries.
func (r *Record) Len() int {
	return len(r.keys)
}

// Load parses the environment file at path. It never fails in the fatal
// sense: a missing or unreadable file yields an empty record together
// with a non-nil advisory error that the caller should log and otherwise
// ignore. The returned record is always non-nil.
//
// Parsing: blank lines and lines whose first non-whitespace character is
// '#' are skipped; remaining lines split on the first '='; keys are
// whitespace-trimmed; one layer of surrounding double quotes is stripped
// from the value, and \n sequences inside quoted values become literal
// newlines. Lines without '=' are ignored.
func Load(path string) (*Record, error) {
	record := NewRecord()

	file, err := os.Open(path)
	if err != nil {
		return record, fmt.Errorf("reading environment file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		index := strings.Index(line, "=")
		if index < 0 {
			continue
		}
		key := strings.TrimSpace(line[:index])
		if key == "" {
			continue
		}
		record.Set(key, parseValue(line[index+1:]))
	}
	if err := scanner.Err(); err != nil {
		return record, fmt.Errorf("reading environment file %s: %w", path, err)
	}

	return record, nil
}

// parseValue strips one layer of surrounding double quotes and, for
// quoted values, turns \n escapes back into literal newlines.
func parseValue(raw string) string {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
		value = strings.ReplaceAll(value, `\n`, "\n")
	}
	return value
}

// Merge combines existing and updates into a new record. Updates take
// precedence for any key present in both; every other existing key is
// preserved. Existing keys keep their order, with new keys from updates
// appended in their own order. Both inputs are left untouched, and the
// operation is idempotent: merging the same updates twice yields the same
// record.
func Merge(existing, updates *Record) *Record {
	merged := NewRecord()
	for _, key := range existing.keys {
		merged.Set(key, existing.values[key])
	}
	for _, key := range updates.keys {
		merged.Set(key, updates.values[key])
	}
	return merged
}

// Serialize renders the record as KEY="value" lines in record order.
// Literal newlines in values are escaped as \n so the output stays
// line-oriented.
func Serialize(record *Record) []byte {
	var builder strings.Builder
	for _, key := range record.keys {
		value := strings.ReplaceAll(record.values[key], "\n", `\n`)
		fmt.Fprintf(&builder, "%s=\"%s\"\n", key, value)
	}
	return []byte(builder.String())
}
