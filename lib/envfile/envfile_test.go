// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package envfile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeTemp writes content to a file in a fresh temp directory and
// returns its path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTemp(t, strings.Join([]string{
		"# a comment",
		"",
		`FOO="bar"`,
		"PLAIN=unquoted value",
		"  SPACED_KEY  =  spaced value  ",
		"no-separator-line",
		`EMBEDDED="line one\nline two"`,
		`=no key`,
	}, "\n"))

	record, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := map[string]string{
		"FOO":        "bar",
		"PLAIN":      "unquoted value",
		"SPACED_KEY": "spaced value",
		"EMBEDDED":   "line one\nline two",
	}
	if record.Len() != len(want) {
		t.Errorf("Len() = %d, want %d (keys: %v)", record.Len(), len(want), record.Keys())
	}
	for key, value := range want {
		got, ok := record.Get(key)
		if !ok {
			t.Errorf("key %q missing", key)
			continue
		}
		if got != value {
			t.Errorf("Get(%q) = %q, want %q", key, got, value)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	record, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if record == nil {
		t.Fatal("Load returned a nil record")
	}
	if record.Len() != 0 {
		t.Errorf("Len() = %d, want 0", record.Len())
	}
	if err == nil {
		t.Error("Load of a missing file returned no advisory error")
	}
}

func TestLoad_PreservesOrder(t *testing.T) {
	path := writeTemp(t, "A=\"1\"\nB=\"2\"\nC=\"3\"\n")
	record, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := record.Keys(), []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestMerge(t *testing.T) {
	existing := NewRecord()
	existing.Set("FOO", "bar")
	existing.Set("KEEP", "me")

	updates := NewRecord()
	updates.Set("FOO", "overwritten")
	updates.Set("NEW", "entry")

	merged := Merge(existing, updates)

	if got, _ := merged.Get("FOO"); got != "overwritten" {
		t.Errorf("FOO = %q, want %q", got, "overwritten")
	}
	if got, _ := merged.Get("KEEP"); got != "me" {
		t.Errorf("KEEP = %q, want %q", got, "me")
	}
	if got, _ := merged.Get("NEW"); got != "entry" {
		t.Errorf("NEW = %q, want %q", got, "entry")
	}
	if merged.Len() != 3 {
		t.Errorf("Len() = %d, want 3", merged.Len())
	}

	// Inputs untouched.
	if got, _ := existing.Get("FOO"); got != "bar" {
		t.Errorf("Merge mutated its input: existing FOO = %q", got)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	existing := NewRecord()
	existing.Set("A", "1")
	updates := NewRecord()
	updates.Set("A", "2")
	updates.Set("B", "3")

	once := Merge(existing, updates)
	twice := Merge(once, updates)

	if !reflect.DeepEqual(once.Keys(), twice.Keys()) {
		t.Errorf("key order changed on repeated merge: %v vs %v", once.Keys(), twice.Keys())
	}
	for _, key := range once.Keys() {
		first, _ := once.Get(key)
		second, _ := twice.Get(key)
		if first != second {
			t.Errorf("value for %q changed on repeated merge: %q vs %q", key, first, second)
		}
	}
}

func TestSerialize(t *testing.T) {
	record := NewRecord()
	record.Set("FOO", "bar")
	record.Set("MULTI", "line one\nline two")

	got := string(Serialize(record))
	want := "FOO=\"bar\"\nMULTI=\"line one\\nline two\"\n"
	if got != want {
		t.Errorf("Serialize = %q, want %q", got, want)
	}
}

func TestSerializeLoadRoundTrip(t *testing.T) {
	record := NewRecord()
	record.Set("SIMPLE", "value")
	record.Set("PEM", "-----BEGIN PUBLIC KEY-----\nMIIBIjAN\n-----END PUBLIC KEY-----\n")
	record.Set("EMPTY", "")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, Serialize(record), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(loaded.Keys(), record.Keys()) {
		t.Errorf("Keys() = %v, want %v", loaded.Keys(), record.Keys())
	}
	for _, key := range record.Keys() {
		want, _ := record.Get(key)
		got, ok := loaded.Get(key)
		if !ok {
			t.Errorf("key %q missing after round trip", key)
			continue
		}
		if got != want {
			t.Errorf("round trip of %q = %q, want %q", key, got, want)
		}
	}
}
