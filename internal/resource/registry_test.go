// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"errors"
	"strings"
	"testing"
)

func TestRegisterBuiltinDuplicatePanics(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	RegisterBuiltin(&fakeProvider{name: "file", serves: []string{"csv"}})

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate RegisterBuiltin did not panic")
		}
	}()
	RegisterBuiltin(&fakeProvider{name: "file", serves: []string{"text"}})
}

func TestRegisterPluginDuplicate(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	if err := RegisterPlugin(&fakeProvider{name: "custom", serves: []string{"s3"}}); err != nil {
		t.Fatalf("first RegisterPlugin error: %v", err)
	}
	err := RegisterPlugin(&fakeProvider{name: "custom", serves: []string{"gcs"}})
	if err == nil {
		t.Fatal("duplicate RegisterPlugin = nil error")
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("duplicate RegisterPlugin error = %v, want ErrConfig", err)
	}
}

func TestBuildRegistryBuiltinsOnly(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	RegisterBuiltin(&fakeProvider{name: "file", serves: []string{"csv", "text_file"}})
	RegisterBuiltin(&fakeProvider{name: "dbms", serves: []string{"dbms", "dbms.duckdb"}})

	reg, err := buildRegistry(nil)
	if err != nil {
		t.Fatalf("buildRegistry() error: %v", err)
	}
	for _, key := range []string{"csv", "text_file", "dbms", "dbms.duckdb"} {
		if _, ok := reg[key]; !ok {
			t.Errorf("capability %q missing from registry", key)
		}
	}
}

func TestBuildRegistryPluginShadowsBuiltin(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	RegisterBuiltin(&fakeProvider{name: "file", serves: []string{"csv"}})
	shadow := &fakeProvider{name: "fastcsv", serves: []string{"csv"}}
	if err := RegisterPlugin(shadow); err != nil {
		t.Fatalf("RegisterPlugin error: %v", err)
	}

	// Not activated: builtin still serves csv
	reg, err := buildRegistry(nil)
	if err != nil {
		t.Fatalf("buildRegistry() error: %v", err)
	}
	if got := reg["csv"].Name(); got != "file" {
		t.Errorf("inactive plugin took capability: csv served by %q, want file", got)
	}

	// Activated: plugin shadows the builtin
	reg, err = buildRegistry([]string{"fastcsv"})
	if err != nil {
		t.Fatalf("buildRegistry(fastcsv) error: %v", err)
	}
	if got := reg["csv"].Name(); got != "fastcsv" {
		t.Errorf("csv served by %q, want shadowing plugin fastcsv", got)
	}
}

func TestBuildRegistryUnknownPlugin(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	_, err := buildRegistry([]string{"ghost"})
	if err == nil {
		t.Fatal("buildRegistry(ghost) = nil error")
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error %q should name the missing plugin", err)
	}
}

func TestBuildRegistrySkipsEmptyServes(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	RegisterBuiltin(&fakeProvider{name: "hollow", serves: nil})
	RegisterBuiltin(&fakeProvider{name: "file", serves: []string{"csv"}})

	reg, err := buildRegistry(nil)
	if err != nil {
		t.Fatalf("buildRegistry() error: %v", err)
	}
	if len(reg) != 1 {
		t.Errorf("registry has %d capabilities, want 1 (hollow provider skipped)", len(reg))
	}
}

func TestBuildRegistryPluginOrder(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	first := &fakeProvider{name: "first", serves: []string{"blob"}}
	second := &fakeProvider{name: "second", serves: []string{"blob"}}
	if err := RegisterPlugin(first); err != nil {
		t.Fatal(err)
	}
	if err := RegisterPlugin(second); err != nil {
		t.Fatal(err)
	}

	// Later entries in the plugins list win
	reg, err := buildRegistry([]string{"first", "second"})
	if err != nil {
		t.Fatalf("buildRegistry() error: %v", err)
	}
	if got := reg["blob"].Name(); got != "second" {
		t.Errorf("blob served by %q, want second", got)
	}

	reg, err = buildRegistry([]string{"second", "first"})
	if err != nil {
		t.Fatalf("buildRegistry() error: %v", err)
	}
	if got := reg["blob"].Name(); got != "first" {
		t.Errorf("blob served by %q, want first", got)
	}
}
