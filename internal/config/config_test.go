// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if !cfg.SkipOCSP {
		t.Error("SkipOCSP should default to true")
	}
}

func TestLoad_RequiresExplicitPathOrEnvVar(t *testing.T) {
	orig := os.Getenv(EnvVar)
	defer os.Setenv(EnvVar, orig)
	os.Unsetenv(EnvVar)

	_, err := Load("")
	if err == nil {
		t.Fatal("Load(\"\") with no env var set, want error")
	}
}

func TestLoad_WithExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pep-client.yaml")

	content := `
endpoints:
  - https://pepd1.example.org:8154/authz
  - https://pepd2.example.org:8154/authz
timeout: 10s
cache:
  ttl: 5m
  max_entries: 1000
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Endpoints) != 2 {
		t.Fatalf("Endpoints = %v, want 2 entries", cfg.Endpoints)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.Cache.MaxEntries != 1000 {
		t.Errorf("Cache.MaxEntries = %d, want 1000", cfg.Cache.MaxEntries)
	}
}

func TestLoad_ViaEnvironmentVariable(t *testing.T) {
	orig := os.Getenv(EnvVar)
	defer os.Setenv(EnvVar, orig)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pep-client.yaml")
	if err := os.WriteFile(configPath, []byte("endpoints: [https://pepd.example.org/authz]\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	os.Setenv(EnvVar, configPath)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if len(cfg.Endpoints) != 1 {
		t.Fatalf("Endpoints = %v, want 1 entry", cfg.Endpoints)
	}
}

func TestLoadFile_RequiresAtLeastOneEndpoint(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pep-client.yaml")
	if err := os.WriteFile(configPath, []byte("timeout: 10s\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("LoadFile() with no endpoints, want error")
	}
}

func TestExpandVars(t *testing.T) {
	orig := os.Getenv("PEP_CLIENT_TEST_HOME")
	defer os.Setenv("PEP_CLIENT_TEST_HOME", orig)
	os.Setenv("PEP_CLIENT_TEST_HOME", "/home/alice")

	got := expandVars("${PEP_CLIENT_TEST_HOME}/.cache/pep-client")
	want := "/home/alice/.cache/pep-client"
	if got != want {
		t.Errorf("expandVars() = %q, want %q", got, want)
	}
}

func TestExpandVars_DefaultValue(t *testing.T) {
	orig := os.Getenv("PEP_CLIENT_TEST_UNSET")
	defer os.Setenv("PEP_CLIENT_TEST_UNSET", orig)
	os.Unsetenv("PEP_CLIENT_TEST_UNSET")

	got := expandVars("${PEP_CLIENT_TEST_UNSET:-/var/cache/pep-client}")
	want := "/var/cache/pep-client"
	if got != want {
		t.Errorf("expandVars() = %q, want %q", got, want)
	}
}
