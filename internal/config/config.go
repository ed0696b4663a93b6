// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar is the environment variable that names the config file path
// when --config is not given.
const EnvVar = "PEP_CLIENT_CONFIG"

// Config is pep-request's configuration.
type Config struct {
	// Endpoints is the ordered list of PEP daemon base URLs tried by
	// pepclient.Client, e.g. "https://pepd1.example.org:8154/authz".
	Endpoints []string `yaml:"endpoints"`

	// Timeout bounds a single endpoint attempt. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`

	// SkipOCSP disables the OCSP revocation check on the PEPd server
	// certificate. Default: true, since most grid CAs of this era ran
	// no OCSP responder.
	SkipOCSP bool `yaml:"skip_ocsp"`

	TLS   TLSConfig   `yaml:"tls"`
	Cache CacheConfig `yaml:"cache"`
}

// TLSConfig configures client-certificate authentication.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded client certificate.
	CertFile string `yaml:"cert_file"`
	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`
	// CAFile is the path to a PEM bundle of CAs trusted for verifying
	// the PEPd server certificate. Empty means use the system roots.
	CAFile string `yaml:"ca_file"`
}

// CacheConfig configures the decision cache.
type CacheConfig struct {
	// TTL is how long a cached decision stays valid. Zero disables
	// the cache entirely.
	TTL time.Duration `yaml:"ttl"`
	// MaxEntries caps the in-memory tier's size. Zero means unbounded.
	MaxEntries int `yaml:"max_entries"`
	// PersistDir, if set, enables the on-disk tier in this directory.
	PersistDir string `yaml:"persist_dir"`
	// Recipients is the list of age public keys entries are encrypted
	// to. Required if PersistDir is set.
	Recipients []string `yaml:"recipients"`
	// PrivateKeyFile is the path to the age private key used to
	// decrypt entries read back from PersistDir. Without it, the
	// persist tier is write-only: entries are saved but every read
	// comes back as a clean miss.
	PrivateKeyFile string `yaml:"private_key_file"`
}

// Default returns the configuration used as a base before the file is
// applied, so every field has a sensible zero value.
func Default() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		SkipOCSP: true,
	}
}

// Load reads the config file named by path, or by the PEP_CLIENT_CONFIG
// environment variable if path is empty. There is no further fallback
// or discovery: an empty path and an unset environment variable is an
// error, not a default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return nil, fmt.Errorf("no config file given: pass --config or set %s", EnvVar)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.expandPaths()

	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("config: at least one endpoint is required")
	}

	return cfg, nil
}

func (c *Config) expandPaths() {
	c.TLS.CertFile = expandVars(c.TLS.CertFile)
	c.TLS.KeyFile = expandVars(c.TLS.KeyFile)
	c.TLS.CAFile = expandVars(c.TLS.CAFile)
	c.Cache.PersistDir = expandVars(c.Cache.PersistDir)
	c.Cache.PrivateKeyFile = expandVars(c.Cache.PrivateKeyFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns against the
// process environment, for config values like "${HOME}/.pep-client/cache".
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name, defaultValue := parts[1], ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}
