// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pepcache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/glite-authz/pep-client/lib/secret"
	"github.com/glite-authz/pep-client/lib/sealed"
	"github.com/glite-authz/pep-client/pep"
)

// zstdEncoder and zstdDecoder are reused across calls rather than
// constructed per entry, mirroring the teacher's artifact-store
// compression package: zstd.Encoder and zstd.Decoder are safe for
// concurrent use once built.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("pepcache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("pepcache: zstd decoder initialization failed: " + err.Error())
	}
}

// PersistTier is the optional on-disk cache tier. Entries are
// JSON-encoded, zstd-compressed, then age-encrypted before being
// written to dir, one file per key.
type PersistTier struct {
	dir        string
	recipients []string
	privateKey *secret.Buffer
}

// NewPersistTier creates (if needed) dir and returns a PersistTier
// that encrypts entries to recipients (age public keys) and, when
// reading entries back, decrypts with privateKey. privateKey is
// borrowed and not closed by PersistTier. With a nil privateKey every
// read is a miss.
func NewPersistTier(dir string, recipients []string, privateKey *secret.Buffer) (*PersistTier, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("pepcache: at least one recipient is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("pepcache: creating cache directory: %w", err)
	}
	return &PersistTier{dir: dir, recipients: recipients, privateKey: privateKey}, nil
}

// persistedEntry is the JSON envelope stored on disk, before
// compression and encryption.
type persistedEntry struct {
	Response  *pep.Response `json:"response"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func (p *PersistTier) pathFor(k key) string {
	return filepath.Join(p.dir, hex.EncodeToString(k[:])+".cache")
}

func (p *PersistTier) save(k key, response *pep.Response, expiresAt time.Time) error {
	plaintext, err := json.Marshal(persistedEntry{Response: response, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("pepcache: encoding cache entry: %w", err)
	}
	compressed := zstdEncoder.EncodeAll(plaintext, nil)

	ciphertext, err := sealed.Encrypt(compressed, p.recipients)
	if err != nil {
		return fmt.Errorf("pepcache: encrypting cache entry: %w", err)
	}

	path := p.pathFor(k)
	if err := os.WriteFile(path, []byte(ciphertext), 0o600); err != nil {
		return fmt.Errorf("pepcache: writing cache entry: %w", err)
	}
	return nil
}

func (p *PersistTier) load(k key) (*pep.Response, time.Time, bool, error) {
	if p.privateKey == nil {
		return nil, time.Time{}, false, nil
	}
	ciphertext, err := os.ReadFile(p.pathFor(k))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, fmt.Errorf("pepcache: reading cache entry: %w", err)
	}

	plaintextBuffer, err := sealed.Decrypt(string(ciphertext), p.privateKey)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("pepcache: decrypting cache entry: %w", err)
	}
	defer plaintextBuffer.Close()

	decompressed, err := zstdDecoder.DecodeAll(plaintextBuffer.Bytes(), nil)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("pepcache: decompressing cache entry: %w", err)
	}

	var decoded persistedEntry
	if err := json.Unmarshal(decompressed, &decoded); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("pepcache: decoding cache entry: %w", err)
	}
	return decoded.Response, decoded.ExpiresAt, true, nil
}

// Evict removes a persisted entry for requestBytes, if present. Used
// to drop a stale on-disk entry without waiting for TTL expiry, e.g.
// after an operator rotates policy.
func (p *PersistTier) Evict(requestBytes []byte) error {
	err := os.Remove(p.pathFor(keyFor(requestBytes)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pepcache: evicting cache entry: %w", err)
	}
	return nil
}
