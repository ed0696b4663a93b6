// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pepcache

import (
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/glite-authz/pep-client/lib/clock"
	"github.com/glite-authz/pep-client/pep"
)

// key is a 32-byte BLAKE3 keyed digest of marshaled request bytes.
type key [32]byte

// requestDomainKey separates pepcache's hash domain from any other
// BLAKE3 use in this module, following the teacher's keyed-hash
// domain-separation convention: a fixed, readable-ASCII 32-byte key.
var requestDomainKey = [32]byte{
	'g', 'l', 'i', 't', 'e', '-', 'a', 'u', 't', 'h', 'z', '.',
	'p', 'e', 'p', 'c', 'a', 'c', 'h', 'e', '.', 'r', 'e', 'q', 'u', 'e', 's', 't',
	0, 0, 0, 0,
}

func keyFor(requestBytes []byte) key {
	hasher, err := blake3.NewKeyed(requestDomainKey[:])
	if err != nil {
		panic("pepcache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(requestBytes)
	var k key
	copy(k[:], hasher.Sum(nil))
	return k
}

// entry is one cached decision, held both in memory and (in encoded
// form) by an optional PersistTier.
type entry struct {
	response  *pep.Response
	expiresAt time.Time
}

// Config configures a Cache.
type Config struct {
	// TTL bounds how long an entry is served before Authorize must
	// hit the wire again. Required; a zero TTL means every Get misses.
	TTL time.Duration

	// MaxEntries caps the in-memory tier's size. When exceeded, the
	// oldest entry by insertion order is evicted. Zero means no cap.
	MaxEntries int

	// Clock abstracts time for tests. Defaults to clock.Real() if nil.
	Clock clock.Clock

	// Persist, if non-nil, is consulted on a Get miss and written to
	// on every Put, so entries survive process restarts.
	Persist *PersistTier
}

// Cache is a decision cache keyed on marshaled request bytes.
type Cache struct {
	mu         sync.Mutex
	clock      clock.Clock
	ttl        time.Duration
	maxEntries int
	order      []key
	entries    map[key]*entry
	persist    *PersistTier
}

// New creates a Cache from config.
func New(config Config) *Cache {
	c := config.Clock
	if c == nil {
		c = clock.Real()
	}
	return &Cache{
		clock:      c,
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
		entries:    make(map[key]*entry),
		persist:    config.Persist,
	}
}

// Get returns the cached Response for requestBytes (the output of
// pep.MarshalRequest), if present and not expired. A disk-tier hit is
// promoted into the in-memory tier.
func (c *Cache) Get(requestBytes []byte) (*pep.Response, bool) {
	k := keyFor(requestBytes)
	now := c.clock.Now()

	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		if now.Before(e.expiresAt) {
			c.mu.Unlock()
			return e.response, true
		}
		delete(c.entries, k)
		for i, o := range c.order {
			if o == k {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	if c.persist == nil {
		return nil, false
	}
	response, expiresAt, ok, err := c.persist.load(k)
	if err != nil || !ok || !now.Before(expiresAt) {
		return nil, false
	}

	c.mu.Lock()
	c.insertLocked(k, &entry{response: response, expiresAt: expiresAt})
	c.mu.Unlock()
	return response, true
}

// Put stores response under the key derived from requestBytes, valid
// for the Cache's configured TTL. If a disk tier is configured, the
// entry is also persisted.
func (c *Cache) Put(requestBytes []byte, response *pep.Response) error {
	k := keyFor(requestBytes)
	expiresAt := c.clock.Now().Add(c.ttl)

	c.mu.Lock()
	c.insertLocked(k, &entry{response: response, expiresAt: expiresAt})
	c.mu.Unlock()

	if c.persist == nil {
		return nil
	}
	return c.persist.save(k, response, expiresAt)
}

// insertLocked adds or replaces the entry at k, evicting the oldest
// insertion-ordered entry if MaxEntries would be exceeded. Must be
// called with c.mu held.
func (c *Cache) insertLocked(k key, e *entry) {
	if _, exists := c.entries[k]; !exists {
		c.order = append(c.order, k)
	}
	c.entries[k] = e

	if c.maxEntries <= 0 {
		return
	}
	for len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}
