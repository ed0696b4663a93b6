// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pepcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glite-authz/pep-client/lib/clock"
	"github.com/glite-authz/pep-client/lib/sealed"
	"github.com/glite-authz/pep-client/pep"
)

func TestCache_GetPutRoundTrip(t *testing.T) {
	fake := clock.Fake(time.Unix(1000, 0))
	c := New(Config{TTL: time.Minute, Clock: fake})

	request := []byte("request-bytes-1")
	response := &pep.Response{Results: []pep.Result{{Decision: pep.Permit}}}

	if _, ok := c.Get(request); ok {
		t.Fatal("Get() on empty cache returned a hit")
	}

	if err := c.Put(request, response); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok := c.Get(request)
	if !ok {
		t.Fatal("Get() after Put() missed")
	}
	if got.Results[0].Decision != pep.Permit {
		t.Errorf("got = %+v", got)
	}
}

func TestCache_EntryExpiresAfterTTL(t *testing.T) {
	fake := clock.Fake(time.Unix(1000, 0))
	c := New(Config{TTL: time.Minute, Clock: fake})

	request := []byte("request-bytes-2")
	if err := c.Put(request, &pep.Response{}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	fake.Advance(59 * time.Second)
	if _, ok := c.Get(request); !ok {
		t.Fatal("Get() missed before TTL elapsed")
	}

	fake.Advance(2 * time.Second)
	if _, ok := c.Get(request); ok {
		t.Fatal("Get() hit after TTL elapsed")
	}
}

func TestCache_MaxEntriesEvictsOldest(t *testing.T) {
	fake := clock.Fake(time.Unix(1000, 0))
	c := New(Config{TTL: time.Hour, MaxEntries: 2, Clock: fake})

	c.Put([]byte("a"), &pep.Response{})
	c.Put([]byte("b"), &pep.Response{})
	c.Put([]byte("c"), &pep.Response{})

	if _, ok := c.Get([]byte("a")); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get([]byte("b")); !ok {
		t.Error("entry b should still be cached")
	}
	if _, ok := c.Get([]byte("c")); !ok {
		t.Error("entry c should still be cached")
	}
}

func TestCache_PersistTier_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error: %v", err)
	}
	defer keypair.Close()

	persist, err := NewPersistTier(filepath.Join(dir, "decisions"), []string{keypair.PublicKey}, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("NewPersistTier() error: %v", err)
	}

	fake := clock.Fake(time.Unix(1000, 0))
	request := []byte("request-bytes-3")
	response := &pep.Response{Results: []pep.Result{{Decision: pep.Deny, ResourceID: "urn:example:res"}}}

	first := New(Config{TTL: time.Hour, Clock: fake, Persist: persist})
	if err := first.Put(request, response); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	// A fresh in-memory Cache sharing the same persist tier simulates a
	// process restart: nothing is in memory, so the hit must come from disk.
	second := New(Config{TTL: time.Hour, Clock: fake, Persist: persist})
	got, ok := second.Get(request)
	if !ok {
		t.Fatal("Get() on a fresh Cache missed the persisted entry")
	}
	if len(got.Results) != 1 || got.Results[0].Decision != pep.Deny || got.Results[0].ResourceID != "urn:example:res" {
		t.Errorf("got = %+v", got)
	}
}

func TestPersistTier_RequiresAtLeastOneRecipient(t *testing.T) {
	_, err := NewPersistTier(t.TempDir(), nil, nil)
	if err == nil {
		t.Fatal("NewPersistTier() succeeded with no recipients, want an error")
	}
}
