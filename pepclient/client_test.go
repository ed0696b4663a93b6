// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pepclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glite-authz/pep-client/hessian"
	"github.com/glite-authz/pep-client/lib/clock"
	"github.com/glite-authz/pep-client/pep"
	"github.com/glite-authz/pep-client/pepcache"
)

func testRequest() *pep.Request {
	return &pep.Request{
		Subjects: []pep.Subject{
			{Attributes: []pep.Attribute{{ID: pep.AttrSubjectID, Values: []string{"/C=CH/O=CERN/CN=Alice"}}}},
		},
		Resources: []pep.Resource{
			{Attributes: []pep.Attribute{{ID: pep.AttrResourceID, Values: []string{"urn:example:res"}}}},
		},
	}
}

// resultNode builds a minimal org.glite.authz.pep.model.Result wire
// node directly, bypassing pep (which has no response marshaler since
// a client never produces one on the wire — only a daemon does).
func resultNode(decision int32, resourceID string) hessian.Node {
	return hessian.MapNode("org.glite.authz.pep.model.Result",
		[]hessian.Node{hessian.StringNode("decision"), hessian.StringNode("resourceId"), hessian.StringNode("status"), hessian.StringNode("obligations")},
		[]hessian.Node{hessian.Int32Node(decision), hessian.StringNode(resourceID), hessian.NullNode(), hessian.ListNode("", nil)},
	)
}

func responseBody(t *testing.T, results []hessian.Node) []byte {
	t.Helper()
	node := hessian.MapNode("org.glite.authz.pep.model.Response",
		[]hessian.Node{hessian.StringNode("request"), hessian.StringNode("results")},
		[]hessian.Node{hessian.NullNode(), hessian.ListNode("", results)},
	)
	data, err := hessian.Serialize(node)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	return data
}

func TestClient_Authorize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil || len(body) == 0 {
			t.Errorf("reading request body: %v", err)
		}
		w.Write(responseBody(t, []hessian.Node{resultNode(int32(pep.Permit), "urn:example:res")}))
	}))
	defer server.Close()

	client := NewForTesting(http.DefaultTransport, server.URL)
	response, err := client.Authorize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Authorize() error: %v", err)
	}
	if len(response.Results) != 1 || response.Results[0].Decision != pep.Permit {
		t.Fatalf("response = %+v", response)
	}
}

func TestClient_Authorize_FailsOverToSecondEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(responseBody(t, []hessian.Node{resultNode(int32(pep.Deny), "")}))
	}))
	defer server.Close()

	client := NewForTesting(http.DefaultTransport, "http://127.0.0.1:1/unreachable", server.URL)
	response, err := client.Authorize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Authorize() error: %v", err)
	}
	if response.Results[0].Decision != pep.Deny {
		t.Fatalf("response = %+v", response)
	}
}

func TestClient_Authorize_AllEndpointsUnreachable(t *testing.T) {
	client := NewForTesting(http.DefaultTransport, "http://127.0.0.1:1/a", "http://127.0.0.1:1/b")
	_, err := client.Authorize(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Authorize() succeeded, want an error")
	}
}

func TestClient_Authorize_DaemonErrorStatusIsNotFailover(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("policy engine unavailable"))
	}))
	defer server.Close()

	client := NewForTesting(http.DefaultTransport, server.URL, server.URL)
	_, err := client.Authorize(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Authorize() succeeded, want an error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no failover on a decoded HTTP error status)", calls)
	}
}

func TestClient_Authorize_CacheHitSkipsNetwork(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(responseBody(t, []hessian.Node{resultNode(int32(pep.Permit), "urn:example:res")}))
	}))
	defer server.Close()

	client := NewForTesting(http.DefaultTransport, server.URL)
	client.cache = pepcache.New(pepcache.Config{TTL: time.Minute, Clock: clock.Fake(time.Unix(0, 0))})

	req := testRequest()
	first, err := client.Authorize(context.Background(), req)
	if err != nil {
		t.Fatalf("Authorize() error: %v", err)
	}
	second, err := client.Authorize(context.Background(), req)
	if err != nil {
		t.Fatalf("Authorize() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (second Authorize should be a cache hit)", calls)
	}
	if first.Results[0].Decision != second.Results[0].Decision {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
}

func TestNew_RequiresAtLeastOneEndpoint(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("New() succeeded with no endpoints, want an error")
	}
}

func TestIsTransportFailure(t *testing.T) {
	if !isTransportFailure(&transportError{errors.New("dial tcp: connection refused")}) {
		t.Error("transportError should be a transport failure")
	}
	if isTransportFailure(errors.New("HTTP 500: boom")) {
		t.Error("a plain error should not be treated as a transport failure")
	}
}
