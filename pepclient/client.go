// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pepclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/glite-authz/pep-client/lib/netutil"
	"github.com/glite-authz/pep-client/pep"
	"github.com/glite-authz/pep-client/pepcache"
)

// DefaultTimeout is used when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// Endpoints is an ordered list of PEP daemon base URLs, e.g.
	// "https://pepd1.example.org:8154/authz". Authorize tries them in
	// order, advancing to the next one only on a transport failure.
	Endpoints []string

	// Timeout bounds a single endpoint attempt, including TLS
	// handshake and response body read. Defaults to DefaultTimeout.
	Timeout time.Duration

	// TLSConfig, if set, is used for client-certificate authentication
	// and server verification. Build it with NewTLSConfig.
	TLSConfig *tls.Config

	// SkipOCSP is not read by New. Whether the OCSP revocation check
	// runs is decided by the skipOCSP argument passed to NewTLSConfig
	// when TLSConfig is built; this field only records that choice.
	SkipOCSP bool

	// Cache, if set, is consulted before every Authorize call and
	// populated after a successful one. Nil means every call hits the
	// wire.
	Cache *pepcache.Cache
}

// Client authorizes requests against an ordered list of PEP daemon
// endpoints, failing over to the next endpoint on a transport error.
type Client struct {
	httpClient *http.Client
	endpoints  []string
	cache      *pepcache.Cache
}

// New creates a Client from config. At least one endpoint is required.
func New(config Config) (*Client, error) {
	if len(config.Endpoints) == 0 {
		return nil, errors.New("pepclient: at least one endpoint is required")
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{TLSClientConfig: config.TLSConfig},
		},
		endpoints: config.Endpoints,
		cache:     config.Cache,
	}, nil
}

// NewForTesting creates a Client with a caller-supplied transport,
// bypassing TLS setup. Used by tests that redirect requests to an
// httptest.Server.
func NewForTesting(transport http.RoundTripper, endpoints ...string) *Client {
	return &Client{
		httpClient: &http.Client{Transport: transport},
		endpoints:  endpoints,
	}
}

// Authorize marshals req, POSTs it to the first reachable configured
// endpoint, and unmarshals the response. A connection-level failure
// (dial error, TLS handshake failure, reset, closed connection) on one
// endpoint advances to the next; a decoded response — even a
// Deny/Indeterminate result, or a non-2xx HTTP status the daemon
// answered with — is returned directly without trying another
// endpoint, since the daemon is reachable and answered.
//
// If the Client was configured with a Cache, a hit keyed on req's
// marshaled bytes is returned without touching the network, and a
// fresh decision is stored in the cache before being returned.
func (c *Client) Authorize(ctx context.Context, req *pep.Request) (*pep.Response, error) {
	body, err := pep.MarshalRequest(req)
	if err != nil {
		return nil, fmt.Errorf("pepclient: marshaling request: %w", err)
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(body); ok {
			return cached, nil
		}
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		response, err := c.post(ctx, endpoint, body)
		if err != nil {
			if isTransportFailure(err) {
				lastErr = fmt.Errorf("%s: %w", endpoint, err)
				continue
			}
			return nil, fmt.Errorf("pepclient: %s: %w", endpoint, err)
		}
		if c.cache != nil {
			// A cache write failure (e.g. a full disk on the persist
			// tier) should not fail an otherwise-successful
			// authorization; log it and return the decision anyway.
			if err := c.cache.Put(body, response); err != nil {
				slog.Warn("pepclient: failed to cache response", "endpoint", endpoint, "error", err)
			}
		}
		return response, nil
	}
	return nil, fmt.Errorf("pepclient: all endpoints failed, last error: %w", lastErr)
}

// post sends the Hessian-encoded request body to a single endpoint and
// decodes the response. Any error returned that originates below the
// HTTP layer (Do itself failing) is a transport failure eligible for
// failover; an error returned after a response was received is not,
// except that a reset or closed connection while reading the body is
// also treated as a transport failure by isTransportFailure.
func (c *Client) post(ctx context.Context, endpoint string, body []byte) (*pep.Response, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/octet-stream")
	httpRequest.Header.Set("Accept", "application/octet-stream")

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, &transportError{err}
	}
	defer httpResponse.Body.Close()

	responseBody, err := netutil.ReadResponse(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", httpResponse.StatusCode, netutil.ErrorBody(bytes.NewReader(responseBody)))
	}

	decoded, err := pep.UnmarshalResponse(responseBody)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return decoded, nil
}

// transportError marks an error as having occurred before any HTTP
// response was received, making it eligible for endpoint failover.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransportFailure(err error) bool {
	var transportErr *transportError
	if errors.As(err, &transportErr) {
		return true
	}
	return netutil.IsExpectedCloseError(err)
}
