// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pepclient

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/ocsp"

	"github.com/glite-authz/pep-client/lib/netutil"
	"github.com/glite-authz/pep-client/lib/secret"
)

// NewTLSConfig builds a *tls.Config for client-certificate
// authentication against a PEP daemon. certPEM and keyPEM are the
// client's own certificate chain and private key in PEM form; caBundle,
// if non-empty, is a PEM bundle of CA certificates used to verify the
// daemon's server certificate instead of the system root pool.
//
// keyPEM is copied into an mmap-backed secret.Buffer for the duration
// of certificate parsing and zeroed immediately after — tls.Certificate
// holds a parsed crypto.PrivateKey, not the PEM bytes, once built, so
// the buffer does not need to outlive this call.
//
// Unless skipOCSP is true, the returned config verifies the daemon's
// leaf certificate against its OCSP responder (if it advertises one)
// on every connection.
func NewTLSConfig(certPEM, keyPEM, caBundle []byte, skipOCSP bool) (*tls.Config, error) {
	keyBuffer, err := secret.NewFromBytes(append([]byte(nil), keyPEM...))
	if err != nil {
		return nil, fmt.Errorf("pepclient: protecting private key: %w", err)
	}
	certificate, err := tls.X509KeyPair(certPEM, keyBuffer.Bytes())
	keyBuffer.Close()
	if err != nil {
		return nil, fmt.Errorf("pepclient: parsing client certificate/key: %w", err)
	}

	config := &tls.Config{
		Certificates: []tls.Certificate{certificate},
		MinVersion:   tls.VersionTLS12,
	}

	if len(caBundle) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caBundle) {
			return nil, fmt.Errorf("pepclient: no certificates found in CA bundle")
		}
		config.RootCAs = pool
	}

	if !skipOCSP {
		config.VerifyPeerCertificate = verifyOCSP
	}

	return config, nil
}

// ocspTimeout bounds a single OCSP responder round trip.
const ocspTimeout = 10 * time.Second

// verifyOCSP is a tls.Config.VerifyPeerCertificate callback that checks
// the server's leaf certificate against its OCSP responder, if it
// advertises one. A certificate with no OCSP responder URL passes
// unchecked — most grid CAs of this era ran none. A responder that is
// unreachable or returns Unknown also passes; only an explicit Revoked
// status fails the handshake.
func verifyOCSP(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return nil
	}
	leaf, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("pepclient: parsing server certificate: %w", err)
	}
	if len(leaf.OCSPServer) == 0 {
		return nil
	}

	var issuer *x509.Certificate
	if len(verifiedChains) > 0 && len(verifiedChains[0]) > 1 {
		issuer = verifiedChains[0][1]
	} else if len(rawCerts) > 1 {
		issuer, err = x509.ParseCertificate(rawCerts[1])
		if err != nil {
			issuer = nil
		}
	}
	if issuer == nil {
		return nil
	}

	request, err := ocsp.CreateRequest(leaf, issuer, nil)
	if err != nil {
		return nil
	}

	client := &http.Client{Timeout: ocspTimeout}
	httpResponse, err := client.Post(leaf.OCSPServer[0], "application/ocsp-request", bytes.NewReader(request))
	if err != nil {
		// An unreachable responder should not fail the handshake; this
		// check is best-effort.
		return nil
	}
	defer httpResponse.Body.Close()

	body, err := netutil.ReadResponse(httpResponse.Body)
	if err != nil {
		return nil
	}

	response, err := ocsp.ParseResponseForCert(body, leaf, issuer)
	if err != nil {
		return nil
	}
	if response.Status == ocsp.Revoked {
		return fmt.Errorf("pepclient: server certificate %s was revoked at %s", leaf.Subject, response.RevokedAt)
	}
	return nil
}
