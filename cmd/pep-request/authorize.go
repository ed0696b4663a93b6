// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/glite-authz/pep-client/internal/cli"
	"github.com/glite-authz/pep-client/internal/config"
	"github.com/glite-authz/pep-client/lib/secret"
	"github.com/glite-authz/pep-client/pep"
	"github.com/glite-authz/pep-client/pepcache"
	"github.com/glite-authz/pep-client/pepclient"
)

type authorizeFlags struct {
	configPath string
	subjectDN  string
	certFile   string
	fqans      []string
	resourceID string
	actionID   string
	attrs      []string
	endpoints  []string
	asJSON     bool
}

func authorizeCommand() *cli.Command {
	flags := &authorizeFlags{}

	return &cli.Command{
		Name:    "authorize",
		Summary: "Send an authorization request",
		Usage:   "pep-request authorize [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("authorize", pflag.ContinueOnError)
			flagSet.StringVar(&flags.configPath, "config", "", "path to pep-client config file (defaults to "+config.EnvVar+")")
			flagSet.StringVar(&flags.subjectDN, "subject-dn", "", "subject X.509 distinguished name")
			flagSet.StringVar(&flags.certFile, "cert", "", "PEM file holding the subject's certificate chain (alternative to --subject-dn)")
			flagSet.StringArrayVar(&flags.fqans, "fqan", nil, "VOMS FQAN; first occurrence is primary (repeatable)")
			flagSet.StringVar(&flags.resourceID, "resource-id", "", "resource identifier")
			flagSet.StringVar(&flags.actionID, "action-id", "", "action identifier")
			flagSet.StringArrayVar(&flags.attrs, "attr", nil, "additional resource attribute as key=value (repeatable)")
			flagSet.StringArrayVar(&flags.endpoints, "endpoint", nil, "PEP daemon endpoint (repeatable; overrides config endpoints)")
			flagSet.BoolVar(&flags.asJSON, "json", false, "print the response as JSON instead of a human-readable summary")
			return flagSet
		},
		Run: func(args []string) error {
			return runAuthorize(flags)
		},
	}
}

func runAuthorize(flags *authorizeFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	endpoints := cfg.Endpoints
	if len(flags.endpoints) > 0 {
		endpoints = flags.endpoints
	}

	request, err := buildRequest(flags)
	if err != nil {
		return err
	}

	clientConfig := pepclient.Config{
		Endpoints: endpoints,
		Timeout:   cfg.Timeout,
		SkipOCSP:  cfg.SkipOCSP,
	}

	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		certPEM, err := os.ReadFile(cfg.TLS.CertFile)
		if err != nil {
			return fmt.Errorf("reading TLS cert: %w", err)
		}
		keyPEM, err := os.ReadFile(cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("reading TLS key: %w", err)
		}
		var caBundle []byte
		if cfg.TLS.CAFile != "" {
			caBundle, err = os.ReadFile(cfg.TLS.CAFile)
			if err != nil {
				return fmt.Errorf("reading CA bundle: %w", err)
			}
		}
		tlsConfig, err := pepclient.NewTLSConfig(certPEM, keyPEM, caBundle, cfg.SkipOCSP)
		if err != nil {
			return fmt.Errorf("building TLS config: %w", err)
		}
		clientConfig.TLSConfig = tlsConfig
	}

	if cache, err := buildCache(cfg); err != nil {
		return err
	} else if cache != nil {
		clientConfig.Cache = cache
	}

	client, err := pepclient.New(clientConfig)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
	defer cancel()

	response, err := client.Authorize(ctx, request)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}

	return printResponse(response, flags.asJSON)
}

func buildRequest(flags *authorizeFlags) (*pep.Request, error) {
	subject, err := buildSubject(flags)
	if err != nil {
		return nil, err
	}

	resourceAttrs := []pep.Attribute{
		{ID: pep.AttrResourceID, Values: []string{flags.resourceID}},
	}
	for _, kv := range flags.attrs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("--attr %q: expected key=value", kv)
		}
		resourceAttrs = append(resourceAttrs, pep.Attribute{ID: parts[0], Values: []string{parts[1]}})
	}

	var action *pep.Action
	if flags.actionID != "" {
		action = &pep.Action{
			Attributes: []pep.Attribute{{ID: pep.AttrActionID, Values: []string{flags.actionID}}},
		}
	}

	return &pep.Request{
		Subjects:  []pep.Subject{subject},
		Resources: []pep.Resource{{Attributes: resourceAttrs}},
		Action:    action,
	}, nil
}

func buildSubject(flags *authorizeFlags) (pep.Subject, error) {
	var subject pep.Subject
	switch {
	case flags.certFile != "":
		chain, err := loadCertificateChain(flags.certFile)
		if err != nil {
			return pep.Subject{}, err
		}
		subject = pep.NewSubjectFromCertificateChain(chain)
	case flags.subjectDN != "":
		subject = pep.NewSubjectFromDN(flags.subjectDN)
	default:
		return pep.Subject{}, fmt.Errorf("one of --subject-dn or --cert is required")
	}
	return pep.AddVOMSFQANs(subject, flags.fqans...), nil
}

func loadCertificateChain(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var chain []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate in %s: %w", path, err)
		}
		chain = append(chain, cert)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%s: no certificates found", path)
	}
	return chain, nil
}

func buildCache(cfg *config.Config) (*pepcache.Cache, error) {
	if cfg.Cache.TTL <= 0 {
		return nil, nil
	}

	cacheConfig := pepcache.Config{
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	}

	if cfg.Cache.PersistDir != "" {
		var privateKey *secret.Buffer
		if cfg.Cache.PrivateKeyFile != "" {
			var err error
			privateKey, err = secret.ReadFromPath(cfg.Cache.PrivateKeyFile)
			if err != nil {
				return nil, fmt.Errorf("loading cache private key: %w", err)
			}
		}
		persist, err := pepcache.NewPersistTier(cfg.Cache.PersistDir, cfg.Cache.Recipients, privateKey)
		if err != nil {
			return nil, fmt.Errorf("setting up cache persistence: %w", err)
		}
		cacheConfig.Persist = persist
	}

	return pepcache.New(cacheConfig), nil
}

func printResponse(response *pep.Response, asJSON bool) error {
	if asJSON {
		encoded, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding response as JSON: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	}
	for _, result := range response.Results {
		fmt.Println(result.Summary())
	}
	return nil
}
